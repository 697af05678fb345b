package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/damiancxliew/web-forum/internal/core/domain"
	"github.com/damiancxliew/web-forum/internal/core/ports"
)

func signedToken(t *testing.T, userID int64) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userID}).
		SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newTestAuth(gw ports.Gateway) (*Auth, *SessionStore, *stubStorage) {
	storage := &stubStorage{}
	session := NewSessionStore(storage, zerolog.Nop())
	session.Rehydrate()
	return NewAuth(gw, session, zerolog.Nop()), session, storage
}

func TestAuth_LoginFetchesIdentityAndStoresToken(t *testing.T) {
	token := signedToken(t, 42)
	gw := newStubGateway()
	gw.succeed("login", t, map[string]string{"message": "Login successful", "token": token})
	gw.succeed("get_user", t, domain.Identity{ID: 42, Username: "bob", Email: "bob@example.com", IsAdmin: true})
	auth, session, storage := newTestAuth(gw)

	identity, err := auth.Login(context.Background(), "bob@example.com", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if identity.ID != 42 || identity.Username != "bob" {
		t.Fatalf("unexpected identity %+v", identity)
	}
	if !session.IsAdmin() {
		t.Fatal("projection must reflect the fetched identity")
	}
	if storage.token != token {
		t.Fatal("token must be mirrored to durable storage")
	}
	if storage.identity == nil || storage.identity.ID != 42 {
		t.Fatalf("identity must be mirrored to durable storage, got %+v", storage.identity)
	}

	// The profile is fetched for the id decoded from the token.
	fetch := gw.calls[len(gw.calls)-1]
	if fetch.resource != "get_user" || fetch.subPath != "42" {
		t.Fatalf("unexpected identity fetch %+v", fetch)
	}
}

func TestAuth_LoginRejectsMissingCredentialsWithoutRemoteCall(t *testing.T) {
	gw := newStubGateway()
	auth, _, _ := newTestAuth(gw)

	if _, err := auth.Login(context.Background(), "", "secret123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(gw.calls) != 0 {
		t.Fatalf("expected no gateway calls, saw %d", len(gw.calls))
	}
}

func TestAuth_LoginFailureLeavesSessionAnonymous(t *testing.T) {
	gw := newStubGateway()
	gw.fail("login", "Invalid email or password")
	auth, session, _ := newTestAuth(gw)

	_, err := auth.Login(context.Background(), "bob@example.com", "wrong")
	if !errors.Is(err, domain.ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid email or password") {
		t.Fatalf("server message must be surfaced, got %v", err)
	}
	if session.Identity() != nil {
		t.Fatal("failed login must leave the session anonymous")
	}
}

func TestAuth_SignUpValidatesBeforeRemoteCall(t *testing.T) {
	gw := newStubGateway()
	auth, _, _ := newTestAuth(gw)

	cases := []ports.SignUpInput{
		{Username: "bob", Email: "not-an-email", Password: "longenough"},
		{Username: "bob", Email: "bob@example.com", Password: "short"},
		{Email: "bob@example.com", Password: "longenough"},
	}
	for _, input := range cases {
		if err := auth.SignUp(context.Background(), input); err == nil {
			t.Fatalf("expected validation error for %+v", input)
		}
	}
	if len(gw.calls) != 0 {
		t.Fatalf("invalid signups must never reach the gateway, saw %d calls", len(gw.calls))
	}

	gw.succeed("signup", t, domain.Identity{ID: 1, Username: "bob"})
	if err := auth.SignUp(context.Background(), ports.SignUpInput{
		Username: "bob", Email: "bob@example.com", Password: "longenough",
	}); err != nil {
		t.Fatalf("valid signup failed: %v", err)
	}
	if len(gw.calls) != 1 || gw.calls[0].resource != "signup" {
		t.Fatalf("unexpected calls %+v", gw.calls)
	}
}

func TestAuth_SubmitAdminRequestAppendsToIdentity(t *testing.T) {
	gw := newStubGateway()
	gw.succeed("adminRequest", t, map[string]any{
		"data": domain.AdminRequest{
			ID: 5, Name: "Bob B", Role: "moderator", MobileNumber: "91234567",
			Organisation: "ACME", Status: domain.RequestPending, OwnerID: 42,
		},
	})
	auth, session, storage := newTestAuth(gw)
	session.Dispatch(Login{Identity: testIdentity(42)})

	req, err := auth.SubmitAdminRequest(context.Background(), ports.AdminRequestInput{
		Name: "Bob", Role: "moderator", MobileNumber: "91234567", Organisation: "ACME",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if req.Status != domain.RequestPending {
		t.Fatalf("new requests arrive pending, got %q", req.Status)
	}

	identity := session.Identity()
	if len(identity.AdminRequests) != 1 || identity.AdminRequests[0].ID != 5 {
		t.Fatalf("request must be appended to the identity, got %+v", identity.AdminRequests)
	}
	if len(storage.identity.AdminRequests) != 1 {
		t.Fatal("appended request must be mirrored to durable storage")
	}
	if call := gw.calls[0]; call.subPath != "42" {
		t.Fatalf("request must target the owner id, got %+v", call)
	}
}

func TestAuth_SubmitAdminRequestValidatesMobileNumber(t *testing.T) {
	gw := newStubGateway()
	auth, session, _ := newTestAuth(gw)
	session.Dispatch(Login{Identity: testIdentity(42)})

	_, err := auth.SubmitAdminRequest(context.Background(), ports.AdminRequestInput{
		Name: "Bob", Role: "moderator", MobileNumber: "12ab", Organisation: "ACME",
	})
	if err == nil {
		t.Fatal("expected validation error for malformed mobile number")
	}
	if len(gw.calls) != 0 {
		t.Fatalf("invalid request must never reach the gateway, saw %d calls", len(gw.calls))
	}
}

func TestAuth_UpdateProfileMergesAtCallSite(t *testing.T) {
	gw := newStubGateway()
	gw.succeed("users", t, map[string]any{"message": "updated"})
	auth, session, _ := newTestAuth(gw)

	current := testIdentity(42)
	current.ProfilePicture = "avatar.png"
	session.Dispatch(Login{Identity: current})

	err := auth.UpdateProfile(context.Background(), ports.UpdateProfileInput{
		Name: "robert", Address: "1 Main St",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got := session.Identity()
	if got.Username != "robert" || got.Address != "1 Main St" {
		t.Fatalf("edited fields not applied: %+v", got)
	}
	if got.Email != "bob@example.com" || got.ProfilePicture != "avatar.png" {
		t.Fatalf("untouched fields must be preserved by the merge: %+v", got)
	}
	if call := gw.calls[0]; call.resource != "users" || call.subPath != "update/42" {
		t.Fatalf("unexpected update call %+v", call)
	}
}

func TestAuth_DeleteAccountLogsOut(t *testing.T) {
	gw := newStubGateway()
	gw.succeed("users", t, map[string]string{"message": "deleted"})
	auth, session, storage := newTestAuth(gw)
	session.Dispatch(Login{Identity: testIdentity(42)})
	session.SetToken("tok")

	if err := auth.DeleteAccount(context.Background()); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if session.Identity() != nil {
		t.Fatal("account deletion must end the session")
	}
	if storage.identity != nil || storage.token != "" {
		t.Fatal("durable mirrors must be cleared")
	}
}

func TestAuth_RefreshIdentityRequiresSession(t *testing.T) {
	gw := newStubGateway()
	auth, _, _ := newTestAuth(gw)

	if err := auth.RefreshIdentity(context.Background()); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if len(gw.calls) != 0 {
		t.Fatalf("expected no gateway calls, saw %d", len(gw.calls))
	}
}
