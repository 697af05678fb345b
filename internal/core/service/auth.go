package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/damiancxliew/web-forum/internal/core/domain"
	"github.com/damiancxliew/web-forum/internal/core/ports"
)

// Auth drives the session store through the remote gateway: registration,
// login/logout, profile edits, role-elevation requests and account removal.
// All input validation happens here, before any remote call.
type Auth struct {
	gateway  ports.Gateway
	session  *SessionStore
	validate *validator.Validate
	log      zerolog.Logger
}

var _ ports.AuthService = (*Auth)(nil)

func NewAuth(gateway ports.Gateway, session *SessionStore, log zerolog.Logger) *Auth {
	return &Auth{
		gateway:  gateway,
		session:  session,
		validate: validator.New(),
		log:      log,
	}
}

// SignUp registers a new account. It does not log the user in; the caller
// follows up with Login.
func (a *Auth) SignUp(ctx context.Context, input ports.SignUpInput) error {
	if err := a.validate.Struct(input); err != nil {
		return fmt.Errorf("invalid signup: %w", err)
	}

	payload := map[string]any{
		"username": input.Username,
		"email":    input.Email,
		"password": input.Password,
	}
	resp := a.gateway.Do(ctx, "signup", http.MethodPost, "", payload)
	if !resp.Success {
		return remoteErr(resp)
	}
	a.log.Info().Str("username", input.Username).Msg("account registered")
	return nil
}

// Login authenticates against the server, stores the bearer token, fetches
// the full identity and dispatches it into the session store.
//
// The user id is read from the token without signature verification: the
// client holds no signing key, and the token is only trusted as far as
// "which profile should I fetch". The server re-checks it on every
// protected request.
func (a *Auth) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	resp := a.gateway.Do(ctx, "login", http.MethodPost, "", map[string]any{
		"email":    email,
		"password": password,
	})
	if !resp.Success {
		return nil, remoteErr(resp)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Data, &body); err != nil || body.Token == "" {
		return nil, decodeErr("login")
	}

	userID, err := userIDFromToken(body.Token)
	if err != nil {
		a.log.Warn().Err(err).Msg("unusable login token")
		return nil, decodeErr("login token")
	}

	a.session.SetToken(body.Token)

	identity, err := a.fetchIdentity(ctx, userID)
	if err != nil {
		return nil, err
	}
	a.session.Dispatch(Login{Identity: identity})
	a.log.Info().Int64("user_id", identity.ID).Msg("logged in")
	return identity, nil
}

// Logout clears the session and its durable mirrors.
func (a *Auth) Logout() {
	a.session.Dispatch(Logout{})
}

// RefreshIdentity re-fetches the current user's profile and dispatches it.
// Called by the view on its own schedule, independent of browsing state.
func (a *Auth) RefreshIdentity(ctx context.Context) error {
	userID := a.session.IdentityID()
	if userID == 0 {
		return domain.ErrNotAuthenticated
	}
	identity, err := a.fetchIdentity(ctx, userID)
	if err != nil {
		return err
	}
	if a.session.IdentityID() != userID {
		return domain.ErrStaleResponse
	}
	a.session.Dispatch(Login{Identity: identity})
	return nil
}

// UpdateProfile submits a profile edit and merges the result into the
// current identity. The merge happens here, at the call site of the store:
// fields absent from the input keep their current values. When the email
// changed and the server issued a verification token, a verification email
// is sent through the gateway; a failure there is logged, not fatal.
func (a *Auth) UpdateProfile(ctx context.Context, input ports.UpdateProfileInput) error {
	current := a.session.Identity()
	if current == nil {
		return domain.ErrNotAuthenticated
	}
	if err := a.validate.Struct(input); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}

	payload := map[string]any{
		"name":           input.Name,
		"email":          input.Email,
		"address":        input.Address,
		"profilePicture": input.ProfilePicture,
	}
	resp := a.gateway.Do(ctx, "users", http.MethodPost, "update/"+strconv.FormatInt(current.ID, 10), payload)
	if !resp.Success {
		return remoteErr(resp)
	}

	merged := current.Clone()
	if input.Name != "" {
		merged.Username = input.Name
	}
	if input.Email != "" {
		merged.Email = input.Email
	}
	if input.Address != "" {
		merged.Address = input.Address
	}
	if input.ProfilePicture != "" {
		merged.ProfilePicture = input.ProfilePicture
	}
	a.session.Dispatch(UpdateUser{Identity: merged})

	if input.Email != "" && input.Email != current.Email {
		a.sendVerificationEmail(ctx, input.Email, resp.Data)
	}
	return nil
}

func (a *Auth) sendVerificationEmail(ctx context.Context, email string, raw json.RawMessage) {
	var body struct {
		Data struct {
			VerificationToken string `json:"verificationToken"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Data.VerificationToken == "" {
		return
	}
	resp := a.gateway.Do(ctx, "email", http.MethodPost, "send", map[string]any{
		"to":      email,
		"subject": "Email Verification Required",
		"text":    "Please verify your new email address using token " + body.Data.VerificationToken,
	})
	if !resp.Success {
		a.log.Warn().Str("message", resp.Message).Msg("verification email not sent")
	}
}

// SubmitAdminRequest files a role-elevation application and appends the
// server-returned request to the identity. Request status stays
// server-authoritative: it arrives as pending and only a reload can change
// it.
func (a *Auth) SubmitAdminRequest(ctx context.Context, input ports.AdminRequestInput) (*domain.AdminRequest, error) {
	current := a.session.Identity()
	if current == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if err := a.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid admin request: %w", err)
	}

	payload := map[string]any{
		"name":         input.Name,
		"role":         input.Role,
		"mobileNumber": input.MobileNumber,
		"organisation": input.Organisation,
	}
	resp := a.gateway.Do(ctx, "adminRequest", http.MethodPost, strconv.FormatInt(current.ID, 10), payload)
	if !resp.Success {
		return nil, remoteErr(resp)
	}

	var body struct {
		Data domain.AdminRequest `json:"data"`
	}
	if err := json.Unmarshal(resp.Data, &body); err != nil {
		return nil, decodeErr("admin request")
	}

	merged := current.Clone()
	merged.AdminRequests = append(merged.AdminRequests, body.Data)
	a.session.Dispatch(UpdateUser{Identity: merged})
	a.log.Info().Int64("user_id", current.ID).Str("role", input.Role).Msg("admin request submitted")
	return &body.Data, nil
}

// DeleteAccount removes the account remotely, then logs out locally.
func (a *Auth) DeleteAccount(ctx context.Context) error {
	current := a.session.Identity()
	if current == nil {
		return domain.ErrNotAuthenticated
	}
	resp := a.gateway.Do(ctx, "users", http.MethodDelete, strconv.FormatInt(current.ID, 10), nil)
	if !resp.Success {
		return remoteErr(resp)
	}
	a.session.Dispatch(Logout{})
	a.log.Info().Int64("user_id", current.ID).Msg("account deleted")
	return nil
}

func (a *Auth) fetchIdentity(ctx context.Context, userID int64) (*domain.Identity, error) {
	resp := a.gateway.Do(ctx, "get_user", http.MethodGet, strconv.FormatInt(userID, 10), nil)
	if !resp.Success {
		return nil, remoteErr(resp)
	}
	var identity domain.Identity
	if err := json.Unmarshal(resp.Data, &identity); err != nil {
		return nil, decodeErr("user")
	}
	return &identity, nil
}

// userIDFromToken extracts the user_id claim without verifying the
// signature.
func userIDFromToken(raw string) (int64, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return 0, err
	}
	id, ok := claims["user_id"].(float64)
	if !ok || id <= 0 {
		return 0, fmt.Errorf("token carries no user_id claim")
	}
	return int64(id), nil
}
