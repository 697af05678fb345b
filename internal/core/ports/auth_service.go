package ports

import (
	"context"

	"github.com/damiancxliew/web-forum/internal/core/domain"
)

// SignUpInput carries a new account registration.
type SignUpInput struct {
	Username string `validate:"required,max=255"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

// UpdateProfileInput carries a profile edit. Zero-valued fields are merged
// with the current identity at the call site, not by the server.
type UpdateProfileInput struct {
	Name           string `validate:"omitempty,max=255"`
	Email          string `validate:"omitempty,email"`
	Address        string
	ProfilePicture string
}

// AdminRequestInput carries a role-elevation application. The validation
// rules mirror what the server enforces, so bad input never leaves the
// client.
type AdminRequestInput struct {
	Name         string `validate:"required,max=255"`
	Role         string `validate:"required,max=255"`
	MobileNumber string `validate:"required,numeric,min=8,max=15"`
	Organisation string `validate:"required,max=255"`
}

// AuthService drives the session: account registration, login/logout, and
// profile maintenance, all through the remote gateway.
type AuthService interface {
	SignUp(ctx context.Context, input SignUpInput) error
	Login(ctx context.Context, email, password string) (*domain.Identity, error)
	Logout()
	RefreshIdentity(ctx context.Context) error
	UpdateProfile(ctx context.Context, input UpdateProfileInput) error
	SubmitAdminRequest(ctx context.Context, input AdminRequestInput) (*domain.AdminRequest, error)
	DeleteAccount(ctx context.Context) error
}
