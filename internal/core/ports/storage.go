package ports

import "github.com/damiancxliew/web-forum/internal/core/domain"

// SessionStorage is the durable key/value mirror of the session: the local
// analogue of browser storage, surviving restarts.
//
// LoadIdentity and LoadToken return the zero value with a nil error when
// nothing is stored; an error means the stored value exists but could not be
// read or decoded.
type SessionStorage interface {
	LoadIdentity() (*domain.Identity, error)
	SaveIdentity(identity *domain.Identity) error
	ClearIdentity() error

	LoadToken() (string, error)
	SaveToken(token string) error
	ClearToken() error
}
