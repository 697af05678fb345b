package service

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/damiancxliew/web-forum/internal/core/domain"
	"github.com/damiancxliew/web-forum/internal/core/ports"
	"github.com/damiancxliew/web-forum/internal/metrics"
)

// Action is the closed set of session mutations. Dispatch is the only way
// to change the session; there is deliberately no setter surface besides it.
type Action interface {
	isAction()
	name() string
}

// Login replaces the identity and clears any recorded error.
type Login struct {
	Identity *domain.Identity
}

// Logout clears the identity, the recorded error, and the durable copies of
// both identity and token.
type Logout struct{}

// UpdateUser replaces the identity wholesale. Callers merge partial profile
// edits into a full identity before dispatching; the store never merges.
type UpdateUser struct {
	Identity *domain.Identity
}

// SetError records a user-facing message without touching the identity.
type SetError struct {
	Message string
}

func (Login) isAction()      {}
func (Logout) isAction()     {}
func (UpdateUser) isAction() {}
func (SetError) isAction()   {}

func (Login) name() string      { return "login" }
func (Logout) name() string     { return "logout" }
func (UpdateUser) name() string { return "update_user" }
func (SetError) name() string   { return "set_error" }

// SessionStore is the single source of truth for "who is logged in". Every
// identity-changing dispatch re-serializes to durable storage in the same
// step, so memory and storage never disagree across an observable boundary.
type SessionStore struct {
	mu       sync.Mutex
	identity *domain.Identity
	token    string
	errMsg   string
	loading  bool

	storage ports.SessionStorage
	log     zerolog.Logger
}

// NewSessionStore returns a store in the Initializing state. Callers must
// invoke Rehydrate before trusting Identity()/IsAdmin(); Loading() reports
// whether that has happened yet.
func NewSessionStore(storage ports.SessionStorage, log zerolog.Logger) *SessionStore {
	return &SessionStore{storage: storage, loading: true, log: log}
}

// Rehydrate restores the session from durable storage without a network
// call. Read or decode failures are non-fatal: the session falls back to
// anonymous and the failure is recorded as the session error.
func (s *SessionStore) Rehydrate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.loading = false }()

	identity, err := s.storage.LoadIdentity()
	if err != nil {
		s.log.Warn().Err(err).Msg("session rehydration failed, starting anonymous")
		s.identity = nil
		s.errMsg = "failed to load user data"
		return
	}
	token, err := s.storage.LoadToken()
	if err != nil {
		s.log.Warn().Err(err).Msg("token rehydration failed")
		token = ""
	}
	s.identity = identity
	s.token = token
}

// Dispatch applies one action. The type switch is exhaustive over the
// closed action set; unknown actions cannot exist outside this package.
func (s *SessionStore) Dispatch(action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch a := action.(type) {
	case Login:
		s.identity = a.Identity
		s.errMsg = ""
		s.persistIdentity()
	case Logout:
		s.identity = nil
		s.token = ""
		s.errMsg = ""
		s.persistIdentity()
		if err := s.storage.ClearToken(); err != nil {
			s.log.Error().Err(err).Msg("failed to clear stored token")
		}
	case UpdateUser:
		s.identity = a.Identity
		s.persistIdentity()
	case SetError:
		s.errMsg = a.Message
	}

	metrics.SessionTransitionsTotal.WithLabelValues(action.name()).Inc()
}

// persistIdentity mirrors the in-memory identity to durable storage. Called
// with s.mu held. A write failure is recorded as the session error but does
// not roll back the in-memory transition: failing open keeps the running
// client usable and the next successful dispatch repairs the mirror.
func (s *SessionStore) persistIdentity() {
	var err error
	if s.identity != nil {
		err = s.storage.SaveIdentity(s.identity)
	} else {
		err = s.storage.ClearIdentity()
	}
	if err != nil {
		s.log.Error().Err(err).Msg("failed to persist session")
		s.errMsg = "failed to persist session"
	}
}

// SetToken records the bearer token and mirrors it to durable storage. The
// token lives beside the session rather than inside the reducer because it
// is a transport credential, not identity state.
func (s *SessionStore) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	if err := s.storage.SaveToken(token); err != nil {
		s.log.Error().Err(err).Msg("failed to persist token")
	}
}

// Token returns the current bearer token, or "" when anonymous.
func (s *SessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Identity returns the authenticated identity, or nil when anonymous.
// Callers must treat the result as read-only; use Clone before merging
// profile edits.
func (s *SessionStore) Identity() *domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// IdentityID returns the authenticated user's id, or 0 when anonymous. Used
// as the epoch value for discarding stale remote responses.
func (s *SessionStore) IdentityID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return 0
	}
	return s.identity.ID
}

// IsAdmin reports whether the current identity holds the admin role,
// defaulting to false when anonymous.
func (s *SessionStore) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity != nil && s.identity.IsAdmin
}

// IsSuperAdmin reports whether the current identity holds the super-admin
// role, defaulting to false when anonymous.
func (s *SessionStore) IsSuperAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity != nil && s.identity.IsSuperAdmin
}

// Err returns the most recent session error message, or "".
func (s *SessionStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Loading reports whether the first rehydration is still pending. Consumers
// should hold off rendering protected content until it returns false.
func (s *SessionStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}
