// Package session holds the bearer credential and the identity derived from
// it. Login and Logout are the only writers of durable storage.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jask/coursedesk/internal/model"
	"github.com/jask/coursedesk/internal/secrets"
	"github.com/jask/coursedesk/internal/token"
)

var (
	// ErrAuth covers rejected logins and unusable restored credentials.
	ErrAuth = errors.New("session: not authenticated")
	// ErrDecode is an ErrAuth caused by a credential whose payload cannot be read.
	ErrDecode = fmt.Errorf("%w: malformed credential", ErrAuth)
)

// CredentialStore is durable storage for one credential (secrets.Vault).
// Load returns secrets.ErrNoCredential when nothing is stored.
type CredentialStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, credential string) error
	Delete(ctx context.Context) error
}

// Authenticator exchanges credentials for a bearer token (api.Client).
type Authenticator interface {
	Login(ctx context.Context, creds model.Credentials) (string, error)
}

// Store is safe for concurrent use.
type Store struct {
	creds  CredentialStore
	auth   Authenticator
	verify Verifier
	log    *zap.SugaredLogger

	mu         sync.RWMutex
	credential string
	identity   *model.Identity
}

func New(creds CredentialStore, auth Authenticator, verify Verifier, log *zap.SugaredLogger) *Store {
	if verify == nil {
		verify = Unverified{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{creds: creds, auth: auth, verify: verify, log: log}
}

// Restore reads the persisted credential without contacting the backend
// (unless the verifier introspects). ok is false when nothing is stored or
// the stored credential cannot be used; err explains the latter.
func (s *Store) Restore(ctx context.Context) (model.Identity, bool, error) {
	raw, err := s.creds.Load(ctx)
	if errors.Is(err, secrets.ErrNoCredential) {
		return model.Identity{}, false, nil
	}
	if err != nil {
		s.log.Warnw("stored credential unreadable", "error", err)
		return model.Identity{}, false, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	id, err := s.verify.Identify(ctx, raw)
	if err != nil {
		s.log.Warnw("stored credential rejected", "error", err)
		return model.Identity{}, false, classify(err)
	}
	s.set(raw, id)
	s.log.Infow("session restored", "user_id", id.ID, "role", id.Role)
	return id, true, nil
}

// Login authenticates against the backend. Nothing is persisted unless the
// returned credential yields an identity.
func (s *Store) Login(ctx context.Context, creds model.Credentials) (model.Identity, error) {
	raw, err := s.auth.Login(ctx, creds)
	if err != nil {
		s.log.Infow("login rejected", "username", creds.Username, "error", err)
		return model.Identity{}, fmt.Errorf("%w: %w", ErrAuth, err)
	}
	id, err := s.verify.Identify(ctx, raw)
	if err != nil {
		s.log.Warnw("login returned unusable credential", "username", creds.Username, "error", err)
		return model.Identity{}, classify(err)
	}
	if err := s.creds.Save(ctx, raw); err != nil {
		// The session still works for this process; it just won't survive a restart.
		s.log.Errorw("persist credential", "error", err)
	}
	s.set(raw, id)
	s.log.Infow("logged in", "user_id", id.ID, "role", id.Role)
	return id, nil
}

// Logout forgets the credential locally. The backend is not told.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.credential = ""
	s.identity = nil
	s.mu.Unlock()
	if err := s.creds.Delete(ctx); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

// Identity returns the current identity, if any.
func (s *Store) Identity() (model.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return model.Identity{}, false
	}
	return *s.identity, true
}

// Credential returns the bearer value or "" when logged out.
func (s *Store) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

func (s *Store) Authenticated() bool {
	_, ok := s.Identity()
	return ok
}

func (s *Store) set(raw string, id model.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = raw
	s.identity = &id
}

func classify(err error) error {
	if errors.Is(err, token.ErrMalformed) {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return fmt.Errorf("%w: %w", ErrAuth, err)
}
