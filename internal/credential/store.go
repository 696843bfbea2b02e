package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/fleetdesk/fleetdesk-go/internal/storage"
	"github.com/fleetdesk/fleetdesk-go/internal/telemetry/logger"
)

// TokenKey is the local store key holding the session token.
const TokenKey = "token"

// Store is a token store over a LocalStore.
//
// Reads go to the backing store every time so that a logout in one process
// is seen by another sharing the same directory.
type Store struct {
	local  storage.LocalStore
	sealer *Sealer
	log    logger.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithSealer encrypts the token at rest.
func WithSealer(s *Sealer) Option {
	return func(st *Store) { st.sealer = s }
}

// WithLogger sets the logger used for store failures.
func WithLogger(l logger.Logger) Option {
	return func(st *Store) { st.log = l }
}

// NewStore creates a token store.
func NewStore(local storage.LocalStore, opts ...Option) *Store {
	s := &Store{local: local, log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Token returns the current token. A missing, empty or unreadable token
// reports false.
func (s *Store) Token() (string, bool) {
	raw, err := s.local.Get(context.Background(), TokenKey)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			s.log.Debug("read token failed", "error", err)
		}
		return "", false
	}

	if s.sealer != nil {
		raw, err = s.sealer.Open(raw, TokenKey)
		if err != nil {
			s.log.Debug("unseal token failed", "error", err)
			return "", false
		}
	}

	if len(raw) == 0 {
		return "", false
	}
	return string(raw), true
}

// SetToken replaces the stored token.
func (s *Store) SetToken(token string) error {
	value := []byte(token)
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(value, TokenKey)
		if err != nil {
			return err
		}
		value = sealed
	}

	if err := s.local.Set(context.Background(), TokenKey, value); err != nil {
		return fmt.Errorf("credential: store token: %w", err)
	}
	return nil
}

// ClearToken removes the stored token. Clearing an absent token succeeds.
func (s *Store) ClearToken() error {
	if err := s.local.Delete(context.Background(), TokenKey); err != nil {
		return fmt.Errorf("credential: clear token: %w", err)
	}
	return nil
}
