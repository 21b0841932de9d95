// Package credentials holds the bearer tokens the API client attaches to
// requests. A Store is created once per process per slot, loaded from the
// local database at startup and injected wherever requests are made.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/abhisek/skillquest/internal/store"
)

// ErrNoToken is returned by operations that require a stored token.
var ErrNoToken = errors.New("not logged in")

// Store is the credential for one slot (user or admin).
type Store struct {
	slot string
	repo store.CredentialRepo // nil keeps the token in memory only
	now  func() time.Time

	mu       sync.RWMutex
	token    string
	onChange []func(token string)
}

// New creates a Store for slot. repo may be nil.
func New(repo store.CredentialRepo, slot string) *Store {
	return &Store{slot: slot, repo: repo, now: time.Now}
}

// Slot returns the slot name.
func (s *Store) Slot() string {
	return s.slot
}

// Load reads the persisted token. A token whose exp claim has passed is
// discarded as if it were never stored.
func (s *Store) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	tok, err := s.repo.Load(ctx, s.slot)
	if err != nil {
		return fmt.Errorf("load %s credential: %w", s.slot, err)
	}
	if tok != "" {
		if c, err := ParseClaims(tok); err == nil && c.Expired(s.now()) {
			if err := s.repo.Delete(ctx, s.slot); err != nil {
				return fmt.Errorf("drop expired %s credential: %w", s.slot, err)
			}
			tok = ""
		}
	}

	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()
	return nil
}

// Token returns the current bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// LoggedIn reports whether a token is held.
func (s *Store) LoggedIn() bool {
	return s.Token() != ""
}

// Set stores a freshly issued token.
func (s *Store) Set(ctx context.Context, token string) error {
	if s.repo != nil {
		if err := s.repo.Save(ctx, s.slot, token); err != nil {
			return fmt.Errorf("save %s credential: %w", s.slot, err)
		}
	}
	s.swap(token)
	return nil
}

// Clear drops the token (logout).
func (s *Store) Clear(ctx context.Context) error {
	s.swap("")
	if s.repo != nil {
		if err := s.repo.Delete(ctx, s.slot); err != nil {
			return fmt.Errorf("delete %s credential: %w", s.slot, err)
		}
	}
	return nil
}

// Invalidate clears the token after the server rejected it. The in-memory
// token is always dropped; a failure to delete the persisted copy is only
// reported on stderr.
func (s *Store) Invalidate() {
	if err := s.Clear(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to drop rejected credential: %v\n", err)
	}
}

// Claims decodes the held token.
func (s *Store) Claims() (*Claims, error) {
	tok := s.Token()
	if tok == "" {
		return nil, ErrNoToken
	}
	return ParseClaims(tok)
}

// OnChange registers fn to run after every token change.
func (s *Store) OnChange(fn func(token string)) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

func (s *Store) swap(token string) {
	s.mu.Lock()
	changed := s.token != token
	s.token = token
	hooks := append([]func(string){}, s.onChange...)
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range hooks {
		fn(token)
	}
}
