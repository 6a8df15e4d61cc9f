// Package session abstracts where the auth session lives. The portal
// client only ever sees the Store port, so browser-style storage, SQLite
// and test memory are interchangeable.
package session

import (
	"context"
	"errors"
	"sync"

	"singil/internal/core"
)

// ErrNoSession is returned when no session has been stored or it was
// cleared by logout.
var ErrNoSession = errors.New("no active session")

// Store holds at most one auth session.
type Store interface {
	Get(ctx context.Context) (core.AuthSession, error)
	Set(ctx context.Context, s core.AuthSession) error
	Clear(ctx context.Context) error
}

// MemoryStore is the in-process Store used by tests and the memory
// backend.
type MemoryStore struct {
	mu   sync.Mutex
	sess core.AuthSession
	ok   bool
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Get(context.Context) (core.AuthSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ok {
		return core.AuthSession{}, ErrNoSession
	}
	return m.sess, nil
}

func (m *MemoryStore) Set(_ context.Context, s core.AuthSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = s
	m.ok = true
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = core.AuthSession{}
	m.ok = false
	return nil
}

// TokenSource adapts a Store to the rest client's token interface. An
// absent session yields an empty token so unauthenticated endpoints
// (login) still work.
type TokenSource struct {
	Store Store
}

func (t TokenSource) Token(ctx context.Context) (string, error) {
	s, err := t.Store.Get(ctx)
	if errors.Is(err, ErrNoSession) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return s.Token, nil
}
