package cart

import (
	"sync"
	"time"
)

// Store owns one Cart per session key. Each cart has its own lock; carts of
// different sessions never share one.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

type session struct {
	mu      sync.Mutex
	cart    *Cart
	touched time.Time // guarded by Store.mu
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*session), now: time.Now}
}

func (s *Store) session(key string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[key]
	if !ok {
		sess = &session{cart: New()}
		s.sessions[key] = sess
	}
	sess.touched = s.now()
	return sess
}

// Update runs fn with exclusive access to the session cart, creating an
// empty cart on first use.
func (s *Store) Update(key string, fn func(c *Cart)) {
	sess := s.session(key)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	fn(sess.cart)
}

// View runs fn under the session lock. fn must not mutate the cart.
func (s *Store) View(key string, fn func(c *Cart)) {
	s.Update(key, fn)
}

// Drop discards the cart of a session.
func (s *Store) Drop(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
}

// Sessions returns the number of live session carts.
func (s *Store) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops the carts of sessions not touched for longer than maxIdle and
// returns how many were dropped. A cart that is locked by an in-flight
// Update is kept.
func (s *Store) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	dropped := 0
	for key, sess := range s.sessions {
		if !sess.touched.Before(cutoff) {
			continue
		}
		if !sess.mu.TryLock() {
			continue
		}
		delete(s.sessions, key)
		sess.mu.Unlock()
		dropped++
	}
	return dropped
}
