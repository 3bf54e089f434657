// Package session keeps the gateway's signed-in users.
//
// A Store is created with New, observed with Subscribe and torn down with
// Close. Subscribers hear about every sign-in, refresh, sign-out and
// expiry; they are called outside the store lock, in registration order.
package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrClosed   = errors.New("session store is closed")
	ErrNotFound = errors.New("session not found")
)

type Session struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`

	// AccessExpiresAt is when AccessToken stops being accepted; ExpiresAt
	// ends the session itself.
	AccessExpiresAt time.Time `json:"-"`
	ExpiresAt       time.Time `json:"expires_at"`
	CreatedAt       time.Time `json:"created_at"`
}

// Tokens is what a refresh replaces.
type Tokens struct {
	Access          string
	Refresh         string
	AccessExpiresAt time.Time
	ExpiresAt       time.Time
}

type EventKind string

const (
	SignedIn  EventKind = "signed_in"
	Refreshed EventKind = "refreshed"
	SignedOut EventKind = "signed_out"
	Expired   EventKind = "expired"
)

type Event struct {
	Kind    EventKind
	Session Session
}

type Store struct {
	mu       sync.Mutex
	sessions map[string]Session
	subs     map[int]func(Event)
	nextSub  int
	closed   bool

	now func() time.Time
}

func New() *Store {
	return &Store{
		sessions: map[string]Session{},
		subs:     map[int]func(Event){},
		now:      time.Now,
	}
}

// Subscribe registers fn and returns the function that removes it.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func(), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}, nil
}

// Put stores a new session, assigning an id when it has none.
func (s *Store) Put(sess Session) (Session, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Session{}, ErrClosed
	}
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = s.now()
	}
	s.sessions[sess.ID] = sess
	fns := s.listeners()
	s.mu.Unlock()

	notify(fns, Event{Kind: SignedIn, Session: sess})

	return sess, nil
}

// Get returns a live session. An expired one is dropped and reported.
func (s *Store) Get(id string) (Session, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Session{}, ErrClosed
	}
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return Session{}, ErrNotFound
	}
	if sess.ExpiresAt.IsZero() || s.now().Before(sess.ExpiresAt) {
		s.mu.Unlock()
		return sess, nil
	}
	delete(s.sessions, id)
	fns := s.listeners()
	s.mu.Unlock()

	notify(fns, Event{Kind: Expired, Session: sess})

	return Session{}, ErrNotFound
}

// Refresh swaps the tokens of an existing session.
func (s *Store) Refresh(id string, t Tokens) (Session, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Session{}, ErrClosed
	}
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return Session{}, ErrNotFound
	}
	sess.AccessToken = t.Access
	sess.RefreshToken = t.Refresh
	sess.AccessExpiresAt = t.AccessExpiresAt
	sess.ExpiresAt = t.ExpiresAt
	s.sessions[id] = sess
	fns := s.listeners()
	s.mu.Unlock()

	notify(fns, Event{Kind: Refreshed, Session: sess})

	return sess, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.sessions, id)
	fns := s.listeners()
	s.mu.Unlock()

	notify(fns, Event{Kind: SignedOut, Session: sess})

	return nil
}

// Sweep drops every expired session and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0
	}
	now := s.now()
	var gone []Session
	for id, sess := range s.sessions {
		if !sess.ExpiresAt.IsZero() && !now.Before(sess.ExpiresAt) {
			gone = append(gone, sess)
			delete(s.sessions, id)
		}
	}
	fns := s.listeners()
	s.mu.Unlock()

	for _, sess := range gone {
		notify(fns, Event{Kind: Expired, Session: sess})
	}

	return len(gone)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// Close drops all sessions and subscribers. Later calls fail with
// ErrClosed.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.sessions = map[string]Session{}
	s.subs = map[int]func(Event){}
}

// listeners snapshots subscribers in registration order. Caller holds mu.
func (s *Store) listeners() []func(Event) {
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	fns := make([]func(Event), len(ids))
	for i, id := range ids {
		fns[i] = s.subs[id]
	}

	return fns
}

func notify(fns []func(Event), e Event) {
	for _, fn := range fns {
		fn(e)
	}
}
