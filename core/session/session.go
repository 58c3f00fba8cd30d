package session

import (
	"sync"
	"time"
)

// Auth change event types, in the shape frontend clients subscribe to.
const (
	EventSignedIn         = "SIGNED_IN"
	EventSignedOut        = "SIGNED_OUT"
	EventTokenRefreshed   = "TOKEN_REFRESHED"
	EventPasswordRecovery = "PASSWORD_RECOVERY"
)

type (
	// Session is the server-side record of an issued token pair.
	Session struct {
		TokenID          string    `json:"token_id"`
		UserID           string    `json:"user_id"`
		Email            string    `json:"email"`
		ExpiresAt        time.Time `json:"expires_at"`
		RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	}

	// Event notifies subscribers of an auth state change. Session is nil
	// for EventSignedOut.
	Event struct {
		Type    string   `json:"type"`
		Session *Session `json:"session"`
	}

	// Store tracks live sessions keyed by token id. A token whose id is no
	// longer present has been revoked, whatever its expiry claims say.
	Store struct {
		mut      sync.RWMutex
		sessions map[string]Session
		broker   *Broker
	}
)

func NewStore(broker *Broker) *Store {
	return &Store{
		sessions: make(map[string]Session),
		broker:   broker,
	}
}

func (s *Store) SignIn(sess Session) {
	s.mut.Lock()
	s.sessions[sess.TokenID] = sess
	s.mut.Unlock()
	s.broker.Publish(Event{Type: EventSignedIn, Session: &sess})
}

// Refresh replaces the session under oldTokenID with sess. The stale id is
// removed so revocation of the old token is immediate.
func (s *Store) Refresh(oldTokenID string, sess Session) {
	s.mut.Lock()
	delete(s.sessions, oldTokenID)
	s.sessions[sess.TokenID] = sess
	s.mut.Unlock()
	s.broker.Publish(Event{Type: EventTokenRefreshed, Session: &sess})
}

func (s *Store) SignOut(tokenID string) {
	s.mut.Lock()
	_, ok := s.sessions[tokenID]
	delete(s.sessions, tokenID)
	s.mut.Unlock()
	if ok {
		s.broker.Publish(Event{Type: EventSignedOut})
	}
}

// RecoveryRequested announces a password recovery flow for an account.
// No session state changes.
func (s *Store) RecoveryRequested(userID, email string) {
	s.broker.Publish(Event{Type: EventPasswordRecovery, Session: &Session{UserID: userID, Email: email}})
}

// Get returns the live session for a token id, pruning it first when expired.
func (s *Store) Get(tokenID string) (Session, bool) {
	s.mut.RLock()
	sess, ok := s.sessions[tokenID]
	s.mut.RUnlock()
	if ok && time.Now().After(sess.RefreshExpiresAt) {
		s.mut.Lock()
		delete(s.sessions, tokenID)
		s.mut.Unlock()
		return Session{}, false
	}
	return sess, ok
}

// Active returns the number of live sessions.
func (s *Store) Active() int {
	s.mut.RLock()
	defer s.mut.RUnlock()
	return len(s.sessions)
}
