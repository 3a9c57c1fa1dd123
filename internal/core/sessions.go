package core

import (
	"sync"
	"time"
)

// sessionStore keeps pending imports between upload and commit.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*ImportSession
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*ImportSession)}
}

func (st *sessionStore) put(sess *ImportSession) {
	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()
}

// get extends a live session's expiry and returns a copy of it.
func (st *sessionStore) get(id string, now time.Time, ttl time.Duration) (*ImportSession, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	if now.After(sess.ExpiresAt) {
		delete(st.sessions, id)
		return nil, false
	}
	sess.ExpiresAt = now.Add(ttl)
	cp := *sess
	return &cp, true
}

func (st *sessionStore) remove(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	return ok
}

// sweep drops sessions that expired before now and returns how many.
func (st *sessionStore) sweep(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, sess := range st.sessions {
		if now.After(sess.ExpiresAt) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
