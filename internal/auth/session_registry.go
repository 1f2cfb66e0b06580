package auth

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fieldops/attendance-service/internal/domain"
)

// Session is the server-side record backing an issued credential.
type Session struct {
	SubjectID int64
	Role      domain.Role
	ExpiresAt time.Time
}

type sessionKey struct {
	role      domain.Role
	subjectID int64
}

// SessionRegistry maps live credentials to their sessions and indexes them by
// (role, subject) so every session of one identity can be revoked at once.
//
// The primary map and the index are guarded by a single lock and are always
// mutated together: a credential is in the index iff it has a record.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]Session
	index    map[sessionKey]map[string]struct{}
	now      func() time.Time
}

// RegistryOption customizes a SessionRegistry.
type RegistryOption func(*SessionRegistry)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *SessionRegistry) {
		r.now = now
	}
}

// NewSessionRegistry returns an empty registry.
func NewSessionRegistry(opts ...RegistryOption) *SessionRegistry {
	r := &SessionRegistry{
		sessions: make(map[string]Session),
		index:    make(map[sessionKey]map[string]struct{}),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Put records a session that expires ttl from now. A subject may hold any
// number of concurrent sessions. Re-putting a known token replaces it.
func (r *SessionRegistry) Put(token string, subjectID int64, role domain.Role, ttl time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[token]; exists {
		r.deleteLocked(token)
	}

	key := sessionKey{role: role, subjectID: subjectID}
	r.sessions[token] = Session{
		SubjectID: subjectID,
		Role:      role,
		ExpiresAt: r.now().Add(ttl),
	}
	bucket, ok := r.index[key]
	if !ok {
		bucket = make(map[string]struct{})
		r.index[key] = bucket
	}
	bucket[token] = struct{}{}
}

// Get returns the session for token. An expired session is removed on the
// spot and reported as absent.
func (r *SessionRegistry) Get(token string) (Session, bool) {
	r.mu.RLock()
	sess, ok := r.sessions[token]
	r.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if !r.expired(sess) {
		return sess, true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another writer may have replaced or removed the record in between.
	current, ok := r.sessions[token]
	if !ok {
		return Session{}, false
	}
	if !r.expired(current) {
		return current, true
	}
	r.deleteLocked(token)
	return Session{}, false
}

// Delete drops a single session. Unknown tokens are ignored.
func (r *SessionRegistry) Delete(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteLocked(token)
}

// ClearFor drops every session held by (subjectID, role) and returns how many
// were removed.
func (r *SessionRegistry) ClearFor(subjectID int64, role domain.Role) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sessionKey{role: role, subjectID: subjectID}
	bucket, ok := r.index[key]
	if !ok {
		return 0
	}
	for token := range bucket {
		delete(r.sessions, token)
	}
	delete(r.index, key)
	return len(bucket)
}

// CountActive counts distinct subjects of role holding at least one
// unexpired session.
func (r *SessionRegistry) CountActive(role domain.Role) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	count := 0
	for key, bucket := range r.index {
		if key.role != role {
			continue
		}
		for token := range bucket {
			if !now.After(r.sessions[token].ExpiresAt) {
				count++
				break
			}
		}
	}
	return count
}

// Len returns the number of stored sessions, expired ones included.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes every expired session and returns how many were dropped.
func (r *SessionRegistry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for token, sess := range r.sessions {
		if r.expired(sess) {
			r.deleteLocked(token)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps expired sessions every interval until ctx is done.
// Reads already expire lazily; the janitor only bounds memory held by tokens
// that are never presented again.
func (r *SessionRegistry) RunJanitor(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				logger.Debug("swept expired sessions", zap.Int("count", n))
			}
		}
	}
}

func (r *SessionRegistry) expired(sess Session) bool {
	return r.now().After(sess.ExpiresAt)
}

// deleteLocked must be called with mu held for writing.
func (r *SessionRegistry) deleteLocked(token string) {
	sess, ok := r.sessions[token]
	if !ok {
		return
	}
	key := sessionKey{role: sess.Role, subjectID: sess.SubjectID}
	if bucket, ok := r.index[key]; ok {
		delete(bucket, token)
		if len(bucket) == 0 {
			delete(r.index, key)
		}
	}
	delete(r.sessions, token)
}
