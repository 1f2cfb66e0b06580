package auth

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fieldops/attendance-service/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// assertConsistent checks the record/index bidirectional invariant.
func assertConsistent(t *testing.T, r *SessionRegistry) {
	t.Helper()
	r.mu.RLock()
	defer r.mu.RUnlock()

	indexed := 0
	for key, bucket := range r.index {
		require.NotEmpty(t, bucket, "empty bucket left for %+v", key)
		for token := range bucket {
			sess, ok := r.sessions[token]
			require.True(t, ok, "index references missing token %q", token)
			require.Equal(t, key, sessionKey{role: sess.Role, subjectID: sess.SubjectID})
			indexed++
		}
	}
	for token, sess := range r.sessions {
		bucket, ok := r.index[sessionKey{role: sess.Role, subjectID: sess.SubjectID}]
		require.True(t, ok, "record %q has no bucket", token)
		_, ok = bucket[token]
		require.True(t, ok, "record %q missing from its bucket", token)
	}
	require.Equal(t, len(r.sessions), indexed)
}

func TestSessionRegistry_PutGet(t *testing.T) {
	clock := newFakeClock()
	r := NewSessionRegistry(WithClock(clock.Now))

	r.Put("t1", 10, domain.RoleEmployee, time.Hour)

	sess, ok := r.Get("t1")
	require.True(t, ok)
	assert.Equal(t, int64(10), sess.SubjectID)
	assert.Equal(t, domain.RoleEmployee, sess.Role)
	assert.Equal(t, clock.Now().Add(time.Hour), sess.ExpiresAt)

	_, ok = r.Get("unknown")
	assert.False(t, ok)
	assertConsistent(t, r)
}

func TestSessionRegistry_ExpiryIsObservedOnce(t *testing.T) {
	clock := newFakeClock()
	r := NewSessionRegistry(WithClock(clock.Now))
	r.Put("t1", 10, domain.RoleEmployee, time.Minute)

	clock.Advance(time.Minute)
	_, ok := r.Get("t1")
	assert.True(t, ok, "a session is still valid at its exact expiry instant")

	clock.Advance(time.Second)
	_, ok = r.Get("t1")
	assert.False(t, ok)
	assert.Zero(t, r.Len())
	assertConsistent(t, r)

	_, ok = r.Get("t1")
	assert.False(t, ok)
	assert.Zero(t, r.Len())
}

func TestSessionRegistry_DeleteIsIdempotent(t *testing.T) {
	r := NewSessionRegistry()
	r.Put("t1", 10, domain.RoleEmployee, time.Hour)

	r.Delete("t1")
	r.Delete("t1")
	r.Delete("never-issued")

	_, ok := r.Get("t1")
	assert.False(t, ok)
	assert.Empty(t, r.index)
	assertConsistent(t, r)
}

func TestSessionRegistry_MultipleDevices(t *testing.T) {
	r := NewSessionRegistry()
	r.Put("phone", 10, domain.RoleEmployee, time.Hour)
	r.Put("tablet", 10, domain.RoleEmployee, time.Hour)

	r.Delete("phone")
	_, ok := r.Get("phone")
	assert.False(t, ok)
	_, ok = r.Get("tablet")
	assert.True(t, ok, "revoking one device leaves the other active")

	assert.Equal(t, 1, r.ClearFor(10, domain.RoleEmployee))
	_, ok = r.Get("tablet")
	assert.False(t, ok)
	assertConsistent(t, r)
}

func TestSessionRegistry_ClearForIsScopedToRoleAndSubject(t *testing.T) {
	r := NewSessionRegistry()
	r.Put("e10a", 10, domain.RoleEmployee, time.Hour)
	r.Put("e10b", 10, domain.RoleEmployee, time.Hour)
	r.Put("a10", 10, domain.RoleAdmin, time.Hour)
	r.Put("e11", 11, domain.RoleEmployee, time.Hour)

	assert.Equal(t, 2, r.ClearFor(10, domain.RoleEmployee))
	assert.Equal(t, 0, r.ClearFor(10, domain.RoleEmployee))

	for _, token := range []string{"e10a", "e10b"} {
		_, ok := r.Get(token)
		assert.False(t, ok, token)
	}
	for _, token := range []string{"a10", "e11"} {
		_, ok := r.Get(token)
		assert.True(t, ok, token)
	}
	assertConsistent(t, r)
}

func TestSessionRegistry_PutReplacesExistingToken(t *testing.T) {
	r := NewSessionRegistry()
	r.Put("t1", 10, domain.RoleEmployee, time.Hour)
	r.Put("t1", 20, domain.RoleAdmin, time.Hour)

	sess, ok := r.Get("t1")
	require.True(t, ok)
	assert.Equal(t, int64(20), sess.SubjectID)
	assert.Equal(t, 0, r.ClearFor(10, domain.RoleEmployee))
	assert.Equal(t, 1, r.Len())
	assertConsistent(t, r)
}

func TestSessionRegistry_CountActive(t *testing.T) {
	clock := newFakeClock()
	r := NewSessionRegistry(WithClock(clock.Now))
	r.Put("a", 1, domain.RoleEmployee, time.Hour)
	r.Put("b", 1, domain.RoleEmployee, time.Hour)
	r.Put("c", 2, domain.RoleEmployee, time.Minute)
	r.Put("d", 3, domain.RoleAdmin, time.Hour)

	assert.Equal(t, 2, r.CountActive(domain.RoleEmployee))
	assert.Equal(t, 1, r.CountActive(domain.RoleAdmin))

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, r.CountActive(domain.RoleEmployee), "expired sessions are not online")
	assert.Equal(t, 4, r.Len(), "counting does not mutate")
}

func TestSessionRegistry_Sweep(t *testing.T) {
	clock := newFakeClock()
	r := NewSessionRegistry(WithClock(clock.Now))
	r.Put("short", 1, domain.RoleEmployee, time.Minute)
	r.Put("long", 1, domain.RoleEmployee, time.Hour)
	r.Put("admin", 2, domain.RoleAdmin, time.Minute)

	clock.Advance(5 * time.Minute)
	assert.Equal(t, 2, r.Sweep())
	assert.Equal(t, 1, r.Len())
	assertConsistent(t, r)
}

func TestSessionRegistry_RunJanitor(t *testing.T) {
	clock := newFakeClock()
	r := NewSessionRegistry(WithClock(clock.Now))
	r.Put("t1", 1, domain.RoleEmployee, time.Minute)
	clock.Advance(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.RunJanitor(ctx, 5*time.Millisecond, zap.NewNop())
		close(done)
	}()

	require.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestSessionRegistry_RandomOperationsKeepIndexConsistent(t *testing.T) {
	clock := newFakeClock()
	r := NewSessionRegistry(WithClock(clock.Now))
	rng := rand.New(rand.NewSource(20260301))
	roles := []domain.Role{domain.RoleEmployee, domain.RoleAdmin}

	issued := []string{}
	for i := 0; i < 5000; i++ {
		switch op := rng.Intn(6); op {
		case 0, 1:
			token := fmt.Sprintf("tok-%d", i)
			if len(issued) > 0 && rng.Intn(10) == 0 {
				token = issued[rng.Intn(len(issued))]
			}
			r.Put(token, int64(rng.Intn(8)), roles[rng.Intn(2)], time.Duration(1+rng.Intn(120))*time.Second)
			issued = append(issued, token)
		case 2:
			if len(issued) > 0 {
				r.Delete(issued[rng.Intn(len(issued))])
			}
		case 3:
			r.ClearFor(int64(rng.Intn(8)), roles[rng.Intn(2)])
		case 4:
			if len(issued) > 0 {
				r.Get(issued[rng.Intn(len(issued))])
			}
		case 5:
			clock.Advance(time.Duration(rng.Intn(10)) * time.Second)
		}
		assertConsistent(t, r)
	}
}

func TestSessionRegistry_ClearForWinsOverConcurrentReaders(t *testing.T) {
	r := NewSessionRegistry()
	tokens := make([]string, 16)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("device-%d", i)
		r.Put(tokens[i], 99, domain.RoleEmployee, time.Hour)
	}

	var cleared atomic.Bool
	var stale atomic.Int64
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			for n := 0; ; n++ {
				select {
				case <-stop:
					return
				default:
				}
				wasCleared := cleared.Load()
				if _, ok := r.Get(tokens[(seed+n)%len(tokens)]); ok && wasCleared {
					stale.Add(1)
				}
			}
		}(i)
	}

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for n := 0; n < 200; n++ {
				token := fmt.Sprintf("other-%d-%d", i, n)
				r.Put(token, int64(i), domain.RoleEmployee, time.Hour)
				r.Delete(token)
			}
		}(i)
	}

	time.Sleep(10 * time.Millisecond)
	r.ClearFor(99, domain.RoleEmployee)
	cleared.Store(true)
	time.Sleep(10 * time.Millisecond)
	close(stop)
	wg.Wait()

	assert.Zero(t, stale.Load(), "a cleared credential was observed after ClearFor returned")
	for _, token := range tokens {
		_, ok := r.Get(token)
		assert.False(t, ok)
	}
	assertConsistent(t, r)
}
