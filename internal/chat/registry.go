package chat

import (
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"healthscreen/internal/patient"
	"healthscreen/pkg/logger"
)

// Registry holds the live sessions. Sessions expire after the configured TTL;
// eviction, like explicit deletion, cancels the session's pending effects so
// nothing fires against a discarded session.
type Registry struct {
	cache *gocache.Cache
}

func NewRegistry(ttl time.Duration, sched *Scheduler, log *logger.Logger) *Registry {
	c := gocache.New(ttl, ttl/2)
	r := &Registry{cache: c}
	c.OnEvicted(func(key string, _ interface{}) {
		id, err := uuid.Parse(key)
		if err != nil {
			return
		}
		sched.CancelSession(id)
		log.Debug("session evicted", "session_id", key)
	})
	return r
}

// Create starts a new session seeded with the given profile.
func (r *Registry) Create(profile *patient.Profile) *Session {
	sess := newSession(profile)
	r.cache.Set(sess.ID.String(), sess, gocache.DefaultExpiration)
	return sess
}

// Get returns the session, refreshing its TTL.
func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	v, ok := r.cache.Get(id.String())
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess := v.(*Session)
	r.cache.Set(id.String(), sess, gocache.DefaultExpiration)
	return sess, nil
}

// Delete tears the session down. The eviction hook cancels pending effects.
func (r *Registry) Delete(id uuid.UUID) error {
	if _, ok := r.cache.Get(id.String()); !ok {
		return ErrSessionNotFound
	}
	r.cache.Delete(id.String())
	return nil
}
