package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/aisle-dev/aisle/internal/store"
)

const sessionCookie = "aisle_session"

// sessionManager maps session cookies to stored chat sessions. Known ids
// sit in a TTL cache so the common path skips the database; the store
// remains the source of truth across restarts.
type sessionManager struct {
	store *store.Store
	cache *gocache.Cache
	ttl   time.Duration
}

func newSessionManager(st *store.Store, ttl time.Duration) *sessionManager {
	return &sessionManager{
		store: st,
		cache: gocache.New(ttl, ttl/2),
		ttl:   ttl,
	}
}

// ensure returns the session id for this request, creating a new session
// (and setting the cookie) when none exists.
func (sm *sessionManager) ensure(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		id := c.Value
		if _, hit := sm.cache.Get(id); hit {
			return id, nil
		}
		if sess, err := sm.store.GetSession(r.Context(), id); err == nil && sess != nil {
			sm.cache.SetDefault(id, struct{}{})
			return id, nil
		}
		// stale cookie, fall through and mint a fresh session
	}

	weddingID, err := sm.store.DefaultWedding(r.Context())
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	if err := sm.store.CreateSession(r.Context(), id, weddingID); err != nil {
		return "", err
	}
	sm.cache.SetDefault(id, struct{}{})

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(sm.ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}
