package storefront

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"NotebookStore/internal/catalog"
	"NotebookStore/internal/facet"
	"NotebookStore/internal/session"
)

const CookieName = "catalog_session"

type ctxKey string

const sessionKey ctxKey = "session"

// Session is one browser tab's view of the catalog: its own cache and selection state.
type Session struct {
	ID      string
	Cache   *session.Cache
	Catalog *catalog.Service
	Browser *facet.Browser

	lastSeen time.Time
}

type RegistryDeps struct {
	Storage  session.Storage
	API      catalog.API
	CacheTTL time.Duration
	Log      *zap.Logger
	Metrics  catalog.Recorder
}

// Registry owns the live sessions. Sessions idle for longer than the cache TTL are
// forgotten and their stored cache record is deleted.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	deps     RegistryDeps
	fallback *catalog.Dataset
	now      func() time.Time
	pruned   time.Time
}

func NewRegistry(deps RegistryDeps) *Registry {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = session.DefaultTTL
	}
	return &Registry{
		sessions: map[string]*Session{},
		deps:     deps,
		fallback: catalog.FallbackDataset(),
		now:      time.Now,
	}
}

func (r *Registry) Get(ctx context.Context, id string) *Session {
	now := r.now()

	r.mu.Lock()
	if s, ok := r.sessions[id]; ok {
		s.lastSeen = now
		r.mu.Unlock()
		return s
	}
	r.mu.Unlock()

	fresh := r.open(ctx, id)
	fresh.lastSeen = now

	r.mu.Lock()
	if s, ok := r.sessions[id]; ok {
		s.lastSeen = now
		r.mu.Unlock()
		return s
	}
	r.sessions[id] = fresh
	idle := r.pruneLocked(now)
	r.mu.Unlock()

	for _, s := range idle {
		if err := s.Cache.Clear(ctx); err != nil {
			r.deps.Log.Warn("drop idle session cache failed", zap.String("session_id", s.ID), zap.Error(err))
		}
	}
	return fresh
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) open(ctx context.Context, id string) *Session {
	cache := session.New(ctx, r.deps.Storage, session.DefaultKey+":"+id,
		session.WithTTL(r.deps.CacheTTL),
		session.WithClock(r.now),
		session.WithLogger(r.deps.Log),
	)

	svc := &catalog.Service{
		API:      r.deps.API,
		Cache:    cache,
		Fallback: r.fallback,
		Log:      r.deps.Log.With(zap.String("session_id", id)),
		Metrics:  r.deps.Metrics,
	}

	return &Session{
		ID:      id,
		Cache:   cache,
		Catalog: svc,
		Browser: facet.NewBrowser(),
	}
}

func (r *Registry) pruneLocked(now time.Time) []*Session {
	if now.Sub(r.pruned) < r.deps.CacheTTL {
		return nil
	}
	r.pruned = now

	var idle []*Session
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) >= r.deps.CacheTTL {
			delete(r.sessions, id)
			idle = append(idle, s)
		}
	}
	return idle
}

// Middleware attaches the caller's session, issuing a cookie on first contact.
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := sessionID(req)
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		s := r.Get(req.Context(), id)
		ctx := context.WithValue(req.Context(), sessionKey, s)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok
}

func sessionID(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}

func sessionField(r *http.Request) (zap.Field, bool) {
	if id := sessionID(r); id != "" {
		return zap.String("session_id", id), true
	}
	return zap.Skip(), false
}
