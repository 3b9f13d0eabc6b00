package httpserver

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"souvenir-shop/internal/notify"
	"souvenir-shop/internal/repository/snapshot"
	"souvenir-shop/internal/service/shop"
)

const (
	viewGrid = "grid"
	viewList = "list"

	defaultIdleTTL = 30 * time.Minute
)

// session is one visitor's state container with its renderer and notification channel.
// mu serializes the visitor's requests.
type session struct {
	mu     sync.Mutex
	shop   *shop.Shop
	frame  *frame
	toasts *notify.Channel
	view   string
	opened bool

	lastSeen time.Time
}

// open loads the persisted state on first use. Callers hold mu.
func (s *session) open(ctx context.Context) {
	if s.opened {
		return
	}
	s.shop.Open(ctx)
	s.opened = true
}

func (s *session) close() {
	s.shop.Close()
	s.toasts.Dismiss()
}

// registry keeps live sessions by visitor id and evicts those idle past idleTTL. An
// evicted visitor is reloaded from the snapshot store on the next request.
type registry struct {
	mu        sync.Mutex
	sessions  map[string]*session
	deps      Deps
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
	logger    *zap.Logger
}

func newRegistry(deps Deps, logger *zap.Logger) *registry {
	if deps.Store == nil {
		deps.Store = snapshot.NewMemory()
	}
	idle := deps.Options.IdleTTL
	if idle <= 0 {
		idle = defaultIdleTTL
	}
	return &registry{
		sessions:  make(map[string]*session),
		deps:      deps,
		idleTTL:   idle,
		lastSweep: time.Now(),
		now:       time.Now,
		logger:    logger,
	}
}

// acquire returns the session for id, creating it when absent.
func (r *registry) acquire(id string) *session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.lastSweep) >= r.idleTTL/2 {
		r.sweepLocked(now)
	}

	s, ok := r.sessions[id]
	if !ok {
		s = r.newSession(id)
		r.sessions[id] = s
	}
	s.lastSeen = now
	return s
}

func (r *registry) newSession(id string) *session {
	fr := &frame{}
	toasts := notify.NewChannel(r.deps.Scheduler, r.deps.Options.ToastTTL)
	sh := shop.New(shop.Options{
		Catalog:     r.deps.Catalog,
		Store:       r.deps.Store,
		Namespace:   id,
		Renderer:    fr,
		Notifier:    toasts,
		Scheduler:   r.deps.Scheduler,
		RenderDelay: r.deps.Options.RenderDelay,
		Currency:    r.deps.Options.Currency,
		Logger:      r.logger,
	})
	return &session{shop: sh, frame: fr, toasts: toasts, view: viewGrid}
}

// sweepLocked evicts idle sessions. Sessions busy with a request are skipped.
func (r *registry) sweepLocked(now time.Time) {
	r.lastSweep = now
	evicted := 0
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) < r.idleTTL {
			continue
		}
		if !s.mu.TryLock() {
			continue
		}
		s.close()
		s.mu.Unlock()
		delete(r.sessions, id)
		evicted++
	}
	if evicted > 0 {
		r.logger.Debug("httpserver: evicted idle sessions", zap.Int("count", evicted), zap.Int("live", len(r.sessions)))
	}
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *registry) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		s.mu.Lock()
		s.close()
		s.mu.Unlock()
		delete(r.sessions, id)
	}
}
