package httpserver

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"souvenir-shop/internal/markup"
	"souvenir-shop/internal/repository/snapshot"
	"souvenir-shop/internal/schedule"
	"souvenir-shop/internal/service/catalog"
	"souvenir-shop/internal/service/visitor"
)

// ReadyCheck is one dependency probed by /readyz.
type ReadyCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// Options tunes the storefront behaviour.
type Options struct {
	RenderDelay time.Duration
	ToastTTL    time.Duration
	IdleTTL     time.Duration
	CORSOrigins []string
	Currency    string
}

// Deps are the collaborators the server needs.
type Deps struct {
	Catalog   *catalog.Catalog
	Store     snapshot.Repository
	Visitors  *visitor.Service
	Markup    *markup.Renderer
	Scheduler schedule.Scheduler
	Checks    []ReadyCheck
	Options   Options
}

// Server wraps the HTTP server setup.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	sessions   *registry
}

// New builds a Server with the storefront routes.
func New(addr string, logger *zap.Logger, deps Deps) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	router, sessions, err := buildRouter(logger, deps)
	if err != nil {
		return nil, err
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		httpServer: httpSrv,
		logger:     logger,
		sessions:   sessions,
	}, nil
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server and releases visitor sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.sessions.closeAll()
	return err
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func readyHandler(checks []ReadyCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		for _, check := range checks {
			if err := check.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": check.Name + " not reachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

func templateFuncs(currency string, md *markup.Renderer) template.FuncMap {
	return template.FuncMap{
		"money":    moneyFunc(currency),
		"markdown": md.HTML,
		"repeat": func(n int) []struct{} {
			if n < 0 {
				n = 0
			}
			return make([]struct{}, n)
		},
	}
}
