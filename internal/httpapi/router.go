// Package httpapi exposes a TodoStore over HTTP with gin.
package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/todos/pkg/types"
)

// Store is the persistence the router needs: the todo operations plus a
// readiness probe.
type Store interface {
	types.TodoStore
	Ping(ctx context.Context) error
}

// Options configures NewRouter.
type Options struct {
	// StaticDir holds the pre-built frontend. Unmatched GET and HEAD
	// requests outside /api are served from it. Empty disables it.
	StaticDir string

	// Logger receives access and error logs. Nil discards them.
	Logger *slog.Logger
}

// NewRouter builds the gin engine serving the todo API, health probes, and
// the static frontend.
func NewRouter(store Store, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := gin.New()
	r.Use(
		RequestID(),
		AccessLog(logger),
		gin.CustomRecoveryWithWriter(io.Discard, recoverPanic(logger)),
		cors.New(corsConfig()),
	)

	h := &todoHandler{store: store, logger: logger}

	r.GET("/healthz", h.healthz)
	r.GET("/readyz", h.readyz)

	api := r.Group("/api/todos")
	api.GET("", h.list)
	api.POST("", h.create)
	api.GET("/:id", h.get)
	api.PUT("/:id", h.update)
	api.PATCH("/:id", h.update)
	api.DELETE("/:id", h.delete)

	r.NoRoute(fallback(staticHandler(opts.StaticDir, logger)))
	return r
}

// corsConfig allows any origin, method, and header used by the frontend.
func corsConfig() cors.Config {
	return cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposeHeaders:   []string{"Content-Length", "Content-Type", RequestIDHeader},
		MaxAge:          12 * time.Hour,
	}
}

func staticHandler(dir string, logger *slog.Logger) http.Handler {
	if dir == "" {
		return nil
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		logger.Warn("static dir not found, frontend disabled", "dir", dir)
		return nil
	}
	return http.FileServer(http.Dir(dir))
}

// fallback serves the frontend for unmatched reads outside /api and a JSON
// 404 for everything else.
func fallback(static http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		isAPI := path == "/api" || strings.HasPrefix(path, "/api/")
		isRead := c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead
		if static != nil && isRead && !isAPI {
			static.ServeHTTP(c.Writer, c.Request)
			return
		}
		writeError(c, http.StatusNotFound, "not found")
	}
}

func recoverPanic(logger *slog.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		logger.ErrorContext(c.Request.Context(), "panic serving request",
			"rid", RequestIDFrom(c),
			"panic", recovered,
		)
		writeError(c, http.StatusInternalServerError, msgInternal)
	}
}
