package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/todos/internal/httpapi"
	"github.com/mesh-intelligence/todos/internal/store"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: "Serve the todo REST API under /api/todos and the frontend bundle from\n" +
			"the static directory. Stops gracefully on SIGINT or SIGTERM.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd.Context())
		},
	}
	f := cmd.Flags()
	f.String("addr", "", "listen address (default: 127.0.0.1:3030)")
	f.String("static-dir", "", "frontend bundle directory (default: static)")
	f.String("driver", "", "storage driver: sqlite or postgres (default: sqlite)")
	f.String("dsn", "", "storage DSN, required for postgres")
	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	s := a.settings
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, s.Storage)
	if err != nil {
		return sysErr(fmt.Errorf("open storage: %w", err))
	}
	defer st.Close()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Handler: httpapi.NewRouter(st, httpapi.Options{
			StaticDir: s.Server.StaticDir,
			Logger:    a.logger,
		}),
		ReadTimeout:  s.Server.ReadTimeout,
		WriteTimeout: s.Server.WriteTimeout,
		IdleTimeout:  s.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(a.logger.Handler(), slog.LevelWarn),
	}

	ln, err := net.Listen("tcp", s.Server.Addr)
	if err != nil {
		return sysErr(fmt.Errorf("listen on %s: %w", s.Server.Addr, err))
	}
	a.logger.Info("listening",
		"addr", ln.Addr().String(),
		"driver", s.Storage.Driver,
		"static_dir", s.Server.StaticDir,
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return sysErr(fmt.Errorf("serve: %w", err))
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down", "timeout", s.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return sysErr(fmt.Errorf("shutdown: %w", err))
	}
	a.logger.Info("stopped")
	return nil
}
