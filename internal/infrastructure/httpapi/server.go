package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/config"
	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/logging"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
)

// Serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests within cfg.ShutdownTimeout.
func Serve(ctx context.Context, cfg config.HTTPConfig, handler http.Handler) error {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "httpapi.server"))
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		BaseContext: func(_ net.Listener) context.Context {
			return logging.WithLogger(context.Background(), logging.Logger(ctx))
		},
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info(logCtx, "http server listening", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return errs.Wrap(err, "listen http")
		}
		return nil
	case <-ctx.Done():
	}

	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	logging.Info(logCtx, "http server shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errs.Wrap(err, "shutdown http server")
	}
	return nil
}
