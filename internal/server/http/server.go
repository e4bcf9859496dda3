package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/voxgate/voxgate/internal/logging"
)

const shutdownTimeout = 30 * time.Second

type Server struct {
	srv    *http.Server
	logger logging.Logger
}

// NewServer wraps handler in an http.Server. writeTimeout must cover the
// slowest handler, synthesis included.
func NewServer(addr string, handler http.Handler, writeTimeout time.Duration, logger logging.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger.With("module", "http_server"),
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "HTTP server listening", "addr", listen.Addr().String())
		if err := s.srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
