package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/medsync/internal/config"
	"github.com/MKhiriev/medsync/internal/handler"
	"github.com/MKhiriev/medsync/internal/logger"
)

// ShutdownTimeout bounds how long in-flight requests may take once shutdown
// starts.
const ShutdownTimeout = 15 * time.Second

type server struct {
	httpServer *httpServer
	listen     func(network, address string) (net.Listener, error)
	logger     *logger.Logger
}

func NewServer(handlers *handler.Handlers, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")

	if handlers == nil || handlers.HTTP == nil || cfg.HTTPAddress == "" {
		return nil, errNoServersAreCreated
	}

	return &server{
		httpServer: newHTTPServer(handlers.HTTP.Init(), cfg, logger),
		listen:     net.Listen,
		logger:     logger,
	}, nil
}

// RunServer implements [Server].
func (s *server) RunServer(ctx context.Context) error {
	ln, err := s.listen("tcp", s.httpServer.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.server.Addr, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info().Str("address", ln.Addr().String()).Msg("Launching HTTP server")
		return s.httpServer.serve(ln)
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.Info().Msg("server Shutdown gracefully")
	return nil
}

// Shutdown implements [Server].
func (s *server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("HTTP server Shutdown")
	return s.httpServer.shutdown(ctx)
}
