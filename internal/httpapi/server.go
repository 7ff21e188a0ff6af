package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/streamcast/streamcast/internal/config"
	"github.com/streamcast/streamcast/pkg/logger"
)

// Server runs the REST API as a managed service.
type Server struct {
	srv *http.Server
	log *logger.Logger
}

// NewServer builds the HTTP server around the given handler.
func NewServer(cfg config.ServerConfig, h http.Handler, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewDefault("http-server")
	}
	return &Server{
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      h,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		log: log,
	}
}

// Name implements system.Service.
func (s *Server) Name() string { return "http-server" }

// Start begins serving in a background goroutine. Listen failures after
// startup surface through the process log.
func (s *Server) Start(ctx context.Context) error {
	s.log.Infof("listening on %s", s.srv.Addr)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("http server exited")
		}
	}()
	return nil
}

// Stop drains connections until the context expires.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
	}
	return s.srv.Shutdown(shutdownCtx)
}
