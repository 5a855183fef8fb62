package server

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// Server is the process's single long-running HTTP listener (the status/
// control surface, component J). The teacher's original also carried a
// grpc.Server behind the same Configuration pattern; mangavault has no
// grpc surface, so that half was dropped rather than adapted (see
// DESIGN.md).
type Server struct {
	http *http.Server
}

// Configuration is an alias for a function that will take in a pointer to a Repository and modify it
type Configuration func(r *Server) error

// New takes a variable amount of Configuration functions and returns a new Server
// Each Configuration will be called in the order they are passed in
func New(configs ...Configuration) (r *Server, err error) {
	r = &Server{}

	for _, cfg := range configs {
		if err = cfg(r); err != nil {
			return
		}
	}
	return
}

func (s *Server) Run(logger *zap.Logger) (err error) {
	if s.http != nil {
		go func() {
			if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("ERR_SERVE_HTTP", zap.Error(err))
			}
		}()
	}
	return
}

func (s *Server) Stop(ctx context.Context) (err error) {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return
}

func WithHTTPServer(handler http.Handler, port string) Configuration {
	return func(s *Server) (err error) {
		s.http = &http.Server{
			Handler: handler,
			Addr:    ":" + port,
		}
		return
	}
}
