package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type Server struct {
	log zerolog.Logger
	srv *http.Server
	ln  net.Listener
}

// Listen otwiera port od razu, żeby błąd "address in use" wyszedł przy starcie.
func Listen(log zerolog.Logger, addr string, h http.Handler) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		log: log,
		ln:  ln,
		srv: &http.Server{
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      60 * time.Second,
		},
	}, nil
}

func (s *Server) Addr() string { return s.ln.Addr().String() }

// Serve blokuje do Shutdown.
func (s *Server) Serve() {
	s.log.Info().Str("addr", s.Addr()).Msg("API: nasłuchuję")
	if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error().Err(err).Msg("API: serwer zakończony z błędem")
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
