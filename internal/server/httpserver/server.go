package httpserver

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/yndnr/fxgallery/internal/infra/tlsroots"
)

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	certs      *tlsroots.CertReloader
}

// Option configures a Server.
type Option func(*Server)

// WithTLS serves HTTPS with certificates from certs. Reloaded
// certificates apply to new connections.
func WithTLS(certs *tlsroots.CertReloader) Option {
	return func(s *Server) {
		s.certs = certs
	}
}

// WithTimeouts sets the read and write timeouts. Zero keeps the default.
func WithTimeouts(read, write time.Duration) Option {
	return func(s *Server) {
		if read > 0 {
			s.httpServer.ReadTimeout = read
			s.httpServer.ReadHeaderTimeout = read
		}
		if write > 0 {
			s.httpServer.WriteTimeout = write
		}
	}
}

// WithErrorLog routes net/http internal errors to l.
func WithErrorLog(l *log.Logger) Option {
	return func(s *Server) {
		s.httpServer.ErrorLog = l
	}
}

// New creates a new HTTP server.
func New(addr string, handler http.Handler, opts ...Option) *Server {
	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		handler: handler,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.certs != nil {
		s.httpServer.TLSConfig = s.certs.ServerTLSConfig()
	}
	return s
}

// TLS reports whether the server serves HTTPS.
func (s *Server) TLS() bool {
	return s.certs != nil
}

// ListenAndServe listens on the configured address and serves HTTP, or
// HTTPS when TLS is configured. It returns nil after Shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. It returns nil after Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	var err error
	if s.certs != nil {
		err = s.httpServer.ServeTLS(ln, "", "")
	} else {
		err = s.httpServer.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
