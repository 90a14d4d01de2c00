package tlsroots

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/yndnr/fxgallery/internal/infra/confloader"
)

// CertReloader holds the server certificate and reloads it on demand.
// A failed reload keeps serving the previous certificate.
type CertReloader struct {
	certFile string
	keyFile  string
	cert     atomic.Pointer[tls.Certificate]
	reloads  atomic.Int64
	logger   *slog.Logger
}

// NewCertReloader loads the key pair and returns a reloader serving it.
func NewCertReloader(certFile, keyFile string, logger *slog.Logger) (*CertReloader, error) {
	if logger == nil {
		logger = slog.Default()
	}

	r := &CertReloader{
		certFile: certFile,
		keyFile:  keyFile,
		logger:   logger,
	}
	if err := r.Reload(); err != nil {
		return nil, fmt.Errorf("tlsroots: initial load: %w", err)
	}
	return r, nil
}

// Reload reads the key pair from disk again.
func (r *CertReloader) Reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("load key pair: %w", err)
	}

	r.cert.Store(&cert)
	r.reloads.Add(1)
	r.logger.Info("certificate loaded", "cert_file", r.certFile)
	return nil
}

// Reloads returns how many times a certificate has been loaded.
func (r *CertReloader) Reloads() int64 {
	return r.reloads.Load()
}

// Watch registers the certificate and key with w and reloads when either
// changes.
func (r *CertReloader) Watch(w *confloader.Watcher) error {
	certPath, err := filepath.Abs(r.certFile)
	if err != nil {
		return err
	}
	keyPath, err := filepath.Abs(r.keyFile)
	if err != nil {
		return err
	}

	if err := w.Watch(certPath); err != nil {
		return fmt.Errorf("tlsroots: watch cert: %w", err)
	}
	if err := w.Watch(keyPath); err != nil {
		return fmt.Errorf("tlsroots: watch key: %w", err)
	}

	w.OnChange(func(path string) {
		if path != certPath && path != keyPath {
			return
		}
		if err := r.Reload(); err != nil {
			r.logger.Error("certificate reload failed",
				"error", err,
				"cert_file", r.certFile,
				"key_file", r.keyFile,
			)
		}
	})
	return nil
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *CertReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return r.cert.Load(), nil
}

// ServerTLSConfig returns a server TLS config backed by the reloader.
func (r *CertReloader) ServerTLSConfig() *tls.Config {
	return &tls.Config{
		GetCertificate: r.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}
}
