package config

import (
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/yndnr/fxgallery/internal/telemetry/logger"
	"github.com/yndnr/fxgallery/pkg/crypto/aead"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyHTTP(&cfg.Server.HTTP); err != nil {
		return err
	}
	if err := verifyCodec(&cfg.Codec); err != nil {
		return err
	}
	if err := verifyAccess(&cfg.Access); err != nil {
		return err
	}
	if cfg.Payments.Tolerance < 0 {
		return errors.New("payments.tolerance must not be negative")
	}
	return verifyLog(&cfg.Log)
}

func verifyHTTP(cfg *HTTPConfig) error {
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("server.http.addr %q: %w", cfg.Addr, err)
	}

	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return errors.New("server.http.tls_cert_file and tls_key_file must be set together")
	}
	for _, f := range []string{cfg.TLSCertFile, cfg.TLSKeyFile} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("tls file: %w", err)
		}
	}

	if _, err := cfg.TrustedProxyPrefixes(); err != nil {
		return fmt.Errorf("server.http.trusted_proxies: %w", err)
	}

	if cfg.RateLimit < 0 {
		return errors.New("server.http.rate_limit must not be negative")
	}
	if cfg.RateBurst < 0 {
		return errors.New("server.http.rate_burst must not be negative")
	}
	return nil
}

func verifyCodec(cfg *CodecSection) error {
	if _, err := aead.ParseCipherType(cfg.Cipher); err != nil {
		return fmt.Errorf("codec.cipher: %w", err)
	}
	if cfg.MaxDecodedLength < 0 {
		return errors.New("codec.max_decoded_length must not be negative")
	}
	return nil
}

func verifyAccess(cfg *AccessSection) error {
	if cfg.GCInterval < 0 {
		return errors.New("access.gc_interval must not be negative")
	}
	if cfg.InMemory {
		return nil
	}
	if cfg.DataDir == "" {
		return errors.New("access.data_dir is required unless access.in_memory is set")
	}
	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return errors.New("cannot create data directory: " + err.Error())
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	if !logger.ValidFormat(cfg.Format) {
		return fmt.Errorf("log.format %q is not one of json, text", cfg.Format)
	}
	return nil
}
