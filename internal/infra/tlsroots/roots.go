package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// ErrNoCertsFound is returned for a CA file without CERTIFICATE blocks.
var ErrNoCertsFound = errors.New("tlsroots: no certificates found in PEM file")

// LoadClientTLS returns a client TLS config that trusts the system roots
// plus the certificates in caFile, for servers behind a private CA. An
// empty caFile yields nil, which selects the Go defaults.
func LoadClientTLS(caFile string) (*tls.Config, error) {
	if caFile == "" {
		return nil, nil
	}

	data, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("tlsroots: read CA file: %w", err)
	}

	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	n, err := appendPEM(pool, data)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, caFile)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w (%s)", ErrNoCertsFound, caFile)
	}

	return &tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	}, nil
}

// appendPEM adds every CERTIFICATE block of data to pool and returns how
// many it added. Other block types, such as a private key kept in the same
// file, are skipped.
func appendPEM(pool *x509.CertPool, data []byte) (int, error) {
	n := 0
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return n, nil
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return n, fmt.Errorf("tlsroots: parse certificate: %w", err)
		}
		pool.AddCert(cert)
		n++
	}
}
