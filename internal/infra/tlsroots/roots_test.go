package tlsroots

import (
	"crypto/ecdsa"
	"crypto/tls"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeTestKeyPair writes a self-signed server certificate for 127.0.0.1
// and returns its PEM.
func writeTestKeyPair(t *testing.T, certFile, keyFile, commonName string) []byte {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject: pkix.Name{
			Organization: []string{"fxgallery test"},
			CommonName:   commonName,
		},
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
		DNSNames:              []string{"localhost"},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate() error = %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		t.Fatalf("WriteFile(cert) error = %v", err)
	}

	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("MarshalECPrivateKey() error = %v", err)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	if err := os.WriteFile(keyFile, keyPEM, 0600); err != nil {
		t.Fatalf("WriteFile(key) error = %v", err)
	}

	return certPEM
}

func TestAppendPEM(t *testing.T) {
	dir := t.TempDir()
	certPEM := writeTestKeyPair(t, filepath.Join(dir, "a.crt"), filepath.Join(dir, "a.key"), "a")
	keyPEM, err := os.ReadFile(filepath.Join(dir, "a.key"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	otherPEM := writeTestKeyPair(t, filepath.Join(dir, "b.crt"), filepath.Join(dir, "b.key"), "b")

	tests := []struct {
		name string
		data []byte
		want int
	}{
		{"one certificate", certPEM, 1},
		{"bundle", append(append([]byte{}, certPEM...), otherPEM...), 2},
		{"key is skipped", append(append([]byte{}, keyPEM...), certPEM...), 1},
		{"no pem", []byte("not pem"), 0},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := appendPEM(x509.NewCertPool(), tt.data)
			if err != nil {
				t.Fatalf("appendPEM() error = %v", err)
			}
			if n != tt.want {
				t.Errorf("appendPEM() = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestAppendPEM_InvalidCert(t *testing.T) {
	invalid := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte("garbage")})
	if _, err := appendPEM(x509.NewCertPool(), invalid); err == nil {
		t.Error("appendPEM() accepted an unparsable certificate")
	}
}

func TestLoadClientTLS(t *testing.T) {
	cfg, err := LoadClientTLS("")
	if err != nil || cfg != nil {
		t.Errorf("LoadClientTLS(\"\") = %v, %v; want nil, nil", cfg, err)
	}

	dir := t.TempDir()
	certFile := filepath.Join(dir, "ca.crt")
	writeTestKeyPair(t, certFile, filepath.Join(dir, "ca.key"), "ca")

	cfg, err = LoadClientTLS(certFile)
	if err != nil {
		t.Fatalf("LoadClientTLS() error = %v", err)
	}
	if cfg.RootCAs == nil || cfg.MinVersion != tls.VersionTLS12 {
		t.Errorf("LoadClientTLS() = %+v", cfg)
	}

	if _, err := LoadClientTLS(filepath.Join(dir, "ca.key")); !errors.Is(err, ErrNoCertsFound) {
		t.Errorf("LoadClientTLS(key file) error = %v, want ErrNoCertsFound", err)
	}
	if _, err := LoadClientTLS(filepath.Join(dir, "missing.crt")); err == nil {
		t.Error("LoadClientTLS(missing) error = nil")
	}
}
