package config

import (
	"net/netip"
	"strings"
	"time"
)

// ServerConfig is the root configuration for fxgallery-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Codec    CodecSection    `koanf:"codec"`
	Access   AccessSection   `koanf:"access"`
	Payments PaymentsSection `koanf:"payments"`
	Admin    AdminSection    `koanf:"admin"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	// CORSAllowedOrigins lists browser origins allowed to call the API.
	// "*" allows any origin. Empty disables CORS headers.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// RateLimit is the per-client request rate in requests per second.
	// Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	// TrustedProxies lists addresses or CIDR prefixes of reverse proxies
	// whose X-Forwarded-For and X-Real-IP headers are believed. Requests
	// from any other peer are attributed to the peer address.
	TrustedProxies []string `koanf:"trusted_proxies"`

	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// TrustedProxyPrefixes parses TrustedProxies. A bare address becomes a
// single-address prefix.
func (c HTTPConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, entry := range c.TrustedProxies {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, err
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, err
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// TLSEnabled reports whether a certificate and key are configured.
func (c HTTPConfig) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// CodecSection configures token sealing.
type CodecSection struct {
	// Cipher selects the AEAD for sealed tokens: aes-gcm or chacha20-poly1305.
	Cipher string `koanf:"cipher"`

	// ExportPassphrase is the secret sealed tokens are derived from.
	// Without it the server neither seals nor opens sealed tokens.
	ExportPassphrase string `koanf:"export_passphrase"`

	// MaxDecodedLength bounds the decompressed parameters of a token, in
	// UTF-16 code units.
	MaxDecodedLength int `koanf:"max_decoded_length"`
}

// AccessSection configures the export access store.
type AccessSection struct {
	DataDir    string        `koanf:"data_dir"`
	InMemory   bool          `koanf:"in_memory"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// PaymentsSection configures the payment webhook.
type PaymentsSection struct {
	// WebhookSecret signs webhook deliveries. Empty disables the webhook.
	WebhookSecret string `koanf:"webhook_secret"`

	// Tolerance is the accepted signature age. Zero uses the provider
	// library default of five minutes.
	Tolerance time.Duration `koanf:"tolerance"`
}

// AdminSection configures the admin API.
type AdminSection struct {
	// APIKey is the admin key in plaintext or as an argon2id hash.
	// Empty disables the admin endpoints.
	APIKey string `koanf:"api_key"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
