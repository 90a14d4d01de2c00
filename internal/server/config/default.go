package config

import (
	"time"

	"github.com/yndnr/fxgallery/internal/storage"
	"github.com/yndnr/fxgallery/pkg/fxtoken"
)

// Default configuration values.
const (
	DefaultHTTPAddr     = "127.0.0.1:5080"
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultRateLimit    = 20
	DefaultRateBurst    = 40

	DefaultCipher           = "aes-gcm"
	DefaultMaxDecodedLength = fxtoken.DefaultMaxDecodedLength

	DefaultDataDir    = "/var/lib/fxgallery-server/access"
	DefaultGCInterval = 10 * time.Minute

	DefaultWebhookTolerance = 5 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:         DefaultHTTPAddr,
				RateLimit:    DefaultRateLimit,
				RateBurst:    DefaultRateBurst,
				ReadTimeout:  DefaultReadTimeout,
				WriteTimeout: DefaultWriteTimeout,
			},
		},
		Codec: CodecSection{
			Cipher:           DefaultCipher,
			MaxDecodedLength: DefaultMaxDecodedLength,
		},
		Access: AccessSection{
			DataDir:    DefaultDataDir,
			GCInterval: DefaultGCInterval,
		},
		Payments: PaymentsSection{
			Tolerance: DefaultWebhookTolerance,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// KVConfig returns the storage engine configuration for the access store.
func (a AccessSection) KVConfig() storage.KVConfig {
	var cfg storage.KVConfig
	if a.InMemory {
		cfg = storage.InMemoryKVConfig()
	} else {
		cfg = storage.DefaultKVConfig(a.DataDir)
	}
	if a.GCInterval > 0 {
		cfg.Badger.GCInterval = a.GCInterval.String()
	}
	return cfg
}
