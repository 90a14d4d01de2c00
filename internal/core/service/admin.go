package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/yndnr/fxgallery/internal/core/domain"
)

// Argon2id parameters used by HashAdminKey.
const (
	argon2Time    = 2
	argon2Memory  = 16384
	argon2Threads = 2
	argon2KeyLen  = 32
	argon2SaltLen = 16
)

// AdminAuthenticator verifies the key presented by admin clients. The
// configured key is either the plaintext secret or an Argon2id hash
// produced by HashAdminKey.
type AdminAuthenticator struct {
	plain []byte
	hash  *argon2Hash
}

type argon2Hash struct {
	time    uint32
	memory  uint32
	threads uint8
	salt    []byte
	key     []byte
}

// NewAdminAuthenticator creates an AdminAuthenticator. An empty configured
// key disables admin access.
func NewAdminAuthenticator(configured string) (*AdminAuthenticator, error) {
	a := &AdminAuthenticator{}
	switch {
	case configured == "":
	case strings.HasPrefix(configured, "$argon2id$"):
		h, err := parseArgon2Hash(configured)
		if err != nil {
			return nil, err
		}
		a.hash = h
	default:
		sum := sha256.Sum256([]byte(configured))
		a.plain = sum[:]
	}
	return a, nil
}

// Enabled reports whether an admin key is configured.
func (a *AdminAuthenticator) Enabled() bool {
	return a != nil && (a.plain != nil || a.hash != nil)
}

// Verify checks key. It returns domain.ErrAdminRequired on any mismatch
// and when admin access is disabled.
func (a *AdminAuthenticator) Verify(key string) error {
	if !a.Enabled() || key == "" {
		return domain.ErrAdminRequired
	}

	var ok bool
	if a.hash != nil {
		computed := argon2.IDKey([]byte(key), a.hash.salt, a.hash.time, a.hash.memory, a.hash.threads, uint32(len(a.hash.key)))
		ok = subtle.ConstantTimeCompare(computed, a.hash.key) == 1
	} else {
		sum := sha256.Sum256([]byte(key))
		ok = subtle.ConstantTimeCompare(sum[:], a.plain) == 1
	}

	if !ok {
		return domain.ErrAdminRequired
	}
	return nil
}

// HashAdminKey returns an Argon2id hash of secret suitable for the
// admin.api_key setting.
// Format: $argon2id$v=19$m=16384,t=2,p=2$<salt>$<hash>
func HashAdminKey(secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("admin key must not be empty")
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(secret), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argon2Memory, argon2Time, argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func parseArgon2Hash(encoded string) (*argon2Hash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, fmt.Errorf("admin key hash: unsupported format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, fmt.Errorf("admin key hash: unsupported version %q", parts[2])
	}

	h := &argon2Hash{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &h.memory, &h.time, &h.threads); err != nil {
		return nil, fmt.Errorf("admin key hash: parameters: %w", err)
	}
	if h.time == 0 || h.threads == 0 {
		return nil, fmt.Errorf("admin key hash: invalid parameters")
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, fmt.Errorf("admin key hash: salt: %w", err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, fmt.Errorf("admin key hash: key: %w", err)
	}
	if len(h.key) == 0 {
		return nil, fmt.Errorf("admin key hash: empty key")
	}
	return h, nil
}
