package fxtoken

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// Prefix starts every token.
	Prefix = "fx-"

	// Version is the pipeline version segment.
	Version = "v2"

	// SealedHash is carried in the hash segment of sealed tokens in place of
	// a fingerprint.
	SealedHash = "0000000000000000"

	// MaxTokenLength bounds the length of a token in bytes. Parameter sets
	// compress to a few hundred bytes; longer input is rejected before any
	// decoding work.
	MaxTokenLength = 8 << 10
)

var tokenPattern = regexp.MustCompile(`^fx-(flow|grid|mosaic|rotated|tree|text)-v2(e?)\.([a-f0-9]+)\.(.+)$`)

// Parts are the segments of a token.
type Parts struct {
	Kind    Kind
	Sealed  bool
	Hash    string
	Payload string
}

// Assemble formats parts as a token. A sealed token with no hash gets
// SealedHash.
func Assemble(p Parts) string {
	hash := p.Hash
	if p.Sealed && hash == "" {
		hash = SealedHash
	}

	var b strings.Builder
	b.Grow(len(Prefix) + len(p.Kind) + len(Version) + len(hash) + len(p.Payload) + 5)
	b.WriteString(Prefix)
	b.WriteString(string(p.Kind))
	b.WriteByte('-')
	b.WriteString(Version)
	if p.Sealed {
		b.WriteByte('e')
	}
	b.WriteByte('.')
	b.WriteString(hash)
	b.WriteByte('.')
	b.WriteString(p.Payload)
	return b.String()
}

// Parse splits a token into its segments. Any deviation from the token
// grammar yields ErrFormat.
func Parse(token string) (Parts, error) {
	if len(token) > MaxTokenLength {
		return Parts{}, fmt.Errorf("%w: token is %d bytes, limit %d", ErrFormat, len(token), MaxTokenLength)
	}
	m := tokenPattern.FindStringSubmatch(token)
	if m == nil {
		return Parts{}, fmt.Errorf("%w: %q does not match %s<kind>-%s[e].<hash>.<payload>",
			ErrFormat, truncate(token, 32), Prefix, Version)
	}
	return Parts{
		Kind:    Kind(m[1]),
		Sealed:  m[2] == "e",
		Hash:    m[3],
		Payload: m[4],
	}, nil
}

// IsToken reports whether s is shaped like a token. It does not validate the
// payload.
func IsToken(s string) bool {
	return len(s) <= MaxTokenLength && tokenPattern.MatchString(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
