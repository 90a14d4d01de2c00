package domain

import (
	"crypto/rand"
	"net/mail"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	// GrantIDPrefix is the prefix for grant IDs.
	// Format: fxag-{ulid_lowercase}, 31 characters total.
	GrantIDPrefix = "fxag-"

	// MaxEmailLength is the longest address accepted (RFC 5321 path limit).
	MaxEmailLength = 254
)

// GrantSource records how a grant came about.
type GrantSource string

const (
	GrantSourcePayment GrantSource = "payment"
	GrantSourceAdmin   GrantSource = "admin"
)

// IsValidGrantSource reports whether s is a known grant source.
func IsValidGrantSource(s GrantSource) bool {
	return s == GrantSourcePayment || s == GrantSourceAdmin
}

// Grant is an export entitlement for one e-mail address. Grants are never
// modified after creation; granting again returns the original.
type Grant struct {
	// ID is the unique identifier for the grant.
	ID string `json:"id"`

	// Email is the normalized e-mail address.
	Email string `json:"email"`

	// Source records how the grant was created.
	Source GrantSource `json:"source"`

	// Reference is the external reference, such as the checkout session ID.
	Reference string `json:"reference,omitempty"`

	// GrantedAt is the grant timestamp (Unix milliseconds).
	GrantedAt int64 `json:"granted_at"`
}

// NewGrant creates a grant for email. The address is normalized.
func NewGrant(email string, source GrantSource, reference string) (*Grant, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if !IsValidGrantSource(source) {
		return nil, ErrBadRequest.WithDetails("unknown grant source: " + string(source))
	}

	id, err := GenerateGrantID()
	if err != nil {
		return nil, err
	}

	return &Grant{
		ID:        id,
		Email:     normalized,
		Source:    source,
		Reference: reference,
		GrantedAt: timeNow().UnixMilli(),
	}, nil
}

// GenerateGrantID generates a new grant ID using ULID.
func GenerateGrantID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(timeNow()), entropy)
	if err != nil {
		return "", ErrInternalServer.WithCause(err)
	}
	return GrantIDPrefix + strings.ToLower(id.String()), nil
}

// IsValidGrantID reports whether id has the fxag-{ulid} form.
func IsValidGrantID(id string) bool {
	if len(id) != len(GrantIDPrefix)+ulid.EncodedSize || !strings.HasPrefix(id, GrantIDPrefix) {
		return false
	}
	_, err := ulid.ParseStrict(strings.ToUpper(id[len(GrantIDPrefix):]))
	return err == nil
}

// GrantedAtTime returns GrantedAt as time.Time.
func (g *Grant) GrantedAtTime() time.Time {
	return time.UnixMilli(g.GrantedAt)
}

// Validate checks the grant's invariants.
func (g *Grant) Validate() error {
	if !IsValidGrantID(g.ID) {
		return ErrBadRequest.WithDetails("invalid grant id")
	}
	if normalized, err := NormalizeEmail(g.Email); err != nil || normalized != g.Email {
		return ErrInvalidEmail.WithDetails("grant email is not normalized")
	}
	if !IsValidGrantSource(g.Source) {
		return ErrBadRequest.WithDetails("unknown grant source: " + string(g.Source))
	}
	if g.GrantedAt <= 0 {
		return ErrBadRequest.WithDetails("grant timestamp missing")
	}
	return nil
}

// Clone returns a copy of the grant.
func (g *Grant) Clone() *Grant {
	c := *g
	return &c
}

// NormalizeEmail trims and lower-cases an address and checks that it is a
// bare RFC 5322 address (no display name).
func NormalizeEmail(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" {
		return "", ErrInvalidEmail.WithDetails("email is required")
	}
	if len(e) > MaxEmailLength {
		return "", ErrInvalidEmail.WithDetails("email too long")
	}

	addr, err := mail.ParseAddress(e)
	if err != nil {
		return "", ErrInvalidEmail.WithCause(err)
	}
	if addr.Address != e || !strings.Contains(e[strings.LastIndex(e, "@")+1:], ".") {
		return "", ErrInvalidEmail.WithDetails("not a bare address")
	}
	return e, nil
}

// MaskEmail hides the local part of an address except its first character.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

// timeNow is a hook for testing.
var timeNow = time.Now
