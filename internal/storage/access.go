package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yndnr/fxgallery/internal/core/domain"
)

// accessPrefix namespaces grant records in the KV engine.
const accessPrefix = "access/"

// AccessStore records which e-mail addresses have purchased export access.
type AccessStore struct {
	kv KVEngine
}

// NewAccessStore creates an AccessStore over kv.
func NewAccessStore(kv KVEngine) *AccessStore {
	return &AccessStore{kv: kv}
}

func accessKey(email string) []byte {
	return []byte(accessPrefix + email)
}

// Grant records access for email. Granting an address that already has
// access is a no-op that returns the existing grant, so the first grant
// time is kept. The boolean reports whether a new grant was created.
func (s *AccessStore) Grant(ctx context.Context, email string, source domain.GrantSource, reference string) (*domain.Grant, bool, error) {
	g, err := domain.NewGrant(email, source, reference)
	if err != nil {
		return nil, false, err
	}

	data, err := json.Marshal(g)
	if err != nil {
		return nil, false, domain.ErrInternalServer.WithCause(err)
	}

	stored, created, err := s.kv.SetIfAbsent(ctx, accessKey(g.Email), data)
	if err != nil {
		return nil, false, domain.ErrStorageError.WithCause(err)
	}
	if created {
		return g, true, nil
	}

	existing, err := decodeGrant(stored)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// Get returns the grant for email, or domain.ErrGrantNotFound.
func (s *AccessStore) Get(ctx context.Context, email string) (*domain.Grant, error) {
	normalized, err := domain.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	data, err := s.kv.Get(ctx, accessKey(normalized))
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, domain.ErrGrantNotFound
		}
		return nil, domain.ErrStorageError.WithCause(err)
	}
	return decodeGrant(data)
}

// Check reports whether email has access.
func (s *AccessStore) Check(ctx context.Context, email string) (bool, error) {
	_, err := s.Get(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrGrantNotFound):
		return false, nil
	default:
		return false, err
	}
}

// GrantedAt returns when email was granted access, or
// domain.ErrGrantNotFound.
func (s *AccessStore) GrantedAt(ctx context.Context, email string) (time.Time, error) {
	g, err := s.Get(ctx, email)
	if err != nil {
		return time.Time{}, err
	}
	return g.GrantedAtTime(), nil
}

// Revoke removes the grant for email. It returns domain.ErrGrantNotFound
// if there is none.
func (s *AccessStore) Revoke(ctx context.Context, email string) error {
	g, err := s.Get(ctx, email)
	if err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, accessKey(g.Email)); err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	return nil
}

// List returns all grants ordered by e-mail address.
func (s *AccessStore) List(ctx context.Context) ([]*domain.Grant, error) {
	var (
		grants  []*domain.Grant
		scanErr error
	)

	err := s.kv.Scan(ctx, []byte(accessPrefix), func(key, value []byte) bool {
		g, err := decodeGrant(value)
		if err != nil {
			scanErr = fmt.Errorf("key %q: %w", key, err)
			return false
		}
		grants = append(grants, g)
		return true
	})
	if err != nil {
		return nil, domain.ErrStorageError.WithCause(err)
	}
	if scanErr != nil {
		return nil, scanErr
	}
	return grants, nil
}

// Count returns the number of grants.
func (s *AccessStore) Count(ctx context.Context) (int, error) {
	n := 0
	err := s.kv.Scan(ctx, []byte(accessPrefix), func(key, value []byte) bool {
		n++
		return true
	})
	if err != nil {
		return 0, domain.ErrStorageError.WithCause(err)
	}
	return n, nil
}

func decodeGrant(data []byte) (*domain.Grant, error) {
	var g domain.Grant
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, domain.ErrStorageError.WithCause(err)
	}
	return &g, nil
}
