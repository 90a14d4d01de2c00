package service

import (
	"context"
	"errors"
	"time"

	"github.com/yndnr/fxgallery/internal/core/domain"
	"github.com/yndnr/fxgallery/internal/telemetry/logger"
	"github.com/yndnr/fxgallery/internal/telemetry/metric"
)

// AccessRepository defines the storage interface for export grants.
type AccessRepository interface {
	// Grant records access for email. Existing grants are returned
	// unchanged with created == false.
	Grant(ctx context.Context, email string, source domain.GrantSource, reference string) (grant *domain.Grant, created bool, err error)

	// Get returns the grant for email, or domain.ErrGrantNotFound.
	Get(ctx context.Context, email string) (*domain.Grant, error)

	// Revoke removes the grant for email.
	Revoke(ctx context.Context, email string) error

	// List returns every grant.
	List(ctx context.Context) ([]*domain.Grant, error)
}

// AccessService manages export entitlements.
type AccessService struct {
	repo    AccessRepository
	metrics *metric.Registry
}

// NewAccessService creates an AccessService. metrics may be nil.
func NewAccessService(repo AccessRepository, metrics *metric.Registry) *AccessService {
	return &AccessService{
		repo:    repo,
		metrics: metrics,
	}
}

// GrantRequest contains parameters for granting access.
type GrantRequest struct {
	Email     string             `json:"email"`
	Source    domain.GrantSource `json:"source,omitempty"`
	Reference string             `json:"reference,omitempty"`
}

// GrantResponse contains the grant and whether it was newly created.
type GrantResponse struct {
	Grant   *domain.Grant `json:"grant"`
	Created bool          `json:"created"`
}

// Grant records access for an e-mail address. Granting twice is not an
// error; the original grant is returned.
func (s *AccessService) Grant(ctx context.Context, req *GrantRequest) (*GrantResponse, error) {
	source := req.Source
	if source == "" {
		source = domain.GrantSourceAdmin
	}

	grant, created, err := s.repo.Grant(ctx, req.Email, source, req.Reference)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordGrant(string(grant.Source), created)

	if created {
		logger.L(ctx).Info("access granted",
			"email", grant.Email,
			"grant_id", grant.ID,
			"source", grant.Source,
		)
	} else {
		logger.L(ctx).Debug("access already granted", "email", grant.Email, "grant_id", grant.ID)
	}

	return &GrantResponse{Grant: grant, Created: created}, nil
}

// AccessStatus describes the entitlement of one e-mail address.
type AccessStatus struct {
	Email     string     `json:"email"`
	Granted   bool       `json:"granted"`
	GrantedAt *time.Time `json:"granted_at,omitempty"`
}

// Status reports whether email has access and since when.
func (s *AccessService) Status(ctx context.Context, email string) (*AccessStatus, error) {
	normalized, err := domain.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	grant, err := s.repo.Get(ctx, normalized)
	switch {
	case errors.Is(err, domain.ErrGrantNotFound):
		return &AccessStatus{Email: normalized}, nil
	case err != nil:
		return nil, err
	}

	at := grant.GrantedAtTime()
	return &AccessStatus{
		Email:     normalized,
		Granted:   true,
		GrantedAt: &at,
	}, nil
}

// Check reports whether email has access.
func (s *AccessService) Check(ctx context.Context, email string) (bool, error) {
	status, err := s.Status(ctx, email)
	if err != nil {
		return false, err
	}
	return status.Granted, nil
}

// GrantedAt returns when email was granted access, or
// domain.ErrGrantNotFound.
func (s *AccessService) GrantedAt(ctx context.Context, email string) (time.Time, error) {
	grant, err := s.repo.Get(ctx, email)
	if err != nil {
		return time.Time{}, err
	}
	return grant.GrantedAtTime(), nil
}

// Revoke removes access for email.
func (s *AccessService) Revoke(ctx context.Context, email string) error {
	if err := s.repo.Revoke(ctx, email); err != nil {
		return err
	}
	logger.L(ctx).Info("access revoked", "email", email)
	return nil
}

// List returns every grant.
func (s *AccessService) List(ctx context.Context) ([]*domain.Grant, error) {
	return s.repo.List(ctx)
}
