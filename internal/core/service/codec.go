package service

import (
	"context"
	"errors"

	"github.com/yndnr/fxgallery/internal/core/domain"
	"github.com/yndnr/fxgallery/internal/telemetry/logger"
	"github.com/yndnr/fxgallery/internal/telemetry/metric"
	"github.com/yndnr/fxgallery/pkg/fxtoken"
)

// AccessChecker reports whether an e-mail address may export sealed tokens.
type AccessChecker interface {
	Check(ctx context.Context, email string) (bool, error)
}

// CodecService turns artwork parameters into share tokens and back.
type CodecService struct {
	codec   *fxtoken.Codec
	access  AccessChecker
	metrics *metric.Registry
}

// NewCodecService creates a CodecService. access may be nil when exports
// are not offered; metrics may be nil.
func NewCodecService(codec *fxtoken.Codec, access AccessChecker, metrics *metric.Registry) *CodecService {
	if codec == nil {
		codec = fxtoken.NewCodec()
	}
	return &CodecService{
		codec:   codec,
		access:  access,
		metrics: metrics,
	}
}

// EncodeRequest contains parameters for token encoding.
type EncodeRequest struct {
	Kind   string          `json:"kind"`
	Params *fxtoken.Params `json:"params"`
}

// EncodeResponse contains the encoded token.
type EncodeResponse struct {
	Token       string `json:"token"`
	Kind        string `json:"kind"`
	Seed        uint32 `json:"seed"`
	Fingerprint string `json:"fingerprint"`
}

// Encode produces a plain share token.
func (s *CodecService) Encode(ctx context.Context, req *EncodeRequest) (*EncodeResponse, error) {
	kind, err := s.validate(req.Kind, req.Params)
	if err != nil {
		return nil, err
	}

	token, err := s.codec.Encode(kind, req.Params)
	if err != nil {
		return nil, encodeError(err)
	}
	s.metrics.RecordEncode(string(kind), false)

	parts, err := fxtoken.Parse(token)
	if err != nil {
		return nil, domain.ErrInternalServer.WithCause(err)
	}

	logger.L(ctx).Debug("token encoded", "kind", kind, "token", token)

	return &EncodeResponse{
		Token:       token,
		Kind:        string(kind),
		Seed:        fxtoken.Seed(token),
		Fingerprint: parts.Hash,
	}, nil
}

// DecodeRequest contains parameters for token decoding.
type DecodeRequest struct {
	Token string `json:"token"`
}

// DecodeResponse contains the decoded artwork parameters.
type DecodeResponse struct {
	Kind   string          `json:"kind"`
	Sealed bool            `json:"sealed"`
	Params *fxtoken.Params `json:"params"`
	Seed   uint32          `json:"seed"`
}

// Decode recovers the parameters carried by a plain or sealed token.
//
// Every decode failure is returned as domain.ErrTokenInvalid so callers
// cannot tell a wrong passphrase from a corrupted payload. The specific
// reason is logged and counted.
func (s *CodecService) Decode(ctx context.Context, req *DecodeRequest) (*DecodeResponse, error) {
	decoded, err := s.codec.Decode(req.Token)
	if err != nil {
		reason := fxtoken.Reason(err)
		s.metrics.RecordDecode(reason)

		if errors.Is(err, fxtoken.ErrNoCipher) {
			logger.L(ctx).Error("sealed token received but no export passphrase is configured")
			return nil, domain.ErrSealingUnavailable
		}

		logger.L(ctx).Warn("token decode failed",
			"reason", reason,
			"token", req.Token,
			"error", err,
		)
		return nil, domain.ErrTokenInvalid.WithCause(err)
	}
	s.metrics.RecordDecode("")

	return &DecodeResponse{
		Kind:   string(decoded.Kind),
		Sealed: decoded.Sealed,
		Params: decoded.Params,
		Seed:   decoded.Seed,
	}, nil
}

// Seed derives the renderer seed of a token. The token must be well formed
// but is not decoded.
func (s *CodecService) Seed(_ context.Context, token string) (uint32, error) {
	if !fxtoken.IsToken(token) {
		return 0, domain.ErrTokenInvalid.WithCause(fxtoken.ErrFormat)
	}
	return fxtoken.Seed(token), nil
}

// ExportRequest contains parameters for a sealed export.
type ExportRequest struct {
	Kind   string          `json:"kind"`
	Params *fxtoken.Params `json:"params"`
	Email  string          `json:"email"`
}

// ExportResponse contains the sealed token.
type ExportResponse struct {
	Token string `json:"token"`
	Kind  string `json:"kind"`
	Seed  uint32 `json:"seed"`
}

// Export seals params for an e-mail address that has purchased access.
func (s *CodecService) Export(ctx context.Context, req *ExportRequest) (*ExportResponse, error) {
	kind, err := s.validate(req.Kind, req.Params)
	if err != nil {
		return nil, err
	}

	email, err := domain.NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	if !s.codec.CanSeal() {
		return nil, domain.ErrSealingUnavailable
	}
	if s.access == nil {
		s.metrics.IncExportDenied()
		return nil, domain.ErrAccessRequired
	}

	granted, err := s.access.Check(ctx, email)
	if err != nil {
		return nil, err
	}
	if !granted {
		s.metrics.IncExportDenied()
		logger.L(ctx).Info("export denied", "email", email, "kind", kind)
		return nil, domain.ErrAccessRequired
	}

	token, err := s.codec.Seal(kind, req.Params)
	if err != nil {
		return nil, encodeError(err)
	}
	s.metrics.RecordEncode(string(kind), true)

	logger.L(ctx).Info("export sealed", "email", email, "kind", kind)

	return &ExportResponse{
		Token: token,
		Kind:  string(kind),
		Seed:  fxtoken.Seed(token),
	}, nil
}

func (s *CodecService) validate(kind string, params *fxtoken.Params) (fxtoken.Kind, error) {
	k, err := fxtoken.ParseKind(kind)
	if err != nil {
		return "", domain.ErrUnknownKind.WithDetails(kind)
	}
	if params == nil {
		return "", domain.ErrInvalidParams.WithDetails("params are required")
	}
	return k, nil
}

// encodeError maps codec failures on the encoding side to domain errors.
func encodeError(err error) error {
	switch {
	case errors.Is(err, fxtoken.ErrUnknownKind):
		return domain.ErrUnknownKind.WithCause(err)
	case errors.Is(err, fxtoken.ErrSerialization):
		return domain.ErrInvalidParams.WithCause(err)
	case errors.Is(err, fxtoken.ErrNoCipher):
		return domain.ErrSealingUnavailable
	default:
		return domain.ErrInternalServer.WithCause(err)
	}
}
