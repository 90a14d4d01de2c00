package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/yndnr/fxgallery/internal/core/domain"
	"github.com/yndnr/fxgallery/internal/telemetry/logger"
	"github.com/yndnr/fxgallery/internal/telemetry/metric"
)

// SignatureHeader is the request header carrying the webhook signature.
const SignatureHeader = "Stripe-Signature"

// EventCheckoutCompleted is the only event type that grants access.
const EventCheckoutCompleted = "checkout.session.completed"

// Webhook outcomes recorded in metrics.
const (
	WebhookGranted   = "granted"
	WebhookDuplicate = "duplicate"
	WebhookIgnored   = "ignored"
	WebhookUnpaid    = "unpaid"
	WebhookRejected  = "rejected"
	WebhookInvalid   = "invalid"
)

// PaymentServiceConfig holds configuration for PaymentService.
type PaymentServiceConfig struct {
	// WebhookSecret is the endpoint signing secret. Empty disables webhooks.
	WebhookSecret string

	// Tolerance is the accepted age of a signature timestamp. Zero uses
	// webhook.DefaultTolerance.
	Tolerance time.Duration
}

// DefaultPaymentServiceConfig returns default configuration.
func DefaultPaymentServiceConfig() *PaymentServiceConfig {
	return &PaymentServiceConfig{
		Tolerance: webhook.DefaultTolerance,
	}
}

// PaymentService turns completed checkouts into export grants.
type PaymentService struct {
	access  *AccessService
	secret  string
	options webhook.ConstructEventOptions
	metrics *metric.Registry
}

// NewPaymentService creates a PaymentService.
func NewPaymentService(access *AccessService, config *PaymentServiceConfig, metrics *metric.Registry) *PaymentService {
	if config == nil {
		config = DefaultPaymentServiceConfig()
	}
	tolerance := config.Tolerance
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}
	return &PaymentService{
		access: access,
		secret: config.WebhookSecret,
		options: webhook.ConstructEventOptions{
			Tolerance: tolerance,
			// Grants only read the checkout object, which is stable
			// across API versions.
			IgnoreAPIVersionMismatch: true,
		},
		metrics: metrics,
	}
}

// WebhookResult describes how an event was handled.
type WebhookResult struct {
	EventID string        `json:"event_id"`
	Type    string        `json:"type"`
	Outcome string        `json:"outcome"`
	Grant   *domain.Grant `json:"grant,omitempty"`
}

// HandleWebhook verifies and processes one webhook delivery. Event types
// other than a completed checkout are acknowledged and ignored.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	if s.secret == "" {
		return nil, domain.ErrPaymentsUnavailable
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.secret, s.options)
	if err != nil {
		if isSignatureError(err) {
			s.metrics.RecordWebhook("", WebhookRejected)
			logger.L(ctx).Warn("webhook signature rejected", "error", err)
			return nil, domain.ErrSignatureInvalid.WithCause(err)
		}
		s.metrics.RecordWebhook("", WebhookInvalid)
		return nil, domain.ErrPaymentEventInvalid.WithCause(err)
	}
	if event.ID == "" || event.Type == "" {
		s.metrics.RecordWebhook("", WebhookInvalid)
		return nil, domain.ErrPaymentEventInvalid.WithDetails("event id and type are required")
	}

	eventType := string(event.Type)
	result := &WebhookResult{EventID: event.ID, Type: eventType}
	log := logger.L(ctx).With("event_id", event.ID, "event_type", eventType)

	if eventType != EventCheckoutCompleted {
		result.Outcome = WebhookIgnored
		s.metrics.RecordWebhook(eventType, result.Outcome)
		log.Debug("webhook ignored")
		return result, nil
	}

	var checkout stripe.CheckoutSession
	if event.Data == nil || json.Unmarshal(event.Data.Raw, &checkout) != nil {
		s.metrics.RecordWebhook(eventType, WebhookInvalid)
		return nil, domain.ErrPaymentEventInvalid.WithDetails("event carries no checkout session")
	}

	if !checkoutPaid(&checkout) {
		result.Outcome = WebhookUnpaid
		s.metrics.RecordWebhook(eventType, result.Outcome)
		log.Info("checkout completed without payment", "payment_status", checkout.PaymentStatus)
		return result, nil
	}

	email := checkoutEmail(&checkout)
	if email == "" {
		s.metrics.RecordWebhook(eventType, WebhookInvalid)
		return nil, domain.ErrPaymentEventInvalid.WithDetails("checkout has no customer email")
	}

	reference := checkout.ID
	if reference == "" {
		reference = event.ID
	}

	resp, err := s.access.Grant(ctx, &GrantRequest{
		Email:     email,
		Source:    domain.GrantSourcePayment,
		Reference: reference,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidEmail) {
			s.metrics.RecordWebhook(eventType, WebhookInvalid)
			return nil, domain.ErrPaymentEventInvalid.WithCause(err)
		}
		return nil, err
	}

	result.Grant = resp.Grant
	result.Outcome = WebhookGranted
	if !resp.Created {
		result.Outcome = WebhookDuplicate
	}
	s.metrics.RecordWebhook(eventType, result.Outcome)
	log.Info("checkout processed", "outcome", result.Outcome, "email", resp.Grant.Email)

	return result, nil
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrTooOld) ||
		errors.Is(err, webhook.ErrNoValidSignature)
}

// checkoutEmail returns the buyer's address. The address typed at checkout
// wins over the prefilled one; metadata is the last resort.
func checkoutEmail(s *stripe.CheckoutSession) string {
	if s.CustomerDetails != nil {
		if email := strings.TrimSpace(s.CustomerDetails.Email); email != "" {
			return email
		}
	}
	if email := strings.TrimSpace(s.CustomerEmail); email != "" {
		return email
	}
	return strings.TrimSpace(s.Metadata["email"])
}

// checkoutPaid reports whether the session completed with payment. Sessions
// that need no payment count as paid.
func checkoutPaid(s *stripe.CheckoutSession) bool {
	return s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid ||
		s.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired
}
