package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/yndnr/fxgallery/internal/core/domain"
	"github.com/yndnr/fxgallery/internal/telemetry/metric"
)

const testWebhookSecret = "whsec_test_secret"

func checkoutEvent(id, email, status string) []byte {
	return []byte(fmt.Sprintf(`{
  "id": %q,
  "object": "event",
  "type": "checkout.session.completed",
  "created": 1760000000,
  "data": {"object": {"id": "cs_test_1", "object": "checkout.session", "customer_details": {"email": %q}, "payment_status": %q}}
}`, id, email, status))
}

func signWebhook(payload []byte, secret string, at time.Time) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
	})
	return signed.Header
}

func newTestPaymentService(t *testing.T, metrics *metric.Registry) (*PaymentService, *AccessService) {
	t.Helper()

	access := NewAccessService(newMockAccessRepo(), metrics)
	svc := NewPaymentService(access, &PaymentServiceConfig{
		WebhookSecret: testWebhookSecret,
		Tolerance:     5 * time.Minute,
	}, metrics)
	return svc, access
}

func TestPaymentService_CheckoutCompleted(t *testing.T) {
	metrics := metric.NewRegistry()
	svc, access := newTestPaymentService(t, metrics)
	ctx := context.Background()

	payload := checkoutEvent("evt_1", "Buyer@Example.com", "paid")
	sig := signWebhook(payload, testWebhookSecret, time.Now())

	result, err := svc.HandleWebhook(ctx, payload, sig)
	if err != nil {
		t.Fatalf("HandleWebhook() error = %v", err)
	}
	if result.Outcome != WebhookGranted {
		t.Errorf("HandleWebhook() outcome = %q, want %q", result.Outcome, WebhookGranted)
	}
	if result.Grant == nil || result.Grant.Source != domain.GrantSourcePayment || result.Grant.Reference != "cs_test_1" {
		t.Errorf("HandleWebhook() grant = %+v", result.Grant)
	}

	ok, err := access.Check(ctx, "buyer@example.com")
	if err != nil || !ok {
		t.Errorf("Check() after webhook = %v, %v", ok, err)
	}

	// Providers redeliver events; the second delivery keeps the first grant.
	result, err = svc.HandleWebhook(ctx, payload, sig)
	if err != nil {
		t.Fatalf("HandleWebhook() redelivery error = %v", err)
	}
	if result.Outcome != WebhookDuplicate {
		t.Errorf("HandleWebhook() redelivery outcome = %q, want %q", result.Outcome, WebhookDuplicate)
	}

	line := scrapeMetric(t, metrics, `fxgallery_payment_webhooks_total{outcome="granted",type="checkout.session.completed"}`)
	if !strings.HasSuffix(line, " 1") {
		t.Errorf("webhook counter line = %q", line)
	}
}

func TestPaymentService_RotatedSecret(t *testing.T) {
	svc, _ := newTestPaymentService(t, nil)
	payload := checkoutEvent("evt_8", "rotated@example.com", "paid")

	now := time.Now()
	current := signWebhook(payload, testWebhookSecret, now)
	previous := signWebhook(payload, "whsec_previous", now)
	_, oldSig, _ := strings.Cut(previous, ",")

	result, err := svc.HandleWebhook(context.Background(), payload, current+","+oldSig)
	if err != nil {
		t.Fatalf("HandleWebhook() error = %v", err)
	}
	if result.Outcome != WebhookGranted {
		t.Errorf("HandleWebhook() outcome = %q, want %q", result.Outcome, WebhookGranted)
	}
}

func TestPaymentService_IgnoredEvents(t *testing.T) {
	svc, access := newTestPaymentService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		payload []byte
		outcome string
	}{
		{"other type", []byte(`{"id":"evt_2","object":"event","type":"invoice.paid","data":{"object":{}}}`), WebhookIgnored},
		{"unpaid checkout", checkoutEvent("evt_3", "late@example.com", "unpaid"), WebhookUnpaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.HandleWebhook(ctx, tt.payload, signWebhook(tt.payload, testWebhookSecret, time.Now()))
			if err != nil {
				t.Fatalf("HandleWebhook() error = %v", err)
			}
			if result.Outcome != tt.outcome || result.Grant != nil {
				t.Errorf("HandleWebhook() = %+v, want outcome %q", result, tt.outcome)
			}
		})
	}

	if ok, _ := access.Check(ctx, "late@example.com"); ok {
		t.Error("unpaid checkout granted access")
	}
}

func TestPaymentService_Rejections(t *testing.T) {
	metrics := metric.NewRegistry()
	svc, _ := newTestPaymentService(t, metrics)
	ctx := context.Background()
	now := time.Now()
	payload := checkoutEvent("evt_4", "buyer@example.com", "paid")

	tests := []struct {
		name      string
		payload   []byte
		signature string
		want      error
	}{
		{"missing header", payload, "", domain.ErrSignatureInvalid},
		{"garbage header", payload, "t=1,v1=00", domain.ErrSignatureInvalid},
		{"wrong secret", payload, signWebhook(payload, "other", now), domain.ErrSignatureInvalid},
		{"stale timestamp", payload, signWebhook(payload, testWebhookSecret, now.Add(-10*time.Minute)), domain.ErrSignatureInvalid},
		{"modified body", payload, signWebhook(checkoutEvent("evt_4", "thief@example.com", "paid"), testWebhookSecret, now), domain.ErrSignatureInvalid},
		{"not json", []byte("nope"), signWebhook([]byte("nope"), testWebhookSecret, now), domain.ErrPaymentEventInvalid},
		{"no id", []byte(`{"type":"x"}`), signWebhook([]byte(`{"type":"x"}`), testWebhookSecret, now), domain.ErrPaymentEventInvalid},
		{"no email", checkoutEvent("evt_5", "", "paid"), "", domain.ErrPaymentEventInvalid},
		{"bad email", checkoutEvent("evt_6", "not-an-email", "paid"), "", domain.ErrPaymentEventInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := tt.signature
			if sig == "" && tt.want == domain.ErrPaymentEventInvalid {
				sig = signWebhook(tt.payload, testWebhookSecret, now)
			}
			if _, err := svc.HandleWebhook(ctx, tt.payload, sig); !errors.Is(err, tt.want) {
				t.Errorf("HandleWebhook() error = %v, want %v", err, tt.want)
			}
		})
	}

	line := scrapeMetric(t, metrics, `fxgallery_payment_webhooks_total{outcome="rejected",type="unknown"}`)
	if !strings.HasSuffix(line, " 5") {
		t.Errorf("rejected counter line = %q", line)
	}
}

func TestPaymentService_Unconfigured(t *testing.T) {
	svc := NewPaymentService(NewAccessService(newMockAccessRepo(), nil), nil, nil)
	payload := checkoutEvent("evt_7", "buyer@example.com", "paid")

	_, err := svc.HandleWebhook(context.Background(), payload, signWebhook(payload, "x", time.Now()))
	if !errors.Is(err, domain.ErrPaymentsUnavailable) {
		t.Errorf("HandleWebhook() error = %v, want ErrPaymentsUnavailable", err)
	}
}

func TestNewPaymentService_DefaultTolerance(t *testing.T) {
	svc := NewPaymentService(nil, &PaymentServiceConfig{WebhookSecret: "s"}, nil)
	if svc.options.Tolerance != webhook.DefaultTolerance {
		t.Errorf("tolerance = %v, want %v", svc.options.Tolerance, webhook.DefaultTolerance)
	}
}

func TestCheckoutEmail(t *testing.T) {
	tests := []struct {
		name    string
		session stripe.CheckoutSession
		want    string
	}{
		{"details", stripe.CheckoutSession{CustomerDetails: &stripe.CheckoutSessionCustomerDetails{Email: "d@example.com"}, CustomerEmail: "c@example.com"}, "d@example.com"},
		{"empty details", stripe.CheckoutSession{CustomerDetails: &stripe.CheckoutSessionCustomerDetails{Email: " "}, CustomerEmail: "c@example.com"}, "c@example.com"},
		{"customer email", stripe.CheckoutSession{CustomerEmail: "c@example.com"}, "c@example.com"},
		{"metadata", stripe.CheckoutSession{Metadata: map[string]string{"email": "m@example.com"}}, "m@example.com"},
		{"none", stripe.CheckoutSession{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checkoutEmail(&tt.session); got != tt.want {
				t.Errorf("checkoutEmail() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckoutPaid(t *testing.T) {
	for status, want := range map[stripe.CheckoutSessionPaymentStatus]bool{
		stripe.CheckoutSessionPaymentStatusPaid:              true,
		stripe.CheckoutSessionPaymentStatusNoPaymentRequired: true,
		stripe.CheckoutSessionPaymentStatusUnpaid:            false,
		"": false,
	} {
		s := stripe.CheckoutSession{PaymentStatus: status}
		if got := checkoutPaid(&s); got != want {
			t.Errorf("checkoutPaid(%q) = %v, want %v", status, got, want)
		}
	}
}
