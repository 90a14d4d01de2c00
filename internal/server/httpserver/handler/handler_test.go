package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/yndnr/fxgallery/internal/core/domain"
	"github.com/yndnr/fxgallery/internal/core/service"
	"github.com/yndnr/fxgallery/internal/storage"
	"github.com/yndnr/fxgallery/internal/telemetry/logger"
	"github.com/yndnr/fxgallery/pkg/crypto/aead"
	"github.com/yndnr/fxgallery/pkg/fxtoken"
)

const (
	exampleToken  = "fx-mosaic-v2.45f9c7a0cf239c7f.N4IgxghgdgbhDOB1AlgEwC4AsQC4BsAzAAwA04A9gDbkBOAjLiAMQCCAHACIscDCIAvkA"
	exampleSealed = "fx-mosaic-v2e.0000000000000000.AAECAwQFBgcICQoLOmSgHIUw_kH6T5fPAwpITtdnjPOKwDz_kcBWtdywIg8DPcOmXysd_E5_d4wQN8NnPtBlvtEl6uAhHxZ0Z-BEaD9cS4tgpINtrlzDd6XIFrnVB6xI2w"
	examplePass   = "gallery-export-secret"
	exampleParams = `{"canvasWidth":630,"color1":"#A8DADC"}`

	testWebhookSecret = "whsec_handler_test"
)

// envelope mirrors Response with the data left undecoded.
type envelope struct {
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
	Details   any             `json:"details"`
}

type testEnv struct {
	handler *Handler
	access  *service.AccessService
}

func newTestEnv(t *testing.T, webhookSecret string) *testEnv {
	t.Helper()

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	engine, err := storage.NewBadgerEngine(storage.InMemoryKVConfig(), discard)
	if err != nil {
		t.Fatalf("NewBadgerEngine() error = %v", err)
	}
	t.Cleanup(func() { engine.Close() })

	cipher, err := aead.NewFromPassphrase(examplePass, aead.CipherAESGCM)
	if err != nil {
		t.Fatalf("NewFromPassphrase() error = %v", err)
	}

	access := service.NewAccessService(storage.NewAccessStore(engine), nil)
	codec := service.NewCodecService(fxtoken.NewCodec(fxtoken.WithCipher(cipher)), access, nil)
	payments := service.NewPaymentService(access, &service.PaymentServiceConfig{
		WebhookSecret: webhookSecret,
		Tolerance:     5 * time.Minute,
	}, nil)

	h := New(Services{Codec: codec, Access: access, Payments: payments}, discard)
	return &testEnv{handler: h, access: access}
}

func (e *testEnv) do(t *testing.T, method, path, body string, header http.Header) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range header {
		req.Header[k] = v
	}
	req = req.WithContext(logger.WithRequestID(req.Context(), "req-test"))

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: response is not an envelope: %v\n%s", method, path, err, rec.Body.String())
	}
	return rec, env
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, env envelope, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Errorf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	if env.Code != code {
		t.Errorf("code = %q, want %q", env.Code, code)
	}
	if rec.Header().Get("X-Error-Code") != code {
		t.Errorf("X-Error-Code = %q, want %q", rec.Header().Get("X-Error-Code"), code)
	}
}

func TestHandler_Health(t *testing.T) {
	env := newTestEnv(t, "")

	rec, resp := env.do(t, "GET", "/health", "", nil)
	if rec.Code != http.StatusOK || resp.Code != "OK" {
		t.Fatalf("GET /health = %d %s", rec.Code, rec.Body.String())
	}
	if resp.RequestID != "req-test" || rec.Header().Get("X-Request-ID") != "req-test" {
		t.Errorf("request id = %q / %q", resp.RequestID, rec.Header().Get("X-Request-ID"))
	}
	if resp.Timestamp == 0 {
		t.Error("timestamp not set")
	}
}

func TestHandler_Ready(t *testing.T) {
	env := newTestEnv(t, "")

	if rec, _ := env.do(t, "GET", "/ready", "", nil); rec.Code != http.StatusOK {
		t.Errorf("GET /ready = %d", rec.Code)
	}

	env.handler.ready = func(context.Context) error { return errors.New("store closed") }
	rec, resp := env.do(t, "GET", "/ready", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /ready = %d, want 503", rec.Code)
	}
	var health HealthResponse
	json.Unmarshal(resp.Data, &health)
	if health.Status != "not_ready" || health.Error != "store closed" {
		t.Errorf("GET /ready data = %+v", health)
	}
}

func TestHandler_Encode(t *testing.T) {
	env := newTestEnv(t, "")

	rec, resp := env.do(t, "POST", "/v1/tokens", `{"kind":"mosaic","params":`+exampleParams+`}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /v1/tokens = %d %s", rec.Code, rec.Body.String())
	}

	var out service.EncodeResponse
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Token != exampleToken || out.Seed != 1177148885 || out.Fingerprint != "45f9c7a0cf239c7f" {
		t.Errorf("POST /v1/tokens data = %+v", out)
	}
}

func TestHandler_Encode_Errors(t *testing.T) {
	env := newTestEnv(t, "")

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed body", `{"kind":`, http.StatusBadRequest, "FX-SYS-4000"},
		{"params not an object", `{"kind":"grid","params":[1,2]}`, http.StatusBadRequest, "FX-SYS-4000"},
		{"unknown kind", `{"kind":"spiral","params":{}}`, http.StatusBadRequest, "FX-TOKN-4001"},
		{"missing params", `{"kind":"grid"}`, http.StatusBadRequest, "FX-TOKN-4002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := env.do(t, "POST", "/v1/tokens", tt.body, nil)
			expectError(t, rec, resp, tt.status, tt.code)
		})
	}
}

func TestHandler_Decode(t *testing.T) {
	env := newTestEnv(t, "")

	tests := []struct {
		name   string
		token  string
		sealed bool
		seed   string
	}{
		{"plain", exampleToken, false, "1177148885"},
		{"sealed", exampleSealed, true, "1407956237"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := env.do(t, "POST", "/v1/tokens/decode", `{"token":"`+tt.token+`"}`, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("POST /v1/tokens/decode = %d %s", rec.Code, rec.Body.String())
			}

			data := string(resp.Data)
			if !strings.Contains(data, `"params":`+exampleParams) {
				t.Errorf("decoded params lost their order: %s", data)
			}
			if !strings.Contains(data, `"seed":`+tt.seed) {
				t.Errorf("decoded seed missing: %s", data)
			}
			var out service.DecodeResponse
			json.Unmarshal(resp.Data, &out)
			if out.Kind != "mosaic" || out.Sealed != tt.sealed {
				t.Errorf("decoded = %+v", out)
			}
		})
	}
}

func TestHandler_Decode_Errors(t *testing.T) {
	env := newTestEnv(t, "")
	tampered := strings.Replace(exampleToken, "45f9c7a0cf239c7f", "0000000000000001", 1)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"empty token", `{"token":""}`, "FX-SYS-4000"},
		{"not a token", `{"token":"hello"}`, "FX-TOKN-4000"},
		{"tampered", `{"token":"` + tampered + `"}`, "FX-TOKN-4000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := env.do(t, "POST", "/v1/tokens/decode", tt.body, nil)
			expectError(t, rec, resp, http.StatusBadRequest, tt.code)
			if strings.Contains(rec.Body.String(), "integrity") {
				t.Errorf("response leaks the failure reason: %s", rec.Body.String())
			}
		})
	}
}

func TestHandler_Seed(t *testing.T) {
	env := newTestEnv(t, "")

	rec, resp := env.do(t, "GET", "/v1/tokens/"+exampleToken+"/seed", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET seed = %d %s", rec.Code, rec.Body.String())
	}
	var out SeedResponse
	json.Unmarshal(resp.Data, &out)
	if out.Seed != 1177148885 {
		t.Errorf("seed = %d, want 1177148885", out.Seed)
	}

	rec, resp = env.do(t, "GET", "/v1/tokens/hello/seed", "", nil)
	expectError(t, rec, resp, http.StatusBadRequest, "FX-TOKN-4000")
}

func TestHandler_ExportFlow(t *testing.T) {
	env := newTestEnv(t, "")
	exportBody := `{"kind":"flow","params":` + exampleParams + `,"email":"Buyer@Example.com"}`

	rec, resp := env.do(t, "POST", "/v1/exports", exportBody, nil)
	expectError(t, rec, resp, http.StatusPaymentRequired, "FX-ACCS-4020")

	rec, resp = env.do(t, "GET", "/v1/access?email=buyer@example.com", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(string(resp.Data), `"granted":false`) {
		t.Errorf("GET /v1/access before grant = %d %s", rec.Code, resp.Data)
	}

	rec, resp = env.do(t, "POST", "/v1/admin/access", `{"email":"buyer@example.com","reference":"manual"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /v1/admin/access = %d %s", rec.Code, rec.Body.String())
	}
	var granted service.GrantResponse
	json.Unmarshal(resp.Data, &granted)
	if !granted.Created || granted.Grant.Source != domain.GrantSourceAdmin || granted.Grant.Reference != "manual" {
		t.Errorf("grant = %+v", granted)
	}

	if rec, _ := env.do(t, "POST", "/v1/admin/access", `{"email":"BUYER@example.com"}`, nil); rec.Code != http.StatusOK {
		t.Errorf("repeat grant status = %d, want 200", rec.Code)
	}

	rec, resp = env.do(t, "POST", "/v1/exports", exportBody, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /v1/exports = %d %s", rec.Code, rec.Body.String())
	}
	var exported service.ExportResponse
	json.Unmarshal(resp.Data, &exported)
	if !strings.HasPrefix(exported.Token, "fx-flow-v2e."+fxtoken.SealedHash+".") {
		t.Errorf("exported token = %q", exported.Token)
	}

	rec, resp = env.do(t, "POST", "/v1/tokens/decode", `{"token":"`+exported.Token+`"}`, nil)
	if rec.Code != http.StatusOK || !strings.Contains(string(resp.Data), `"params":`+exampleParams) {
		t.Errorf("decode exported = %d %s", rec.Code, resp.Data)
	}

	rec, resp = env.do(t, "GET", "/v1/access?email=buyer@example.com", "", nil)
	var status service.AccessStatus
	json.Unmarshal(resp.Data, &status)
	if !status.Granted || status.GrantedAt == nil {
		t.Errorf("GET /v1/access after grant = %+v", status)
	}

	rec, resp = env.do(t, "GET", "/v1/access?email=nobody", "", nil)
	expectError(t, rec, resp, http.StatusBadRequest, "FX-ACCS-4001")
}

func TestHandler_ListAndRevoke(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()

	for _, email := range []string{"b@example.com", "a@example.com"} {
		if _, err := env.access.Grant(ctx, &service.GrantRequest{Email: email}); err != nil {
			t.Fatal(err)
		}
	}

	rec, resp := env.do(t, "GET", "/v1/admin/access", "", nil)
	var list ListAccessResponse
	json.Unmarshal(resp.Data, &list)
	if rec.Code != http.StatusOK || list.Total != 2 || len(list.Items) != 2 {
		t.Fatalf("GET /v1/admin/access = %d %s", rec.Code, resp.Data)
	}

	rec, resp = env.do(t, "POST", "/v1/admin/access/revoke", `{"email":"A@example.com"}`, nil)
	var revoked RevokeAccessResponse
	json.Unmarshal(resp.Data, &revoked)
	if rec.Code != http.StatusOK || !revoked.Revoked || revoked.Email != "a@example.com" {
		t.Errorf("revoke = %d %s", rec.Code, resp.Data)
	}

	rec, resp = env.do(t, "POST", "/v1/admin/access/revoke", `{"email":"a@example.com"}`, nil)
	expectError(t, rec, resp, http.StatusNotFound, "FX-ACCS-4040")

	rec, resp = env.do(t, "POST", "/v1/admin/access/revoke", `{"email":""}`, nil)
	expectError(t, rec, resp, http.StatusBadRequest, "FX-ACCS-4001")
}

func TestHandler_Webhook(t *testing.T) {
	env := newTestEnv(t, testWebhookSecret)

	payload := `{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","customer_details":{"email":"payer@example.com"},"payment_status":"paid"}}}`
	sig := signWebhook(payload, testWebhookSecret)

	rec, resp := env.do(t, "POST", "/v1/payments/webhook", payload, http.Header{service.SignatureHeader: {sig}})
	if rec.Code != http.StatusOK {
		t.Fatalf("webhook = %d %s", rec.Code, rec.Body.String())
	}
	var result service.WebhookResult
	json.Unmarshal(resp.Data, &result)
	if result.Outcome != service.WebhookGranted || result.EventID != "evt_1" {
		t.Errorf("webhook result = %+v", result)
	}

	if ok, _ := env.access.Check(context.Background(), "payer@example.com"); !ok {
		t.Error("webhook did not grant access")
	}

	rec, resp = env.do(t, "POST", "/v1/payments/webhook", payload, http.Header{service.SignatureHeader: {"t=1,v1=00"}})
	expectError(t, rec, resp, http.StatusBadRequest, "FX-PAY-4001")
}

func TestHandler_Webhook_Unconfigured(t *testing.T) {
	env := newTestEnv(t, "")

	rec, resp := env.do(t, "POST", "/v1/payments/webhook", `{}`, nil)
	expectError(t, rec, resp, http.StatusServiceUnavailable, "FX-SYS-5031")
}

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		details any
	}{
		{"domain", domain.ErrAccessRequired, http.StatusPaymentRequired, "FX-ACCS-4020", nil},
		{"with details", domain.ErrBadRequest.WithDetails("email is required"), http.StatusBadRequest, "FX-SYS-4000", "email is required"},
		{"wrapped cause", domain.ErrTokenInvalid.WithCause(fxtoken.ErrIntegrity), http.StatusBadRequest, "FX-TOKN-4000", nil},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "FX-SYS-5000", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteDomainError(rec, httptest.NewRequest("GET", "/", nil), tt.err, nil)

			var env envelope
			json.Unmarshal(rec.Body.Bytes(), &env)
			expectError(t, rec, env, tt.status, tt.code)
			if env.Details != tt.details {
				t.Errorf("details = %v, want %v", env.Details, tt.details)
			}
			if strings.Contains(env.Message, "boom") || strings.Contains(env.Message, "integrity") {
				t.Errorf("message leaks the cause: %q", env.Message)
			}
		})
	}
}

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"FX-TOKN-4000", http.StatusBadRequest},
		{"FX-ACCS-4020", http.StatusPaymentRequired},
		{"FX-ACCS-4030", http.StatusForbidden},
		{"FX-ACCS-4040", http.StatusNotFound},
		{"FX-SYS-4290", http.StatusTooManyRequests},
		{"FX-SYS-5000", http.StatusInternalServerError},
		{"FX-SYS-5030", http.StatusServiceUnavailable},
		{"FX-SYS-2000", http.StatusInternalServerError},
		{"FX-SYS-4990", http.StatusInternalServerError},
		{"FX-SYS-40", http.StatusInternalServerError},
		{"bogus", http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := ErrorCodeToHTTPStatus(tt.code); got != tt.want {
			t.Errorf("ErrorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func signWebhook(payload, secret string) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	}).Header
}
