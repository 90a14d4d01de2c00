package command

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	exampleParams = `{"canvasWidth":630,"color1":"#A8DADC"}`
	exampleToken  = "fx-mosaic-v2.45f9c7a0cf239c7f.N4IgxghgdgbhDOB1AlgEwC4AsQC4BsAzAAwA04A9gDbkBOAjLiAMQCCAHACIscDCIAvkA"
	exampleSealed = "fx-mosaic-v2e.0000000000000000.AAECAwQFBgcICQoLOmSgHIUw_kH6T5fPAwpITtdnjPOKwDz_kcBWtdywIg8DPcOmXysd_E5_d4wQN8NnPtBlvtEl6uAhHxZ0Z-BEaD9cS4tgpINtrlzDd6XIFrnVB6xI2w"
	examplePass   = "gallery-export-secret"
	testAdminKey  = "curator-key"
)

// mockServer is a test HTTP server that answers with response envelopes.
type mockServer struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []*http.Request
}

func newMockServer(t *testing.T) *mockServer {
	t.Helper()

	m := &mockServer{handlers: make(map[string]http.HandlerFunc)}
	m.Server = httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(m.Close)
	return m
}

func (m *mockServer) serve(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requests = append(m.requests, r)
	handler, ok := m.handlers[r.Method+" "+r.URL.Path]
	m.mu.Unlock()

	if !ok {
		errorResponse(w, http.StatusNotFound, "FX-SYS-4040", "not found")
		return
	}
	handler(w, r)
}

// handle registers a handler for "METHOD /path".
func (m *mockServer) handle(pattern string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[pattern] = handler
}

func (m *mockServer) requestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// jsonResponse writes a success envelope.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"code":       "OK",
		"message":    "Success",
		"request_id": "req-test",
		"timestamp":  time.Now().UnixMilli(),
		"data":       data,
	})
}

// errorResponse writes an error envelope.
func errorResponse(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"code":       code,
		"message":    message,
		"request_id": "req-test",
		"timestamp":  time.Now().UnixMilli(),
	})
}

// requireAdmin rejects requests without the test admin key.
func requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Admin-Key") != testAdminKey {
			errorResponse(w, http.StatusForbidden, "FX-ACCS-4030", "admin credentials required")
			return
		}
		next(w, r)
	}
}

// runCLI runs the app with an isolated config file.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return runCLIWithConfig(t, filepath.Join(t.TempDir(), "cli.yaml"), stdin, args...)
}

func runCLIWithConfig(t *testing.T, configPath, stdin string, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.Reader = strings.NewReader(stdin)

	full := append([]string{"fxtoken", "--config", configPath}, args...)
	err := app.Run(full)
	return stdout.String(), err
}
