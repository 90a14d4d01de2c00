package service

import (
	"context"
	"io"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/yndnr/fxgallery/internal/core/domain"
	"github.com/yndnr/fxgallery/internal/telemetry/metric"
)

// mockAccessRepo is an in-memory AccessRepository.
type mockAccessRepo struct {
	mu     sync.Mutex
	grants map[string]*domain.Grant
	err    error
}

func newMockAccessRepo() *mockAccessRepo {
	return &mockAccessRepo{grants: make(map[string]*domain.Grant)}
}

func (m *mockAccessRepo) Grant(_ context.Context, email string, source domain.GrantSource, reference string) (*domain.Grant, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	g, err := domain.NewGrant(email, source, reference)
	if err != nil {
		return nil, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.grants[g.Email]; ok {
		return existing.Clone(), false, nil
	}
	m.grants[g.Email] = g
	return g.Clone(), true, nil
}

func (m *mockAccessRepo) Get(_ context.Context, email string) (*domain.Grant, error) {
	if m.err != nil {
		return nil, m.err
	}
	normalized, err := domain.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.grants[normalized]
	if !ok {
		return nil, domain.ErrGrantNotFound
	}
	return g.Clone(), nil
}

func (m *mockAccessRepo) Revoke(ctx context.Context, email string) error {
	g, err := m.Get(ctx, email)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.grants, g.Email)
	return nil
}

func (m *mockAccessRepo) List(_ context.Context) ([]*domain.Grant, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	grants := make([]*domain.Grant, 0, len(m.grants))
	for _, g := range m.grants {
		grants = append(grants, g.Clone())
	}
	sort.Slice(grants, func(i, j int) bool { return grants[i].Email < grants[j].Email })
	return grants, nil
}

// staticChecker answers Check with a fixed result.
type staticChecker struct {
	granted bool
	err     error
	calls   int
}

func (c *staticChecker) Check(context.Context, string) (bool, error) {
	c.calls++
	return c.granted, c.err
}

// scrapeMetric returns the exposition line that starts with prefix.
func scrapeMetric(t *testing.T, r *metric.Registry, prefix string) string {
	t.Helper()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, line := range strings.Split(string(body), "\n") {
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}
	return ""
}
