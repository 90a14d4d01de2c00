package benchmark

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/fxgallery/internal/core/domain"
	"github.com/yndnr/fxgallery/internal/storage"
	"github.com/yndnr/fxgallery/pkg/crypto/aead"
	"github.com/yndnr/fxgallery/pkg/fxtoken"
)

// GrantCounts defines the store sizes for access benchmarks.
var GrantCounts = []int{1000, 10000, 50000}

// SmallGrantCounts for quick benchmarks.
var SmallGrantCounts = []int{100, 1000}

const benchPassphrase = "gallery-export-secret"

// newEmail generates a unique buyer address.
func newEmail() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, _ := ulid.New(ulid.Timestamp(time.Now()), entropy)
	return "buyer-" + strings.ToLower(id.String()) + "@example.com"
}

// benchParams returns parameters shaped like a typical mosaic edition.
func benchParams() *fxtoken.Params {
	return fxtoken.NewParams().
		Set("canvasWidth", 630).
		Set("canvasHeight", 891).
		Set("color1", "#A8DADC").
		Set("color2", "#1D3557").
		Set("tileSize", 14).
		Set("jitter", 0.35).
		Set("title", "Harbour at dusk")
}

// newSealingCodec returns a codec sealing with benchPassphrase.
func newSealingCodec(b *testing.B) *fxtoken.Codec {
	b.Helper()
	c, err := aead.NewFromPassphrase(benchPassphrase, aead.CipherAESGCM)
	if err != nil {
		b.Fatalf("NewFromPassphrase failed: %v", err)
	}
	return fxtoken.NewCodec(fxtoken.WithCipher(c))
}

// newAccessStore opens an in-memory Badger access store.
func newAccessStore(b *testing.B) (*storage.AccessStore, func()) {
	b.Helper()
	engine, err := storage.NewBadgerEngine(storage.InMemoryKVConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		b.Fatalf("NewBadgerEngine failed: %v", err)
	}
	return storage.NewAccessStore(engine), func() { engine.Close() }
}

// prefillStore grants access to count new addresses.
func prefillStore(ctx context.Context, b *testing.B, store *storage.AccessStore, count int) []string {
	b.Helper()
	emails := make([]string, count)
	for i := range emails {
		emails[i] = newEmail()
		if _, _, err := store.Grant(ctx, emails[i], domain.GrantSourcePayment, fmt.Sprintf("cs_bench_%d", i)); err != nil {
			b.Fatalf("Grant failed: %v", err)
		}
	}
	return emails
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithGrantCounts runs a benchmark function with various store sizes.
func runWithGrantCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("grants_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
