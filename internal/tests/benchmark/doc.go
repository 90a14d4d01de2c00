// Package benchmark provides end-to-end performance benchmarks for
// fxgallery: token round trips, the Badger-backed access store and the
// HTTP API.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Run the access store benchmarks against more grants:
//
//	go test -bench=BenchmarkAccess -benchmem -benchtime=10s ./internal/tests/benchmark/...
//
// Compare results:
//
//	benchstat old.txt new.txt
package benchmark
