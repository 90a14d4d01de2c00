// Package cmap provides a sharded concurrent map keyed by strings.
//
// Keys are spread over a power-of-two number of shards, each guarded by
// its own RWMutex, so writers for different keys rarely contend. The
// server keeps one rate limiter per client address in it.
//
// Usage:
//
//	m := cmap.New[*Bucket]()
//	b := m.GetOrCreate("203.0.113.7", newBucket)
//	removed := m.DeleteFunc(func(key string, b *Bucket) bool { return b.Idle() })
//
// Range and DeleteFunc visit one shard at a time, so they never see a
// consistent snapshot of the whole map.
package cmap
