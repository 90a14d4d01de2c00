// Package storage persists export access grants.
//
// KVEngine abstracts the embedded key-value store; BadgerEngine implements it
// on Badger v3, on disk or fully in memory. AccessStore layers the grant model
// on top of a KVEngine.
//
// Key layout:
//
//	access/<normalized email> -> JSON encoded domain.Grant
package storage
