// Package lzstring implements the LZ-based string compression used by
// fxgallery share tokens.
//
// The algorithm works on UTF-16 code units and emits a bit stream packed
// into characters of a fixed width. The Base64 variant packs 6 bits per
// character using the standard Base64 alphabet and pads the result with '='
// to a multiple of four characters.
//
// Output is bit-compatible with the lz-string JavaScript library
// (compressToBase64 / decompressFromBase64), which is how tokens issued by
// the browser gallery were produced.
//
// Decompression never panics on malformed input: it reports failure with
// ok == false.
package lzstring
