package fxtoken

import (
	"strings"

	"github.com/yndnr/fxgallery/pkg/lzstring"
)

var (
	toURLSafe   = strings.NewReplacer("+", "-", "/", "_", "=", "")
	fromURLSafe = strings.NewReplacer("-", "+", "_", "/")
)

// Compress compresses text into a URL-safe code: lz-string Base64 with '+'
// and '/' replaced by '-' and '_' and the '=' padding removed.
func Compress(text string) string {
	return toURLSafe.Replace(lzstring.CompressToBase64(text))
}

// DefaultMaxDecodedLength bounds the decompressed canonical form in UTF-16
// code units. A short code can expand to millions of units, so the bound is
// enforced while decompressing rather than afterwards.
const DefaultMaxDecodedLength = 64 << 10

// Decompress reverses Compress. An empty or malformed code, or one that
// expands past DefaultMaxDecodedLength, yields ErrDecompression.
func Decompress(code string) (string, error) {
	return decompress(code, DefaultMaxDecodedLength)
}

func decompress(code string, maxUnits int) (string, error) {
	if code == "" {
		return "", ErrDecompression
	}

	std := fromURLSafe.Replace(code)
	if pad := len(std) % 4; pad != 0 {
		std += strings.Repeat("=", 4-pad)
	}

	text, ok := lzstring.DecompressFromBase64Limit(std, maxUnits)
	if !ok || text == "" {
		return "", ErrDecompression
	}
	return text, nil
}
