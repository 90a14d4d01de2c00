package fxtoken

import (
	"crypto/subtle"
	"strconv"
	"strings"
	"unicode/utf16"
)

// FingerprintLength is the number of hex characters in a fingerprint.
const FingerprintLength = 16

// Fingerprint computes the 16 character integrity hash of text.
//
// Two 32-bit rolling hashes run over the UTF-16 code units:
//
//	a = 5381; a = ((a << 5) + a) ^ c
//	b = 0;    b = c + (b << 6) + (b << 16) - b
//
// Their unpadded hex forms are concatenated, left-padded with zeros and
// cut to 16 characters.
func Fingerprint(text string) string {
	a := uint32(5381)
	var b uint32
	for _, unit := range utf16.Encode([]rune(text)) {
		c := uint32(unit)
		a = ((a << 5) + a) ^ c
		b = c + (b << 6) + (b << 16) - b
	}

	joined := strconv.FormatUint(uint64(a), 16) + strconv.FormatUint(uint64(b), 16)
	if len(joined) < FingerprintLength {
		joined = strings.Repeat("0", FingerprintLength-len(joined)) + joined
	}
	return joined[:FingerprintLength]
}

// VerifyFingerprint reports whether hash is the fingerprint of text.
func VerifyFingerprint(text, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(Fingerprint(text)), []byte(hash)) == 1
}
