package lzstring

import (
	"math"
	"unicode/utf16"
)

// base64Values maps a Base64 alphabet byte to its 6-bit value. Bytes outside
// the alphabet map to zero.
var base64Values = func() [256]int {
	var table [256]int
	for i := 0; i < len(base64Alphabet); i++ {
		table[base64Alphabet[i]] = i
	}
	return table
}()

// DecompressFromBase64 reverses CompressToBase64. It returns ok == false when
// the input is empty or is not a valid compressed stream.
func DecompressFromBase64(s string) (string, bool) {
	return DecompressFromBase64Limit(s, 0)
}

// DecompressFromBase64Limit is DecompressFromBase64 with a bound on the
// output. It returns ok == false as soon as the output, or the dictionary
// built while decoding, would exceed maxUnits UTF-16 code units. A
// non-positive maxUnits means no bound.
func DecompressFromBase64Limit(s string, maxUnits int) (string, bool) {
	if s == "" {
		return "", false
	}

	units, ok := decompress(len(s), 32, maxUnits, func(i int) int {
		if i >= len(s) {
			return 0
		}
		return base64Values[s[i]]
	})
	if !ok {
		return "", false
	}
	return string(utf16.Decode(units)), true
}

// bitReader reads values least-significant bit first from a character
// stream of resetValue-wide characters.
type bitReader struct {
	next       func(int) int
	resetValue int
	val        int
	position   int
	index      int
}

func (r *bitReader) read(n int) int {
	bits := 0
	maxPower := 1 << n
	for power := 1; power != maxPower; power <<= 1 {
		resb := r.val & r.position
		r.position >>= 1
		if r.position == 0 {
			r.position = r.resetValue
			r.val = r.next(r.index)
			r.index++
		}
		if resb > 0 {
			bits |= power
		}
	}
	return bits
}

func decompress(length, resetValue, maxUnits int, next func(int) int) ([]uint16, bool) {
	if maxUnits <= 0 {
		maxUnits = math.MaxInt
	}
	// Each phrase is the previous entry plus one unit, so a valid stream
	// holds at most about twice its output in the dictionary.
	dictLimit := maxUnits
	if maxUnits <= math.MaxInt/2 {
		dictLimit = 2 * maxUnits
	}

	r := &bitReader{
		next:       next,
		resetValue: resetValue,
		val:        next(0),
		position:   resetValue,
		index:      1,
	}

	// Slots 0..2 are reserved for the literal and end-of-stream codes.
	dictionary := make([][]uint16, 3, 64)
	dictSize := 4
	numBits := 3
	enlargeIn := 4

	var c []uint16
	switch r.read(2) {
	case 0:
		c = []uint16{uint16(r.read(8))}
	case 1:
		c = []uint16{uint16(r.read(16))}
	case 2:
		return nil, true
	default:
		return nil, false
	}
	dictionary = append(dictionary, c)

	w := c
	result := append([]uint16(nil), c...)
	dictUnits := len(c)

	for {
		if r.index > length {
			return nil, false
		}

		code := r.read(numBits)
		switch code {
		case 0:
			dictionary = append(dictionary, []uint16{uint16(r.read(8))})
			dictSize++
			code = dictSize - 1
			enlargeIn--
		case 1:
			dictionary = append(dictionary, []uint16{uint16(r.read(16))})
			dictSize++
			code = dictSize - 1
			enlargeIn--
		case 2:
			return result, true
		}

		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}

		var entry []uint16
		switch {
		case code < len(dictionary) && code >= 3:
			entry = dictionary[code]
		case code == dictSize:
			if len(w)+1 > maxUnits {
				return nil, false
			}
			entry = make([]uint16, 0, len(w)+1)
			entry = append(entry, w...)
			entry = append(entry, w[0])
		default:
			return nil, false
		}
		if len(entry) > maxUnits-len(result) {
			return nil, false
		}
		result = append(result, entry...)

		dictUnits += len(w) + 1
		if dictUnits > dictLimit {
			return nil, false
		}
		phrase := make([]uint16, 0, len(w)+1)
		phrase = append(phrase, w...)
		phrase = append(phrase, entry[0])
		dictionary = append(dictionary, phrase)
		dictSize++
		enlargeIn--

		w = entry

		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}
	}
}
