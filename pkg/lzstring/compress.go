package lzstring

import (
	"strings"
	"unicode/utf16"
)

// base64Alphabet is the standard Base64 alphabet. '=' sits at index 64 so
// that padding characters decode to a value like any other symbol.
const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/="

// CompressToBase64 compresses s and returns standard, padded Base64 text.
func CompressToBase64(s string) string {
	out := compress(utf16.Encode([]rune(s)), 6, func(v int) byte {
		return base64Alphabet[v]
	})

	switch len(out) % 4 {
	case 1:
		return out + "==="
	case 2:
		return out + "=="
	case 3:
		return out + "="
	default:
		return out
	}
}

// bitWriter packs values least-significant bit first into characters of
// bitsPerChar bits each.
type bitWriter struct {
	bitsPerChar int
	toChar      func(int) byte
	val         int
	pos         int
	out         strings.Builder
}

func (w *bitWriter) write(value, n int) {
	for i := 0; i < n; i++ {
		w.val = (w.val << 1) | (value & 1)
		if w.pos == w.bitsPerChar-1 {
			w.pos = 0
			w.out.WriteByte(w.toChar(w.val))
			w.val = 0
		} else {
			w.pos++
		}
		value >>= 1
	}
}

// flush pads the pending character with zero bits and emits it.
func (w *bitWriter) flush() {
	for {
		w.val <<= 1
		if w.pos == w.bitsPerChar-1 {
			w.out.WriteByte(w.toChar(w.val))
			return
		}
		w.pos++
	}
}

// unitKey turns a UTF-16 code unit into a two byte dictionary key.
func unitKey(c uint16) string {
	return string([]byte{byte(c >> 8), byte(c)})
}

// compressor carries the dictionary state of one compression run.
type compressor struct {
	w *bitWriter

	dictionary map[string]int
	pending    map[string]bool
	dictSize   int
	numBits    int
	enlargeIn  int
}

// consume decrements the enlarge counter and widens codes when it runs out.
func (c *compressor) consume() {
	c.enlargeIn--
	if c.enlargeIn == 0 {
		c.enlargeIn = 1 << c.numBits
		c.numBits++
	}
}

// emit writes the code for the phrase key whose first unit is first.
func (c *compressor) emit(key string, first uint16) {
	if c.pending[key] {
		if first < 256 {
			c.w.write(0, c.numBits)
			c.w.write(int(first), 8)
		} else {
			c.w.write(1, c.numBits)
			c.w.write(int(first), 16)
		}
		c.consume()
		delete(c.pending, key)
	} else {
		c.w.write(c.dictionary[key], c.numBits)
	}
	c.consume()
}

func compress(units []uint16, bitsPerChar int, toChar func(int) byte) string {
	c := &compressor{
		w:          &bitWriter{bitsPerChar: bitsPerChar, toChar: toChar},
		dictionary: make(map[string]int),
		pending:    make(map[string]bool),
		dictSize:   3,
		numBits:    2,
		// The first literal does not count towards enlargement.
		enlargeIn: 2,
	}

	var (
		wKey   string
		wFirst uint16
	)

	for _, unit := range units {
		cKey := unitKey(unit)
		if _, ok := c.dictionary[cKey]; !ok {
			c.dictionary[cKey] = c.dictSize
			c.dictSize++
			c.pending[cKey] = true
		}

		wcKey := wKey + cKey
		if _, ok := c.dictionary[wcKey]; ok {
			if wKey == "" {
				wFirst = unit
			}
			wKey = wcKey
			continue
		}

		c.emit(wKey, wFirst)

		c.dictionary[wcKey] = c.dictSize
		c.dictSize++
		wKey = cKey
		wFirst = unit
	}

	if wKey != "" {
		c.emit(wKey, wFirst)
	}

	// End of stream marker.
	c.w.write(2, c.numBits)
	c.w.flush()

	return c.w.out.String()
}
