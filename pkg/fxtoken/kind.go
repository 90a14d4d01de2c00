package fxtoken

import "fmt"

// Kind identifies the artwork generator a token targets.
type Kind string

const (
	KindFlow    Kind = "flow"
	KindGrid    Kind = "grid"
	KindMosaic  Kind = "mosaic"
	KindRotated Kind = "rotated"
	KindTree    Kind = "tree"
	KindText    Kind = "text"
)

// Kinds lists every supported generator in token grammar order.
var Kinds = []Kind{KindFlow, KindGrid, KindMosaic, KindRotated, KindTree, KindText}

// Valid reports whether k is a supported generator.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind converts a string into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

func (k Kind) String() string {
	return string(k)
}
