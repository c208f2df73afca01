package wire

import "fmt"

// Dimension is a single ASCII letter naming a coordinate axis.
type Dimension byte

// NewDimension validates r and converts it to a Dimension.
func NewDimension(r rune) (Dimension, error) {
	if !isLetter(r) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDimension, r)
	}
	return Dimension(r), nil
}

// MustDimension is like NewDimension but panics on an invalid rune.
func MustDimension(r rune) Dimension {
	d, err := NewDimension(r)
	if err != nil {
		panic(err)
	}
	return d
}

// Valid reports whether d is an ASCII letter.
func (d Dimension) Valid() bool {
	return isLetter(rune(d))
}

func (d Dimension) String() string {
	return string(rune(d))
}

// ParseDimensions converts a string such as "CTZ" into dimensions.
func ParseDimensions(s string) ([]Dimension, error) {
	dims := make([]Dimension, 0, len(s))
	seen := make(map[Dimension]bool, len(s))
	for _, r := range s {
		d, err := NewDimension(r)
		if err != nil {
			return nil, err
		}
		if seen[d] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDimension, d)
		}
		seen[d] = true
		dims = append(dims, d)
	}
	return dims, nil
}

// EncodeDimensions returns dims as a byte array, one byte per dimension.
func EncodeDimensions(dims []Dimension) ([]byte, error) {
	b := make([]byte, len(dims))
	for i, d := range dims {
		if !d.Valid() {
			return nil, fmt.Errorf("%w: 0x%02x", ErrInvalidDimension, byte(d))
		}
		b[i] = byte(d)
	}
	return b, nil
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
