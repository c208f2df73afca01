package wire

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CoordinateEntry is one (dimension, value) pair of a tile coordinate.
type CoordinateEntry struct {
	Dimension Dimension
	Value     int32
}

// TileCoordinate maps dimensions to values, at most one value per dimension.
// Entries are kept sorted by dimension so that the encoded form is stable.
// The zero value is an empty coordinate.
type TileCoordinate struct {
	entries []CoordinateEntry
}

// NewTileCoordinate builds a coordinate from entries. A dimension may appear
// only once.
func NewTileCoordinate(entries ...CoordinateEntry) (TileCoordinate, error) {
	var c TileCoordinate
	for _, e := range entries {
		if _, ok := c.Get(e.Dimension); ok {
			return TileCoordinate{}, fmt.Errorf("%w: %s", ErrDuplicateDimension, e.Dimension)
		}
		if err := c.Set(e.Dimension, e.Value); err != nil {
			return TileCoordinate{}, err
		}
	}
	return c, nil
}

// Set assigns v to dimension d, replacing any previous value.
func (c *TileCoordinate) Set(d Dimension, v int32) error {
	if !d.Valid() {
		return fmt.Errorf("%w: 0x%02x", ErrInvalidDimension, byte(d))
	}
	i := sort.Search(len(c.entries), func(i int) bool { return c.entries[i].Dimension >= d })
	if i < len(c.entries) && c.entries[i].Dimension == d {
		c.entries[i].Value = v
		return nil
	}
	c.entries = append(c.entries, CoordinateEntry{})
	copy(c.entries[i+1:], c.entries[i:])
	c.entries[i] = CoordinateEntry{Dimension: d, Value: v}
	return nil
}

// Get returns the value for d.
func (c TileCoordinate) Get(d Dimension) (int32, bool) {
	i := sort.Search(len(c.entries), func(i int) bool { return c.entries[i].Dimension >= d })
	if i < len(c.entries) && c.entries[i].Dimension == d {
		return c.entries[i].Value, true
	}
	return 0, false
}

// Len returns the number of dimensions in c.
func (c TileCoordinate) Len() int { return len(c.entries) }

// Entries returns a copy of the entries in dimension order.
func (c TileCoordinate) Entries() []CoordinateEntry {
	return append([]CoordinateEntry(nil), c.entries...)
}

// Equal reports whether c and o hold the same set of (dimension, value) pairs.
func (c TileCoordinate) Equal(o TileCoordinate) bool {
	if len(c.entries) != len(o.entries) {
		return false
	}
	for i := range c.entries {
		if c.entries[i] != o.entries[i] {
			return false
		}
	}
	return true
}

// String formats c as "C1T2".
func (c TileCoordinate) String() string {
	var sb strings.Builder
	for _, e := range c.entries {
		sb.WriteByte(byte(e.Dimension))
		sb.WriteString(strconv.FormatInt(int64(e.Value), 10))
	}
	return sb.String()
}

// ParseTileCoordinate parses the String form, e.g. "C1T2Z-3".
func ParseTileCoordinate(s string) (TileCoordinate, error) {
	var c TileCoordinate
	p := parser{s: s}
	for !p.done() {
		d, err := p.dimension()
		if err != nil {
			return TileCoordinate{}, err
		}
		v, err := p.integer()
		if err != nil {
			return TileCoordinate{}, err
		}
		if _, ok := c.Get(d); ok {
			return TileCoordinate{}, fmt.Errorf("%w: %s", ErrDuplicateDimension, d)
		}
		if err := c.Set(d, v); err != nil {
			return TileCoordinate{}, err
		}
	}
	return c, nil
}

// MarshalBinary encodes c as a count-prefixed array of coordinate records.
func (c TileCoordinate) MarshalBinary() ([]byte, error) {
	b := make([]byte, countHeaderSize+len(c.entries)*CoordinateRecordSize)
	order.PutUint32(b, uint32(len(c.entries)))
	for i, e := range c.entries {
		rec := b[countHeaderSize+i*CoordinateRecordSize:]
		rec[0] = byte(e.Dimension)
		order.PutUint32(rec[4:], uint32(e.Value))
	}
	return b, nil
}

// UnmarshalBinary decodes a coordinate written by MarshalBinary or filled in
// by the native side.
func (c *TileCoordinate) UnmarshalBinary(b []byte) error {
	n, err := readCount(b, CoordinateRecordSize)
	if err != nil {
		return err
	}
	var out TileCoordinate
	for i := 0; i < n; i++ {
		rec := b[countHeaderSize+i*CoordinateRecordSize:]
		d := Dimension(rec[0])
		if _, ok := out.Get(d); ok {
			return fmt.Errorf("%w: %s", ErrDuplicateDimension, d)
		}
		if err := out.Set(d, int32(order.Uint32(rec[4:]))); err != nil {
			return err
		}
	}
	*c = out
	return nil
}

// NewCoordinateBuffer returns an output buffer the native side can fill with
// up to capacity coordinate records. The count header holds the capacity.
func NewCoordinateBuffer(capacity int) []byte {
	b := make([]byte, countHeaderSize+capacity*CoordinateRecordSize)
	order.PutUint32(b, uint32(capacity))
	return b
}

// CoordinateCapacity returns the capacity stored in an output buffer's header.
func CoordinateCapacity(b []byte) (int, error) {
	return readCount(b, CoordinateRecordSize)
}
