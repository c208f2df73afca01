package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// RangeCondition restricts a dimension to the inclusive range [Start, End].
type RangeCondition struct {
	Dimension Dimension
	Start     int32
	End       int32
}

// Contains reports whether v lies within the inclusive range.
func (r RangeCondition) Contains(v int32) bool {
	return v >= r.Start && v <= r.End
}

// DimensionQueryClause is an ordered list of range conditions. The engine
// ANDs all conditions together.
type DimensionQueryClause struct {
	Conditions []RangeCondition
}

// Add appends a condition for d.
func (q *DimensionQueryClause) Add(d Dimension, start, end int32) error {
	if !d.Valid() {
		return fmt.Errorf("%w: 0x%02x", ErrInvalidDimension, byte(d))
	}
	q.Conditions = append(q.Conditions, RangeCondition{Dimension: d, Start: start, End: end})
	return nil
}

// Matches reports whether coord satisfies every condition. A condition on a
// dimension the coordinate does not have never matches.
func (q DimensionQueryClause) Matches(coord TileCoordinate) bool {
	for _, c := range q.Conditions {
		v, ok := coord.Get(c.Dimension)
		if !ok || !c.Contains(v) {
			return false
		}
	}
	return true
}

// MarshalBinary encodes q as a count-prefixed array of range records.
func (q DimensionQueryClause) MarshalBinary() ([]byte, error) {
	b := make([]byte, countHeaderSize+len(q.Conditions)*RangeConditionRecordSize)
	order.PutUint32(b, uint32(len(q.Conditions)))
	for i, c := range q.Conditions {
		if !c.Dimension.Valid() {
			return nil, fmt.Errorf("%w: 0x%02x", ErrInvalidDimension, byte(c.Dimension))
		}
		rec := b[countHeaderSize+i*RangeConditionRecordSize:]
		rec[0] = byte(c.Dimension)
		order.PutUint32(rec[4:], uint32(c.Start))
		order.PutUint32(rec[8:], uint32(c.End))
	}
	return b, nil
}

// UnmarshalBinary decodes a clause written by MarshalBinary.
func (q *DimensionQueryClause) UnmarshalBinary(b []byte) error {
	n, err := readCount(b, RangeConditionRecordSize)
	if err != nil {
		return err
	}
	conds := make([]RangeCondition, n)
	for i := range conds {
		rec := b[countHeaderSize+i*RangeConditionRecordSize:]
		d := Dimension(rec[0])
		if !d.Valid() {
			return fmt.Errorf("%w: 0x%02x", ErrInvalidDimension, rec[0])
		}
		conds[i] = RangeCondition{
			Dimension: d,
			Start:     int32(order.Uint32(rec[4:])),
			End:       int32(order.Uint32(rec[8:])),
		}
	}
	q.Conditions = conds
	return nil
}

// ParseDimensionQuery parses the compact query syntax: zero or more
// "<letter><start>,<end>" terms with no separators between terms, for
// example "A3,5C3,9X-1,-3". The empty string yields an empty clause.
func ParseDimensionQuery(s string) (DimensionQueryClause, error) {
	var q DimensionQueryClause
	p := parser{s: s}
	for !p.done() {
		d, err := p.dimension()
		if err != nil {
			return DimensionQueryClause{}, err
		}
		start, err := p.integer()
		if err != nil {
			return DimensionQueryClause{}, err
		}
		if err := p.expect(','); err != nil {
			return DimensionQueryClause{}, err
		}
		end, err := p.integer()
		if err != nil {
			return DimensionQueryClause{}, err
		}
		q.Conditions = append(q.Conditions, RangeCondition{Dimension: d, Start: start, End: end})
	}
	return q, nil
}

// FormatDimensionQuery is the inverse of ParseDimensionQuery.
func FormatDimensionQuery(q DimensionQueryClause) string {
	var sb strings.Builder
	for _, c := range q.Conditions {
		sb.WriteByte(byte(c.Dimension))
		sb.WriteString(strconv.FormatInt(int64(c.Start), 10))
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatInt(int64(c.End), 10))
	}
	return sb.String()
}
