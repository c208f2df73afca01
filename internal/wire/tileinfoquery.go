package wire

import "fmt"

// LogicalOperator joins a pyramid-level condition to the one before it.
type LogicalOperator uint8

const (
	LogicalNone LogicalOperator = 0
	LogicalAnd  LogicalOperator = 1
	LogicalOr   LogicalOperator = 2
)

func (o LogicalOperator) String() string {
	switch o {
	case LogicalNone:
		return "none"
	case LogicalAnd:
		return "and"
	case LogicalOr:
		return "or"
	default:
		return fmt.Sprintf("LogicalOperator(%d)", uint8(o))
	}
}

// ComparisonOperator compares the pyramid level against a value.
type ComparisonOperator uint8

const (
	CompareInvalid        ComparisonOperator = 0
	CompareEqual          ComparisonOperator = 1
	CompareNotEqual       ComparisonOperator = 2
	CompareLess           ComparisonOperator = 3
	CompareLessOrEqual    ComparisonOperator = 4
	CompareGreater        ComparisonOperator = 5
	CompareGreaterOrEqual ComparisonOperator = 6
)

func (o ComparisonOperator) String() string {
	switch o {
	case CompareEqual:
		return "="
	case CompareNotEqual:
		return "!="
	case CompareLess:
		return "<"
	case CompareLessOrEqual:
		return "<="
	case CompareGreater:
		return ">"
	case CompareGreaterOrEqual:
		return ">="
	default:
		return fmt.Sprintf("ComparisonOperator(%d)", uint8(o))
	}
}

// Compare evaluates "a <op> b".
func (o ComparisonOperator) Compare(a, b int32) bool {
	switch o {
	case CompareEqual:
		return a == b
	case CompareNotEqual:
		return a != b
	case CompareLess:
		return a < b
	case CompareLessOrEqual:
		return a <= b
	case CompareGreater:
		return a > b
	case CompareGreaterOrEqual:
		return a >= b
	default:
		return false
	}
}

// PyramidLevelCondition is one predicate on the pyramid level.
type PyramidLevelCondition struct {
	Logical    LogicalOperator
	Comparison ComparisonOperator
	Value      int32
}

// TileInfoQueryClause is an ordered list of pyramid-level predicates,
// combined left to right.
type TileInfoQueryClause struct {
	Conditions []PyramidLevelCondition
}

// Add appends a predicate. The logical operator of the first predicate must
// be LogicalNone and that of every later one LogicalAnd or LogicalOr.
func (q *TileInfoQueryClause) Add(logical LogicalOperator, cmp ComparisonOperator, value int32) error {
	c := PyramidLevelCondition{Logical: logical, Comparison: cmp, Value: value}
	if err := validateCondition(len(q.Conditions), c); err != nil {
		return err
	}
	q.Conditions = append(q.Conditions, c)
	return nil
}

// Validate checks operator placement and values.
func (q TileInfoQueryClause) Validate() error {
	for i, c := range q.Conditions {
		if err := validateCondition(i, c); err != nil {
			return err
		}
	}
	return nil
}

func validateCondition(i int, c PyramidLevelCondition) error {
	if c.Comparison < CompareEqual || c.Comparison > CompareGreaterOrEqual {
		return fmt.Errorf("%w: comparison %d in condition %d", ErrInvalidOperator, uint8(c.Comparison), i)
	}
	if i == 0 {
		if c.Logical != LogicalNone {
			return fmt.Errorf("%w: first condition must not have logical operator %s", ErrInvalidOperator, c.Logical)
		}
		return nil
	}
	if c.Logical != LogicalAnd && c.Logical != LogicalOr {
		return fmt.Errorf("%w: logical %s in condition %d", ErrInvalidOperator, c.Logical, i)
	}
	return nil
}

// Matches evaluates the clause against level. An empty clause matches
// everything.
func (q TileInfoQueryClause) Matches(level int32) bool {
	if len(q.Conditions) == 0 {
		return true
	}
	result := q.Conditions[0].Comparison.Compare(level, q.Conditions[0].Value)
	for _, c := range q.Conditions[1:] {
		v := c.Comparison.Compare(level, c.Value)
		switch c.Logical {
		case LogicalAnd:
			result = result && v
		case LogicalOr:
			result = result || v
		}
	}
	return result
}

// MarshalBinary encodes q as a count-prefixed array of predicate records.
func (q TileInfoQueryClause) MarshalBinary() ([]byte, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	b := make([]byte, countHeaderSize+len(q.Conditions)*PyramidConditionRecordSize)
	order.PutUint32(b, uint32(len(q.Conditions)))
	for i, c := range q.Conditions {
		rec := b[countHeaderSize+i*PyramidConditionRecordSize:]
		rec[0] = byte(c.Logical)
		rec[1] = byte(c.Comparison)
		order.PutUint32(rec[4:], uint32(c.Value))
	}
	return b, nil
}

// UnmarshalBinary decodes a clause written by MarshalBinary.
func (q *TileInfoQueryClause) UnmarshalBinary(b []byte) error {
	n, err := readCount(b, PyramidConditionRecordSize)
	if err != nil {
		return err
	}
	out := TileInfoQueryClause{Conditions: make([]PyramidLevelCondition, n)}
	for i := range out.Conditions {
		rec := b[countHeaderSize+i*PyramidConditionRecordSize:]
		out.Conditions[i] = PyramidLevelCondition{
			Logical:    LogicalOperator(rec[0]),
			Comparison: ComparisonOperator(rec[1]),
			Value:      int32(order.Uint32(rec[4:])),
		}
	}
	if err := out.Validate(); err != nil {
		return err
	}
	*q = out
	return nil
}
