package wire

import (
	"fmt"
	"math"
)

// QueryResult holds the keys the engine returned for a query. Complete is
// false when the engine had more matches than the buffer could hold.
type QueryResult struct {
	Keys     []int64
	Complete bool
}

// NewQueryResultBuffer allocates a result buffer for up to capacity keys.
// The count header carries the capacity into the call.
func NewQueryResultBuffer(capacity int) ([]byte, error) {
	if capacity < 0 || capacity > math.MaxUint32 || capacity > (math.MaxInt-QueryResultHeaderSize)/QueryResultKeySize {
		return nil, fmt.Errorf("%w: capacity %d", ErrInvalidCount, capacity)
	}
	b := make([]byte, QueryResultHeaderSize+capacity*QueryResultKeySize)
	order.PutUint32(b, uint32(capacity))
	return b, nil
}

// QueryResultCapacity returns how many keys b can hold.
func QueryResultCapacity(b []byte) (int, error) {
	if len(b) < QueryResultHeaderSize {
		return 0, ErrTruncated
	}
	return (len(b) - QueryResultHeaderSize) / QueryResultKeySize, nil
}

// FillQueryResult writes as many of keys as fit into b and sets the
// "more results available" flag when some were left out.
func FillQueryResult(b []byte, keys []int64) error {
	capacity, err := QueryResultCapacity(b)
	if err != nil {
		return err
	}
	if declared := int(order.Uint32(b)); declared < capacity {
		capacity = declared
	}
	n := len(keys)
	more := uint32(0)
	if n > capacity {
		n = capacity
		more = 1
	}
	order.PutUint32(b, uint32(n))
	order.PutUint32(b[4:], more)
	for i := 0; i < n; i++ {
		order.PutUint64(b[QueryResultHeaderSize+i*QueryResultKeySize:], uint64(keys[i]))
	}
	return nil
}

// DecodeQueryResult reads a buffer filled by the native side.
func DecodeQueryResult(b []byte) (QueryResult, error) {
	capacity, err := QueryResultCapacity(b)
	if err != nil {
		return QueryResult{}, err
	}
	n := int(order.Uint32(b))
	if n > capacity {
		return QueryResult{}, fmt.Errorf("%w: %d keys reported, buffer holds %d", ErrTruncated, n, capacity)
	}
	res := QueryResult{
		Keys:     make([]int64, n),
		Complete: order.Uint32(b[4:]) == 0,
	}
	for i := range res.Keys {
		res.Keys[i] = int64(order.Uint64(b[QueryResultHeaderSize+i*QueryResultKeySize:]))
	}
	return res, nil
}
