package wire

import "fmt"

// LayerCount is the number of tiles on one pyramid level.
type LayerCount struct {
	PyramidLevel int32
	Count        uint64
}

// NewLayerCountBuffer allocates a buffer with room for capacity records.
func NewLayerCountBuffer(capacity int) []byte {
	b := make([]byte, LayerCountHeaderSize+capacity*LayerCountRecordSize)
	order.PutUint32(b, uint32(capacity))
	return b
}

// FillLayerCounts writes as many counts as the buffer was allocated for and
// reports the total number available.
func FillLayerCounts(b []byte, counts []LayerCount) error {
	if len(b) < LayerCountHeaderSize {
		return ErrTruncated
	}
	allocated := int(order.Uint32(b))
	if (len(b)-LayerCountHeaderSize)/LayerCountRecordSize < allocated {
		return ErrTruncated
	}
	order.PutUint32(b[4:], uint32(len(counts)))
	for i := 0; i < len(counts) && i < allocated; i++ {
		rec := b[LayerCountHeaderSize+i*LayerCountRecordSize:]
		order.PutUint32(rec, uint32(counts[i].PyramidLevel))
		order.PutUint64(rec[4:], counts[i].Count)
	}
	return nil
}

// DecodeLayerCounts reads the records that fit the buffer and returns the
// number the native side had available. When available exceeds the returned
// slice the call must be repeated with a larger buffer.
func DecodeLayerCounts(b []byte) ([]LayerCount, int, error) {
	if len(b) < LayerCountHeaderSize {
		return nil, 0, ErrTruncated
	}
	allocated := int(order.Uint32(b))
	available := int(order.Uint32(b[4:]))
	if (len(b)-LayerCountHeaderSize)/LayerCountRecordSize < allocated {
		return nil, 0, fmt.Errorf("%w: header claims %d records", ErrTruncated, allocated)
	}
	n := min(allocated, available)
	out := make([]LayerCount, n)
	for i := range out {
		rec := b[LayerCountHeaderSize+i*LayerCountRecordSize:]
		out[i] = LayerCount{
			PyramidLevel: int32(order.Uint32(rec)),
			Count:        order.Uint64(rec[4:]),
		}
	}
	return out, available, nil
}
