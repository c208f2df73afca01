// Package blob receives variable-length data from the engine without the
// engine ever allocating Go memory.
//
// The engine is handed a correlation token and two callbacks. It first
// reports the total size, which allocates the buffer, then copies one or
// more ranges into it. Any misuse is recorded on the Output and makes the
// callback return false.
package blob

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tinyrange/imgdoc/internal/token"
)

var (
	ErrSizeAlreadySet = errors.New("blob: size already set")
	ErrSizeNotSet     = errors.New("blob: data written before size was set")
	ErrOutOfBounds    = errors.New("blob: write outside the buffer")
	ErrUnknownToken   = errors.New("blob: unknown correlation token")
)

// Output is the destination of one blob transfer.
type Output struct {
	mu      sync.Mutex
	sized   bool
	buf     []byte
	written uint64
	err     error
}

// SetSize allocates exactly size bytes. It may only be called once.
func (o *Output) SetSize(size uint64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.sized {
		return o.fail(fmt.Errorf("%w: %d bytes requested after %d", ErrSizeAlreadySet, size, len(o.buf)))
	}
	if size > uint64(maxSize) {
		return o.fail(fmt.Errorf("%w: %d bytes", ErrOutOfBounds, size))
	}
	o.buf = make([]byte, size)
	o.sized = true
	return nil
}

// SetData copies data into the buffer at offset. The ranges delivered for
// one blob may not add up to more than its size.
func (o *Output) SetData(offset uint64, data []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.sized {
		return o.fail(ErrSizeNotSet)
	}
	size := uint64(len(o.buf))
	if offset > size || uint64(len(data)) > size-offset {
		return o.fail(fmt.Errorf("%w: [%d, %d) of %d", ErrOutOfBounds, offset, offset+uint64(len(data)), size))
	}
	if uint64(len(data)) > size-o.written {
		return o.fail(fmt.Errorf("%w: %d bytes delivered for a %d byte blob", ErrOutOfBounds, o.written+uint64(len(data)), size))
	}
	copy(o.buf[offset:], data)
	o.written += uint64(len(data))
	return nil
}

func (o *Output) fail(err error) error {
	if o.err == nil {
		o.err = err
	}
	return err
}

// Bytes returns the buffer. It is nil when no size was reported. Ranges the
// engine never wrote stay zero.
func (o *Output) Bytes() []byte {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf
}

// Sized reports whether SetSize succeeded.
func (o *Output) Sized() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sized
}

// Written is the total number of bytes copied in so far.
func (o *Output) Written() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.written
}

// Err returns the first protocol violation recorded on o.
func (o *Output) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

const maxSize = int(^uint(0) >> 1)

var outputs = token.New[*Output]()

// Register makes o reachable from the callbacks and returns its token.
func Register(o *Output) uintptr {
	return uintptr(outputs.Register(o))
}

// Unregister releases a token once the engine call that used it returned.
func Unregister(tok uintptr) error {
	if _, ok := outputs.Release(token.Token(tok)); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownToken, tok)
	}
	return nil
}

// Pending reports how many outputs are registered.
func Pending() int {
	return outputs.Len()
}
