package blob

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/tinyrange/imgdoc/internal/token"
)

// Callback return values as the engine reads them.
const (
	callbackFalse uintptr = 0
	callbackTrue  uintptr = 1
)

var (
	trampolineOnce    sync.Once
	setSizeTrampoline uintptr
	setDataTrampoline uintptr
)

// Trampolines returns the native addresses of OnSetSize and OnSetData. They
// are created on first use and live for the rest of the process.
func Trampolines() (setSize, setData uintptr) {
	trampolineOnce.Do(func() {
		setSizeTrampoline = purego.NewCallback(OnSetSize)
		setDataTrampoline = purego.NewCallback(OnSetData)
	})
	return setSizeTrampoline, setDataTrampoline
}

// OnSetSize is called by the engine with the total blob size.
func OnSetSize(tok, size uintptr) uintptr {
	o, ok := outputs.Lookup(token.Token(tok))
	if !ok {
		return callbackFalse
	}
	if err := o.SetSize(uint64(size)); err != nil {
		return callbackFalse
	}
	return callbackTrue
}

// OnSetData is called by the engine to copy length bytes at src into the
// blob at offset.
func OnSetData(tok, offset, length uintptr, src *byte) uintptr {
	o, ok := outputs.Lookup(token.Token(tok))
	if !ok {
		return callbackFalse
	}
	var data []byte
	if length > 0 {
		if src == nil {
			o.mu.Lock()
			o.fail(ErrOutOfBounds)
			o.mu.Unlock()
			return callbackFalse
		}
		data = unsafe.Slice(src, length)
	}
	if err := o.SetData(uint64(offset), data); err != nil {
		return callbackFalse
	}
	return callbackTrue
}
