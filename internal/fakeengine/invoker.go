package fakeengine

import (
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/tinyrange/imgdoc/internal/native"
)

// Invoker calls the function pointers a caller handed to the engine.
type Invoker interface {
	SetSize(fn, tok uintptr, size uint64) bool
	SetData(fn, tok uintptr, offset uint64, data []byte) bool
	Log(fn, userParam uintptr, level native.LogLevel, msg string)
	IsLevelActive(fn, userParam uintptr, level native.LogLevel) bool
	Fatal(fn, userParam uintptr, msg string)
}

// SyscallInvoker calls real native function pointers, such as trampolines
// created with purego.NewCallback.
type SyscallInvoker struct{}

func (SyscallInvoker) SetSize(fn, tok uintptr, size uint64) bool {
	r, _, _ := purego.SyscallN(fn, tok, uintptr(size))
	return r != 0
}

func (SyscallInvoker) SetData(fn, tok uintptr, offset uint64, data []byte) bool {
	var src unsafe.Pointer
	if len(data) > 0 {
		src = unsafe.Pointer(&data[0])
	}
	r, _, _ := purego.SyscallN(fn, tok, uintptr(offset), uintptr(len(data)), uintptr(src))
	runtime.KeepAlive(data)
	return r != 0
}

func (SyscallInvoker) Log(fn, userParam uintptr, level native.LogLevel, msg string) {
	c := cstring(msg)
	purego.SyscallN(fn, userParam, uintptr(level), uintptr(unsafe.Pointer(&c[0])))
	runtime.KeepAlive(c)
}

func (SyscallInvoker) IsLevelActive(fn, userParam uintptr, level native.LogLevel) bool {
	r, _, _ := purego.SyscallN(fn, userParam, uintptr(level))
	return r != 0
}

func (SyscallInvoker) Fatal(fn, userParam uintptr, msg string) {
	c := cstring(msg)
	purego.SyscallN(fn, userParam, uintptr(unsafe.Pointer(&c[0])))
	runtime.KeepAlive(c)
}

func cstring(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}
