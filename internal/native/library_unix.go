//go:build darwin || freebsd || linux || netbsd

package native

import (
	"runtime"

	"github.com/ebitengine/purego"
)

var libraryName = func() string {
	if runtime.GOOS == "darwin" {
		return "libimgdoc2API.dylib"
	}
	return "libimgdoc2API.so"
}()

type sharedLibrary struct {
	handle uintptr
	path   string
}

func openLibrary(path string) (library, error) {
	h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, err
	}
	return &sharedLibrary{handle: h, path: path}, nil
}

func (l *sharedLibrary) Lookup(name string) (uintptr, error) {
	return purego.Dlsym(l.handle, name)
}

func (l *sharedLibrary) Path() string { return l.path }
