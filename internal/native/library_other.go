//go:build !(darwin || freebsd || linux || netbsd || windows)

package native

import (
	"fmt"
	"runtime"
)

const libraryName = "libimgdoc2API.so"

func openLibrary(path string) (library, error) {
	return nil, fmt.Errorf("loading %s: dynamic loading is not supported on %s", path, runtime.GOOS)
}
