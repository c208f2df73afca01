//go:build windows

package native

import "golang.org/x/sys/windows"

const libraryName = "imgdoc2API.dll"

type dynamicLibrary struct {
	dll *windows.DLL
}

func openLibrary(path string) (library, error) {
	dll, err := windows.LoadDLL(path)
	if err != nil {
		return nil, err
	}
	return &dynamicLibrary{dll: dll}, nil
}

func (l *dynamicLibrary) Lookup(name string) (uintptr, error) {
	proc, err := l.dll.FindProc(name)
	if err != nil {
		return 0, err
	}
	return proc.Addr(), nil
}

func (l *dynamicLibrary) Path() string { return l.dll.Name }
