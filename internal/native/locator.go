// Package native locates the imgdoc2 engine's shared library, binds its
// exported functions and translates its error records.
//
// The library is loaded at most once per process. A failed load is final:
// every later Load returns the same error, wrapped in ErrNotOperational,
// without trying again.
package native

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ebitengine/purego"
)

// LibraryEnv names an environment variable holding the exact path of the
// engine library. It is tried before any other location.
const LibraryEnv = "IMGDOC2_LIBRARY"

// library is an opened shared library.
type library interface {
	Lookup(name string) (uintptr, error)
	Path() string
}

// Locator finds and binds the engine library on first use.
type Locator struct {
	once sync.Once

	open       func(path string) (library, error)
	candidates func() []string
	logger     *slog.Logger

	exports *Exports
	err     error
}

var (
	searchMu    sync.Mutex
	searchPaths []string

	defaultLocator = &Locator{
		open:       openLibrary,
		candidates: defaultCandidates,
	}
)

// AddSearchPath adds a directory to look for the engine library in. It only
// has an effect before the first call to Load.
func AddSearchPath(dir string) {
	searchMu.Lock()
	searchPaths = append(searchPaths, dir)
	searchMu.Unlock()
}

// Load returns the process-wide binding of the engine library.
func Load() (*Exports, error) {
	return defaultLocator.Load()
}

// Load binds the library on the first call and returns the same outcome on
// every call after that.
func (l *Locator) Load() (*Exports, error) {
	l.once.Do(l.load)
	if l.err != nil {
		return nil, l.err
	}
	return l.exports, nil
}

func (l *Locator) log() *slog.Logger {
	if l.logger != nil {
		return l.logger
	}
	return slog.Default()
}

func (l *Locator) load() {
	logger := l.log()

	var errs []error
	for _, path := range l.candidates() {
		lib, err := l.open(path)
		if err != nil {
			logger.Debug("imgdoc2 library candidate failed", "path", path, "err", err)
			errs = append(errs, err)
			continue
		}

		exports, err := bind(lib)
		if err != nil {
			logger.Error("imgdoc2 library unusable", "path", lib.Path(), "err", err)
			l.err = fmt.Errorf("%w: %w", ErrNotOperational, err)
			return
		}

		logger.Info("imgdoc2 library loaded", "path", lib.Path())
		l.exports = exports
		return
	}

	l.err = fmt.Errorf("%w: %w: %w", ErrNotOperational, ErrLibraryNotFound, errors.Join(errs...))
	logger.Error("imgdoc2 library not found", "err", l.err)
}

// bind resolves every export before registering any of them, so a library
// missing a single symbol is rejected as a whole.
func bind(lib library) (*Exports, error) {
	exports := &Exports{}
	bindings := exports.bindings()

	addrs := make([]uintptr, len(bindings))
	var missing []string
	for i, b := range bindings {
		addr, err := lib.Lookup(b.name)
		if err != nil || addr == 0 {
			missing = append(missing, b.name)
			continue
		}
		addrs[i] = addr
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s: %s", ErrMissingExport, lib.Path(), strings.Join(missing, ", "))
	}

	for i, b := range bindings {
		purego.RegisterFunc(b.fn, addrs[i])
	}
	return exports, nil
}

func defaultCandidates() []string {
	var out []string
	if p := os.Getenv(LibraryEnv); p != "" {
		out = append(out, p)
	}

	searchMu.Lock()
	for _, dir := range searchPaths {
		out = append(out, filepath.Join(dir, libraryName))
	}
	searchMu.Unlock()

	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		out = append(out, filepath.Join(filepath.Dir(exe), libraryName))
	}

	// Let the system loader search its default paths last.
	out = append(out, libraryName)
	return out
}
