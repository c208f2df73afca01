package imgdoc

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/ebitengine/purego"

	"github.com/tinyrange/imgdoc/internal/native"
	"github.com/tinyrange/imgdoc/internal/token"
)

// Environment routes the engine's log output into a slog.Logger and reports
// fatal engine errors.
type Environment struct {
	handle
	logger *slog.Logger
	tok    token.Token

	// OnFatal runs after a fatal engine error has been logged. It defaults
	// to exiting the process with status 1.
	OnFatal func(msg string)
}

var environments = token.New[*Environment]()

// NewEnvironment creates an engine environment logging to logger, or to
// slog.Default() when logger is nil.
func NewEnvironment(logger *slog.Logger) (*Environment, error) {
	ex, err := loadExports()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	env := &Environment{
		logger:  logger,
		OnFatal: func(string) { os.Exit(1) },
	}
	env.tok = environments.Register(env)

	logFn, activeFn, fatalFn := logTrampolines()
	h := ex.CreateEnvironmentObject(uintptr(env.tok), logFn, activeFn, fatalFn)
	if h == native.InvalidHandle {
		environments.Release(env.tok)
		return nil, invalidHandle("CreateEnvironmentObject")
	}
	env.init(ex, h, "DestroyEnvironmentObject", ex.DestroyEnvironmentObject)
	return env, nil
}

// Close destroys the environment. Documents created with it must be closed
// first.
func (e *Environment) Close() error {
	err := e.close()
	if errors.Is(err, ErrAlreadyClosed) {
		return err
	}
	environments.Release(e.tok)
	return err
}

var (
	envCallbackOnce sync.Once
	logCallback     uintptr
	activeCallback  uintptr
	fatalCallback   uintptr
)

func environmentTrampolines() (log, isLevelActive, fatal uintptr) {
	envCallbackOnce.Do(func() {
		logCallback = purego.NewCallback(onLog)
		activeCallback = purego.NewCallback(onIsLevelActive)
		fatalCallback = purego.NewCallback(onFatal)
	})
	return logCallback, activeCallback, fatalCallback
}

func slogLevel(l native.LogLevel) slog.Level {
	switch l {
	case native.LogFatal, native.LogError:
		return slog.LevelError
	case native.LogWarning:
		return slog.LevelWarn
	case native.LogInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

func onLog(userParam, level uintptr, msg *byte) uintptr {
	env, ok := environments.Lookup(token.Token(userParam))
	if !ok {
		return 0
	}
	l := native.LogLevel(int32(level))
	env.logger.Log(context.Background(), slogLevel(l), native.GoString(msg), "component", "imgdoc2", "engineLevel", l.String())
	return 0
}

func onIsLevelActive(userParam, level uintptr) uintptr {
	env, ok := environments.Lookup(token.Token(userParam))
	if !ok {
		return 0
	}
	if env.logger.Enabled(context.Background(), slogLevel(native.LogLevel(int32(level)))) {
		return 1
	}
	return 0
}

func onFatal(userParam uintptr, msg *byte) uintptr {
	env, ok := environments.Lookup(token.Token(userParam))
	if !ok {
		return 0
	}
	text := native.GoString(msg)
	env.logger.Error("imgdoc2 fatal error", "component", "imgdoc2", "msg", text)
	if env.OnFatal != nil {
		env.OnFatal(text)
	}
	return 0
}
