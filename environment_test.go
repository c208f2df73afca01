package imgdoc

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/tinyrange/imgdoc/internal/native"
)

func TestEnvironmentRoutesLogs(t *testing.T) {
	newFake(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	env, err := NewEnvironment(logger)
	if err != nil {
		t.Fatalf("NewEnvironment: %v", err)
	}
	defer mustClose(t, env)

	doc := newDocument(t, "logged.db", "C", DocumentType2d, env)
	defer mustClose(t, doc)
	w, err := doc.Writer2d()
	if err != nil {
		t.Fatal(err)
	}
	defer mustClose(t, w)
	addGrayTile(t, w, "C0", LogicalPosition2D{Width: 1, Height: 1})

	out := buf.String()
	if !strings.Contains(out, `created document \"logged.db\"`) {
		t.Fatalf("info record missing from log:\n%s", out)
	}
	if !strings.Contains(out, "engineLevel=info") {
		t.Fatalf("engine level missing from log:\n%s", out)
	}
	// Debug records are filtered by the logger's level.
	if strings.Contains(out, "added tile") {
		t.Fatalf("debug record was not filtered:\n%s", out)
	}
}

func TestEnvironmentFatal(t *testing.T) {
	eng := newFake(t)

	var buf bytes.Buffer
	env, err := NewEnvironment(slog.New(slog.NewTextHandler(&buf, nil)))
	if err != nil {
		t.Fatal(err)
	}
	defer mustClose(t, env)

	var got string
	env.OnFatal = func(msg string) { got = msg }
	if err := eng.RaiseFatal(env.h, "index corrupted"); err != nil {
		t.Fatal(err)
	}
	if got != "index corrupted" {
		t.Fatalf("OnFatal got %q", got)
	}
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Fatalf("fatal error was not logged at error level:\n%s", buf.String())
	}
}

func TestEnvironmentCloseReleasesToken(t *testing.T) {
	newFake(t)

	before := environments.Len()
	env, err := NewEnvironment(nil)
	if err != nil {
		t.Fatal(err)
	}
	if environments.Len() != before+1 {
		t.Fatalf("token table has %d entries, want %d", environments.Len(), before+1)
	}
	mustClose(t, env)
	if environments.Len() != before {
		t.Fatalf("token table has %d entries after Close, want %d", environments.Len(), before)
	}
	if err := env.Close(); err != ErrAlreadyClosed {
		t.Fatalf("second Close = %v", err)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   native.LogLevel
		want slog.Level
	}{
		{native.LogFatal, slog.LevelError},
		{native.LogError, slog.LevelError},
		{native.LogWarning, slog.LevelWarn},
		{native.LogInfo, slog.LevelInfo},
		{native.LogDebug, slog.LevelDebug},
		{native.LogTrace, slog.LevelDebug},
	}
	for _, tt := range tests {
		if got := slogLevel(tt.in); got != tt.want {
			t.Errorf("slogLevel(%s) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
