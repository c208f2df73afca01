package main

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tinyrange/imgdoc"
)

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no command", nil, exitNoCommand},
		{"unknown command", []string{"frobnicate"}, exitNoCommand},
		{"help", []string{"help"}, exitOK},
		{"command help", []string{"synth", "-h"}, exitOK},
		{"unknown flag", []string{"synth", "-nope"}, exitBadArgs},
		{"bad flag value", []string{"synth", "-columns", "many"}, exitBadArgs},
		{"stray argument", []string{"info", "-i", "a.db", "extra"}, exitBadArgs},
		{"synth without output", []string{"synth"}, exitBadArgs},
		{"synth bad bounds", []string{"synth", "-o", "x.db", "-bounds", "C0"}, exitBadArgs},
		{"synth bad pixel type", []string{"synth", "-o", "x.db", "-pixel-type", "rgb"}, exitBadArgs},
		{"synth zero width", []string{"synth", "-o", "x.db", "-tile-width", "0"}, exitBadArgs},
		{"synth empty grid", []string{"synth", "-o", "x.db", "-rows", "0"}, exitBadArgs},
		{"synth too many tiles", []string{"synth", "-o", "x.db", "-bounds", "C-2147483648,2147483647"}, exitBadArgs},
		{"query without input", []string{"query"}, exitBadArgs},
		{"query bad dims", []string{"query", "-i", "a.db", "-dims", "0,1"}, exitBadArgs},
		{"query zero max", []string{"query", "-i", "a.db", "-max", "0"}, exitBadArgs},
		{"query bad rect", []string{"query", "-i", "a.db", "-rect", "1,2,3"}, exitBadArgs},
		{"query rect on bricks", []string{"query", "-i", "a.db", "-3d", "-rect", "0,0,1,1"}, exitBadArgs},
		{"info without input", []string{"info"}, exitBadArgs},
		{"info bad format", []string{"info", "-i", "a.db", "-format", "xml"}, exitBadArgs},
		{"missing config", []string{"info", "-i", "a.db", "-config", filepath.Join(t.TempDir(), "none.yaml")}, exitBadArgs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			if code != tt.want {
				t.Fatalf("exit code = %d, want %d; stderr:\n%s", code, tt.want, stderr)
			}
		})
	}
}

func TestUsageListsCommands(t *testing.T) {
	_, _, stderr := runCLI(t)
	for name := range commands {
		if !strings.Contains(stderr, name) {
			t.Errorf("usage does not mention %q:\n%s", name, stderr)
		}
	}
}

func TestEngineUnavailable(t *testing.T) {
	t.Setenv(imgdoc.LibraryEnv, "")
	lib := filepath.Join(t.TempDir(), "missing", "libimgdoc2API.so")

	code, _, stderr := runCLI(t, "info", "-i", "a.db", "-library", lib)
	if code != exitRuntime {
		t.Fatalf("exit code = %d, want %d; stderr:\n%s", code, exitRuntime, stderr)
	}
	if !strings.Contains(stderr, "imgdoc info:") {
		t.Fatalf("stderr = %q", stderr)
	}
}

func TestParseRect(t *testing.T) {
	tests := []struct {
		in      string
		want    imgdoc.Rectangle
		wantErr bool
	}{
		{in: "0,0,10,20", want: imgdoc.Rectangle{Width: 10, Height: 20}},
		{in: "-5.5, 2, 1, 1", want: imgdoc.Rectangle{X: -5.5, Y: 2, Width: 1, Height: 1}},
		{in: "1,2,3", wantErr: true},
		{in: "1,2,3,4,5", wantErr: true},
		{in: "a,2,3,4", wantErr: true},
		{in: "0,0,-1,4", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseRect(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseRect(%q) = %+v, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseRect(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseRect(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestQueryArgsParse(t *testing.T) {
	a := &queryArgs{in: "a.db", dims: "C0,1", level: 2, max: 10, rect: "0,0,5,5"}
	q, err := a.parse()
	if err != nil {
		t.Fatal(err)
	}
	if q.dims == nil || len(q.dims.Conditions) != 1 {
		t.Fatalf("dims = %+v", q.dims)
	}
	if q.tileInfo == nil || len(q.tileInfo.Conditions) != 1 || q.tileInfo.Conditions[0].Value != 2 {
		t.Fatalf("tileInfo = %+v", q.tileInfo)
	}
	if q.rect == nil || q.rect.Width != 5 {
		t.Fatalf("rect = %+v", q.rect)
	}

	a = &queryArgs{in: "a.db", level: -1, max: 10}
	if q, err = a.parse(); err != nil {
		t.Fatal(err)
	}
	if q.dims != nil || q.tileInfo != nil || q.rect != nil {
		t.Fatalf("unexpected clauses: %+v", q)
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "imgdoc.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, `
library:
  searchPaths: [/opt/imgdoc2/lib, /usr/local/lib]
synth:
  bounds: C0,2T0,1
  tileWidth: 64
  columns: 2
  pixelType: gray16
query:
  max: 50
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Library.SearchPaths) != 2 || cfg.Library.SearchPaths[1] != "/usr/local/lib" {
		t.Fatalf("search paths = %v", cfg.Library.SearchPaths)
	}
	if cfg.Synth.Bounds != "C0,2T0,1" || cfg.Synth.TileWidth != 64 || cfg.Synth.Columns != 2 || cfg.Synth.PixelType != "gray16" {
		t.Fatalf("synth = %+v", cfg.Synth)
	}
	if cfg.Query.Max != 50 {
		t.Fatalf("query max = %d", cfg.Query.Max)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	if _, err := LoadConfig(writeFile(t, "synth:\n  colour: red\n")); err == nil {
		t.Fatal("unknown key accepted")
	}
}

func TestLoadConfigEmpty(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, ""))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Synth.Bounds != "" || len(cfg.Library.SearchPaths) != 0 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	fs := flag.NewFlagSet("synth", flag.ContinueOnError)
	a := &synthArgs{}
	fs.StringVar(&a.bounds, "bounds", "C0,0", "")
	fs.UintVar(&a.tileWidth, "tile-width", 256, "")
	fs.UintVar(&a.tileHeight, "tile-height", 256, "")
	fs.IntVar(&a.columns, "columns", 4, "")
	if err := fs.Parse([]string{"-tile-width", "32", "-columns", "3"}); err != nil {
		t.Fatal(err)
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	a.defaults(SynthConfig{Bounds: "Z1,4", TileWidth: 64, TileHeight: 128, Columns: 8}, set)

	if a.bounds != "Z1,4" {
		t.Errorf("bounds = %q, want value from config", a.bounds)
	}
	if a.tileWidth != 32 {
		t.Errorf("tile width = %d, want flag value", a.tileWidth)
	}
	if a.tileHeight != 128 {
		t.Errorf("tile height = %d, want value from config", a.tileHeight)
	}
	if a.columns != 3 {
		t.Errorf("columns = %d, want flag value", a.columns)
	}
}

func TestSynthPlan(t *testing.T) {
	a := &synthArgs{out: "x.db", bounds: "C0,2T0,1", tileWidth: 16, tileHeight: 8, tileDepth: 1, columns: 2, rows: 3, pixelType: "bgr24"}
	p, err := a.plan()
	if err != nil {
		t.Fatal(err)
	}
	if got := p.TileCount(); got != 3*2*2*3 {
		t.Fatalf("TileCount = %d", got)
	}
	if p.PixelType != imgdoc.PixelBgr24 {
		t.Fatalf("pixel type = %s", p.PixelType)
	}

	a.bounds = "C2,0"
	_, err = a.plan()
	var ae argError
	if !errors.As(err, &ae) {
		t.Fatalf("reversed bounds: err = %v, want argument error", err)
	}
}

type fakeReader struct {
	dims   []imgdoc.Dimension
	ranges []imgdoc.Int32Interval
	total  uint64
	layers []imgdoc.LayerCount
}

func (f fakeReader) TileDimensions() ([]imgdoc.Dimension, error) { return f.dims, nil }
func (f fakeReader) MinMaxForTileDimensions([]imgdoc.Dimension) ([]imgdoc.Int32Interval, error) {
	return f.ranges, nil
}
func (f fakeReader) TotalTileCount() (uint64, error)                 { return f.total, nil }
func (f fakeReader) TileCountPerLayer() ([]imgdoc.LayerCount, error) { return f.layers, nil }

func TestSummaryOutput(t *testing.T) {
	r := fakeReader{
		dims:   []imgdoc.Dimension{'C', 'T'},
		ranges: []imgdoc.Int32Interval{{Min: 0, Max: 2}, {Min: 1, Max: 0}},
		total:  12,
		layers: []imgdoc.LayerCount{{PyramidLevel: 0, Count: 8}, {PyramidLevel: 1, Count: 4}},
	}
	s, err := summarize(r, map[string]float64{"x": 0, "y": 0, "width": 512, "height": 256})
	if err != nil {
		t.Fatal(err)
	}
	s.File, s.Type = "a.db", "image2d"

	if s.Dimensions[0].Min == nil || *s.Dimensions[0].Max != 2 {
		t.Fatalf("C = %+v", s.Dimensions[0])
	}
	if s.Dimensions[1].Min != nil {
		t.Fatalf("reversed interval reported as a range: %+v", s.Dimensions[1])
	}

	var text bytes.Buffer
	if err := writeText(&text, s); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"a.db", "image2d", "0,0 512x256", "C", "12"} {
		if !strings.Contains(text.String(), want) {
			t.Errorf("text output missing %q:\n%s", want, text.String())
		}
	}

	var out bytes.Buffer
	if err := writeYAML(&out, s); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"totalTiles: 12", "name: C", "min: 0", "max: null", "level: 1", "tiles: 4"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("yaml output missing %q:\n%s", want, out.String())
		}
	}
}
