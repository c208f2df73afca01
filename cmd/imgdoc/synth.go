package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/tinyrange/imgdoc"
	"github.com/tinyrange/imgdoc/internal/synth"
)

// maxSynthTiles bounds the documents synth will plan.
const maxSynthTiles = 1 << 20

type synthArgs struct {
	out        string
	bounds     string
	tileWidth  uint
	tileHeight uint
	tileDepth  uint
	columns    int
	rows       int
	pixelType  string
	bricks     bool
}

func synthFlags(fs *flag.FlagSet) func(env *cliEnv) error {
	a := &synthArgs{}
	fs.StringVar(&a.out, "o", "", "output document (required)")
	fs.StringVar(&a.bounds, "bounds", "C0,0", "inclusive range of every dimension, e.g. C0,2T0,4")
	fs.UintVar(&a.tileWidth, "tile-width", 256, "tile width in pixels")
	fs.UintVar(&a.tileHeight, "tile-height", 256, "tile height in pixels")
	fs.UintVar(&a.tileDepth, "tile-depth", 1, "brick depth in pixels (with -3d)")
	fs.IntVar(&a.columns, "columns", 4, "tiles per row")
	fs.IntVar(&a.rows, "rows", 4, "tiles per column")
	fs.StringVar(&a.pixelType, "pixel-type", "gray8", "gray8, gray16, gray32float, bgr24 or bgr48")
	fs.BoolVar(&a.bricks, "3d", false, "create a brick document")
	return func(env *cliEnv) error {
		a.defaults(env.cfg.Synth, env.set)
		plan, err := a.plan()
		if err != nil {
			return err
		}
		return a.write(env, plan)
	}
}

// defaults fills every flag not given on the command line from the config.
func (a *synthArgs) defaults(c SynthConfig, set map[string]bool) {
	if !set["bounds"] && c.Bounds != "" {
		a.bounds = c.Bounds
	}
	if !set["tile-width"] && c.TileWidth != 0 {
		a.tileWidth = uint(c.TileWidth)
	}
	if !set["tile-height"] && c.TileHeight != 0 {
		a.tileHeight = uint(c.TileHeight)
	}
	if !set["tile-depth"] && c.TileDepth != 0 {
		a.tileDepth = uint(c.TileDepth)
	}
	if !set["columns"] && c.Columns != 0 {
		a.columns = c.Columns
	}
	if !set["rows"] && c.Rows != 0 {
		a.rows = c.Rows
	}
	if !set["pixel-type"] && c.PixelType != "" {
		a.pixelType = c.PixelType
	}
}

func (a *synthArgs) plan() (synth.Plan, error) {
	if a.out == "" {
		return synth.Plan{}, badArgs("-o is required")
	}
	bounds, err := imgdoc.ParseDimensionQuery(a.bounds)
	if err != nil {
		return synth.Plan{}, badArgs("-bounds: %v", err)
	}
	pt, err := imgdoc.ParsePixelType(a.pixelType)
	if err != nil {
		return synth.Plan{}, badArgs("-pixel-type: %v", err)
	}
	for _, f := range []struct {
		name string
		v    uint
	}{{"tile-width", a.tileWidth}, {"tile-height", a.tileHeight}, {"tile-depth", a.tileDepth}} {
		if f.v == 0 || f.v > 1<<16 {
			return synth.Plan{}, badArgs("-%s: %d out of range", f.name, f.v)
		}
	}
	p := synth.Plan{
		Bounds:     bounds,
		TileWidth:  uint32(a.tileWidth),
		TileHeight: uint32(a.tileHeight),
		TileDepth:  uint32(a.tileDepth),
		Columns:    a.columns,
		Rows:       a.rows,
		PixelType:  pt,
	}
	if err := p.Validate(); err != nil {
		return synth.Plan{}, argError{err}
	}
	if p.Exceeds(maxSynthTiles) {
		return synth.Plan{}, badArgs("plan has more than %d tiles; narrow -bounds or the grid", maxSynthTiles)
	}
	return p, nil
}

func (a *synthArgs) write(env *cliEnv, plan synth.Plan) error {
	engine, err := env.newEnvironment()
	if err != nil {
		return err
	}
	defer engine.Close()

	opts, err := imgdoc.NewCreateOptions()
	if err != nil {
		return err
	}
	defer opts.Close()

	docType := imgdoc.DocumentType2d
	if a.bricks {
		docType = imgdoc.DocumentType3d
	}
	if err := opts.SetFilename(a.out); err != nil {
		return err
	}
	if err := opts.SetDocumentType(docType); err != nil {
		return err
	}
	if err := opts.SetUseSpatialIndex(true); err != nil {
		return err
	}
	for _, d := range plan.Dimensions() {
		if err := opts.AddDimension(d); err != nil {
			return err
		}
		if err := opts.AddIndexedDimension(d); err != nil {
			return err
		}
	}

	doc, err := imgdoc.CreateNew(opts, engine)
	if err != nil {
		return fmt.Errorf("create %s: %w", a.out, err)
	}
	defer doc.Close()

	total := plan.TileCount()
	gen := &synth.Generator{
		Plan:     plan,
		Logger:   env.logger,
		Progress: progress(env.stderr, total, "writing tiles"),
	}
	env.logger.Info("creating document", "file", a.out, "type", docType, "tiles", total)

	var n int
	if a.bricks {
		w, err := doc.Writer3d()
		if err != nil {
			return err
		}
		defer w.Close()
		n, err = gen.Write3d(w)
		if err != nil {
			return err
		}
	} else {
		w, err := doc.Writer2d()
		if err != nil {
			return err
		}
		defer w.Close()
		n, err = gen.Write2d(w)
		if err != nil {
			return err
		}
	}

	env.logger.Info("document written", "file", a.out, "tiles", n)
	return nil
}

// progress returns a progress callback drawing a bar on w, or nil when w is
// not a terminal.
func progress(w io.Writer, total int, title string) func(done, total int) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(f),
		progressbar.OptionSetDescription(title),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return func(done, _ int) {
		_ = bar.Set(done)
		if done == total {
			_ = bar.Finish()
		}
	}
}
