package main

import (
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/tinyrange/imgdoc"
)

type infoArgs struct {
	in     string
	format string
	bricks bool
}

func infoFlags(fs *flag.FlagSet) func(env *cliEnv) error {
	a := &infoArgs{}
	fs.StringVar(&a.in, "i", "", "document to describe (required)")
	fs.StringVar(&a.format, "format", "text", "output format: text or yaml")
	fs.BoolVar(&a.bricks, "3d", false, "describe a brick document")
	return func(env *cliEnv) error {
		if a.in == "" {
			return badArgs("-i is required")
		}
		if a.format != "text" && a.format != "yaml" {
			return badArgs("-format: want text or yaml, got %q", a.format)
		}
		return a.run(env)
	}
}

// docReader is what info needs from either reader kind.
type docReader interface {
	TileDimensions() ([]imgdoc.Dimension, error)
	MinMaxForTileDimensions(dims []imgdoc.Dimension) ([]imgdoc.Int32Interval, error)
	TotalTileCount() (uint64, error)
	TileCountPerLayer() ([]imgdoc.LayerCount, error)
}

type Summary struct {
	File        string             `yaml:"file"`
	Type        string             `yaml:"type"`
	Dimensions  []DimensionSummary `yaml:"dimensions"`
	BoundingBox map[string]float64 `yaml:"boundingBox"`
	TotalTiles  uint64             `yaml:"totalTiles"`
	Layers      []LayerSummary     `yaml:"layers"`
}

type DimensionSummary struct {
	Name string `yaml:"name"`
	// Min and Max are nil when the document holds no tiles.
	Min *int32 `yaml:"min"`
	Max *int32 `yaml:"max"`
}

type LayerSummary struct {
	Level int32  `yaml:"level"`
	Tiles uint64 `yaml:"tiles"`
}

func (a *infoArgs) run(env *cliEnv) error {
	doc, closeDoc, err := openDocument(env, a.in)
	if err != nil {
		return err
	}
	defer closeDoc()

	var s Summary
	if a.bricks {
		r, err := doc.Reader3d()
		if err != nil {
			return err
		}
		defer r.Close()
		box, err := r.BoundingBox()
		if err != nil {
			return err
		}
		s, err = summarize(r, map[string]float64{
			"x": box.X, "y": box.Y, "z": box.Z,
			"width": box.Width, "height": box.Height, "depth": box.Depth,
		})
		if err != nil {
			return err
		}
		s.Type = imgdoc.DocumentType3d.String()
	} else {
		r, err := doc.Reader2d()
		if err != nil {
			return err
		}
		defer r.Close()
		box, err := r.BoundingBox()
		if err != nil {
			return err
		}
		s, err = summarize(r, map[string]float64{
			"x": box.X, "y": box.Y, "width": box.Width, "height": box.Height,
		})
		if err != nil {
			return err
		}
		s.Type = imgdoc.DocumentType2d.String()
	}
	s.File = a.in

	if a.format == "yaml" {
		return writeYAML(env.stdout, s)
	}
	return writeText(env.stdout, s)
}

func summarize(r docReader, box map[string]float64) (Summary, error) {
	s := Summary{BoundingBox: box}
	dims, err := r.TileDimensions()
	if err != nil {
		return s, fmt.Errorf("tile dimensions: %w", err)
	}
	if len(dims) > 0 {
		ranges, err := r.MinMaxForTileDimensions(dims)
		if err != nil {
			return s, fmt.Errorf("min/max: %w", err)
		}
		for i, d := range dims {
			ds := DimensionSummary{Name: d.String()}
			if i < len(ranges) && ranges[i].Valid() {
				lo, hi := ranges[i].Min, ranges[i].Max
				ds.Min, ds.Max = &lo, &hi
			}
			s.Dimensions = append(s.Dimensions, ds)
		}
	}
	if s.TotalTiles, err = r.TotalTileCount(); err != nil {
		return s, fmt.Errorf("total tile count: %w", err)
	}
	layers, err := r.TileCountPerLayer()
	if err != nil {
		return s, fmt.Errorf("tiles per layer: %w", err)
	}
	for _, l := range layers {
		s.Layers = append(s.Layers, LayerSummary{Level: l.PyramidLevel, Tiles: l.Count})
	}
	return s, nil
}

func writeYAML(w io.Writer, s Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}

func writeText(w io.Writer, s Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "file:\t%s\n", s.File)
	fmt.Fprintf(tw, "type:\t%s\n", s.Type)
	fmt.Fprintf(tw, "tiles:\t%d\n", s.TotalTiles)
	if b := s.BoundingBox; len(b) == 4 {
		fmt.Fprintf(tw, "bounding box:\t%g,%g %gx%g\n", b["x"], b["y"], b["width"], b["height"])
	} else {
		fmt.Fprintf(tw, "bounding box:\t%g,%g,%g %gx%gx%g\n", b["x"], b["y"], b["z"], b["width"], b["height"], b["depth"])
	}
	fmt.Fprintln(tw, "\nDIMENSION\tMIN\tMAX")
	for _, d := range s.Dimensions {
		if d.Min == nil {
			fmt.Fprintf(tw, "%s\t-\t-\n", d.Name)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\n", d.Name, *d.Min, *d.Max)
	}
	fmt.Fprintln(tw, "\nLEVEL\tTILES")
	for _, l := range s.Layers {
		fmt.Fprintf(tw, "%d\t%d\n", l.Level, l.Tiles)
	}
	return tw.Flush()
}
