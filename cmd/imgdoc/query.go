package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/tinyrange/imgdoc"
)

type queryArgs struct {
	in     string
	dims   string
	level  int
	max    int
	rect   string
	bricks bool
}

func queryFlags(fs *flag.FlagSet) func(env *cliEnv) error {
	a := &queryArgs{}
	fs.StringVar(&a.in, "i", "", "document to query (required)")
	fs.StringVar(&a.dims, "dims", "", "dimension ranges to match, e.g. C0,1T2,2")
	fs.IntVar(&a.level, "level", -1, "pyramid level to match; negative matches every level")
	fs.IntVar(&a.max, "max", imgdoc.DefaultMaxResults, "maximum number of results")
	fs.StringVar(&a.rect, "rect", "", "only tiles intersecting x,y,w,h")
	fs.BoolVar(&a.bricks, "3d", false, "query a brick document")
	return func(env *cliEnv) error {
		if !env.set["max"] && env.cfg.Query.Max > 0 {
			a.max = env.cfg.Query.Max
		}
		q, err := a.parse()
		if err != nil {
			return err
		}
		return q.run(env, a)
	}
}

// parsedQuery is a query command line turned into engine clauses.
type parsedQuery struct {
	dims     *imgdoc.DimensionQueryClause
	tileInfo *imgdoc.TileInfoQueryClause
	rect     *imgdoc.Rectangle
}

func (a *queryArgs) parse() (parsedQuery, error) {
	var q parsedQuery
	if a.in == "" {
		return q, badArgs("-i is required")
	}
	if a.max <= 0 {
		return q, badArgs("-max must be positive")
	}
	if a.dims != "" {
		d, err := imgdoc.ParseDimensionQuery(a.dims)
		if err != nil {
			return q, badArgs("-dims: %v", err)
		}
		q.dims = &d
	}
	if a.level >= 0 {
		var ti imgdoc.TileInfoQueryClause
		if err := ti.Add(imgdoc.LogicalNone, imgdoc.CompareEqual, int32(a.level)); err != nil {
			return q, badArgs("-level: %v", err)
		}
		q.tileInfo = &ti
	}
	if a.rect != "" {
		if a.bricks {
			return q, badArgs("-rect cannot be used with -3d")
		}
		r, err := parseRect(a.rect)
		if err != nil {
			return q, badArgs("-rect: %v", err)
		}
		q.rect = &r
	}
	return q, nil
}

// parseRect parses "x,y,w,h".
func parseRect(s string) (imgdoc.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return imgdoc.Rectangle{}, fmt.Errorf("want x,y,w,h, got %q", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return imgdoc.Rectangle{}, fmt.Errorf("%q: %w", p, err)
		}
		v[i] = f
	}
	if v[2] < 0 || v[3] < 0 {
		return imgdoc.Rectangle{}, fmt.Errorf("negative size in %q", s)
	}
	return imgdoc.Rectangle{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

func (q parsedQuery) run(env *cliEnv, a *queryArgs) error {
	doc, closeDoc, err := openDocument(env, a.in)
	if err != nil {
		return err
	}
	defer closeDoc()

	tw := tabwriter.NewWriter(env.stdout, 0, 4, 2, ' ', 0)
	var res imgdoc.QueryResult
	if a.bricks {
		r, err := doc.Reader3d()
		if err != nil {
			return err
		}
		defer r.Close()
		if res, err = r.Query(q.dims, q.tileInfo, a.max); err != nil {
			return err
		}
		fmt.Fprintln(tw, "KEY\tCOORDINATE\tX\tY\tZ\tWIDTH\tHEIGHT\tDEPTH\tLEVEL")
		for _, pk := range res.Keys {
			info, err := r.ReadBrickInfo(pk)
			if err != nil {
				return fmt.Errorf("brick %d: %w", pk, err)
			}
			p := info.Position
			fmt.Fprintf(tw, "%d\t%s\t%g\t%g\t%g\t%g\t%g\t%g\t%d\n", pk, info.Coordinate, p.X, p.Y, p.Z, p.Width, p.Height, p.Depth, p.PyramidLevel)
		}
	} else {
		r, err := doc.Reader2d()
		if err != nil {
			return err
		}
		defer r.Close()
		if q.rect != nil {
			res, err = r.TilesIntersectingRect(*q.rect, q.dims, q.tileInfo, a.max)
		} else {
			res, err = r.Query(q.dims, q.tileInfo, a.max)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "KEY\tCOORDINATE\tX\tY\tWIDTH\tHEIGHT\tLEVEL")
		for _, pk := range res.Keys {
			info, err := r.ReadTileInfo(pk)
			if err != nil {
				return fmt.Errorf("tile %d: %w", pk, err)
			}
			p := info.Position
			fmt.Fprintf(tw, "%d\t%s\t%g\t%g\t%g\t%g\t%d\n", pk, info.Coordinate, p.X, p.Y, p.Width, p.Height, p.PyramidLevel)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if !res.Complete {
		env.logger.Warn("result truncated; raise -max to see more", "max", a.max)
	}
	return nil
}

// openDocument opens an existing document and returns it with a function
// releasing it and everything opened along the way.
func openDocument(env *cliEnv, path string) (*imgdoc.Document, func(), error) {
	engine, err := env.newEnvironment()
	if err != nil {
		return nil, nil, err
	}
	opts, err := imgdoc.NewOpenExistingOptions()
	if err != nil {
		engine.Close()
		return nil, nil, err
	}
	defer opts.Close()
	if err := opts.SetFilename(path); err != nil {
		engine.Close()
		return nil, nil, err
	}
	doc, err := imgdoc.OpenExisting(opts, engine)
	if err != nil {
		engine.Close()
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return doc, func() {
		if err := doc.Close(); err != nil {
			env.logger.Warn("close document", "err", err)
		}
		engine.Close()
	}, nil
}
