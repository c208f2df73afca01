// Package synth fills documents with synthetic tiles: one tile per grid
// cell for every coordinate inside a set of dimension bounds, each carrying
// a deterministic gradient.
package synth

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/tinyrange/imgdoc"
)

var ErrEmptyPlan = errors.New("synth: plan produces no tiles")

type transactor interface {
	BeginTransaction() error
	CommitTransaction() error
	RollbackTransaction() error
}

// TileWriter is the part of *imgdoc.Writer2d the generator uses.
type TileWriter interface {
	AddTile(coord imgdoc.TileCoordinate, pos imgdoc.LogicalPosition2D, base imgdoc.TileBaseInfo, dataType imgdoc.DataType, data []byte) (int64, error)
	transactor
}

// BrickWriter is the part of *imgdoc.Writer3d the generator uses.
type BrickWriter interface {
	AddBrick(coord imgdoc.TileCoordinate, pos imgdoc.LogicalPosition3D, base imgdoc.BrickBaseInfo, dataType imgdoc.DataType, data []byte) (int64, error)
	transactor
}

// Plan describes a synthetic document.
type Plan struct {
	// Bounds gives the inclusive value range of every dimension.
	Bounds imgdoc.DimensionQueryClause

	TileWidth  uint32
	TileHeight uint32
	// TileDepth is only used for bricks.
	TileDepth uint32

	Columns int
	Rows    int

	PixelType imgdoc.PixelType
}

// Validate checks that the plan describes at least one tile.
func (p Plan) Validate() error {
	if len(p.Bounds.Conditions) == 0 {
		return fmt.Errorf("%w: no dimension bounds", ErrEmptyPlan)
	}
	seen := map[imgdoc.Dimension]bool{}
	for _, c := range p.Bounds.Conditions {
		if seen[c.Dimension] {
			return fmt.Errorf("synth: dimension %s bounded twice", c.Dimension)
		}
		seen[c.Dimension] = true
		if c.Start > c.End {
			return fmt.Errorf("%w: empty range for %s", ErrEmptyPlan, c.Dimension)
		}
	}
	if p.TileWidth == 0 || p.TileHeight == 0 {
		return fmt.Errorf("%w: zero tile size", ErrEmptyPlan)
	}
	if p.Columns <= 0 || p.Rows <= 0 {
		return fmt.Errorf("%w: empty grid", ErrEmptyPlan)
	}
	if p.PixelType.BytesPerPixel() == 0 {
		return fmt.Errorf("synth: unsupported pixel type %s", p.PixelType)
	}
	return nil
}

// Dimensions lists the bounded dimensions in order.
func (p Plan) Dimensions() []imgdoc.Dimension {
	dims := make([]imgdoc.Dimension, len(p.Bounds.Conditions))
	for i, c := range p.Bounds.Conditions {
		dims[i] = c.Dimension
	}
	return dims
}

// Coordinates returns every coordinate inside the bounds, varying the last
// dimension fastest.
func (p Plan) Coordinates() ([]imgdoc.TileCoordinate, error) {
	out := []imgdoc.TileCoordinate{{}}
	for _, c := range p.Bounds.Conditions {
		next := make([]imgdoc.TileCoordinate, 0, len(out)*int(int64(c.End)-int64(c.Start)+1))
		for _, base := range out {
			for v := int64(c.Start); v <= int64(c.End); v++ {
				coord, err := imgdoc.NewTileCoordinate(append(base.Entries(), imgdoc.CoordinateEntry{Dimension: c.Dimension, Value: int32(v)})...)
				if err != nil {
					return nil, err
				}
				next = append(next, coord)
			}
		}
		out = next
	}
	return out, nil
}

// TileCount is the number of tiles the plan produces.
func (p Plan) TileCount() int {
	n := p.Columns * p.Rows
	for _, c := range p.Bounds.Conditions {
		n *= int(int64(c.End) - int64(c.Start) + 1)
	}
	return n
}

// Exceeds reports whether the plan produces more than limit tiles. Unlike
// TileCount it cannot overflow, so it is safe on unchecked bounds.
func (p Plan) Exceeds(limit int) bool {
	if p.Columns <= 0 || p.Rows <= 0 {
		return false
	}
	n := uint64(p.Columns) * uint64(p.Rows)
	if n > uint64(limit) {
		return true
	}
	for _, c := range p.Bounds.Conditions {
		span := int64(c.End) - int64(c.Start) + 1
		if span <= 0 {
			return false
		}
		if uint64(span) > uint64(limit)/n {
			return true
		}
		n *= uint64(span)
	}
	return n > uint64(limit)
}

// Generator writes a plan into a document.
type Generator struct {
	Plan Plan

	// Progress, if set, is called after every tile.
	Progress func(done, total int)
	Logger   *slog.Logger
}

func (g *Generator) log() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

// cell is one tile position of the plan.
type cell struct {
	coord    imgdoc.TileCoordinate
	index    int
	col, row int
}

// each calls fn for every tile inside one transaction on w, rolling back on
// the first error.
func (g *Generator) each(w transactor, fn func(cell) error) (int, error) {
	if err := g.Plan.Validate(); err != nil {
		return 0, err
	}
	coords, err := g.Plan.Coordinates()
	if err != nil {
		return 0, err
	}
	total := g.Plan.TileCount()

	if err := w.BeginTransaction(); err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	done := 0
	for i, coord := range coords {
		for row := 0; row < g.Plan.Rows; row++ {
			for col := 0; col < g.Plan.Columns; col++ {
				if err := fn(cell{coord: coord, index: i, col: col, row: row}); err != nil {
					if rbErr := w.RollbackTransaction(); rbErr != nil {
						g.log().Warn("rollback failed", "err", rbErr)
					}
					return 0, fmt.Errorf("tile %s (%d,%d): %w", coord, col, row, err)
				}
				done++
				if g.Progress != nil {
					g.Progress(done, total)
				}
			}
		}
	}
	if err := w.CommitTransaction(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	g.log().Debug("synthetic document written", "tiles", done)
	return done, nil
}

// Write2d adds the plan's tiles to w and returns how many were written.
func (g *Generator) Write2d(w TileWriter) (int, error) {
	p := g.Plan
	base := imgdoc.TileBaseInfo{PixelWidth: p.TileWidth, PixelHeight: p.TileHeight, PixelType: p.PixelType}
	return g.each(w, func(c cell) error {
		pos := imgdoc.LogicalPosition2D{
			X:      float64(c.col) * float64(p.TileWidth),
			Y:      float64(c.row) * float64(p.TileHeight),
			Width:  float64(p.TileWidth),
			Height: float64(p.TileHeight),
		}
		data := Gradient(p.PixelType, p.TileWidth, p.TileHeight, 1, c.index+c.col+c.row)
		_, err := w.AddTile(c.coord, pos, base, imgdoc.DataUncompressedBitmap, data)
		return err
	})
}

// Write3d adds the plan's bricks to w. Each coordinate gets its own slab
// along z.
func (g *Generator) Write3d(w BrickWriter) (int, error) {
	p := g.Plan
	depth := max(p.TileDepth, 1)
	base := imgdoc.BrickBaseInfo{PixelWidth: p.TileWidth, PixelHeight: p.TileHeight, PixelDepth: depth, PixelType: p.PixelType}
	return g.each(w, func(c cell) error {
		pos := imgdoc.LogicalPosition3D{
			X:      float64(c.col) * float64(p.TileWidth),
			Y:      float64(c.row) * float64(p.TileHeight),
			Z:      float64(c.index) * float64(depth),
			Width:  float64(p.TileWidth),
			Height: float64(p.TileHeight),
			Depth:  float64(depth),
		}
		data := Gradient(p.PixelType, p.TileWidth, p.TileHeight, depth, c.index+c.col+c.row)
		_, err := w.AddBrick(c.coord, pos, base, imgdoc.DataUncompressedBrick, data)
		return err
	})
}

// Gradient returns width*height*depth pixels of type pt whose value rises
// along x and y, shifted by seed. Multi-byte samples are little-endian.
func Gradient(pt imgdoc.PixelType, width, height, depth uint32, seed int) []byte {
	bpp := pt.BytesPerPixel()
	out := make([]byte, int(width)*int(height)*int(depth)*bpp)
	i := 0
	for z := 0; z < int(depth); z++ {
		for y := 0; y < int(height); y++ {
			for x := 0; x < int(width); x++ {
				v := uint8(x + y + z + seed)
				switch pt {
				case imgdoc.PixelGray8:
					out[i] = v
				case imgdoc.PixelGray16:
					binary.LittleEndian.PutUint16(out[i:], uint16(v)<<8)
				case imgdoc.PixelGray32Float:
					binary.LittleEndian.PutUint32(out[i:], math.Float32bits(float32(v)/255))
				case imgdoc.PixelBgr24:
					out[i], out[i+1], out[i+2] = v, v/2, 255-v
				case imgdoc.PixelBgr48:
					binary.LittleEndian.PutUint16(out[i:], uint16(v)<<8)
					binary.LittleEndian.PutUint16(out[i+2:], uint16(v/2)<<8)
					binary.LittleEndian.PutUint16(out[i+4:], uint16(255-v)<<8)
				}
				i += bpp
			}
		}
	}
	return out
}
