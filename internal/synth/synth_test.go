package synth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyrange/imgdoc"
)

type recorder struct {
	tiles     []imgdoc.TileCoordinate
	pos2d     []imgdoc.LogicalPosition2D
	pos3d     []imgdoc.LogicalPosition3D
	sizes     []int
	began     int
	committed int
	rolled    int
	failAt    int
}

func (r *recorder) add(coord imgdoc.TileCoordinate, size int) (int64, error) {
	if r.failAt > 0 && len(r.tiles)+1 == r.failAt {
		return 0, errors.New("disk full")
	}
	r.tiles = append(r.tiles, coord)
	r.sizes = append(r.sizes, size)
	return int64(len(r.tiles)), nil
}

func (r *recorder) AddTile(coord imgdoc.TileCoordinate, pos imgdoc.LogicalPosition2D, base imgdoc.TileBaseInfo, _ imgdoc.DataType, data []byte) (int64, error) {
	if uint64(len(data)) != base.UncompressedSize() {
		return 0, errors.New("size mismatch")
	}
	r.pos2d = append(r.pos2d, pos)
	return r.add(coord, len(data))
}

func (r *recorder) AddBrick(coord imgdoc.TileCoordinate, pos imgdoc.LogicalPosition3D, base imgdoc.BrickBaseInfo, _ imgdoc.DataType, data []byte) (int64, error) {
	if uint64(len(data)) != base.UncompressedSize() {
		return 0, errors.New("size mismatch")
	}
	r.pos3d = append(r.pos3d, pos)
	return r.add(coord, len(data))
}

func (r *recorder) BeginTransaction() error    { r.began++; return nil }
func (r *recorder) CommitTransaction() error   { r.committed++; return nil }
func (r *recorder) RollbackTransaction() error { r.rolled++; return nil }

func plan(t *testing.T, bounds string) Plan {
	t.Helper()
	q, err := imgdoc.ParseDimensionQuery(bounds)
	require.NoError(t, err)
	return Plan{
		Bounds:     q,
		TileWidth:  4,
		TileHeight: 2,
		Columns:    3,
		Rows:       2,
		PixelType:  imgdoc.PixelBgr24,
	}
}

func TestCoordinates(t *testing.T) {
	p := plan(t, "C0,1T5,7")
	coords, err := p.Coordinates()
	require.NoError(t, err)
	require.Len(t, coords, 6)
	assert.Equal(t, "C0T5", coords[0].String())
	assert.Equal(t, "C1T7", coords[5].String())
	assert.Equal(t, 36, p.TileCount())
}

func TestExceeds(t *testing.T) {
	p := plan(t, "C0,1T5,7")
	assert.False(t, p.Exceeds(36))
	assert.True(t, p.Exceeds(35))

	wide := plan(t, "C-2147483648,2147483647T-2147483648,2147483647")
	assert.True(t, wide.Exceeds(1<<20))
}

func TestWrite2d(t *testing.T) {
	var progress []int
	g := Generator{
		Plan:     plan(t, "C0,1"),
		Progress: func(done, total int) { progress = append(progress, done*100+total) },
	}
	var rec recorder
	n, err := g.Write2d(&rec)
	require.NoError(t, err)

	assert.Equal(t, 12, n)
	assert.Len(t, rec.tiles, 12)
	assert.Equal(t, 1, rec.began)
	assert.Equal(t, 1, rec.committed)
	assert.Zero(t, rec.rolled)
	assert.Equal(t, 4*2*3, rec.sizes[0])
	assert.Equal(t, imgdoc.LogicalPosition2D{X: 8, Y: 2, Width: 4, Height: 2}, rec.pos2d[5])
	require.Len(t, progress, 12)
	assert.Equal(t, 1*100+12, progress[0])
	assert.Equal(t, 12*100+12, progress[11])
}

func TestWrite3d(t *testing.T) {
	p := plan(t, "Z0,2")
	p.TileDepth = 2
	p.PixelType = imgdoc.PixelGray16
	p.Columns, p.Rows = 1, 1

	var rec recorder
	n, err := (&Generator{Plan: p}).Write3d(&rec)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 4*2*2*2, rec.sizes[0])
	assert.Equal(t, float64(4), rec.pos3d[2].Z)
}

func TestWriteRollsBackOnError(t *testing.T) {
	rec := recorder{failAt: 5}
	_, err := (&Generator{Plan: plan(t, "C0,3")}).Write2d(&rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, rec.rolled)
	assert.Zero(t, rec.committed)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Plan)
	}{
		{"no bounds", func(p *Plan) { p.Bounds = imgdoc.DimensionQueryClause{} }},
		{"reversed range", func(p *Plan) { p.Bounds.Conditions[0].Start = 5 }},
		{"zero width", func(p *Plan) { p.TileWidth = 0 }},
		{"no columns", func(p *Plan) { p.Columns = 0 }},
		{"bad pixel type", func(p *Plan) { p.PixelType = imgdoc.PixelType(42) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := plan(t, "C0,1")
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
	assert.NoError(t, plan(t, "C0,1").Validate())
}

func TestGradientDeterministic(t *testing.T) {
	a := Gradient(imgdoc.PixelGray8, 3, 2, 1, 10)
	b := Gradient(imgdoc.PixelGray8, 3, 2, 1, 10)
	assert.Equal(t, a, b)
	assert.Equal(t, []byte{10, 11, 12, 11, 12, 13}, a)
	assert.Len(t, Gradient(imgdoc.PixelBgr48, 2, 2, 1, 0), 2*2*6)
}
