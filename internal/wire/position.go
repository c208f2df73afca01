package wire

// LogicalPosition2D places a tile on the document plane.
type LogicalPosition2D struct {
	X, Y          float64
	Width, Height float64
	PyramidLevel  int32
}

func (p LogicalPosition2D) MarshalBinary() ([]byte, error) {
	b := make([]byte, LogicalPosition2DSize)
	putFloats(b, p.X, p.Y, p.Width, p.Height)
	order.PutUint32(b[32:], uint32(p.PyramidLevel))
	return b, nil
}

func (p *LogicalPosition2D) UnmarshalBinary(b []byte) error {
	if len(b) < LogicalPosition2DSize {
		return ErrTruncated
	}
	*p = LogicalPosition2D{
		X:            getFloat(b[0:]),
		Y:            getFloat(b[8:]),
		Width:        getFloat(b[16:]),
		Height:       getFloat(b[24:]),
		PyramidLevel: int32(order.Uint32(b[32:])),
	}
	return nil
}

// Rect returns the extent of p.
func (p LogicalPosition2D) Rect() Rectangle {
	return Rectangle{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
}

// LogicalPosition3D places a brick in document space.
type LogicalPosition3D struct {
	X, Y, Z              float64
	Width, Height, Depth float64
	PyramidLevel         int32
}

func (p LogicalPosition3D) MarshalBinary() ([]byte, error) {
	b := make([]byte, LogicalPosition3DSize)
	putFloats(b, p.X, p.Y, p.Z, p.Width, p.Height, p.Depth)
	order.PutUint32(b[48:], uint32(p.PyramidLevel))
	return b, nil
}

func (p *LogicalPosition3D) UnmarshalBinary(b []byte) error {
	if len(b) < LogicalPosition3DSize {
		return ErrTruncated
	}
	*p = LogicalPosition3D{
		X:            getFloat(b[0:]),
		Y:            getFloat(b[8:]),
		Z:            getFloat(b[16:]),
		Width:        getFloat(b[24:]),
		Height:       getFloat(b[32:]),
		Depth:        getFloat(b[40:]),
		PyramidLevel: int32(order.Uint32(b[48:])),
	}
	return nil
}

// Cuboid returns the extent of p.
func (p LogicalPosition3D) Cuboid() Cuboid {
	return Cuboid{X: p.X, Y: p.Y, Z: p.Z, Width: p.Width, Height: p.Height, Depth: p.Depth}
}

// Rectangle is an axis-aligned rectangle in document coordinates.
type Rectangle struct {
	X, Y, Width, Height float64
}

func (r Rectangle) MarshalBinary() ([]byte, error) {
	b := make([]byte, RectangleSize)
	putFloats(b, r.X, r.Y, r.Width, r.Height)
	return b, nil
}

func (r *Rectangle) UnmarshalBinary(b []byte) error {
	if len(b) < RectangleSize {
		return ErrTruncated
	}
	*r = Rectangle{X: getFloat(b[0:]), Y: getFloat(b[8:]), Width: getFloat(b[16:]), Height: getFloat(b[24:])}
	return nil
}

// Intersects reports whether r and o overlap with non-zero area.
func (r Rectangle) Intersects(o Rectangle) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Union returns the smallest rectangle containing r and o.
func (r Rectangle) Union(o Rectangle) Rectangle {
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1, y1 := max(r.X+r.Width, o.X+o.Width), max(r.Y+r.Height, o.Y+o.Height)
	return Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Cuboid is an axis-aligned box in document coordinates.
type Cuboid struct {
	X, Y, Z              float64
	Width, Height, Depth float64
}

func (c Cuboid) MarshalBinary() ([]byte, error) {
	b := make([]byte, CuboidSize)
	putFloats(b, c.X, c.Y, c.Z, c.Width, c.Height, c.Depth)
	return b, nil
}

func (c *Cuboid) UnmarshalBinary(b []byte) error {
	if len(b) < CuboidSize {
		return ErrTruncated
	}
	*c = Cuboid{
		X: getFloat(b[0:]), Y: getFloat(b[8:]), Z: getFloat(b[16:]),
		Width: getFloat(b[24:]), Height: getFloat(b[32:]), Depth: getFloat(b[40:]),
	}
	return nil
}

// Intersects reports whether c and o overlap with non-zero volume.
func (c Cuboid) Intersects(o Cuboid) bool {
	return c.X < o.X+o.Width && o.X < c.X+c.Width &&
		c.Y < o.Y+o.Height && o.Y < c.Y+c.Height &&
		c.Z < o.Z+o.Depth && o.Z < c.Z+c.Depth
}

// Union returns the smallest cuboid containing c and o.
func (c Cuboid) Union(o Cuboid) Cuboid {
	x0, y0, z0 := min(c.X, o.X), min(c.Y, o.Y), min(c.Z, o.Z)
	x1, y1, z1 := max(c.X+c.Width, o.X+o.Width), max(c.Y+c.Height, o.Y+o.Height), max(c.Z+c.Depth, o.Z+o.Depth)
	return Cuboid{X: x0, Y: y0, Z: z0, Width: x1 - x0, Height: y1 - y0, Depth: z1 - z0}
}

// Plane is given in Hessian normal form: points p with dot(Normal, p) = Distance.
type Plane struct {
	NormalX, NormalY, NormalZ float64
	Distance                  float64
}

func (p Plane) MarshalBinary() ([]byte, error) {
	b := make([]byte, PlaneSize)
	putFloats(b, p.NormalX, p.NormalY, p.NormalZ, p.Distance)
	return b, nil
}

func (p *Plane) UnmarshalBinary(b []byte) error {
	if len(b) < PlaneSize {
		return ErrTruncated
	}
	*p = Plane{NormalX: getFloat(b[0:]), NormalY: getFloat(b[8:]), NormalZ: getFloat(b[16:]), Distance: getFloat(b[24:])}
	return nil
}

// IntersectsCuboid reports whether the plane passes through c. It checks
// whether the corners of c lie on both sides of (or on) the plane.
func (p Plane) IntersectsCuboid(c Cuboid) bool {
	var below, above bool
	for i := 0; i < 8; i++ {
		x, y, z := c.X, c.Y, c.Z
		if i&1 != 0 {
			x += c.Width
		}
		if i&2 != 0 {
			y += c.Height
		}
		if i&4 != 0 {
			z += c.Depth
		}
		d := p.NormalX*x + p.NormalY*y + p.NormalZ*z - p.Distance
		switch {
		case d == 0:
			return true
		case d < 0:
			below = true
		default:
			above = true
		}
		if below && above {
			return true
		}
	}
	return false
}
