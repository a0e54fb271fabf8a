package math

import "github.com/chewxy/math32"

// BoundingBox is an axis aligned box. The zero value is not usable; start from
// NewBoundingBox, which returns an empty box that grows as points are combined into it.
type BoundingBox struct {
	Extents3D
	empty bool
}

func NewBoundingBox() BoundingBox {
	inf := math32.Inf(1)
	return BoundingBox{
		Extents3D: Extents3D{
			Min: Vec3{inf, inf, inf},
			Max: Vec3{-inf, -inf, -inf},
		},
		empty: true,
	}
}

func NewBoundingBoxFromExtents(min, max Vec3) BoundingBox {
	return BoundingBox{Extents3D: Extents3D{Min: min.Min(max), Max: min.Max(max)}}
}

// NewBoundingBoxFromPositions builds the box enclosing a flattened xyz position array.
// A trailing partial triple is ignored.
func NewBoundingBoxFromPositions(positions []float32) BoundingBox {
	b := NewBoundingBox()
	for i := 0; i+2 < len(positions); i += 3 {
		b.CombinePoint(Vec3{positions[i], positions[i+1], positions[i+2]})
	}
	return b
}

func (b BoundingBox) IsEmpty() bool {
	return b.empty
}

// CombinePoint grows b so that it encloses p.
func (b *BoundingBox) CombinePoint(p Vec3) {
	if b.empty {
		b.Min, b.Max = p, p
		b.empty = false
		return
	}
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Combine grows b so that it encloses other. Empty boxes contribute nothing.
func (b *BoundingBox) Combine(other BoundingBox) {
	if other.empty {
		return
	}
	b.CombinePoint(other.Min)
	b.CombinePoint(other.Max)
}

func (b BoundingBox) Contains(p Vec3) bool {
	if b.empty {
		return false
	}
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

func (b BoundingBox) Center() Vec3 {
	if b.empty {
		return NewVec3Zero()
	}
	return b.Min.Add(b.Max).MulScalar(0.5)
}

func (b BoundingBox) Size() Vec3 {
	if b.empty {
		return NewVec3Zero()
	}
	return b.Max.Sub(b.Min)
}

// Transform returns the axis aligned box enclosing the eight corners of b transformed by m.
func (b BoundingBox) Transform(m Mat4) BoundingBox {
	if b.empty {
		return b
	}
	out := NewBoundingBox()
	for i := 0; i < 8; i++ {
		corner := b.Min
		if i&1 != 0 {
			corner.X = b.Max.X
		}
		if i&2 != 0 {
			corner.Y = b.Max.Y
		}
		if i&4 != 0 {
			corner.Z = b.Max.Z
		}
		out.CombinePoint(corner.Transform(m))
	}
	return out
}
