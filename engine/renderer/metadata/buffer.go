package metadata

// BufferTarget is the binding point a buffer is attached to.
type BufferTarget int

const (
	/** @brief Vertex attribute data. */
	BufferTargetArray BufferTarget = iota
	/** @brief Index data. */
	BufferTargetElementArray
)

func (t BufferTarget) String() string {
	switch t {
	case BufferTargetArray:
		return "array"
	case BufferTargetElementArray:
		return "element_array"
	default:
		return "unknown"
	}
}

// BufferKind selects one of the per-vertex attribute buffers of a geometry engine.
type BufferKind int

const (
	BufferKindVertex BufferKind = iota
	BufferKindNormal
	BufferKindTexel
)

func (k BufferKind) String() string {
	switch k {
	case BufferKindVertex:
		return "vertex"
	case BufferKindNormal:
		return "normal"
	case BufferKindTexel:
		return "texel"
	default:
		return "unknown"
	}
}

// Components returns the number of floats per vertex for the attribute.
func (k BufferKind) Components() int32 {
	if k == BufferKindTexel {
		return 2
	}
	return 3
}

// IndexKind is the primitive topology of an index set.
type IndexKind int

const (
	IndexKindTriangles IndexKind = iota
	IndexKindStrips
	IndexKindFans
)

// IndexKinds lists every index kind in draw order.
var IndexKinds = []IndexKind{IndexKindTriangles, IndexKindStrips, IndexKindFans}

func (k IndexKind) String() string {
	switch k {
	case IndexKindTriangles:
		return "triangles"
	case IndexKindStrips:
		return "strips"
	case IndexKindFans:
		return "fans"
	default:
		return "unknown"
	}
}
