package geometry

import (
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
)

// NewPlane generates a plane in the XY plane centred on the origin, split in
// xSegmentCount * ySegmentCount quads, facing +Z.
func NewPlane(backend renderer.Backend, name string, width, height float32, xSegmentCount, ySegmentCount uint32) *Mesh {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("Height must be nonzero. Defaulting to one.")
		height = 1.0
	}
	if xSegmentCount < 1 {
		core.LogWarn("xSegmentCount must be a positive number. Defaulting to one.")
		xSegmentCount = 1
	}
	if ySegmentCount < 1 {
		core.LogWarn("ySegmentCount must be a positive number. Defaulting to one.")
		ySegmentCount = 1
	}

	quadCount := xSegmentCount * ySegmentCount
	positions := make([]float32, 0, quadCount*4*3)
	normals := make([]float32, 0, quadCount*4*3)
	texels := make([]float32, 0, quadCount*4*2)
	indices := make([]uint32, 0, quadCount*6)

	segWidth := width / float32(xSegmentCount)
	segHeight := height / float32(ySegmentCount)
	halfWidth := width * 0.5
	halfHeight := height * 0.5
	for y := uint32(0); y < ySegmentCount; y++ {
		for x := uint32(0); x < xSegmentCount; x++ {
			minX := (float32(x) * segWidth) - halfWidth
			minY := (float32(y) * segHeight) - halfHeight
			maxX := minX + segWidth
			maxY := minY + segHeight
			minU := float32(x) / float32(xSegmentCount)
			minV := float32(y) / float32(ySegmentCount)
			maxU := float32(x+1) / float32(xSegmentCount)
			maxV := float32(y+1) / float32(ySegmentCount)

			offset := uint32(len(positions) / 3)
			positions = append(positions,
				minX, minY, 0,
				maxX, maxY, 0,
				minX, maxY, 0,
				maxX, minY, 0,
			)
			texels = append(texels,
				minU, minV,
				maxU, maxV,
				minU, maxV,
				maxU, minV,
			)
			for i := 0; i < 4; i++ {
				normals = append(normals, 0, 0, 1)
			}
			indices = append(indices, quadIndices(offset)...)
		}
	}

	m := NewMesh(backend, name)
	m.SetPositions(positions)
	m.SetNormals(normals)
	m.SetTexels(texels)
	m.SetTriangles(indices)
	return m
}

// NewCube generates an axis aligned box centred on the origin with per-face normals.
func NewCube(backend renderer.Backend, name string, width, height, depth float32) *Mesh {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("Height must be nonzero. Defaulting to one.")
		height = 1.0
	}
	if depth == 0 {
		core.LogWarn("Depth must be nonzero. Defaulting to one.")
		depth = 1.0
	}

	minX, maxX := -width*0.5, width*0.5
	minY, maxY := -height*0.5, height*0.5
	minZ, maxZ := -depth*0.5, depth*0.5

	faces := []struct {
		corners [12]float32
		normal  [3]float32
	}{
		// front
		{[12]float32{minX, minY, maxZ, maxX, maxY, maxZ, minX, maxY, maxZ, maxX, minY, maxZ}, [3]float32{0, 0, 1}},
		// back
		{[12]float32{maxX, minY, minZ, minX, maxY, minZ, maxX, maxY, minZ, minX, minY, minZ}, [3]float32{0, 0, -1}},
		// left
		{[12]float32{minX, minY, minZ, minX, maxY, maxZ, minX, maxY, minZ, minX, minY, maxZ}, [3]float32{-1, 0, 0}},
		// right
		{[12]float32{maxX, minY, maxZ, maxX, maxY, minZ, maxX, maxY, maxZ, maxX, minY, minZ}, [3]float32{1, 0, 0}},
		// bottom
		{[12]float32{maxX, minY, maxZ, minX, minY, minZ, maxX, minY, minZ, minX, minY, maxZ}, [3]float32{0, -1, 0}},
		// top
		{[12]float32{minX, maxY, maxZ, maxX, maxY, minZ, minX, maxY, minZ, maxX, maxY, maxZ}, [3]float32{0, 1, 0}},
	}

	positions := make([]float32, 0, 6*4*3)
	normals := make([]float32, 0, 6*4*3)
	texels := make([]float32, 0, 6*4*2)
	indices := make([]uint32, 0, 6*6)
	for i, f := range faces {
		positions = append(positions, f.corners[:]...)
		for v := 0; v < 4; v++ {
			normals = append(normals, f.normal[:]...)
		}
		texels = append(texels, 0, 0, 1, 1, 0, 1, 1, 0)
		indices = append(indices, quadIndices(uint32(i*4))...)
	}

	m := NewMesh(backend, name)
	m.SetPositions(positions)
	m.SetNormals(normals)
	m.SetTexels(texels)
	m.SetTriangles(indices)
	return m
}

// quadIndices returns the two triangles of a quad whose corners are laid out
// (min,min) (max,max) (min,max) (max,min) starting at offset.
func quadIndices(offset uint32) []uint32 {
	return []uint32{offset + 0, offset + 1, offset + 2, offset + 0, offset + 3, offset + 1}
}
