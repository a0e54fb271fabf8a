package math

import "github.com/spaghettifunk/prism/engine/core"

// GeometryGenerateNormals computes flat face normals for a flattened xyz position array
// indexed as triangles. Vertices shared between faces keep the normal of the last face
// that references them.
func GeometryGenerateNormals(positions []float32, indices []uint32) []float32 {
	normals := make([]float32, len(positions))
	vertexCount := uint32(len(positions) / 3)

	for i := 0; i+2 < len(indices); i += 3 {
		i0 := indices[i+0]
		i1 := indices[i+1]
		i2 := indices[i+2]
		if i0 >= vertexCount || i1 >= vertexCount || i2 >= vertexCount {
			core.LogWarn("GeometryGenerateNormals: triangle %d references a vertex out of range, skipping", i/3)
			continue
		}

		p0 := vertexAt(positions, i0)
		edge1 := vertexAt(positions, i1).Sub(p0)
		edge2 := vertexAt(positions, i2).Sub(p0)

		// NOTE: This just generates a face normal. Smoothing out should be done in a separate pass if desired.
		normal := edge1.Cross(edge2).Normalized()
		for _, idx := range [3]uint32{i0, i1, i2} {
			normals[idx*3+0] = normal.X
			normals[idx*3+1] = normal.Y
			normals[idx*3+2] = normal.Z
		}
	}
	return normals
}

func vertexAt(positions []float32, index uint32) Vec3 {
	return Vec3{positions[index*3], positions[index*3+1], positions[index*3+2]}
}
