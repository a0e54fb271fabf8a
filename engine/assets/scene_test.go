package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/geometry"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/headless"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/scene"
)

const testScene = `
name = "test"

[[instance]]
name = "backdrop"
primitive = "plane"
size = [10.0, 10.0, 0.0]
segments = [2, 2]
translation = [0.0, 0.0, -1.0]
color = [0.3, 0.3, 0.3]

[[instance]]
name = "crate"
primitive = "cube"
size = [1.0, 1.0, 1.0]
color = [1.0, 0.0, 0.0, 1.0]
polygon_mode = "line"
copies = 2
copy_offset = [2.0, 0.0, 0.0]

[[instance]]
name = "ghost"
primitive = "cube"
size = [1.0, 1.0, 1.0]
color = [0.0, 0.0, 1.0, 0.4]
hidden = true
`

func TestParseSceneConfig(t *testing.T) {
	cfg, err := ParseSceneConfig([]byte(testScene))
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Name)
	require.Len(t, cfg.Instances, 3)
	assert.Equal(t, PrimitivePlane, cfg.Instances[0].Primitive)
	assert.Equal(t, [2]uint32{2, 2}, cfg.Instances[0].Segments)
	assert.Equal(t, uint32(2), cfg.Instances[1].Copies)
	assert.True(t, cfg.Instances[2].Hidden)
}

func TestParseSceneConfigErrors(t *testing.T) {
	tests := map[string]string{
		"syntax":    "name = ",
		"primitive": "[[instance]]\nprimitive = \"teapot\"",
		"color":     "[[instance]]\nprimitive = \"cube\"\ncolor = [1.0, 1.0]",
		"mode":      "[[instance]]\nprimitive = \"cube\"\npolygon_mode = \"smooth\"",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSceneConfig([]byte(data))
			assert.ErrorIs(t, err, core.ErrInvalidConfig)
		})
	}
}

func TestLoadSceneConfigMissingFile(t *testing.T) {
	_, err := LoadSceneConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSceneBuild(t *testing.T) {
	cfg, err := ParseSceneConfig([]byte(testScene))
	require.NoError(t, err)

	b := headless.New()
	c := scene.NewCollection()
	require.NoError(t, cfg.Build(b, c))
	defer c.Clear()

	assert.Equal(t, 5, c.Len())

	var crates []*scene.Instance
	var backdrop *scene.Instance
	for _, id := range allIDs(c) {
		inst, _ := c.Get(id)
		switch inst.Name() {
		case "crate":
			crates = append(crates, inst)
		case "backdrop":
			backdrop = inst
		}
	}
	require.Len(t, crates, 3)
	require.NotNil(t, backdrop)

	assert.Same(t, crates[0].Geometry(), crates[2].Geometry())
	assert.Equal(t, 3, crates[0].ShareCount())
	assert.InDelta(t, 4.5, crates[2].BoundingBox().Max.X, 1e-5)
	assert.Equal(t, metadata.PolygonModeLine, crates[1].PolygonMode())
	assert.InDelta(t, -1, backdrop.BoundingBox().Min.Z, 1e-5)
	assert.InDelta(t, -5, backdrop.BoundingBox().Min.Y, 1e-5)

	mesh := backdrop.Geometry().(*geometry.Mesh)
	assert.InDelta(t, 0.3, mesh.Color().X, 1e-6)
	assert.Equal(t, float32(1), mesh.Color().W)

	ctx := renderer.NewContext(b)
	require.NoError(t, c.Render(ctx))
	// the ghost is hidden
	assert.Equal(t, uint32(4), ctx.DrawCalls())
}

func allIDs(c *scene.Collection) []uint32 {
	var ids []uint32
	for id := uint32(1); id <= core.IdentifierLast(); id++ {
		if _, ok := c.Get(id); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
