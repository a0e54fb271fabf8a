package scene

import (
	"errors"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/geometry"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
)

var errDraw = errors.New("draw failed")

// fakeGeometry records how instances drive it.
type fakeGeometry struct {
	id        uint32
	name      string
	box       math.BoundingBox
	boxValid  bool
	released  int
	renders   int
	selected  bool
	renderErr error
}

var _ geometry.Geometry = (*fakeGeometry)(nil)

func newFakeGeometry(name string) *fakeGeometry {
	return &fakeGeometry{
		id:       core.IdentifierGenerate(),
		name:     name,
		box:      math.NewBoundingBoxFromExtents(math.NewVec3(-1, -1, -1), math.NewVec3(1, 1, 1)),
		boxValid: true,
	}
}

func (g *fakeGeometry) ID() uint32   { return g.id }
func (g *fakeGeometry) Name() string { return g.name }

func (g *fakeGeometry) BoundingBox() math.BoundingBox {
	g.boxValid = true
	return g.box
}

func (g *fakeGeometry) BoundingBoxIsValid() bool { return g.boxValid }

func (g *fakeGeometry) Clone() (geometry.Geometry, error) {
	out := newFakeGeometry(g.name)
	out.box = g.box
	return out, nil
}

func (g *fakeGeometry) Render(ctx *renderer.Context, selected, transparent bool) error {
	g.renders++
	g.selected = selected
	return g.renderErr
}

func (g *fakeGeometry) Release() { g.released++ }
