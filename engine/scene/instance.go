package scene

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/geometry"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// sharedGeometry is the ownership record of a geometry used by several instances. The
// last instance to let go releases the geometry.
type sharedGeometry struct {
	geometry geometry.Geometry
	count    int
}

func (s *sharedGeometry) acquire() *sharedGeometry {
	s.count++
	return s
}

func (s *sharedGeometry) release() {
	s.count--
	if s.count > 0 {
		return
	}
	if s.geometry != nil {
		core.LogDebug("releasing geometry '%s' (%d), last instance gone", s.geometry.Name(), s.geometry.ID())
		s.geometry.Release()
		s.geometry = nil
	}
}

/**
 * @brief Instance places a geometry in the scene. Instances made with Copy or Instanciate
 * share the geometry of their source; Clone gets its own. Every instance must be
 * released exactly once.
 */
type Instance struct {
	id      uint32
	name    string
	colorID [4]uint8

	shared *sharedGeometry

	transform        math.Mat4
	boundingBox      *math.BoundingBox
	boundingBoxValid bool

	selected bool
	visible  bool
	face     metadata.PolygonFace
	mode     metadata.PolygonMode
}

// NewInstance returns an instance with no geometry.
func NewInstance() *Instance {
	id := core.IdentifierGenerate()
	return &Instance{
		id:        id,
		colorID:   EncodeID(id),
		shared:    &sharedGeometry{count: 1},
		transform: math.NewMat4Identity(),
		visible:   true,
		face:      metadata.PolygonFaceFrontAndBack,
		mode:      metadata.PolygonModeFill,
	}
}

// NewInstanceWithGeometry returns an instance that owns g and takes its name.
func NewInstanceWithGeometry(g geometry.Geometry) *Instance {
	i := NewInstance()
	i.shared.geometry = g
	i.name = g.Name()
	return i
}

// Copy returns an instance sharing the geometry and the identity of i.
func (i *Instance) Copy() *Instance {
	out := &Instance{}
	out.copyFrom(i)
	return out
}

// Assign releases the current state of i and takes over the state of src, sharing its
// geometry. Assigning an instance to itself does nothing.
func (i *Instance) Assign(src *Instance) *Instance {
	if i == src {
		return i
	}
	i.Release()
	i.copyFrom(src)
	return i
}

func (i *Instance) copyFrom(src *Instance) {
	i.id = src.id
	i.colorID = EncodeID(src.id)
	i.name = src.name
	i.shared = src.share().acquire()
	i.boundingBox = copyBox(src.boundingBox)
	i.boundingBoxValid = src.boundingBoxValid
	i.transform = src.transform
	i.selected = src.selected
	i.visible = src.visible
	i.face = src.face
	i.mode = src.mode
}

// Clone returns an independent instance with a new identity and a deep copy of the
// geometry.
func (i *Instance) Clone() (*Instance, error) {
	out := NewInstance()
	if g := i.share().geometry; g != nil {
		cloned, err := g.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning instance %d: %w", i.id, err)
		}
		out.shared.geometry = cloned
	}
	out.name = i.name
	out.boundingBox = copyBox(i.boundingBox)
	out.boundingBoxValid = i.boundingBoxValid
	out.transform = i.transform
	out.selected = i.selected
	out.visible = i.visible
	out.face = i.face
	out.mode = i.mode
	return out, nil
}

// Instanciate returns a copy sharing the geometry of i under a new identity, so the same
// mesh can be placed and selected independently.
func (i *Instance) Instanciate() *Instance {
	out := i.Copy()
	out.id = core.IdentifierGenerate()
	out.colorID = EncodeID(out.id)
	return out
}

// Release drops this instance's share of the geometry, releasing the geometry when no
// other instance holds it. Releasing twice panics.
func (i *Instance) Release() {
	s := i.share()
	s.release()
	i.shared = nil
	i.boundingBox = nil
	i.boundingBoxValid = false
}

func (i *Instance) share() *sharedGeometry {
	if i.shared == nil {
		panic(fmt.Sprintf("scene: instance %d used after release", i.id))
	}
	return i.shared
}

func (i *Instance) ID() uint32 {
	return i.id
}

func (i *Instance) Name() string {
	return i.name
}

func (i *Instance) SetName(name string) {
	i.name = name
}

// ColorID is the pick colour derived from the identifier.
func (i *Instance) ColorID() [4]uint8 {
	return i.colorID
}

func (i *Instance) Geometry() geometry.Geometry {
	return i.share().geometry
}

// ShareCount is the number of live instances holding the geometry of i.
func (i *Instance) ShareCount() int {
	return i.share().count
}

// SetGeometry replaces the geometry. It fails on an instance that has none. The previous
// geometry is released when i was its last holder.
func (i *Instance) SetGeometry(g geometry.Geometry) bool {
	s := i.share()
	if s.geometry == nil {
		return false
	}
	if s.geometry == g {
		return true
	}
	s.release()
	i.shared = &sharedGeometry{geometry: g, count: 1}
	i.boundingBoxValid = false
	return true
}

// BoundingBox returns the world box of the instance, computing it when the cached one is
// stale. An instance with no geometry has an empty box.
func (i *Instance) BoundingBox() math.BoundingBox {
	if i.BoundingBoxValidity() {
		return *i.boundingBox
	}
	g := i.share().geometry
	if g == nil {
		return math.NewBoundingBox()
	}
	box := g.BoundingBox().Transform(i.transform)
	i.boundingBox = &box
	i.boundingBoxValid = true
	return box
}

// BoundingBoxValidity is true when both the instance cache and the geometry's local box
// are up to date.
func (i *Instance) BoundingBoxValidity() bool {
	g := i.share().geometry
	if g == nil || i.boundingBox == nil {
		return false
	}
	return i.boundingBoxValid && g.BoundingBoxIsValid()
}

func (i *Instance) Matrix() math.Mat4 {
	return i.transform
}

// Translate moves the instance by (x, y, z) in world space.
func (i *Instance) Translate(x, y, z float32) *Instance {
	return i.MultMatrix(math.NewMat4Translation(math.NewVec3(x, y, z)))
}

// MultMatrix applies m after the current transform.
func (i *Instance) MultMatrix(m math.Mat4) *Instance {
	i.transform = i.transform.Mul(m)
	i.boundingBoxValid = false
	return i
}

func (i *Instance) SetMatrix(m math.Mat4) *Instance {
	i.transform = m
	i.boundingBoxValid = false
	return i
}

func (i *Instance) ResetMatrix() *Instance {
	i.transform = math.NewMat4Identity()
	i.boundingBoxValid = false
	return i
}

func (i *Instance) PolygonFace() metadata.PolygonFace {
	return i.face
}

func (i *Instance) PolygonMode() metadata.PolygonMode {
	return i.mode
}

func (i *Instance) SetPolygonMode(face metadata.PolygonFace, mode metadata.PolygonMode) {
	if i.face != face || i.mode != mode {
		i.face = face
		i.mode = mode
	}
}

func (i *Instance) IsSelected() bool {
	return i.selected
}

func (i *Instance) Select() {
	i.selected = true
}

func (i *Instance) Unselect() {
	i.selected = false
}

func (i *Instance) IsVisible() bool {
	return i.visible
}

func (i *Instance) SetVisibility(visible bool) {
	i.visible = visible
}

// Render draws the geometry under the instance transform and raster mode. In the pick
// pass the pick colour replaces the draw colour. The matrix stack is restored even when
// the geometry fails to draw.
func (i *Instance) Render(ctx *renderer.Context, transparent bool) error {
	g := i.share().geometry
	if g == nil {
		return nil
	}

	backend := ctx.Backend
	backend.PushMatrix()
	defer backend.PopMatrix()

	backend.PolygonMode(i.face, i.mode)
	backend.MultMatrix(i.transform)
	if ctx.SelectionMode {
		backend.Color3ub(i.colorID[0], i.colorID[1], i.colorID[2])
	}
	return g.Render(ctx, i.selected, transparent)
}

func copyBox(b *math.BoundingBox) *math.BoundingBox {
	if b == nil {
		return nil
	}
	out := *b
	return &out
}
