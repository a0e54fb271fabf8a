package scene

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Collection holds the instances of a scene keyed by identifier. It owns them: removing
// an instance releases it.
type Collection struct {
	instances map[uint32]*Instance
}

func NewCollection() *Collection {
	return &Collection{instances: make(map[uint32]*Instance)}
}

// Add stores inst. It returns false if an instance with the same id is already there.
func (c *Collection) Add(inst *Instance) bool {
	if _, ok := c.instances[inst.ID()]; ok {
		core.LogWarn("instance %d already in collection", inst.ID())
		return false
	}
	c.instances[inst.ID()] = inst
	return true
}

func (c *Collection) Get(id uint32) (*Instance, bool) {
	inst, ok := c.instances[id]
	return inst, ok
}

// Remove releases and forgets the instance with id.
func (c *Collection) Remove(id uint32) bool {
	inst, ok := c.instances[id]
	if !ok {
		return false
	}
	delete(c.instances, id)
	inst.Release()
	return true
}

func (c *Collection) Len() int {
	return len(c.instances)
}

// Clear releases every instance.
func (c *Collection) Clear() {
	for _, id := range c.ids() {
		c.Remove(id)
	}
}

func (c *Collection) Select(id uint32) bool {
	inst, ok := c.instances[id]
	if !ok {
		return false
	}
	inst.Select()
	return true
}

func (c *Collection) UnselectAll() {
	for _, inst := range c.instances {
		inst.Unselect()
	}
}

func (c *Collection) SelectedIDs() []uint32 {
	var out []uint32
	for _, id := range c.ids() {
		if c.instances[id].IsSelected() {
			out = append(out, id)
		}
	}
	return out
}

func (c *Collection) SetPolygonModeForAll(face metadata.PolygonFace, mode metadata.PolygonMode) {
	for _, inst := range c.instances {
		inst.SetPolygonMode(face, mode)
	}
}

// BoundingBox is the union of the boxes of the visible instances.
func (c *Collection) BoundingBox() math.BoundingBox {
	box := math.NewBoundingBox()
	for _, inst := range c.instances {
		if inst.IsVisible() {
			box.Combine(inst.BoundingBox())
		}
	}
	return box
}

// Render draws the visible instances, opaque ones first, in identifier order. A failing
// instance does not stop the others; all failures are returned together.
func (c *Collection) Render(ctx *renderer.Context) error {
	ids := c.ids()
	var errs []error
	for _, transparent := range [2]bool{false, true} {
		for _, id := range ids {
			inst := c.instances[id]
			if !inst.IsVisible() {
				continue
			}
			if err := inst.Render(ctx, transparent); err != nil {
				core.LogError("rendering instance %d '%s': %s", id, inst.Name(), err)
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Pick returns the instance whose pick colour is color.
func (c *Collection) Pick(color [4]uint8) (*Instance, bool) {
	return c.Get(DecodeID(color))
}

// PickAt runs the pick pass and returns the instance drawn at (x, y), if any.
func (c *Collection) PickAt(ctx *renderer.Context, x, y int32) (*Instance, bool, error) {
	if err := c.Render(ctx.SelectionContext()); err != nil {
		return nil, false, fmt.Errorf("pick pass: %w", err)
	}
	inst, ok := c.Pick(ctx.Backend.ReadPixel(x, y))
	return inst, ok, nil
}

func (c *Collection) ids() []uint32 {
	return slices.Sorted(maps.Keys(c.instances))
}
