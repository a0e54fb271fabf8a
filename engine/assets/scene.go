package assets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/geometry"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/scene"
)

// SceneConfig is the content of a scene file: a list of built-in primitives to place.
type SceneConfig struct {
	Name      string           `toml:"name"`
	Instances []InstanceConfig `toml:"instance"`
}

type InstanceConfig struct {
	Name string `toml:"name"`
	// Primitive is "cube" or "plane".
	Primitive string `toml:"primitive"`
	// Size is width, height and depth. Planes ignore depth.
	Size [3]float32 `toml:"size"`
	// Segments splits a plane along x and y.
	Segments    [2]uint32  `toml:"segments"`
	Translation [3]float32 `toml:"translation"`
	// Rotation in degrees around x, y and z.
	Rotation    [3]float32 `toml:"rotation"`
	Color       []float32  `toml:"color"`
	PolygonFace string     `toml:"polygon_face"`
	PolygonMode string     `toml:"polygon_mode"`
	Hidden      bool       `toml:"hidden"`
	Selected    bool       `toml:"selected"`
	// Copies places that many extra instances sharing the same geometry, each one moved
	// by CopyOffset from the previous.
	Copies     uint32     `toml:"copies"`
	CopyOffset [3]float32 `toml:"copy_offset"`
}

const (
	PrimitiveCube  = "cube"
	PrimitivePlane = "plane"
)

func LoadSceneConfig(path string) (*SceneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene %s: %w", path, err)
	}
	return ParseSceneConfig(data)
}

func ParseSceneConfig(data []byte) (*SceneConfig, error) {
	cfg := &SceneConfig{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("%w: scene %d:%d: %s", core.ErrInvalidConfig, row, col, derr.Error())
		}
		return nil, fmt.Errorf("%w: scene: %s", core.ErrInvalidConfig, err)
	}
	for i := range cfg.Instances {
		if err := cfg.Instances[i].validate(); err != nil {
			return nil, fmt.Errorf("instance %d: %w", i, err)
		}
	}
	return cfg, nil
}

func (ic *InstanceConfig) validate() error {
	switch strings.ToLower(ic.Primitive) {
	case PrimitiveCube, PrimitivePlane:
	default:
		return fmt.Errorf("%w: unknown primitive %q", core.ErrInvalidConfig, ic.Primitive)
	}
	if n := len(ic.Color); n != 0 && n != 3 && n != 4 {
		return fmt.Errorf("%w: color needs 3 or 4 components, got %d", core.ErrInvalidConfig, n)
	}
	if _, err := metadata.ParsePolygonFace(ic.PolygonFace); err != nil {
		return fmt.Errorf("%w: %s", core.ErrInvalidConfig, err)
	}
	if _, err := metadata.ParsePolygonMode(ic.PolygonMode); err != nil {
		return fmt.Errorf("%w: %s", core.ErrInvalidConfig, err)
	}
	return nil
}

// Build creates the instances described by the config and adds them to collection. On
// error the instances created so far stay in the collection.
func (sc *SceneConfig) Build(backend renderer.Backend, collection *scene.Collection) error {
	for _, ic := range sc.Instances {
		instances := ic.build(backend)
		for _, inst := range instances {
			if !collection.Add(inst) {
				inst.Release()
				return fmt.Errorf("%w: duplicate instance %d", core.ErrInvalidConfig, inst.ID())
			}
		}
		core.LogDebug("scene '%s': placed %d x '%s'", sc.Name, len(instances), ic.Name)
	}
	return nil
}

func (ic InstanceConfig) build(backend renderer.Backend) []*scene.Instance {
	var mesh *geometry.Mesh
	switch strings.ToLower(ic.Primitive) {
	case PrimitivePlane:
		mesh = geometry.NewPlane(backend, ic.Name, ic.Size[0], ic.Size[1], ic.Segments[0], ic.Segments[1])
	default:
		mesh = geometry.NewCube(backend, ic.Name, ic.Size[0], ic.Size[1], ic.Size[2])
	}
	mesh.SetColor(ic.color())

	first := scene.NewInstanceWithGeometry(mesh)
	first.SetMatrix(ic.matrix())
	face, _ := metadata.ParsePolygonFace(ic.PolygonFace)
	mode, _ := metadata.ParsePolygonMode(ic.PolygonMode)
	first.SetPolygonMode(face, mode)
	first.SetVisibility(!ic.Hidden)
	if ic.Selected {
		first.Select()
	}

	out := []*scene.Instance{first}
	offset := math.NewVec3(ic.CopyOffset[0], ic.CopyOffset[1], ic.CopyOffset[2])
	previous := first
	for n := uint32(0); n < ic.Copies; n++ {
		next := previous.Instanciate()
		next.Translate(offset.X, offset.Y, offset.Z)
		out = append(out, next)
		previous = next
	}
	return out
}

func (ic InstanceConfig) color() math.Vec4 {
	switch len(ic.Color) {
	case 3:
		return math.NewVec4(ic.Color[0], ic.Color[1], ic.Color[2], 1.0)
	case 4:
		return math.NewVec4(ic.Color[0], ic.Color[1], ic.Color[2], ic.Color[3])
	default:
		return math.NewVec4One()
	}
}

func (ic InstanceConfig) matrix() math.Mat4 {
	rotation := math.NewMat4EulerXYZ(
		math.DegToRad(ic.Rotation[0]),
		math.DegToRad(ic.Rotation[1]),
		math.DegToRad(ic.Rotation[2]),
	)
	translation := math.NewMat4Translation(math.NewVec3(ic.Translation[0], ic.Translation[1], ic.Translation[2]))
	return rotation.Mul(translation)
}
