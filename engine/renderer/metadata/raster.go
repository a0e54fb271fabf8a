package metadata

import (
	"fmt"
	"strings"
)

// PolygonFace selects which polygon faces a PolygonMode applies to.
type PolygonFace int

const (
	PolygonFaceFrontAndBack PolygonFace = iota
	PolygonFaceFront
	PolygonFaceBack
)

func (f PolygonFace) String() string {
	switch f {
	case PolygonFaceFront:
		return "front"
	case PolygonFaceBack:
		return "back"
	default:
		return "front_and_back"
	}
}

// PolygonMode is how polygons are rasterized.
type PolygonMode int

const (
	PolygonModeFill PolygonMode = iota
	PolygonModeLine
	PolygonModePoint
)

func (m PolygonMode) String() string {
	switch m {
	case PolygonModeLine:
		return "line"
	case PolygonModePoint:
		return "point"
	default:
		return "fill"
	}
}

func ParsePolygonFace(s string) (PolygonFace, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "front_and_back":
		return PolygonFaceFrontAndBack, nil
	case "front":
		return PolygonFaceFront, nil
	case "back":
		return PolygonFaceBack, nil
	default:
		return PolygonFaceFrontAndBack, fmt.Errorf("unknown polygon face %q", s)
	}
}

func ParsePolygonMode(s string) (PolygonMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fill":
		return PolygonModeFill, nil
	case "line", "wireframe":
		return PolygonModeLine, nil
	case "point":
		return PolygonModePoint, nil
	default:
		return PolygonModeFill, fmt.Errorf("unknown polygon mode %q", s)
	}
}
