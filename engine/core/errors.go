package core

import (
	"errors"
)

var (
	ErrBufferNotCreated = errors.New("gpu buffer not created")
	ErrBufferNotMapped  = errors.New("gpu buffer could not be mapped")
	ErrNoGeometry       = errors.New("instance has no geometry")
	ErrLodOutOfRange    = errors.New("level of detail index out of range")
	ErrBackendUnknown   = errors.New("unknown renderer backend")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrUnknown          = errors.New("unknown")
)
