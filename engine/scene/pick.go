package scene

import "encoding/binary"

// EncodeID maps an identifier to a pick colour: byte i holds bits [8i, 8i+8) of id.
func EncodeID(id uint32) [4]uint8 {
	var color [4]uint8
	binary.LittleEndian.PutUint32(color[:], id)
	return color
}

// DecodeID recovers an identifier from a colour sampled during the pick pass. Only the
// RGB bytes carry it, so ids are unique in the pick buffer up to 1<<24.
func DecodeID(color [4]uint8) uint32 {
	return uint32(color[0]) | uint32(color[1])<<8 | uint32(color[2])<<16
}
