package core

import "sync/atomic"

var lastID atomic.Uint32

// IdentifierGenerate returns the next process-wide unique identifier. Identifiers start
// at 1 so that 0 can keep meaning "no object" in pick buffers.
func IdentifierGenerate() uint32 {
	return lastID.Add(1)
}

// IdentifierLast returns the most recently generated identifier without consuming one.
func IdentifierLast() uint32 {
	return lastID.Load()
}
