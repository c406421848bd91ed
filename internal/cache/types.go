package cache

import (
	"math"

	"github.com/hupe1980/pagecache/backend"
)

// GeometryKey identifies one page geometry answer.
// Scale is stored as its IEEE-754 bits so equal scales compare equal.
type GeometryKey struct {
	Page     int
	Scale    uint64
	Rotation backend.Rotation
}

// KeyFor builds the key for a geometry query.
func KeyFor(page int, scale float64, rotation backend.Rotation) GeometryKey {
	return GeometryKey{
		Page:     page,
		Scale:    math.Float64bits(scale),
		Rotation: rotation.Normalize(),
	}
}

// Size is a page size in device pixels.
type Size struct {
	Width  int
	Height int
}

// Bytes returns the surface memory cost of a page of this size.
func (s Size) Bytes() int64 {
	return int64(s.Width) * int64(s.Height) * backend.BytesPerPixel
}
