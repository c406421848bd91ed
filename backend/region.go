package backend

import "image"

// Region is a set of device-space rectangles. A nil Region means "the whole page"
// when used as a repaint hint.
type Region []image.Rectangle

// RegionOf builds a region from the non-empty rectangles given.
func RegionOf(rects ...image.Rectangle) Region {
	var r Region
	for _, rect := range rects {
		r = r.Union(rect)
	}
	return r
}

// Empty reports whether the region covers no pixels.
func (r Region) Empty() bool {
	for _, rect := range r {
		if !rect.Empty() {
			return false
		}
	}
	return true
}

// Bounds returns the smallest rectangle containing the region.
func (r Region) Bounds() image.Rectangle {
	var b image.Rectangle
	for _, rect := range r {
		b = b.Union(rect)
	}
	return b
}

// Union returns the region extended by rect. Rectangles already covered are dropped.
func (r Region) Union(rect image.Rectangle) Region {
	if rect.Empty() {
		return r
	}
	out := make(Region, 0, len(r)+1)
	for _, have := range r {
		if rect.In(have) {
			return r
		}
		if !have.In(rect) {
			out = append(out, have)
		}
	}
	return append(out, rect)
}

// Contains reports whether p lies inside any rectangle of the region.
func (r Region) Contains(p image.Point) bool {
	for _, rect := range r {
		if p.In(rect) {
			return true
		}
	}
	return false
}

// Clone returns an independent copy. Cloning nil yields nil.
func (r Region) Clone() Region {
	if r == nil {
		return nil
	}
	out := make(Region, len(r))
	copy(out, r)
	return out
}
