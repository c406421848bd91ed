package backend

import (
	"context"
	"image"
	"image/color"
)

// Rotation is a page rotation in degrees. Only multiples of 90 are meaningful.
type Rotation int

const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// Normalize maps any multiple of 90 into [0, 360).
func (r Rotation) Normalize() Rotation {
	n := int(r) % 360
	if n < 0 {
		n += 360
	}
	return Rotation(n)
}

// Swapped reports whether width and height trade places at this rotation.
func (r Rotation) Swapped() bool {
	n := r.Normalize()
	return n == Rotate90 || n == Rotate270
}

// Rect is a rectangle in page coordinates (points, unscaled, unrotated).
type Rect struct {
	X1, Y1, X2, Y2 float64
}

// Scaled converts the rectangle to device pixels at the given scale.
func (r Rect) Scaled(scale float64) image.Rectangle {
	return image.Rect(
		int(r.X1*scale),
		int(r.Y1*scale),
		int(r.X2*scale+0.5),
		int(r.Y2*scale+0.5),
	)
}

// SelectionStyle controls how a selection rectangle snaps to text.
type SelectionStyle uint8

const (
	SelectionGlyph SelectionStyle = iota // exact glyph extents
	SelectionWord                        // whole words
	SelectionLine                        // whole lines
)

func (s SelectionStyle) String() string {
	switch s {
	case SelectionGlyph:
		return "glyph"
	case SelectionWord:
		return "word"
	case SelectionLine:
		return "line"
	default:
		return "unknown"
	}
}

// SelectionColors are the highlight colors resolved from the viewer's style.
type SelectionColors struct {
	Text color.RGBA
	Base color.RGBA
}

// RenderRequest describes one full-page rasterization.
type RenderRequest struct {
	Page     int
	Rotation Rotation
	Scale    float64
	Width    int
	Height   int
}

// SelectionRequest describes one selection overlay rasterization.
type SelectionRequest struct {
	Page     int
	Rotation Rotation
	Scale    float64
	Rect     Rect
	// Prev is the rectangle rendered last time, if any. Backends may use it to
	// compute an incremental update.
	Prev   *Rect
	Style  SelectionStyle
	Colors SelectionColors
}

// Document is the page geometry oracle and rasterizer the cache consumes.
//
// PageSize must be cheap and safe for concurrent use with Render.
// Render runs on scheduler workers and must honor ctx cancellation.
type Document interface {
	PageCount() int
	PageSize(page int, scale float64, rotation Rotation) (width, height int)
	Render(ctx context.Context, req RenderRequest) (*image.RGBA, error)
}

// Selection is implemented by documents that support text selection.
//
// Both methods are called synchronously from the viewer's control goroutine
// and are expected to be bounded in cost (glyph-level work only).
type Selection interface {
	SelectionRegion(page int, scale float64, rotation Rotation, rect Rect, style SelectionStyle) Region
	RenderSelection(req SelectionRequest) (*image.RGBA, Region, error)
}
