// Package memdoc provides an in-memory document with synthetic pages.
//
// It implements backend.Document and backend.Selection and is meant for tests,
// examples and benchmarks of the page cache. Pages are rasterized by scaling a
// small per-page pattern to the requested size with golang.org/x/image/draw.
package memdoc

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"golang.org/x/image/draw"

	"github.com/hupe1980/pagecache/backend"
)

// ErrRenderFailed is returned for pages marked as failing.
var ErrRenderFailed = errors.New("memdoc: render failed")

// Page describes one synthetic page in points.
type Page struct {
	Width  float64
	Height float64
	Color  color.RGBA
}

// Document is a synthetic document. It is safe for concurrent use.
type Document struct {
	pages []Page

	mu      sync.Mutex
	failing map[int]bool
	gate    chan struct{} // nil = renders never block

	renders          atomic.Int64
	selectionRenders atomic.Int64
}

var (
	_ backend.Document  = (*Document)(nil)
	_ backend.Selection = (*Document)(nil)
)

// New creates a document with the given pages.
func New(pages ...Page) *Document {
	return &Document{
		pages:   pages,
		failing: make(map[int]bool),
	}
}

// Uniform creates a document of n pages, all width x height points.
func Uniform(n int, width, height float64) *Document {
	pages := make([]Page, n)
	for i := range pages {
		pages[i] = Page{
			Width:  width,
			Height: height,
			Color:  color.RGBA{R: uint8(i * 37), G: uint8(i * 91), B: uint8(i * 13), A: 255},
		}
	}
	return New(pages...)
}

// SetFailing makes Render fail for page until cleared.
func (d *Document) SetFailing(page int, failing bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if failing {
		d.failing[page] = true
	} else {
		delete(d.failing, page)
	}
}

// Block makes subsequent renders wait until Unblock is called or their
// context is cancelled.
func (d *Document) Block() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gate == nil {
		d.gate = make(chan struct{})
	}
}

// Unblock releases all renders waiting on Block.
func (d *Document) Unblock() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gate != nil {
		close(d.gate)
		d.gate = nil
	}
}

// RenderCount returns how many full-page renders completed successfully.
func (d *Document) RenderCount() int64 { return d.renders.Load() }

// SelectionRenderCount returns how many selection renders were performed.
func (d *Document) SelectionRenderCount() int64 { return d.selectionRenders.Load() }

// PageCount implements backend.Document.
func (d *Document) PageCount() int { return len(d.pages) }

// PageSize implements backend.Document.
func (d *Document) PageSize(page int, scale float64, rotation backend.Rotation) (int, int) {
	if page < 0 || page >= len(d.pages) {
		return 0, 0
	}
	p := d.pages[page]
	w := int(p.Width*scale + 0.5)
	h := int(p.Height*scale + 0.5)
	if rotation.Swapped() {
		return h, w
	}
	return w, h
}

// Render implements backend.Document.
func (d *Document) Render(ctx context.Context, req backend.RenderRequest) (*image.RGBA, error) {
	if req.Page < 0 || req.Page >= len(d.pages) {
		return nil, fmt.Errorf("memdoc: page %d out of range", req.Page)
	}

	d.mu.Lock()
	failing := d.failing[req.Page]
	gate := d.gate
	d.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failing {
		return nil, fmt.Errorf("%w: page %d", ErrRenderFailed, req.Page)
	}

	dst := image.NewRGBA(image.Rect(0, 0, req.Width, req.Height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), d.pattern(req.Page, req.Rotation), image.Rect(0, 0, 2, 2), draw.Src, nil)
	d.renders.Add(1)
	return dst, nil
}

// pattern is a 2x2 tile in the page color whose top-left texel marks the
// rotated page origin.
func (d *Document) pattern(page int, rotation backend.Rotation) *image.RGBA {
	c := d.pages[page].Color
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	draw.Draw(src, src.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)

	origin := image.Pt(0, 0)
	switch rotation.Normalize() {
	case backend.Rotate90:
		origin = image.Pt(1, 0)
	case backend.Rotate180:
		origin = image.Pt(1, 1)
	case backend.Rotate270:
		origin = image.Pt(0, 1)
	}
	src.SetRGBA(origin.X, origin.Y, color.RGBA{A: 255})
	return src
}

// SelectionRegion implements backend.Selection. The region is the scaled
// selection rectangle clipped to the page.
func (d *Document) SelectionRegion(page int, scale float64, rotation backend.Rotation, rect backend.Rect, style backend.SelectionStyle) backend.Region {
	w, h := d.PageSize(page, scale, backend.Rotate0)
	r := rect.Scaled(scale).Intersect(image.Rect(0, 0, w, h))
	if style == backend.SelectionLine {
		r.Min.X, r.Max.X = 0, w
	}
	return backend.RegionOf(r)
}

// RenderSelection implements backend.Selection.
func (d *Document) RenderSelection(req backend.SelectionRequest) (*image.RGBA, backend.Region, error) {
	if req.Page < 0 || req.Page >= len(d.pages) {
		return nil, nil, fmt.Errorf("memdoc: page %d out of range", req.Page)
	}
	w, h := d.PageSize(req.Page, req.Scale, req.Rotation)
	region := d.SelectionRegion(req.Page, req.Scale, req.Rotation, req.Rect, req.Style)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	fill := image.NewUniform(req.Colors.Base)
	for _, r := range region {
		draw.Draw(dst, r, fill, image.Point{}, draw.Src)
	}
	d.selectionRenders.Add(1)
	return dst, region, nil
}
