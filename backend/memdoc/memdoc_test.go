package memdoc

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pagecache/backend"
)

func TestPageSize(t *testing.T) {
	d := New(Page{Width: 100, Height: 200})

	w, h := d.PageSize(0, 1.5, backend.Rotate0)
	assert.Equal(t, 150, w)
	assert.Equal(t, 300, h)

	w, h = d.PageSize(0, 1.5, backend.Rotate90)
	assert.Equal(t, 300, w)
	assert.Equal(t, 150, h)

	w, h = d.PageSize(7, 1, backend.Rotate0)
	assert.Zero(t, w)
	assert.Zero(t, h)
}

func TestRender(t *testing.T) {
	d := Uniform(3, 10, 20)
	ctx := context.Background()

	img, err := d.Render(ctx, backend.RenderRequest{Page: 1, Scale: 2, Width: 20, Height: 40})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 40), img.Bounds())
	assert.Equal(t, int64(1), d.RenderCount())

	d.SetFailing(1, true)
	_, err = d.Render(ctx, backend.RenderRequest{Page: 1, Scale: 2, Width: 20, Height: 40})
	assert.ErrorIs(t, err, ErrRenderFailed)

	d.SetFailing(1, false)
	_, err = d.Render(ctx, backend.RenderRequest{Page: 1, Scale: 2, Width: 20, Height: 40})
	assert.NoError(t, err)

	_, err = d.Render(ctx, backend.RenderRequest{Page: 9})
	assert.Error(t, err)
}

func TestRender_BlockHonorsContext(t *testing.T) {
	d := Uniform(1, 10, 10)
	d.Block()
	defer d.Unblock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := d.Render(ctx, backend.RenderRequest{Page: 0, Scale: 1, Width: 10, Height: 10})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, d.RenderCount())
}

func TestRenderSelection(t *testing.T) {
	d := Uniform(1, 100, 100)
	base := color.RGBA{R: 10, G: 20, B: 200, A: 255}

	img, region, err := d.RenderSelection(backend.SelectionRequest{
		Page:   0,
		Scale:  1,
		Rect:   backend.Rect{X1: 10, Y1: 10, X2: 20, Y2: 30},
		Colors: backend.SelectionColors{Base: base},
	})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 100), img.Bounds())
	require.Len(t, region, 1)
	assert.Equal(t, image.Rect(10, 10, 20, 30), region[0])
	assert.Equal(t, base, img.RGBAAt(15, 15))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(50, 50))
	assert.Equal(t, int64(1), d.SelectionRenderCount())

	line := d.SelectionRegion(0, 1, backend.Rotate0, backend.Rect{X1: 10, Y1: 10, X2: 20, Y2: 30}, backend.SelectionLine)
	assert.Equal(t, image.Rect(0, 10, 100, 30), line.Bounds())
}
