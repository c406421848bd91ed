package backend

import "image"

// BytesPerPixel is the memory cost of one device pixel in a page surface.
const BytesPerPixel = 4

// SurfaceBytes returns the number of bytes held by img.
func SurfaceBytes(img *image.RGBA) int64 {
	if img == nil {
		return 0
	}
	return int64(len(img.Pix))
}

// SurfaceMatches reports whether img has exactly the given pixel size.
func SurfaceMatches(img *image.RGBA, width, height int) bool {
	if img == nil {
		return false
	}
	b := img.Bounds()
	return b.Dx() == width && b.Dy() == height
}

// InvertSurface inverts the color channels of img in place.
// Pixels are premultiplied, so each channel becomes alpha minus itself;
// applying it twice restores the original data.
func InvertSurface(img *image.RGBA) {
	if img == nil {
		return
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 0; i+3 < len(row); i += 4 {
			a := row[i+3]
			row[i] = a - row[i]
			row[i+1] = a - row[i+1]
			row[i+2] = a - row[i+2]
		}
	}
}
