// Package backend defines the boundary between the page cache and the document
// backend that decodes and rasterizes pages.
//
// The cache only needs three things from a document:
//
//   - Geometry: PageCount and PageSize (the page geometry oracle)
//   - Rasterization: Render, called asynchronously from scheduler workers
//   - Optional text selection: the Selection interface, called synchronously
//
// Surfaces are *image.RGBA with premultiplied alpha. Regions are plain lists
// of device-space rectangles.
package backend
