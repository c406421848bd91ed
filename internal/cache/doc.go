// Package cache provides an LRU memo for page geometry.
//
// The preload window is sized by summing per-page surface costs, which
// means asking the document for page sizes over and over while the viewer
// scrolls and zooms. GeometryCache remembers those answers keyed by
// (page, scale, rotation):
//
//   - Bounded by entry count, least recently used entries are evicted first
//   - Hit/miss counters for Stats
//   - Invalidate drops entries matching a predicate (e.g. one page)
package cache
