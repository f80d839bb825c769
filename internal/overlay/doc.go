// Package overlay burns caption text into video frames.
//
// A Compositor draws the source frame scaled to the output raster and, when a
// caption is active, a rounded translucent panel with bold centered text near
// the bottom edge. Geometry is derived from the output height: the font size
// is floor(h/18) and padding scales with h/720, so a 720p frame gets 30 px
// horizontal padding and a 15 px corner radius.
//
// The compositor holds no per-frame state; its only cache is the parsed font
// and the faces built from it, which are immutable once created.
package overlay
