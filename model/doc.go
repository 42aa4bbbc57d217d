// Package model provides the geometric primitives shared by text search and
// the document engine.
//
// # Geometry
//
// [BBox] is an axis-aligned rectangle in PDF user space (origin bottom-left,
// Y grows upwards). Text search returns one [BBox] per matched line and the
// engine fills each box when redacting:
//
//	region := model.NewBBox(72, 700, 180, 12).Expand(1)
//
// # Color
//
// [Color] is an RGB fill color. [ParseColor] accepts a few names or a hex
// triplet:
//
//	c, err := model.ParseColor("#000000")
package model
