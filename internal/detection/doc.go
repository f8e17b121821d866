// Package detection finds the foreground regions of a binary mask and their
// centroids.
//
// # Contours
//
// FindContours follows the borders of every 8-connected foreground region.
// Outer borders and the borders of holes inside regions are both reported and
// linked into a tree through Contour.Parent, so a ring-shaped region yields
// one outer contour with one hole contour as its child. Points are compressed
// to the corners of the border polygon.
//
// # Centroids
//
// Each top-level outer border is treated as a polygon. Its area and first
// moments come from Green's theorem, and the centroid is (M10/M00, M01/M00).
// Borders that enclose no area (isolated pixels, one-pixel-wide lines) have no
// centroid and are dropped rather than divided by.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Border points are pixel centers, so the centroid of a filled, symmetric
// region lands on its center pixel.
//
// # Ordering
//
// Contours are returned in the raster order of their first pixel. The order is
// a property of one mask only; callers must not match objects across frames by
// index.
package detection
