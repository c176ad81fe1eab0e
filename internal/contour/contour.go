// Package contour extracts elevation contour lines from a sampled height
// grid with marching squares.
package contour

import (
	"math"
	"sort"
	"strconv"

	"github.com/wegman-software/osmexport-go/internal/document"
	"github.com/wegman-software/osmexport-go/internal/featureid"
	"github.com/wegman-software/osmexport-go/internal/proj"
)

// Interval is the elevation difference between adjacent contour lines
const Interval = 20

// Grid holds heights sampled on the coarse grid, indexed [x][z]
type Grid struct {
	Cols, Rows int
	heights    []float64
}

// NewGrid creates a grid of cols x rows zero heights
func NewGrid(cols, rows int) *Grid {
	return &Grid{Cols: cols, Rows: rows, heights: make([]float64, cols*rows)}
}

// At returns the height of sample (x, z)
func (g *Grid) At(x, z int) float64 {
	return g.heights[x*g.Rows+z]
}

// Set stores the height of sample (x, z)
func (g *Grid) Set(x, z int, h float64) {
	g.heights[x*g.Rows+z] = h
}

// Sample builds a grid from min (inclusive) to max (exclusive) at pitch
func Sample(minX, minZ, maxX, maxZ, pitch float64, height func(x, z float64) float64) *Grid {
	if pitch <= 0 {
		return NewGrid(0, 0)
	}
	cols := steps(minX, maxX, pitch)
	rows := steps(minZ, maxZ, pitch)
	g := NewGrid(cols, rows)
	for x := 0; x < cols; x++ {
		for z := 0; z < rows; z++ {
			g.Set(x, z, height(minX+float64(x)*pitch, minZ+float64(z)*pitch))
		}
	}
	return g
}

func steps(lo, hi, pitch float64) int {
	n := 0
	for lo+float64(n)*pitch < hi {
		n++
	}
	return n
}

// Bands returns the contour band range [first, last). Band b is drawn at
// elevation b*Interval. Flat or empty grids have no bands.
func (g *Grid) Bands() (first, last int) {
	if len(g.heights) == 0 {
		return 0, 0
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, h := range g.heights {
		lo = math.Min(lo, h)
		hi = math.Max(hi, h)
	}
	return int(lo) / Interval, int(hi) / Interval
}

// Point is a vertex on the half-cell lattice
type Point struct {
	X, Z int
}

// Segment is one contour piece inside a grid cell
type Segment struct {
	Band      int
	Elevation int
	// X, Z is the grid cell; Part is 0 for single segments and 1 or 2 for saddle halves
	X, Z int
	Part int
	A, B Point
}

// edge midpoints of a cell, relative to (2x, 2z)
var (
	top    = Point{1, 0}
	left   = Point{0, 1}
	right  = Point{2, 1}
	bottom = Point{1, 2}
)

// cellSegments returns the segment endpoints for a corner configuration.
// Saddles are always split the same way, without looking at the centre height.
func cellSegments(tl, tr, bl, br bool) [][2]Point {
	switch {
	case (tl && tr && !bl && br) || (!tl && !tr && bl && !br):
		return [][2]Point{{left, bottom}}
	case (tl && tr && bl && !br) || (!tl && !tr && !bl && br):
		return [][2]Point{{right, bottom}}
	case (tl && tr && !bl && !br) || (!tl && !tr && bl && br):
		return [][2]Point{{left, right}}
	case (tl && !tr && bl && br) || (!tl && tr && !bl && !br):
		return [][2]Point{{top, right}}
	case tl && !tr && !bl && br:
		return [][2]Point{{top, left}, {bottom, right}}
	case !tl && tr && bl && !br:
		return [][2]Point{{left, bottom}, {top, right}}
	case (tl && !tr && bl && !br) || (!tl && tr && !bl && br):
		return [][2]Point{{top, bottom}}
	case (tl && !tr && !bl && !br) || (!tl && tr && bl && br):
		return [][2]Point{{top, left}}
	}
	return nil
}

// Segments runs marching squares for every band, in band, x, z order
func (g *Grid) Segments() []Segment {
	first, last := g.Bands()
	var out []Segment
	for band := first; band < last; band++ {
		elevation := band * Interval
		h := float64(elevation)
		for x := 0; x < g.Cols-1; x++ {
			for z := 0; z < g.Rows-1; z++ {
				pairs := cellSegments(g.At(x, z) >= h, g.At(x+1, z) >= h, g.At(x, z+1) >= h, g.At(x+1, z+1) >= h)
				for i, p := range pairs {
					part := 0
					if len(pairs) > 1 {
						part = i + 1
					}
					out = append(out, Segment{
						Band:      band,
						Elevation: elevation,
						X:         x,
						Z:         z,
						Part:      part,
						A:         Point{2*x + p[0].X, 2*z + p[0].Z},
						B:         Point{2*x + p[1].X, 2*z + p[1].Z},
					})
				}
			}
		}
	}
	return out
}

// Stats reports emitted contour geometry
type Stats struct {
	Bands int
	Ways  int
	Nodes int
}

// Emit writes one two-node way per segment, then the lattice nodes they use.
// Nodes are shared between bands; ways are keyed by band so no two collide.
func Emit(doc *document.Document, ids *featureid.Allocator, p *proj.Projector, minX, minZ, pitch float64, segs []Segment) Stats {
	var stats Stats
	points := make(map[Point]struct{})
	bands := make(map[int]struct{})

	nodeKey := func(pt Point) featureid.Key {
		return featureid.K(featureid.Contour, 1, pt.X, pt.Z)
	}

	for _, s := range segs {
		key := featureid.K(featureid.Contour, 0, s.Band, s.X, s.Z)
		if s.Part > 0 {
			key = featureid.K(featureid.Contour, 0, s.Band, s.X, s.Z, s.Part)
		}
		wayID := ids.ID(key)
		refs := []int64{ids.ID(nodeKey(s.A)), ids.ID(nodeKey(s.B))}
		elevation := strconv.Itoa(s.Elevation)
		doc.NewWay(wayID, refs, document.Tags("contour", "elevation", "ele", elevation))
		points[s.A] = struct{}{}
		points[s.B] = struct{}{}
		bands[s.Band] = struct{}{}
		stats.Ways++
	}

	sorted := make([]Point, 0, len(points))
	for pt := range points {
		sorted = append(sorted, pt)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Z < sorted[j].Z
	})

	half := pitch / 2
	for _, pt := range sorted {
		x := minX + float64(pt.X)*half
		z := minZ + float64(pt.Z)*half
		doc.NewNode(ids.ID(nodeKey(pt)), p.Point(x, z), nil)
		stats.Nodes++
	}
	stats.Bands = len(bands)
	return stats
}
