package water

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/osm"

	"github.com/wegman-software/osmexport-go/internal/document"
	"github.com/wegman-software/osmexport-go/internal/featureid"
	"github.com/wegman-software/osmexport-go/internal/proj"
)

// Body is one water body with its traced rings
type Body struct {
	ID     int
	Cells  int
	Outer  Ring
	Inners []Ring
}

// Extract labels wet cells into components and traces each one. Holes with
// fewer than three vertices are discarded; a component whose outer ring has
// fewer than three vertices yields no body.
func Extract(wet CellSet) []Body {
	var bodies []Body
	for _, comp := range Label(wet) {
		rings := Trace(Boundary(comp))
		if len(rings) == 0 || len(rings[0]) <= 2 {
			continue
		}
		b := Body{ID: comp.ID, Cells: len(comp.Cells), Outer: rings[0]}
		for _, r := range rings[1:] {
			if len(r) > 2 {
				b.Inners = append(b.Inners, r)
			}
		}
		bodies = append(bodies, b)
	}
	return bodies
}

// Stats reports emitted water geometry
type Stats struct {
	Bodies    int
	Holes     int
	Nodes     int
	Ways      int
	Relations int
	// Area is the total water surface in square world units
	Area float64
}

// Emitter converts lattice rings into OSM objects
type Emitter struct {
	IDs    *featureid.Allocator
	Doc    *document.Document
	Proj   *proj.Projector
	Origin [2]float64
	Pitch  float64
}

// World converts a lattice cell to world (x, z)
func (e *Emitter) World(c Cell) (float64, float64) {
	step := e.Pitch / SubCells
	return e.Origin[0] + float64(c.X)*step, e.Origin[1] + float64(c.Z)*step
}

func (e *Emitter) nodeKey(body int, c Cell) featureid.Key {
	return featureid.K(featureid.Water, body, 0, c.X, c.Z)
}

// Emit writes the bodies. A body without holes is a single closed way
// tagged natural=water; a body with holes gets untagged rings joined by a
// multipolygon relation.
func (e *Emitter) Emit(bodies []Body) Stats {
	var stats Stats
	for _, b := range bodies {
		seen := make(map[Cell]bool)
		rings := append([]Ring{b.Outer}, b.Inners...)
		for _, r := range rings {
			for _, c := range r {
				if seen[c] {
					continue
				}
				seen[c] = true
				x, z := e.World(c)
				e.Doc.NewNode(e.IDs.ID(e.nodeKey(b.ID, c)), e.Proj.Point(x, z), nil)
				stats.Nodes++
			}
		}

		outerID := e.IDs.ID(featureid.K(featureid.Water, b.ID, 1, 0))
		var outerTags osm.Tags
		if len(b.Inners) == 0 {
			outerTags = document.Tags("natural", "water")
		}
		e.Doc.NewWay(outerID, e.closedRefs(b.ID, b.Outer), outerTags)
		stats.Ways++

		if len(b.Inners) > 0 {
			members := osm.Members{document.Member(osm.TypeWay, outerID, "outer")}
			for i, r := range b.Inners {
				innerID := e.IDs.ID(featureid.K(featureid.Water, b.ID, 1, i+1))
				e.Doc.NewWay(innerID, e.closedRefs(b.ID, r), nil)
				members = append(members, document.Member(osm.TypeWay, innerID, "inner"))
				stats.Ways++
			}
			relID := e.IDs.ID(featureid.K(featureid.Water, b.ID, 2))
			e.Doc.NewRelation(relID, members, document.Tags("type", "multipolygon", "natural", "water"))
			stats.Relations++
		}

		stats.Bodies++
		stats.Holes += len(b.Inners)
		stats.Area += planar.Area(e.polygon(b))
	}
	return stats
}

// closedRefs returns the node ids of r with the first repeated at the end
func (e *Emitter) closedRefs(body int, r Ring) []int64 {
	refs := make([]int64, 0, len(r)+1)
	for _, c := range r {
		refs = append(refs, e.IDs.ID(e.nodeKey(body, c)))
	}
	return append(refs, refs[0])
}

// polygon returns the body in world coordinates
func (e *Emitter) polygon(b Body) orb.Polygon {
	poly := orb.Polygon{e.ring(b.Outer)}
	for _, r := range b.Inners {
		poly = append(poly, e.ring(r))
	}
	return poly
}

func (e *Emitter) ring(r Ring) orb.Ring {
	out := make(orb.Ring, 0, len(r)+1)
	for _, c := range r {
		x, z := e.World(c)
		out = append(out, orb.Point{x, z})
	}
	return append(out, out[0])
}
