// Package water extracts water bodies from a sampled wet/dry raster and
// emits them as closed ways and multipolygon relations.
package water

import "sort"

// SubCells is the number of lattice cells per coarse cell along each axis
const SubCells = 3

// Cell is a lattice point at one-third coarse cell resolution
type Cell struct {
	X, Z int
}

// Less orders cells by X, then Z
func (c Cell) Less(o Cell) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	return c.Z < o.Z
}

// CellSet is a set of lattice cells
type CellSet map[Cell]struct{}

// Add inserts c
func (s CellSet) Add(c Cell) {
	s[c] = struct{}{}
}

// Has reports whether c is in the set
func (s CellSet) Has(c Cell) bool {
	_, ok := s[c]
	return ok
}

// Sorted returns the cells ordered by X, then Z
func (s CellSet) Sorted() []Cell {
	cells := make([]Cell, 0, len(s))
	for c := range s {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Less(cells[j]) })
	return cells
}

// Clone returns a copy of s
func (s CellSet) Clone() CellSet {
	out := make(CellSet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

// Region is the world rectangle to sample; max is exclusive
type Region struct {
	MinX, MinZ float64
	MaxX, MaxZ float64
}

// Rasterize samples the origin of every coarse cell of r at the given pitch
// and marks all 3x3 lattice cells of each underwater sample as wet.
func Rasterize(r Region, pitch float64, underwater func(x, z float64) bool) CellSet {
	wet := make(CellSet)
	if pitch <= 0 {
		return wet
	}
	for i := 0; ; i++ {
		x := r.MinX + float64(i)*pitch
		if x >= r.MaxX {
			break
		}
		for j := 0; ; j++ {
			z := r.MinZ + float64(j)*pitch
			if z >= r.MaxZ {
				break
			}
			if !underwater(x, z) {
				continue
			}
			for a := 0; a < SubCells; a++ {
				for b := 0; b < SubCells; b++ {
					wet.Add(Cell{X: i*SubCells + a, Z: j*SubCells + b})
				}
			}
		}
	}
	return wet
}

var neighbours4 = [...]Cell{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// Component is a 4-connected set of wet cells
type Component struct {
	ID    int
	Cells CellSet
}

// Label splits cells into 4-connected components. Components are numbered
// in order of their smallest cell, so labelling is deterministic.
func Label(cells CellSet) []Component {
	var comps []Component
	seen := make(CellSet, len(cells))

	for _, start := range cells.Sorted() {
		if seen.Has(start) {
			continue
		}
		comp := Component{ID: len(comps), Cells: make(CellSet)}
		seen.Add(start)
		queue := []Cell{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			comp.Cells.Add(cur)
			for _, d := range neighbours4 {
				next := Cell{cur.X + d.X, cur.Z + d.Z}
				if cells.Has(next) && !seen.Has(next) {
					seen.Add(next)
					queue = append(queue, next)
				}
			}
		}
		comps = append(comps, comp)
	}
	return comps
}

// Boundary returns the cells of c with at least one 4-neighbour outside c
func Boundary(c Component) CellSet {
	edge := make(CellSet)
	for cell := range c.Cells {
		for _, d := range neighbours4 {
			if !c.Cells.Has(Cell{cell.X + d.X, cell.Z + d.Z}) {
				edge.Add(cell)
				break
			}
		}
	}
	return edge
}
