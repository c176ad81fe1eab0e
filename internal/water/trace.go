package water

// Ring is an ordered list of ring vertices, not closed
type Ring []Cell

// directions are the Moore neighbours in scan order
var directions = [8]Cell{
	{1, -1},
	{0, -1},
	{-1, -1},
	{-1, 0},
	{-1, 1},
	{0, 1},
	{1, 1},
	{1, 0},
}

const (
	// startDirection is the first scanned direction of every ring
	startDirection = 4
	// backtrack turns the scan start back from the direction just taken
	backtrack = 5
	// skipCells is the number of visited cells dropped after each emitted vertex
	skipCells = 3
)

// Trace walks the boundary cells into rings. The first ring starts at the
// cell with the greatest X (ties: smallest Z) and is the outer ring; every
// cell left over afterwards starts another ring by the same rule. Each walk
// consumes the cells it visits. Vertices are thinned: a step that continues
// in the scan start direction drops the previous vertex, and only one of
// every four visited cells becomes a vertex.
func Trace(boundary CellSet) []Ring {
	remaining := boundary.Clone()
	var rings []Ring

	for len(remaining) > 0 {
		current := traceStart(remaining)
		delete(remaining, current)
		ring := Ring{current}

		direction := startDirection
		canSkip := 0
		for {
			found := false
			for i := direction; i < direction+8; i++ {
				d := directions[i%8]
				next := Cell{current.X + d.X, current.Z + d.Z}
				if !remaining.Has(next) {
					continue
				}
				if i%8 == direction && len(ring) > 0 {
					ring = ring[:len(ring)-1]
				}
				if canSkip > 0 {
					canSkip--
				} else {
					ring = append(ring, next)
					canSkip = skipCells
				}
				current = next
				delete(remaining, next)
				direction = (i + backtrack) % 8
				found = true
				break
			}
			if !found {
				break
			}
		}
		rings = append(rings, ring)
	}
	return rings
}

// traceStart picks the cell with the greatest X, ties broken by smallest Z
func traceStart(cells CellSet) Cell {
	first := true
	var best Cell
	for c := range cells {
		if first || c.X > best.X || (c.X == best.X && c.Z < best.Z) {
			best = c
			first = false
		}
	}
	return best
}
