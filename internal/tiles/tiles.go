// Package tiles lists the web mercator tiles covering an exported map, as
// input for an external raster renderer.
package tiles

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Tile is a map tile at a specific zoom level
type Tile struct {
	Z int
	X int
	Y int
}

// String returns the tile in z/x/y format
func (t Tile) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
}

// Less orders tiles by zoom, then x, then y
func (t Tile) Less(o Tile) bool {
	if t.Z != o.Z {
		return t.Z < o.Z
	}
	if t.X != o.X {
		return t.X < o.X
	}
	return t.Y < o.Y
}

// MaxMercatorLat is the latitude limit of the web mercator projection
const MaxMercatorLat = 85.0511287798

// LatLonToTile converts a position to the tile containing it
func LatLonToTile(lat, lon float64, zoom int) Tile {
	lat = math.Max(-MaxMercatorLat, math.Min(MaxMercatorLat, lat))
	lon = math.Max(-180, math.Min(180, lon))

	n := 1 << zoom
	x := int((lon + 180.0) / 360.0 * float64(n))
	if x >= n {
		x = n - 1
	}

	latRad := lat * math.Pi / 180.0
	y := int((1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * float64(n))
	if y >= n {
		y = n - 1
	}
	if y < 0 {
		y = 0
	}
	return Tile{Z: zoom, X: x, Y: y}
}

// Range is an inclusive block of tiles at one zoom level
type Range struct {
	Z          int
	MinX, MaxX int
	MinY, MaxY int
}

// RangeForBound returns the tiles covering b. Tile y grows southwards.
func RangeForBound(b orb.Bound, zoom int) Range {
	topLeft := LatLonToTile(b.Max.Lat(), b.Min.Lon(), zoom)
	bottomRight := LatLonToTile(b.Min.Lat(), b.Max.Lon(), zoom)
	return Range{
		Z:    zoom,
		MinX: topLeft.X,
		MaxX: bottomRight.X,
		MinY: topLeft.Y,
		MaxY: bottomRight.Y,
	}
}

// Count returns the number of tiles in the range
func (r Range) Count() int {
	return (r.MaxX - r.MinX + 1) * (r.MaxY - r.MinY + 1)
}

// Tiles returns all tiles in the range in x, then y order
func (r Range) Tiles() []Tile {
	tiles := make([]Tile, 0, r.Count())
	for x := r.MinX; x <= r.MaxX; x++ {
		for y := r.MinY; y <= r.MaxY; y++ {
			tiles = append(tiles, Tile{Z: r.Z, X: x, Y: y})
		}
	}
	return tiles
}
