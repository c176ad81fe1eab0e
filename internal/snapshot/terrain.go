package snapshot

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/edsrzf/mmap-go"
)

// DefaultPitch is the sampling step in world units for water and contours
const DefaultPitch = 20.0

// Heightmap references a raw little-endian uint16 height grid on disk
type Heightmap struct {
	File   string  `json:"file"`
	Scale  float64 `json:"scale,omitempty"`
	Offset float64 `json:"offset,omitempty"`
}

// Terrain is the playable area with its height and water depth grids.
// Grids are row-major with Cols samples along x and Rows along z, spanning
// Min to Max inclusive.
type Terrain struct {
	Min   Vec3    `json:"min"`
	Max   Vec3    `json:"max"`
	Pitch float64 `json:"pitch,omitempty"`

	Cols    int       `json:"cols,omitempty"`
	Rows    int       `json:"rows,omitempty"`
	Heights []float64 `json:"heights,omitempty"`
	Depths  []float64 `json:"depths,omitempty"`

	Heightmap *Heightmap `json:"heightmap,omitempty"`
	// SeaLevel derives depth from height when no depth grid is present
	SeaLevel *float64 `json:"sea_level,omitempty"`
}

// Step returns the sampling pitch, falling back to DefaultPitch
func (t *Terrain) Step() float64 {
	if t.Pitch > 0 {
		return t.Pitch
	}
	return DefaultPitch
}

// Height samples the terrain height at (x, z) with bilinear interpolation.
// Terrain without a height grid is flat at 0.
func (t *Terrain) Height(x, z float64) float64 {
	return t.sample(t.Heights, x, z)
}

// Depth samples the water depth at (x, z)
func (t *Terrain) Depth(x, z float64) float64 {
	if len(t.Depths) > 0 {
		return t.sample(t.Depths, x, z)
	}
	if t.SeaLevel != nil {
		return math.Max(0, *t.SeaLevel-t.Height(x, z))
	}
	return 0
}

// Underwater reports whether (x, z) has positive water depth
func (t *Terrain) Underwater(x, z float64) bool {
	return t.Depth(x, z) > 0
}

func (t *Terrain) sample(grid []float64, x, z float64) float64 {
	if len(grid) == 0 || t.Cols < 1 || t.Rows < 1 || len(grid) != t.Cols*t.Rows {
		return 0
	}
	fx := gridCoord(x, t.Min.X, t.Max.X, t.Cols)
	fz := gridCoord(z, t.Min.Z, t.Max.Z, t.Rows)

	x0, z0 := int(math.Floor(fx)), int(math.Floor(fz))
	x1, z1 := min(x0+1, t.Cols-1), min(z0+1, t.Rows-1)
	dx, dz := fx-float64(x0), fz-float64(z0)

	at := func(c, r int) float64 { return grid[r*t.Cols+c] }
	top := at(x0, z0)*(1-dx) + at(x1, z0)*dx
	bottom := at(x0, z1)*(1-dx) + at(x1, z1)*dx
	return top*(1-dz) + bottom*dz
}

// gridCoord maps v in [lo, hi] to a clamped fractional index in [0, n-1]
func gridCoord(v, lo, hi float64, n int) float64 {
	if n < 2 || hi <= lo {
		return 0
	}
	f := (v - lo) / (hi - lo) * float64(n-1)
	return math.Max(0, math.Min(f, float64(n-1)))
}

// loadHeightmap memory-maps the raw heightmap file and decodes it into Heights
func (t *Terrain) loadHeightmap(baseDir string) error {
	hm := t.Heightmap
	path := hm.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open heightmap: %w", err)
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return fmt.Errorf("failed to mmap heightmap: %w", err)
	}
	defer m.Unmap()

	want := t.Cols * t.Rows * 2
	if t.Cols < 1 || t.Rows < 1 || len(m) != want {
		return fmt.Errorf("%w: heightmap %s has %d bytes, want %d for %dx%d samples",
			ErrInvalid, hm.File, len(m), want, t.Cols, t.Rows)
	}

	scale := hm.Scale
	if scale == 0 {
		scale = 1
	}
	heights := make([]float64, t.Cols*t.Rows)
	for i := range heights {
		raw := binary.LittleEndian.Uint16(m[i*2:])
		heights[i] = float64(raw)*scale + hm.Offset
	}
	t.Heights = heights
	return nil
}
