package tiles

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// Manifest collects the tiles of one or more exports, deduplicated
type Manifest struct {
	mu    sync.Mutex
	zoom  int
	tiles map[Tile]struct{}
}

// NewManifest creates a manifest for zoom
func NewManifest(zoom int) *Manifest {
	return &Manifest{zoom: zoom, tiles: make(map[Tile]struct{})}
}

// AddBound adds every tile covering b
func (m *Manifest) AddBound(b orb.Bound) {
	r := RangeForBound(b, m.zoom)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range r.Tiles() {
		m.tiles[t] = struct{}{}
	}
}

// Len returns the number of distinct tiles
func (m *Manifest) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tiles)
}

// Tiles returns the tiles in z, x, y order
func (m *Manifest) Tiles() []Tile {
	m.mu.Lock()
	tiles := make([]Tile, 0, len(m.tiles))
	for t := range m.tiles {
		tiles = append(tiles, t)
	}
	m.mu.Unlock()

	sort.Slice(tiles, func(i, j int) bool { return tiles[i].Less(tiles[j]) })
	return tiles
}

// WriteFile writes one z/x/y line per tile
func (m *Manifest) WriteFile(filename string, log *zap.Logger) error {
	tiles := m.Tiles()

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create tile list: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, t := range tiles {
		fmt.Fprintln(w, t.String())
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write tile list: %w", err)
	}

	log.Info("Wrote tile list",
		zap.String("file", filename),
		zap.Int("zoom", m.zoom),
		zap.Int("tiles", len(tiles)),
	)
	return nil
}
