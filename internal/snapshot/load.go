package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wegman-software/osmexport-go/internal/names"
)

// ErrInvalid is wrapped by all validation failures
var ErrInvalid = errors.New("invalid snapshot")

// SupportedVersion is the newest snapshot format this build reads
const SupportedVersion = 1

// Load reads, resolves and validates a snapshot file
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	s.Path = path

	if s.Terrain.Heightmap != nil && len(s.Terrain.Heights) == 0 {
		if err := s.Terrain.loadHeightmap(filepath.Dir(path)); err != nil {
			return nil, err
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Decode parses a snapshot document. Heightmap files are not resolved.
func Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	dec := json.NewDecoder(r)
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks structural consistency
func (s *Snapshot) Validate() error {
	if s.Version > SupportedVersion {
		return fmt.Errorf("%w: version %d is newer than supported %d", ErrInvalid, s.Version, SupportedVersion)
	}

	t := &s.Terrain
	if t.Max.X < t.Min.X || t.Max.Z < t.Min.Z {
		return fmt.Errorf("%w: terrain max (%v, %v) below min (%v, %v)", ErrInvalid, t.Max.X, t.Max.Z, t.Min.X, t.Min.Z)
	}
	if t.Pitch < 0 {
		return fmt.Errorf("%w: negative terrain pitch %v", ErrInvalid, t.Pitch)
	}
	if len(t.Heights) > 0 || len(t.Depths) > 0 {
		if t.Cols < 1 || t.Rows < 1 {
			return fmt.Errorf("%w: terrain grid needs cols and rows", ErrInvalid)
		}
		n := t.Cols * t.Rows
		if len(t.Heights) > 0 && len(t.Heights) != n {
			return fmt.Errorf("%w: heights has %d samples, want %d", ErrInvalid, len(t.Heights), n)
		}
		if len(t.Depths) > 0 && len(t.Depths) != n {
			return fmt.Errorf("%w: depths has %d samples, want %d", ErrInvalid, len(t.Depths), n)
		}
	}

	nodes := make(map[int]struct{}, len(s.Nodes))
	for _, n := range s.Nodes {
		if _, dup := nodes[n.Index]; dup {
			return fmt.Errorf("%w: duplicate node index %d", ErrInvalid, n.Index)
		}
		nodes[n.Index] = struct{}{}
	}
	for _, e := range s.Edges {
		if _, ok := nodes[e.Start]; !ok {
			return fmt.Errorf("%w: edge %d starts at unknown node %d", ErrInvalid, e.Index, e.Start)
		}
		if _, ok := nodes[e.End]; !ok {
			return fmt.Errorf("%w: edge %d ends at unknown node %d", ErrInvalid, e.Index, e.End)
		}
	}

	for ref, n := range s.Names {
		switch n.Kind {
		case "", names.Literal, names.Localized, names.Formatted:
		default:
			return fmt.Errorf("%w: name %q has unknown kind %q", ErrInvalid, ref, n.Kind)
		}
	}
	return nil
}
