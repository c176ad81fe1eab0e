package proj

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// MetersPerDegree is the linear scale between world units and degrees.
const MetersPerDegree = 111_000.0

// Direction is the compass direction the world's +z axis is exported as
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// String returns the lower-case direction name
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection parses a north override value
// Accepts: "north", "east", "south", "west" (any case) and "N", "E", "S", "W"
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n":
		return North, nil
	case "east", "e":
		return East, nil
	case "south", "s":
		return South, nil
	case "west", "w":
		return West, nil
	default:
		return North, fmt.Errorf("unsupported north override: %q (supported: north, east, south, west)", s)
	}
}

// MarshalText implements encoding.TextMarshaler so directions round-trip through YAML
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Project converts world (x, z) to a geographic point (lon, lat).
// Unknown directions behave as North.
func Project(x, z float64, d Direction) orb.Point {
	var lat, lon float64
	switch d {
	case East:
		lat, lon = x, -z
	case South:
		lat, lon = -z, -x
	case West:
		lat, lon = -x, z
	default:
		lat, lon = z, x
	}
	return orb.Point{lon / MetersPerDegree, lat / MetersPerDegree}
}

// Unproject is the inverse of Project
func Unproject(p orb.Point, d Direction) (x, z float64) {
	lat := p.Lat() * MetersPerDegree
	lon := p.Lon() * MetersPerDegree
	switch d {
	case East:
		return lat, -lon
	case South:
		return -lon, -lat
	case West:
		return -lat, lon
	default:
		return lon, lat
	}
}

// Projector binds a direction for repeated projections
type Projector struct {
	Direction Direction
}

// NewProjector creates a projector for the given north override
func NewProjector(d Direction) *Projector {
	return &Projector{Direction: d}
}

// Point projects a single world position
func (p *Projector) Point(x, z float64) orb.Point {
	return Project(x, z, p.Direction)
}

// Bound projects the world rectangle spanned by (minX, minZ) and (maxX, maxZ).
// Rotation may swap or negate axes, so both corners are folded into the bound.
func (p *Projector) Bound(minX, minZ, maxX, maxZ float64) orb.Bound {
	a := p.Point(minX, minZ)
	b := p.Point(maxX, maxZ)
	return orb.Bound{Min: a, Max: a}.Extend(b)
}
