// Package snapshot defines the captured world state an export runs over.
package snapshot

import "github.com/wegman-software/osmexport-go/internal/names"

// Vec3 is a world position; y is height and is ignored for projection
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quat is a unit rotation quaternion (x, y, z, w)
type Quat struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Identity reports whether q is the zero value or the identity rotation
func (q Quat) Identity() bool {
	return q.X == 0 && q.Y == 0 && q.Z == 0 && (q.W == 0 || q.W == 1)
}

// Rotate applies q to v
func (q Quat) Rotate(v Vec3) Vec3 {
	if q.Identity() {
		return v
	}
	// v' = v + 2w(u x v) + 2u x (u x v), u = (x, y, z)
	cx := q.Y*v.Z - q.Z*v.Y
	cy := q.Z*v.X - q.X*v.Z
	cz := q.X*v.Y - q.Y*v.X
	ccx := q.Y*cz - q.Z*cy
	ccy := q.Z*cx - q.X*cz
	ccz := q.X*cy - q.Y*cx
	return Vec3{
		X: v.X + 2*(q.W*cx+ccx),
		Y: v.Y + 2*(q.W*cy+ccy),
		Z: v.Z + 2*(q.W*cz+ccz),
	}
}

// Bezier is a cubic curve
type Bezier struct {
	A Vec3 `json:"a"`
	B Vec3 `json:"b"`
	C Vec3 `json:"c"`
	D Vec3 `json:"d"`
}

// Position evaluates the curve at t in [0, 1]
func (b Bezier) Position(t float64) Vec3 {
	u := 1 - t
	c0 := u * u * u
	c1 := 3 * u * u * t
	c2 := 3 * u * t * t
	c3 := t * t * t
	return Vec3{
		X: c0*b.A.X + c1*b.B.X + c2*b.C.X + c3*b.D.X,
		Y: c0*b.A.Y + c1*b.B.Y + c2*b.C.Y + c3*b.D.Y,
		Z: c0*b.A.Z + c1*b.B.Z + c2*b.C.Z + c3*b.D.Z,
	}
}

// EdgeKind discriminates network edges
type EdgeKind string

const (
	EdgeRoad     EdgeKind = "road"
	EdgePathway  EdgeKind = "pathway"
	EdgeTram     EdgeKind = "tram"
	EdgeSubway   EdgeKind = "subway"
	EdgeTrain    EdgeKind = "train"
	EdgePower    EdgeKind = "power"
	EdgeTaxiway  EdgeKind = "taxiway"
	EdgeWaterway EdgeKind = "waterway"
)

// NetNode is a network junction
type NetNode struct {
	Index      int  `json:"index"`
	Position   Vec3 `json:"position"`
	Roundabout bool `json:"roundabout,omitempty"`
}

// Lane is a car lane of an edge
type Lane struct {
	Twoway     bool `json:"twoway,omitempty"`
	Invert     bool `json:"invert,omitempty"`
	StartIndex int  `json:"start_index"`
}

// Edge is a network segment between two nodes
type Edge struct {
	Index      int      `json:"index"`
	Kind       EdgeKind `json:"kind"`
	Start      int      `json:"start"`
	End        int      `json:"end"`
	SpeedLimit float64  `json:"speed_limit,omitempty"`
	Lanes      []Lane   `json:"lanes,omitempty"`
	Aggregate  *int     `json:"aggregate,omitempty"`
	Elevation  float64  `json:"elevation,omitempty"`
	Owned      bool     `json:"owned,omitempty"`
	Runway     bool     `json:"runway,omitempty"`
	Curve      *Bezier  `json:"curve,omitempty"`
}

// Aggregate groups contiguous edges into one named road
type Aggregate struct {
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
	// Size is the number of member edges; zero means count from edges
	Size int `json:"size,omitempty"`
}

// AreaKind discriminates areas
type AreaKind string

const (
	AreaDistrict AreaKind = "district"
	AreaLot      AreaKind = "lot"
)

// MapFeature is the natural resource an extractor lot sits on
type MapFeature string

const (
	FeatureFertileLand MapFeature = "fertile_land"
	FeatureForest      MapFeature = "forest"
	FeatureOil         MapFeature = "oil"
	FeatureOre         MapFeature = "ore"
	FeatureGarbage     MapFeature = "garbage_storage"
)

// Area is a district or a lot polygon
type Area struct {
	Index   int        `json:"index"`
	Kind    AreaKind   `json:"kind"`
	Name    string     `json:"name,omitempty"`
	Feature MapFeature `json:"feature,omitempty"`
	Nodes   []Vec3     `json:"nodes"`
}

// Renter is the company occupying a building
type Renter struct {
	Name     string `json:"name,omitempty"`
	Resource string `json:"resource,omitempty"`
}

// Building is a placed building
type Building struct {
	Index    int     `json:"index"`
	Kind     string  `json:"kind"`
	Name     string  `json:"name,omitempty"`
	Position Vec3    `json:"position"`
	Rotation Quat    `json:"rotation"`
	LotSize  *[2]int `json:"lot_size,omitempty"`
	Renter   *Renter `json:"renter,omitempty"`
	// Warehouse marks industrial storage buildings
	Warehouse bool `json:"warehouse,omitempty"`
	// TrainDepot marks depots that own trains
	TrainDepot bool `json:"train_depot,omitempty"`
	// Stations lists the stop kinds hosted by a station building
	Stations []string `json:"stations,omitempty"`
}

// Stop is a transit stop
type Stop struct {
	Index    int    `json:"index"`
	Kind     string `json:"kind"`
	Cargo    bool   `json:"cargo,omitempty"`
	Owned    bool   `json:"owned,omitempty"`
	Name     string `json:"name,omitempty"`
	Position Vec3   `json:"position"`
}

// Segment is the path between two consecutive line stops
type Segment struct {
	// Edges are the indices of the network edges the path runs over
	Edges  []int    `json:"edges,omitempty"`
	Curves []Bezier `json:"curves,omitempty"`
}

// Line is a transit route
type Line struct {
	Index    int       `json:"index"`
	Mode     string    `json:"mode"`
	Cargo    bool      `json:"cargo,omitempty"`
	Number   *int      `json:"number,omitempty"`
	Color    string    `json:"color,omitempty"`
	Name     string    `json:"name,omitempty"`
	Stops    []int     `json:"stops,omitempty"`
	Segments []Segment `json:"segments,omitempty"`
}

// Tree is a single tree object
type Tree struct {
	Index    int  `json:"index"`
	Position Vec3 `json:"position"`
}

// Snapshot is a captured world
type Snapshot struct {
	Version    int                   `json:"version"`
	City       string                `json:"city,omitempty"`
	Terrain    Terrain               `json:"terrain"`
	Nodes      []NetNode             `json:"nodes,omitempty"`
	Edges      []Edge                `json:"edges,omitempty"`
	Aggregates []Aggregate           `json:"aggregates,omitempty"`
	Areas      []Area                `json:"areas,omitempty"`
	Buildings  []Building            `json:"buildings,omitempty"`
	Stops      []Stop                `json:"stops,omitempty"`
	Lines      []Line                `json:"lines,omitempty"`
	Trees      []Tree                `json:"trees,omitempty"`
	Names      map[string]names.Name `json:"names,omitempty"`
	Locale     map[string]string     `json:"locale,omitempty"`

	// Path is the file the snapshot was loaded from, if any
	Path string `json:"-"`
}

// Catalog returns a name resolver over the snapshot's names and locale
func (s *Snapshot) Catalog() *names.Catalog {
	return names.NewCatalog(s.Names, s.Locale)
}

// AggregateSizes returns the member count of every aggregate
func (s *Snapshot) AggregateSizes() map[int]int {
	sizes := make(map[int]int, len(s.Aggregates))
	counted := make(map[int]int)
	for _, e := range s.Edges {
		if e.Aggregate != nil {
			counted[*e.Aggregate]++
		}
	}
	for agg, n := range counted {
		sizes[agg] = n
	}
	for _, a := range s.Aggregates {
		if a.Size > 0 {
			sizes[a.Index] = a.Size
		}
	}
	return sizes
}

// AggregateNames maps aggregate index to its name reference
func (s *Snapshot) AggregateNames() map[int]string {
	m := make(map[int]string, len(s.Aggregates))
	for _, a := range s.Aggregates {
		m[a.Index] = a.Name
	}
	return m
}
