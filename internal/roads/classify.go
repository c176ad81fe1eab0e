// Package roads turns network edges into OSM ways, inferring link roads
// from the classes of neighbouring segments.
package roads

import (
	"strconv"

	"github.com/paulmach/osm"

	"github.com/wegman-software/osmexport-go/internal/document"
	"github.com/wegman-software/osmexport-go/internal/featureid"
	"github.com/wegman-software/osmexport-go/internal/names"
	"github.com/wegman-software/osmexport-go/internal/proj"
	"github.com/wegman-software/osmexport-go/internal/snapshot"
)

// Class is a highway classification
type Class int

const (
	Motorway Class = iota
	Trunk
	Primary
	Secondary
	Tertiary
	Unclassified
	Residential
	Service
	Pedestrian
	Road
	NotHighway
)

var classNames = [...]string{
	"motorway", "trunk", "primary", "secondary", "tertiary",
	"unclassified", "residential", "service", "pedestrian", "road",
}

// String returns the OSM highway value
func (c Class) String() string {
	if c >= Motorway && c < NotHighway {
		return classNames[c]
	}
	return "road"
}

// LinkMaxMembers is the aggregate size below which a one-way road may be a link
const LinkMaxMembers = 10

// trunkMinMembers is the aggregate size above which one-way roads rank higher
const trunkMinMembers = 4

// bezierSteps are the curve parameters sampled between edge endpoints
var bezierSteps = [...]float64{0.3, 0.6}

// Options controls classification
type Options struct {
	// Motorways enables the motorway class for fast one-way roads
	Motorways bool
}

// Candidate is a classified edge before link resolution
type Candidate struct {
	Edge        int
	Aggregate   int
	Aggregated  bool
	Class       Class
	MightBeLink bool
	Tags        osm.Tags
	Nodes       []int64
	// Endpoints are the net node indices of the edge
	Endpoints [2]int
}

// ClassifySpeed maps a speed limit to a road class and a maxspeed value.
// major is true for one-way roads of long aggregates. A maxspeed of 0 means none.
func ClassifySpeed(speed float64, major, motorways bool) (Class, int) {
	switch {
	case speed > 40:
		maxspeed := 80
		if speed > 50 {
			maxspeed = 100
		}
		if major && motorways {
			return Motorway, maxspeed
		}
		return Trunk, maxspeed
	case speed > 30:
		if major {
			return Trunk, 60
		}
		return Primary, 60
	case speed > 25:
		if major {
			return Primary, 50
		}
		return Secondary, 50
	case speed > 20:
		if major {
			return Secondary, 40
		}
		return Residential, 40
	case speed > 15:
		return Service, 30
	case speed > 10:
		return Pedestrian, 30
	default:
		return Road, 0
	}
}

// Classifier runs stage one over edges, emitting curve nodes as it goes
type Classifier struct {
	ids   *featureid.Allocator
	doc   *document.Document
	proj  *proj.Projector
	names names.Resolver
	opts  Options

	aggSizes map[int]int
	aggNames map[int]string

	bezierCounter int
	skipped       int
}

// NewClassifier creates a classifier writing curve nodes into doc
func NewClassifier(ids *featureid.Allocator, doc *document.Document, p *proj.Projector, r names.Resolver, opts Options) *Classifier {
	return &Classifier{
		ids:      ids,
		doc:      doc,
		proj:     p,
		names:    r,
		opts:     opts,
		aggSizes: map[int]int{},
		aggNames: map[int]string{},
	}
}

// SetAggregates supplies aggregate sizes and name references
func (c *Classifier) SetAggregates(sizes map[int]int, nameRefs map[int]string) {
	c.aggSizes = sizes
	c.aggNames = nameRefs
}

// Skipped returns the number of edges dropped by Classify
func (c *Classifier) Skipped() int {
	return c.skipped
}

// Classify produces the candidate for one edge. The second result is false
// when the edge is not exported.
func (c *Classifier) Classify(e snapshot.Edge) (*Candidate, bool) {
	cand := &Candidate{
		Edge:      e.Index,
		Class:     NotHighway,
		Endpoints: [2]int{e.Start, e.End},
	}
	aggLen := 0
	if e.Aggregate != nil {
		cand.Aggregated = true
		cand.Aggregate = *e.Aggregate
		aggLen = c.aggSizes[cand.Aggregate]
	}

	twoWay := false
	laneStarts := make(map[int]struct{})
	for _, l := range e.Lanes {
		if l.Twoway || l.Invert {
			twoWay = true
		}
		laneStarts[l.StartIndex&0xFF] = struct{}{}
	}

	var tags osm.Tags
	switch e.Kind {
	case snapshot.EdgeRoad:
		cand.MightBeLink = !twoWay && aggLen < LinkMaxMembers
		class, maxspeed := ClassifySpeed(e.SpeedLimit, !twoWay && aggLen > trunkMinMembers, c.opts.Motorways)
		cand.Class = class
		if maxspeed > 0 {
			tags = document.SetTag(tags, "maxspeed", strconv.Itoa(maxspeed))
		}
		if len(laneStarts) >= 1 {
			tags = document.SetTag(tags, "lanes", strconv.Itoa(len(laneStarts)))
		}
		if !twoWay {
			tags = document.SetTag(tags, "oneway", "yes")
		}
		if cand.Aggregated {
			tags = document.SetTag(tags, "name", c.names.ResolveDisplayName(c.aggNames[cand.Aggregate]))
		}
	case snapshot.EdgePathway:
		if e.Owned {
			c.skipped++
			return nil, false
		}
		tags = document.SetTag(tags, "highway", "footway")
	case snapshot.EdgeTram:
		tags = document.SetTag(tags, "railway", "tram")
	case snapshot.EdgeSubway:
		tags = document.SetTag(tags, "railway", "subway")
	case snapshot.EdgeTrain:
		tags = document.Tags("railway", "rail", "usage", "main")
	case snapshot.EdgePower:
		tags = document.SetTag(tags, "power", "line")
	case snapshot.EdgeTaxiway:
		// elevated runways are flight paths
		if e.Elevation != 0 {
			c.skipped++
			return nil, false
		}
		if e.Runway {
			tags = document.SetTag(tags, "aeroway", "runway")
		} else {
			tags = document.SetTag(tags, "aeroway", "taxiway")
		}
	case snapshot.EdgeWaterway:
		tags = document.SetTag(tags, "seamark:type", "ferry_route")
	default:
		c.skipped++
		return nil, false
	}

	if e.Elevation > 0.1 {
		tags = document.SetTag(tags, "bridge", "yes")
		tags = document.SetTag(tags, "layer", "1")
	} else if e.Elevation < -0.1 {
		tags = document.SetTag(tags, "tunnel", "yes")
		tags = document.SetTag(tags, "layer", "-1")
	}
	cand.Tags = tags

	cand.Nodes = append(cand.Nodes, c.ids.ID(featureid.K(featureid.Node, e.Start)))
	if e.Curve != nil {
		for _, t := range bezierSteps {
			pos := e.Curve.Position(t)
			id := c.ids.ID(featureid.K(featureid.BezierNode, c.bezierCounter))
			c.bezierCounter++
			c.doc.NewNode(id, c.proj.Point(pos.X, pos.Z), nil)
			cand.Nodes = append(cand.Nodes, id)
		}
	}
	cand.Nodes = append(cand.Nodes, c.ids.ID(featureid.K(featureid.Node, e.End)))

	return cand, true
}
