// Package document collects the OSM objects produced by an export run and
// serialises them through pluggable writers.
package document

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// Generator is written into the document header
const Generator = "osmexport-go"

// Document is an in-memory OSM document in emission order
type Document struct {
	Generator string
	Timestamp time.Time
	Bounds    *osm.Bounds

	Nodes     osm.Nodes
	Ways      osm.Ways
	Relations osm.Relations
}

// New creates an empty document stamped with ts
func New(ts time.Time) *Document {
	return &Document{
		Generator: Generator,
		Timestamp: ts.UTC(),
	}
}

// NewNode appends a node at p
func (d *Document) NewNode(id int64, p orb.Point, tags osm.Tags) *osm.Node {
	n := &osm.Node{
		ID:        osm.NodeID(id),
		Lat:       p.Lat(),
		Lon:       p.Lon(),
		Tags:      tags,
		Visible:   true,
		Version:   1,
		Timestamp: d.Timestamp,
	}
	d.Nodes = append(d.Nodes, n)
	return n
}

// NewWay appends a way referencing the given node ids
func (d *Document) NewWay(id int64, nodeIDs []int64, tags osm.Tags) *osm.Way {
	nodes := make(osm.WayNodes, len(nodeIDs))
	for i, ref := range nodeIDs {
		nodes[i] = osm.WayNode{ID: osm.NodeID(ref)}
	}
	w := &osm.Way{
		ID:        osm.WayID(id),
		Nodes:     nodes,
		Tags:      tags,
		Visible:   true,
		Version:   1,
		Timestamp: d.Timestamp,
	}
	d.Ways = append(d.Ways, w)
	return w
}

// NewRelation appends a relation
func (d *Document) NewRelation(id int64, members osm.Members, tags osm.Tags) *osm.Relation {
	r := &osm.Relation{
		ID:        osm.RelationID(id),
		Members:   members,
		Tags:      tags,
		Visible:   true,
		Version:   1,
		Timestamp: d.Timestamp,
	}
	d.Relations = append(d.Relations, r)
	return r
}

// Member builds a relation member reference
func Member(t osm.Type, ref int64, role string) osm.Member {
	return osm.Member{Type: t, Ref: ref, Role: role}
}

// SetBounds stores the geographic extent of the document
func (d *Document) SetBounds(b orb.Bound) {
	d.Bounds = &osm.Bounds{
		MinLat: b.Min.Lat(),
		MaxLat: b.Max.Lat(),
		MinLon: b.Min.Lon(),
		MaxLon: b.Max.Lon(),
	}
}

// Bound returns the stored extent, or false before SetBounds
func (d *Document) Bound() (orb.Bound, bool) {
	if d.Bounds == nil {
		return orb.Bound{}, false
	}
	return orb.Bound{
		Min: orb.Point{d.Bounds.MinLon, d.Bounds.MinLat},
		Max: orb.Point{d.Bounds.MaxLon, d.Bounds.MaxLat},
	}, true
}

// OSM returns the document as a paulmach/osm container
func (d *Document) OSM() *osm.OSM {
	return &osm.OSM{
		Version:   "0.6",
		Generator: d.Generator,
		Bounds:    d.Bounds,
		Nodes:     d.Nodes,
		Ways:      d.Ways,
		Relations: d.Relations,
	}
}

// Counts returns the number of nodes, ways and relations
func (d *Document) Counts() (nodes, ways, relations int) {
	return len(d.Nodes), len(d.Ways), len(d.Relations)
}

// Tags builds osm.Tags from key/value pairs, setting or replacing by key.
// Pairs with an empty value are skipped.
func Tags(kv ...string) osm.Tags {
	var tags osm.Tags
	for i := 0; i+1 < len(kv); i += 2 {
		tags = SetTag(tags, kv[i], kv[i+1])
	}
	return tags
}

// SetTag sets key to value, replacing an existing value. An empty value is ignored.
func SetTag(tags osm.Tags, key, value string) osm.Tags {
	if value == "" {
		return tags
	}
	for i := range tags {
		if tags[i].Key == key {
			tags[i].Value = value
			return tags
		}
	}
	return append(tags, osm.Tag{Key: key, Value: value})
}

// RemoveTag deletes key if present
func RemoveTag(tags osm.Tags, key string) osm.Tags {
	for i := range tags {
		if tags[i].Key == key {
			return append(tags[:i], tags[i+1:]...)
		}
	}
	return tags
}
