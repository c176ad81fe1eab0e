package document

import (
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/osm"

	"github.com/wegman-software/osmexport-go/internal/parquet"
)

type parquetWriter struct{}

func (parquetWriter) Format() Format { return FormatParquet }

// Write emits one feature row per node, way and relation. Ways become
// linestrings, or polygons when closed; multipolygon relations are assembled
// from their member ways. Objects without a usable geometry get a null column.
func (parquetWriter) Write(w io.Writer, doc *Document) error {
	fw, err := parquet.NewFeatureWriter(w, parquet.DefaultBatchSize)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	defer fw.Release()

	g := NewGeometryIndex(doc)

	for _, n := range doc.Nodes {
		if err := fw.Write(int64(n.ID), "node", n.Tags, encodeWKB(orb.Point{n.Lon, n.Lat})); err != nil {
			return err
		}
	}
	for _, way := range doc.Ways {
		if err := fw.Write(int64(way.ID), "way", way.Tags, encodeWKB(g.Way(way))); err != nil {
			return err
		}
	}
	for _, r := range doc.Relations {
		if err := fw.Write(int64(r.ID), "relation", r.Tags, encodeWKB(g.Relation(r))); err != nil {
			return err
		}
	}

	return fw.Close()
}

func encodeWKB(geom orb.Geometry) []byte {
	if geom == nil {
		return nil
	}
	b, err := wkb.Marshal(geom)
	if err != nil {
		return nil
	}
	return b
}

// GeometryIndex resolves way and relation geometries from document nodes
type GeometryIndex struct {
	nodes map[osm.NodeID]orb.Point
	ways  map[osm.WayID]*osm.Way
}

// NewGeometryIndex indexes the nodes and ways of doc
func NewGeometryIndex(doc *Document) *GeometryIndex {
	g := &GeometryIndex{
		nodes: make(map[osm.NodeID]orb.Point, len(doc.Nodes)),
		ways:  make(map[osm.WayID]*osm.Way, len(doc.Ways)),
	}
	for _, n := range doc.Nodes {
		g.nodes[n.ID] = orb.Point{n.Lon, n.Lat}
	}
	for _, w := range doc.Ways {
		g.ways[w.ID] = w
	}
	return g
}

// LineString returns the way's coordinates, or nil when a node is missing
func (g *GeometryIndex) LineString(w *osm.Way) orb.LineString {
	ls := make(orb.LineString, 0, len(w.Nodes))
	for _, wn := range w.Nodes {
		p, ok := g.nodes[wn.ID]
		if !ok {
			return nil
		}
		ls = append(ls, p)
	}
	return ls
}

// Way returns a polygon for closed ways with at least 4 nodes, else a linestring
func (g *GeometryIndex) Way(w *osm.Way) orb.Geometry {
	ls := g.LineString(w)
	if len(ls) < 2 {
		return nil
	}
	if len(ls) >= 4 && ls[0] == ls[len(ls)-1] {
		return orb.Polygon{orb.Ring(ls)}
	}
	return ls
}

// Relation returns a multipolygon for type=multipolygon relations with one
// outer ring; other relations have no geometry.
func (g *GeometryIndex) Relation(r *osm.Relation) orb.Geometry {
	if r.Tags.Find("type") != "multipolygon" {
		return nil
	}
	var outer orb.Ring
	var inners []orb.Ring
	for _, m := range r.Members {
		if m.Type != osm.TypeWay {
			continue
		}
		w, ok := g.ways[osm.WayID(m.Ref)]
		if !ok {
			continue
		}
		ring := orb.Ring(g.LineString(w))
		if len(ring) < 4 || !ring.Closed() {
			continue
		}
		switch m.Role {
		case "outer":
			outer = ring
		case "inner":
			inners = append(inners, ring)
		}
	}
	if outer == nil {
		return nil
	}
	poly := orb.Polygon{outer}
	poly = append(poly, inners...)
	return orb.MultiPolygon{poly}
}
