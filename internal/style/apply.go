package style

import (
	"github.com/paulmach/osm"

	"github.com/wegman-software/osmexport-go/internal/document"
)

// Style holds one filter per geometry type
type Style struct {
	points, lines, polygons *Filter
}

// New builds the filters of cfg; a nil cfg keeps everything
func New(cfg *Config) *Style {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Style{
		points:   NewFilter(cfg.Points),
		lines:    NewFilter(cfg.Lines),
		polygons: NewFilter(cfg.Polygons),
	}
}

// Active reports whether any filter has rules
func (s *Style) Active() bool {
	return s.points.HasFilter() || s.lines.HasFilter() || s.polygons.HasFilter()
}

// Closed reports whether a way forms a ring
func Closed(w *osm.Way) bool {
	return len(w.Nodes) >= 4 && w.Nodes[0].ID == w.Nodes[len(w.Nodes)-1].ID
}

// Stats counts dropped features
type Stats struct {
	Nodes     int
	Ways      int
	Relations int
}

// Apply removes tagged features rejected by the filters, then the untagged
// ways and nodes only they referenced. Members pointing at removed
// features are dropped from surviving relations.
func (s *Style) Apply(doc *document.Document) Stats {
	var stats Stats
	if !s.Active() {
		return stats
	}

	keptRelations := doc.Relations[:0]
	for _, r := range doc.Relations {
		f := s.lines
		if r.Tags.Find("type") == "multipolygon" {
			f = s.polygons
		}
		if len(r.Tags) > 0 && !f.Match(r.Tags.Map()) {
			stats.Relations++
			continue
		}
		keptRelations = append(keptRelations, r)
	}
	doc.Relations = keptRelations

	memberWays := make(map[osm.WayID]bool)
	for _, r := range doc.Relations {
		for _, m := range r.Members {
			if m.Type == osm.TypeWay {
				memberWays[osm.WayID(m.Ref)] = true
			}
		}
	}

	keptWays := doc.Ways[:0]
	wayKept := make(map[osm.WayID]bool, len(doc.Ways))
	usedNodes := make(map[osm.NodeID]bool)
	for _, w := range doc.Ways {
		keep := memberWays[w.ID]
		if len(w.Tags) > 0 {
			f := s.lines
			if Closed(w) {
				f = s.polygons
			}
			keep = f.Match(w.Tags.Map())
		}
		if !keep {
			stats.Ways++
			continue
		}
		wayKept[w.ID] = true
		for _, n := range w.Nodes {
			usedNodes[n.ID] = true
		}
		keptWays = append(keptWays, w)
	}
	doc.Ways = keptWays

	keptNodes := doc.Nodes[:0]
	nodeKept := make(map[osm.NodeID]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		keep := usedNodes[n.ID]
		if len(n.Tags) > 0 {
			keep = keep || s.points.Match(n.Tags.Map())
		}
		if !keep {
			stats.Nodes++
			continue
		}
		nodeKept[n.ID] = true
		keptNodes = append(keptNodes, n)
	}
	doc.Nodes = keptNodes

	for _, r := range doc.Relations {
		members := r.Members[:0]
		for _, m := range r.Members {
			switch m.Type {
			case osm.TypeWay:
				if !wayKept[osm.WayID(m.Ref)] {
					continue
				}
			case osm.TypeNode:
				if !nodeKept[osm.NodeID(m.Ref)] {
					continue
				}
			}
			members = append(members, m)
		}
		r.Members = members
	}
	return stats
}
