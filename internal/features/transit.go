package features

import (
	"strconv"

	"github.com/paulmach/osm"

	"github.com/wegman-software/osmexport-go/internal/document"
	"github.com/wegman-software/osmexport-go/internal/featureid"
	"github.com/wegman-software/osmexport-go/internal/snapshot"
)

// DefaultColour is used for lines without a colour
const DefaultColour = "#000000"

// StopTags returns the platform tags for a passenger stop, or false when the
// stop kind has no platform representation
func StopTags(s snapshot.Stop) (osm.Tags, bool) {
	if s.Cargo {
		return nil, false
	}
	tags := document.Tags("public_transport", "platform")
	switch s.Kind {
	case "bus":
		if s.Owned {
			tags = document.SetTag(tags, "highway", "platform")
		} else {
			tags = document.SetTag(tags, "highway", "bus_stop")
		}
	case "taxi":
		tags = document.SetTag(tags, "amenity", "taxi")
	case "tram", "train", "subway":
		tags = document.SetTag(tags, "railway", "platform")
	default:
		return nil, false
	}
	return tags, true
}

// RouteValue maps a line mode to its route tag value
func RouteValue(mode string) (string, bool) {
	switch mode {
	case "bus", "tram", "train", "subway":
		return mode, true
	case "ship":
		return "ferry", true
	case "airplane":
		return "airplane", true
	}
	return "", false
}

// Stops emits one platform node per passenger stop, plus an optional
// helper node for custom renderers
func (p *Producer) Stops(stops []snapshot.Stop) Stats {
	var stats Stats
	for _, s := range stops {
		id := p.IDs.ID(featureid.K(featureid.TransportStop, s.Index))
		tags, ok := StopTags(s)
		if !ok {
			stats.Skipped++
			continue
		}
		tags = document.SetTag(tags, "name", p.name(s.Name))
		pt := p.Proj.Point(s.Position.X, s.Position.Z)
		p.Doc.NewNode(id, pt, tags)
		stats.Nodes++

		if p.Options.nonStandard(s.Kind) {
			helper := p.IDs.ID(featureid.K(featureid.TransportStop, s.Index, 1))
			p.Doc.NewNode(helper, pt, document.Tags("osm_export_stop", s.Kind))
			stats.Nodes++
		}
	}
	return stats
}

// Lines emits a route relation per passenger line. Stops become platform
// members and the edges travelled become way members.
func (p *Producer) Lines(lines []snapshot.Line) Stats {
	var stats Stats
	for _, l := range lines {
		// reserved even for skipped lines
		p.IDs.ID(featureid.K(featureid.TransportLine, l.Index))
		route, ok := RouteValue(l.Mode)
		if l.Cargo || !ok {
			stats.Skipped++
			continue
		}

		ref := ""
		if l.Number != nil {
			ref = strconv.Itoa(*l.Number)
		}
		colour := l.Color
		if colour == "" {
			colour = DefaultColour
		}
		name := p.name(l.Name)

		var members osm.Members
		for _, s := range l.Stops {
			members = append(members, document.Member(osm.TypeNode, p.IDs.ID(featureid.K(featureid.TransportStop, s)), "platform"))
		}
		for _, seg := range l.Segments {
			for _, e := range seg.Edges {
				members = append(members, document.Member(osm.TypeWay, p.IDs.ID(featureid.K(featureid.Way, e)), ""))
			}
		}

		if len(members) > 0 {
			tags := document.Tags(
				"type", "route",
				"route", route,
				"ref", ref,
				"name", name,
				"roundtrip", "yes",
				"colour", colour,
			)
			p.Doc.NewRelation(p.IDs.ID(featureid.K(featureid.TransportLine, l.Index, 0)), members, tags)
			stats.Relations++
		} else {
			stats.Skipped++
		}

		if !p.Options.nonStandard(l.Mode) {
			continue
		}
		for si, seg := range l.Segments {
			if len(seg.Curves) == 0 {
				continue
			}
			points := make([]snapshot.Vec3, 0, len(seg.Curves)+1)
			points = append(points, seg.Curves[0].A)
			for _, c := range seg.Curves {
				points = append(points, c.D)
			}
			refs := make([]int64, len(points))
			for j, pt := range points {
				refs[j] = p.IDs.ID(featureid.K(featureid.TransportLine, l.Index, 1, si, j))
				p.Doc.NewNode(refs[j], p.Proj.Point(pt.X, pt.Z), nil)
				stats.Nodes++
			}
			tags := document.Tags(
				"osm_export_route", route,
				"osm_export_route_color", colour,
				"osm_export_route_ref", ref,
				"osm_export_route_name", name,
				"layer", "5",
			)
			p.Doc.NewWay(p.IDs.ID(featureid.K(featureid.TransportLine, l.Index, 1, si)), refs, tags)
			stats.Ways++
		}
	}
	return stats
}
