package features

import (
	"github.com/paulmach/osm"

	"github.com/wegman-software/osmexport-go/internal/document"
	"github.com/wegman-software/osmexport-go/internal/featureid"
	"github.com/wegman-software/osmexport-go/internal/snapshot"
)

// landuseTags maps a lot's map feature to its tags; unknown features stay farmland
func landuseTags(f snapshot.MapFeature) osm.Tags {
	switch f {
	case snapshot.FeatureForest:
		return document.Tags("landuse", "forest")
	case snapshot.FeatureOil:
		return document.Tags("landuse", "industrial", "industrial", "oil")
	case snapshot.FeatureOre:
		return document.Tags("landuse", "quarry")
	case snapshot.FeatureGarbage:
		return document.Tags("landuse", "landfill")
	default:
		return document.Tags("landuse", "farmland")
	}
}

// Areas emits districts as named place nodes at their vertex centroid and
// lots as closed landuse ways
func (p *Producer) Areas(areas []snapshot.Area) Stats {
	var stats Stats
	for _, a := range areas {
		switch a.Kind {
		case snapshot.AreaDistrict:
			if len(a.Nodes) == 0 {
				stats.Skipped++
				continue
			}
			var cx, cz float64
			for _, n := range a.Nodes {
				cx += n.X
				cz += n.Z
			}
			cx /= float64(len(a.Nodes))
			cz /= float64(len(a.Nodes))
			id := p.IDs.ID(featureid.K(featureid.Area, a.Index, 0))
			p.Doc.NewNode(id, p.Proj.Point(cx, cz), document.Tags("place", "suburb", "name", p.name(a.Name)))
			stats.Nodes++

		case snapshot.AreaLot:
			refs := make([]int64, 0, len(a.Nodes)+1)
			for j, n := range a.Nodes {
				id := p.IDs.ID(featureid.K(featureid.Area, a.Index, 1, j))
				p.Doc.NewNode(id, p.Proj.Point(n.X, n.Z), nil)
				refs = append(refs, id)
				stats.Nodes++
			}
			if len(refs) < 3 {
				continue
			}
			refs = append(refs, refs[0])
			p.Doc.NewWay(p.IDs.ID(featureid.K(featureid.Area, a.Index, 1)), refs, landuseTags(a.Feature))
			stats.Ways++

		default:
			stats.Skipped++
		}
	}
	return stats
}
