package roads

import (
	"github.com/paulmach/osm"

	"github.com/wegman-software/osmexport-go/internal/document"
	"github.com/wegman-software/osmexport-go/internal/featureid"
	"github.com/wegman-software/osmexport-go/internal/proj"
	"github.com/wegman-software/osmexport-go/internal/snapshot"
)

// Resolution is the final class of a candidate
type Resolution struct {
	Class  Class
	IsLink bool
}

// linkTargets are the classes a link may be promoted to, in priority order
var linkTargets = [...]Class{Motorway, Trunk, Primary, Secondary}

// Resolve decides the final class of every candidate. Candidates flagged
// MightBeLink are promoted to a link of the highest major class found among
// the neighbours of their aggregate: candidates sharing an endpoint with any
// member, outside the aggregate and not themselves link-like.
// The result is parallel to cands; cands are not modified.
func Resolve(cands []*Candidate) []Resolution {
	res := make([]Resolution, len(cands))
	for i, c := range cands {
		res[i] = Resolution{Class: c.Class}
	}

	byNode := make(map[int][]int)
	groups := make(map[int][]int)
	var groupOrder []int
	for i, c := range cands {
		for _, n := range c.Endpoints {
			byNode[n] = append(byNode[n], i)
		}
		if c.Aggregated {
			if _, ok := groups[c.Aggregate]; !ok {
				groupOrder = append(groupOrder, c.Aggregate)
			}
			groups[c.Aggregate] = append(groups[c.Aggregate], i)
		}
	}

	for _, agg := range groupOrder {
		members := groups[agg]

		present := make(map[Class]bool)
		for _, m := range members {
			for _, n := range cands[m].Endpoints {
				for _, j := range byNode[n] {
					nb := cands[j]
					if (nb.Aggregated && nb.Aggregate == agg) || nb.MightBeLink {
						continue
					}
					present[nb.Class] = true
				}
			}
		}

		for _, m := range members {
			if !cands[m].MightBeLink {
				continue
			}
			for _, target := range linkTargets {
				if present[target] {
					res[m] = Resolution{Class: target, IsLink: true}
					break
				}
			}
		}
	}
	return res
}

// HighwayValue returns the highway tag value for a resolution, or "" for non-roads
func HighwayValue(r Resolution) string {
	if r.Class == NotHighway {
		return ""
	}
	v := r.Class.String()
	if r.IsLink {
		v += "_link"
	}
	return v
}

// Build writes one way per candidate with at least two nodes and returns the count
func Build(doc *document.Document, ids *featureid.Allocator, cands []*Candidate, res []Resolution) int {
	n := 0
	for i, c := range cands {
		if len(c.Nodes) < 2 {
			continue
		}
		tags := append(osm.Tags(nil), c.Tags...)
		tags = document.SetTag(tags, "highway", HighwayValue(res[i]))
		doc.NewWay(ids.ID(featureid.K(featureid.Way, c.Edge)), c.Nodes, tags)
		n++
	}
	return n
}

// EmitNetNodes writes every network node; roundabouts are tagged
func EmitNetNodes(doc *document.Document, ids *featureid.Allocator, p *proj.Projector, nodes []snapshot.NetNode) {
	for _, n := range nodes {
		var tags osm.Tags
		if n.Roundabout {
			tags = document.Tags("highway", "mini_roundabout")
		}
		doc.NewNode(ids.ID(featureid.K(featureid.Node, n.Index)), p.Point(n.Position.X, n.Position.Z), tags)
	}
}
