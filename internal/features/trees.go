package features

import (
	"github.com/wegman-software/osmexport-go/internal/document"
	"github.com/wegman-software/osmexport-go/internal/featureid"
	"github.com/wegman-software/osmexport-go/internal/snapshot"
)

// Trees emits a natural=tree node per tree
func (p *Producer) Trees(trees []snapshot.Tree) Stats {
	var stats Stats
	for _, t := range trees {
		id := p.IDs.ID(featureid.K(featureid.Tree, t.Index))
		p.Doc.NewNode(id, p.Proj.Point(t.Position.X, t.Position.Z), document.Tags("natural", "tree"))
		stats.Nodes++
	}
	return stats
}
