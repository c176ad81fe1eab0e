package roads

import (
	"github.com/wegman-software/osmexport-go/internal/document"
	"github.com/wegman-software/osmexport-go/internal/featureid"
	"github.com/wegman-software/osmexport-go/internal/names"
	"github.com/wegman-software/osmexport-go/internal/proj"
	"github.com/wegman-software/osmexport-go/internal/snapshot"
)

// Stats reports what the road producer emitted
type Stats struct {
	Nodes   int
	Ways    int
	Links   int
	Skipped int
}

// Export emits net nodes and classified network ways of s into doc
func Export(doc *document.Document, ids *featureid.Allocator, p *proj.Projector, r names.Resolver, s *snapshot.Snapshot, opts Options) Stats {
	before := len(doc.Nodes)
	EmitNetNodes(doc, ids, p, s.Nodes)

	c := NewClassifier(ids, doc, p, r, opts)
	c.SetAggregates(s.AggregateSizes(), s.AggregateNames())

	cands := make([]*Candidate, 0, len(s.Edges))
	for _, e := range s.Edges {
		if cand, ok := c.Classify(e); ok {
			cands = append(cands, cand)
		}
	}

	res := Resolve(cands)
	stats := Stats{
		Ways:    Build(doc, ids, cands, res),
		Skipped: c.Skipped(),
	}
	for _, r := range res {
		if r.IsLink {
			stats.Links++
		}
	}
	stats.Nodes = len(doc.Nodes) - before
	return stats
}
