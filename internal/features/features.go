// Package features emits the simple map features of a snapshot: districts
// and lots, buildings, transit stops and lines, and trees.
package features

import (
	"github.com/wegman-software/osmexport-go/internal/document"
	"github.com/wegman-software/osmexport-go/internal/featureid"
	"github.com/wegman-software/osmexport-go/internal/names"
	"github.com/wegman-software/osmexport-go/internal/proj"
)

// TransitModes are the modes with a non-standard rendering toggle
var TransitModes = []string{"taxi", "bus", "tram", "train", "subway", "ship", "airplane"}

// Options controls optional feature output
type Options struct {
	// NonStandardTransit enables helper nodes and ways for route rendering
	NonStandardTransit bool
	// NonStandardModes toggles helpers per transit mode; missing modes are enabled
	NonStandardModes map[string]bool
}

// nonStandard reports whether helpers are enabled for mode
func (o Options) nonStandard(mode string) bool {
	if !o.NonStandardTransit {
		return false
	}
	if enabled, ok := o.NonStandardModes[mode]; ok {
		return enabled
	}
	return true
}

// Stats counts emitted and skipped features
type Stats struct {
	Nodes     int
	Ways      int
	Relations int
	Skipped   int
}

// Add accumulates o into s
func (s *Stats) Add(o Stats) {
	s.Nodes += o.Nodes
	s.Ways += o.Ways
	s.Relations += o.Relations
	s.Skipped += o.Skipped
}

// Producer writes features into a document
type Producer struct {
	IDs     *featureid.Allocator
	Doc     *document.Document
	Proj    *proj.Projector
	Names   names.Resolver
	Options Options
}

func (p *Producer) name(ref string) string {
	if p.Names == nil {
		return ""
	}
	return p.Names.ResolveDisplayName(ref)
}
