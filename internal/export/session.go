// Package export runs one snapshot through every feature producer and
// writes the resulting OSM document.
package export

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wegman-software/osmexport-go/internal/config"
	"github.com/wegman-software/osmexport-go/internal/contour"
	"github.com/wegman-software/osmexport-go/internal/document"
	"github.com/wegman-software/osmexport-go/internal/featureid"
	"github.com/wegman-software/osmexport-go/internal/features"
	"github.com/wegman-software/osmexport-go/internal/logger"
	"github.com/wegman-software/osmexport-go/internal/proj"
	"github.com/wegman-software/osmexport-go/internal/roads"
	"github.com/wegman-software/osmexport-go/internal/script"
	"github.com/wegman-software/osmexport-go/internal/snapshot"
	"github.com/wegman-software/osmexport-go/internal/style"
	"github.com/wegman-software/osmexport-go/internal/water"
)

// Stats summarises one export run
type Stats struct {
	Roads    roads.Stats
	Features features.Stats
	Water    water.Stats
	Contours contour.Stats
	Styled   style.Stats
	Scripted script.Stats

	Nodes     int
	Ways      int
	Relations int
	Skipped   int

	Output  string
	Elapsed time.Duration
}

// Session owns the state of one export: the id allocator, the document and
// the run's timestamp. Sessions are not safe for concurrent use; run
// snapshots concurrently with one session each.
type Session struct {
	cfg    *config.Config
	log    *zap.Logger
	ids    *featureid.Allocator
	doc    *document.Document
	proj   *proj.Projector
	style  *style.Style
	script *script.Runtime
	stats  Stats
	ran    bool
}

// NewSession prepares a session, loading the style and tag script named by cfg
func NewSession(cfg *config.Config, log *zap.Logger, now time.Time) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		cfg:   cfg,
		log:   log,
		ids:   featureid.NewAllocator(featureid.DefaultBase),
		doc:   document.New(now),
		proj:  proj.NewProjector(cfg.North),
		style: style.New(nil),
	}

	if cfg.StyleFile != "" {
		sc, err := style.LoadConfig(cfg.StyleFile)
		if err != nil {
			return nil, err
		}
		s.style = style.New(sc)
	}

	if cfg.ScriptFile != "" {
		rt := script.NewRuntime(log)
		if err := rt.LoadFile(cfg.ScriptFile); err != nil {
			rt.Close()
			return nil, err
		}
		s.script = rt
	}
	return s, nil
}

// Close releases the tag script runtime
func (s *Session) Close() {
	if s.script != nil {
		s.script.Close()
		s.script = nil
	}
}

// Document returns the session's document
func (s *Session) Document() *document.Document {
	return s.doc
}

// Build runs every producer over snap in export order, then applies the
// style filter and the tag script. A session builds at most once.
func (s *Session) Build(snap *snapshot.Snapshot) (Stats, error) {
	if s.ran {
		return s.stats, fmt.Errorf("session already built a document")
	}
	s.ran = true
	start := time.Now()
	names := snap.Catalog()
	t := &snap.Terrain

	s.stats.Roads = roads.Export(s.doc, s.ids, s.proj, names, snap, roads.Options{Motorways: s.cfg.Motorways})
	s.log.Debug("Highways exported",
		zap.Int("ways", s.stats.Roads.Ways),
		zap.Int("links", s.stats.Roads.Links),
		zap.Int("skipped", s.stats.Roads.Skipped))

	fp := &features.Producer{
		IDs:   s.ids,
		Doc:   s.doc,
		Proj:  s.proj,
		Names: names,
		Options: features.Options{
			NonStandardTransit: s.cfg.Transit.Enabled,
			NonStandardModes:   s.cfg.Transit.Modes(),
		},
	}
	s.stats.Features.Add(fp.Areas(snap.Areas))
	s.stats.Features.Add(fp.Buildings(snap.Buildings))
	s.stats.Features.Add(fp.Stops(snap.Stops))
	s.stats.Features.Add(fp.Lines(snap.Lines))
	if s.cfg.Trees {
		s.stats.Features.Add(fp.Trees(snap.Trees))
	}
	s.log.Debug("Features exported",
		zap.Int("nodes", s.stats.Features.Nodes),
		zap.Int("ways", s.stats.Features.Ways),
		zap.Int("relations", s.stats.Features.Relations))

	pitch := t.Step()
	region := water.Region{MinX: t.Min.X, MinZ: t.Min.Z, MaxX: t.Max.X, MaxZ: t.Max.Z}
	emitter := &water.Emitter{
		IDs:    s.ids,
		Doc:    s.doc,
		Proj:   s.proj,
		Origin: [2]float64{t.Min.X, t.Min.Z},
		Pitch:  pitch,
	}
	s.stats.Water = emitter.Emit(water.Extract(water.Rasterize(region, pitch, t.Underwater)))
	s.log.Debug("Water exported",
		zap.Int("bodies", s.stats.Water.Bodies),
		zap.Int("holes", s.stats.Water.Holes))

	if s.cfg.Contours {
		grid := contour.Sample(t.Min.X, t.Min.Z, t.Max.X, t.Max.Z, pitch, t.Height)
		s.stats.Contours = contour.Emit(s.doc, s.ids, s.proj, t.Min.X, t.Min.Z, pitch, grid.Segments())
		s.log.Debug("Contours exported",
			zap.Int("bands", s.stats.Contours.Bands),
			zap.Int("ways", s.stats.Contours.Ways))
	}

	s.doc.SetBounds(s.proj.Bound(t.Min.X, t.Min.Z, t.Max.X, t.Max.Z))

	s.stats.Styled = s.style.Apply(s.doc)
	if s.script != nil {
		scripted, err := s.script.Apply(s.doc)
		if err != nil {
			return s.stats, fmt.Errorf("tag script failed: %w", err)
		}
		s.stats.Scripted = scripted
	}

	s.stats.Nodes, s.stats.Ways, s.stats.Relations = s.doc.Counts()
	s.stats.Skipped = s.stats.Roads.Skipped + s.stats.Features.Skipped
	s.stats.Elapsed = time.Since(start)
	return s.stats, nil
}

// Run builds the document from snap and writes it to the configured output path
func (s *Session) Run(snap *snapshot.Snapshot) (Stats, error) {
	start := time.Now()
	stats, err := s.Build(snap)
	if err != nil {
		return stats, err
	}

	w, err := document.WriterFor(s.cfg.Format)
	if err != nil {
		return stats, err
	}
	path := s.cfg.OutputPath()
	if err := document.WriteFile(path, s.doc, w); err != nil {
		return stats, err
	}
	s.stats.Output = path
	s.stats.Elapsed = time.Since(start)

	s.log.Info("Export complete",
		zap.String("city", snap.City),
		zap.String("output", path),
		zap.String("format", string(s.cfg.Format)),
		zap.Int("nodes", s.stats.Nodes),
		zap.Int("ways", s.stats.Ways),
		zap.Int("relations", s.stats.Relations),
		zap.Int("skipped", s.stats.Skipped),
		logger.Elapsed("elapsed", s.stats.Elapsed),
	)
	return s.stats, nil
}
