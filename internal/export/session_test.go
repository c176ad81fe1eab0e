package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/osm"

	"github.com/wegman-software/osmexport-go/internal/config"
	"github.com/wegman-software/osmexport-go/internal/document"
	"github.com/wegman-software/osmexport-go/internal/names"
	"github.com/wegman-software/osmexport-go/internal/snapshot"
)

var runTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// testSnapshot has a tram line over one edge and a lake with an island
// on a 3x3 coarse grid
func testSnapshot() *snapshot.Snapshot {
	depths := make([]float64, 16)
	for i := range depths {
		depths[i] = 5
	}
	depths[1*4+1] = 0

	return &snapshot.Snapshot{
		Version: 1,
		City:    "Testville",
		Terrain: snapshot.Terrain{
			Min:    snapshot.Vec3{},
			Max:    snapshot.Vec3{X: 60, Z: 60},
			Pitch:  20,
			Cols:   4,
			Rows:   4,
			Depths: depths,
		},
		Nodes: []snapshot.NetNode{
			{Index: 0, Position: snapshot.Vec3{X: 0}},
			{Index: 1, Position: snapshot.Vec3{X: 40}},
		},
		Edges: []snapshot.Edge{
			{Index: 0, Kind: snapshot.EdgeTram, Start: 0, End: 1},
		},
		Areas: []snapshot.Area{
			{Index: 0, Kind: snapshot.AreaDistrict, Name: "district", Nodes: []snapshot.Vec3{{X: 0}, {X: 60}, {X: 60, Z: 60}, {Z: 60}}},
		},
		Stops: []snapshot.Stop{
			{Index: 0, Kind: "tram", Name: "stop", Position: snapshot.Vec3{X: 20}},
		},
		Lines: []snapshot.Line{
			{Index: 0, Mode: "tram", Stops: []int{0}, Segments: []snapshot.Segment{{Edges: []int{0}}}},
		},
		Trees: []snapshot.Tree{{Index: 0}},
		Names: map[string]names.Name{
			"district": {ID: "Old Town", Kind: names.Literal},
			"stop":     {ID: "Market", Kind: names.Literal},
		},
	}
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.DefaultConfig()
	cfg.OutputDir = t.TempDir()
	cfg.FileName = "city"
	return cfg
}

func TestBuild(t *testing.T) {
	s, err := NewSession(testConfig(t), nil, runTime)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	defer s.Close()

	stats, err := s.Build(testSnapshot())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if stats.Water.Bodies != 1 || stats.Water.Holes != 1 || stats.Water.Relations != 1 {
		t.Errorf("water stats = %+v, want 1 body with 1 hole in 1 relation", stats.Water)
	}
	if stats.Roads.Ways != 1 {
		t.Errorf("road ways = %d, want 1", stats.Roads.Ways)
	}
	if stats.Contours.Ways != 0 {
		t.Errorf("flat terrain produced %d contour ways", stats.Contours.Ways)
	}
	if stats.Relations != 2 {
		t.Errorf("relations = %d, want the route and the lake", stats.Relations)
	}

	doc := s.Document()
	if doc.Bounds == nil || doc.Bounds.MinLat > doc.Bounds.MaxLat || doc.Bounds.MinLon > doc.Bounds.MaxLon {
		t.Errorf("bounds = %+v, want a normalised box", doc.Bounds)
	}
	for _, n := range doc.Nodes {
		if n.Tags.Find("natural") == "tree" {
			t.Error("tree exported while trees are disabled")
		}
	}

	if _, err := s.Build(testSnapshot()); err == nil {
		t.Error("second Build() on one session succeeded")
	}
}

func TestBuildReferentialIntegrity(t *testing.T) {
	s, err := NewSession(testConfig(t), nil, runTime)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, err := s.Build(testSnapshot()); err != nil {
		t.Fatal(err)
	}
	doc := s.Document()

	ids := make(map[int64]bool)
	claim := func(id int64) {
		if ids[id] {
			t.Errorf("id %d used twice", id)
		}
		ids[id] = true
	}
	nodes := make(map[osm.NodeID]bool)
	for _, n := range doc.Nodes {
		claim(int64(n.ID))
		nodes[n.ID] = true
	}
	ways := make(map[osm.WayID]bool)
	for _, w := range doc.Ways {
		claim(int64(w.ID))
		ways[w.ID] = true
		for _, wn := range w.Nodes {
			if !nodes[wn.ID] {
				t.Errorf("way %d references missing node %d", w.ID, wn.ID)
			}
		}
	}
	for _, r := range doc.Relations {
		claim(int64(r.ID))
		for _, m := range r.Members {
			switch m.Type {
			case osm.TypeNode:
				if !nodes[osm.NodeID(m.Ref)] {
					t.Errorf("relation %d references missing node %d", r.ID, m.Ref)
				}
			case osm.TypeWay:
				if !ways[osm.WayID(m.Ref)] {
					t.Errorf("relation %d references missing way %d", r.ID, m.Ref)
				}
			}
		}
	}
}

func TestRunWritesFile(t *testing.T) {
	cfg := testConfig(t)
	s, err := NewSession(cfg, nil, runTime)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	stats, err := s.Run(testSnapshot())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Output != filepath.Join(cfg.OutputDir, "city.osm") {
		t.Errorf("Output = %q, want city.osm in the output dir", stats.Output)
	}
	data, err := os.ReadFile(stats.Output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	for _, want := range []string{"<osm", "<bounds", `v="Old Town"`, `v="multipolygon"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("output is missing %s", want)
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	var outputs [][]byte
	for i := 0; i < 2; i++ {
		cfg := testConfig(t)
		s, err := NewSession(cfg, nil, runTime)
		if err != nil {
			t.Fatal(err)
		}
		stats, err := s.Run(testSnapshot())
		s.Close()
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		data, err := os.ReadFile(stats.Output)
		if err != nil {
			t.Fatal(err)
		}
		outputs = append(outputs, data)
	}
	if !bytes.Equal(outputs[0], outputs[1]) {
		t.Error("two sessions over the same snapshot wrote different documents")
	}
}

func TestRunDisabledFormat(t *testing.T) {
	cfg := testConfig(t)
	cfg.Format = document.FormatPBF
	s, err := NewSession(cfg, nil, runTime)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, err := s.Run(testSnapshot()); !errors.Is(err, document.ErrFormatDisabled) {
		t.Fatalf("Run() error = %v, want ErrFormatDisabled", err)
	}
	entries, _ := os.ReadDir(cfg.OutputDir)
	if len(entries) != 0 {
		t.Errorf("output dir holds %d entries after a failed run", len(entries))
	}
}

func TestStyleAndScript(t *testing.T) {
	dir := t.TempDir()
	stylePath := filepath.Join(dir, "style.yaml")
	scriptPath := filepath.Join(dir, "tags.lua")
	if err := os.WriteFile(stylePath, []byte("lines:\n  exclude:\n    railway: [tram]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	lua := `
function osmexport.process_node(object)
	if object.tags.name then
		object.tags.name = osmexport.transforms.upper(object.tags.name)
	end
end
`
	if err := os.WriteFile(scriptPath, []byte(lua), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig(t)
	cfg.StyleFile = stylePath
	cfg.ScriptFile = scriptPath
	s, err := NewSession(cfg, nil, runTime)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	defer s.Close()

	stats, err := s.Build(testSnapshot())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if stats.Styled.Ways != 1 {
		t.Errorf("styled ways = %d, want the tram way dropped", stats.Styled.Ways)
	}
	if stats.Scripted.Nodes != 2 {
		t.Errorf("scripted nodes = %d, want the district and the stop", stats.Scripted.Nodes)
	}

	for _, n := range s.Document().Nodes {
		if n.Tags.Find("name") == "Market" {
			t.Error("stop name not rewritten by the script")
		}
	}

	cfg.ScriptFile = filepath.Join(dir, "missing.lua")
	if _, err := NewSession(cfg, nil, runTime); err == nil {
		t.Error("NewSession() with a missing script succeeded")
	}
}
