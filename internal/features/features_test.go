package features

import (
	"testing"
	"time"

	"github.com/paulmach/osm"

	"github.com/wegman-software/osmexport-go/internal/document"
	"github.com/wegman-software/osmexport-go/internal/featureid"
	"github.com/wegman-software/osmexport-go/internal/names"
	"github.com/wegman-software/osmexport-go/internal/proj"
	"github.com/wegman-software/osmexport-go/internal/snapshot"
)

func newProducer(opts Options) *Producer {
	return &Producer{
		IDs:     featureid.NewAllocator(featureid.DefaultBase),
		Doc:     document.New(time.Unix(0, 0)),
		Proj:    proj.NewProjector(proj.North),
		Names:   names.Static{"n1": "Riverside", "n2": "Acme", "n3": "Harbour Line"},
		Options: opts,
	}
}

func tagsEqual(got osm.Tags, want map[string]string) bool {
	if len(got) != len(want) {
		return false
	}
	for _, t := range got {
		if want[t.Key] != t.Value {
			return false
		}
	}
	return true
}

func TestAreas(t *testing.T) {
	p := newProducer(Options{})
	stats := p.Areas([]snapshot.Area{
		{Index: 0, Kind: snapshot.AreaDistrict, Name: "n1", Nodes: []snapshot.Vec3{{X: 0, Z: 0}, {X: 20, Z: 0}, {X: 20, Z: 40}, {X: 0, Z: 40}}},
		{Index: 1, Kind: snapshot.AreaLot, Feature: snapshot.FeatureOil, Nodes: []snapshot.Vec3{{X: 0}, {X: 10}, {X: 10, Z: 10}}},
		{Index: 2, Kind: snapshot.AreaLot, Nodes: []snapshot.Vec3{{X: 0}, {X: 10}}},
		{Index: 3, Kind: snapshot.AreaDistrict},
	})

	if stats.Nodes != 6 || stats.Ways != 1 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want 6 nodes, 1 way, 1 skipped", stats)
	}

	district := p.Doc.Nodes[0]
	if !tagsEqual(district.Tags, map[string]string{"place": "suburb", "name": "Riverside"}) {
		t.Errorf("district tags = %v", district.Tags)
	}
	want := proj.Project(10, 20, proj.North)
	if district.Lat != want.Lat() || district.Lon != want.Lon() {
		t.Errorf("district at (%v, %v), want centroid (%v, %v)", district.Lat, district.Lon, want.Lat(), want.Lon())
	}

	lot := p.Doc.Ways[0]
	if !tagsEqual(lot.Tags, map[string]string{"landuse": "industrial", "industrial": "oil"}) {
		t.Errorf("lot tags = %v", lot.Tags)
	}
	if len(lot.Nodes) != 4 || lot.Nodes[0].ID != lot.Nodes[3].ID {
		t.Errorf("lot way = %v, want a closed 3 vertex ring", lot.Nodes)
	}
}

func TestLanduseTags(t *testing.T) {
	tests := []struct {
		feature snapshot.MapFeature
		want    string
	}{
		{snapshot.FeatureFertileLand, "farmland"},
		{snapshot.FeatureForest, "forest"},
		{snapshot.FeatureOre, "quarry"},
		{snapshot.FeatureGarbage, "landfill"},
		{"", "farmland"},
	}
	for _, tt := range tests {
		if got := landuseTags(tt.feature).Find("landuse"); got != tt.want {
			t.Errorf("landuseTags(%q) landuse = %q, want %q", tt.feature, got, tt.want)
		}
	}
}

func TestBuildingTags(t *testing.T) {
	tests := []struct {
		name     string
		building snapshot.Building
		want     map[string]string
		ok       bool
	}{
		{"school", snapshot.Building{Kind: "school"}, map[string]string{"amenity": "school"}, true},
		{"office", snapshot.Building{Kind: "industrial", Renter: &snapshot.Renter{Resource: "software"}}, map[string]string{"office": "it"}, true},
		{"warehouse", snapshot.Building{Kind: "industrial", Warehouse: true}, map[string]string{"landuse": "industrial", "industrial": "warehouse"}, true},
		{"factory", snapshot.Building{Kind: "industrial"}, map[string]string{"landuse": "industrial", "industrial": "factory"}, true},
		{"plain shop", snapshot.Building{Kind: "commercial"}, map[string]string{"shop": "yes", "landuse": "commercial"}, true},
		{"restaurant", snapshot.Building{Kind: "commercial", Renter: &snapshot.Renter{Resource: "meals"}}, map[string]string{"amenity": "restaurant", "landuse": "commercial"}, true},
		{"bookshop", snapshot.Building{Kind: "commercial", Renter: &snapshot.Renter{Resource: "paper"}}, map[string]string{"shop": "books", "landuse": "commercial"}, true},
		{"train depot", snapshot.Building{Kind: "depot", TrainDepot: true}, map[string]string{"landuse": "railway", "railway": "depot"}, true},
		{"bus depot", snapshot.Building{Kind: "depot"}, map[string]string{"landuse": "industrial", "industrial": "depot"}, true},
		{"airport", snapshot.Building{Kind: "passenger_station", Stations: []string{"bus", "airport"}}, map[string]string{"aeroway": "aerodrome"}, true},
		{"subway station", snapshot.Building{Kind: "passenger_station", Stations: []string{"subway"}}, map[string]string{"public_transport": "station", "landuse": "railway", "railway": "station"}, true},
		{"bus station", snapshot.Building{Kind: "passenger_station", Stations: []string{"bus"}}, map[string]string{"public_transport": "station", "amenity": "bus_station"}, true},
		{"port", snapshot.Building{Kind: "cargo_station", Stations: []string{"ship"}}, map[string]string{"landuse": "industrial", "industrial": "port", "port": "cargo"}, true},
		{"cargo airport", snapshot.Building{Kind: "cargo_station", Stations: []string{"airplane"}}, nil, false},
		{"power plant", snapshot.Building{Kind: "power_plant"}, map[string]string{"landuse": "industrial", "power": "plant"}, true},
		{"unknown", snapshot.Building{Kind: "monument"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BuildingTags(tt.building)
			if ok != tt.ok {
				t.Fatalf("BuildingTags() ok = %v, want %v", ok, tt.ok)
			}
			if ok && !tagsEqual(got, tt.want) {
				t.Errorf("BuildingTags() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFootprint(t *testing.T) {
	b := snapshot.Building{Position: snapshot.Vec3{X: 100, Z: 50}, LotSize: &[2]int{2, 3}}
	corners, ok := Footprint(b)
	if !ok {
		t.Fatal("Footprint() reported no lot")
	}
	want := [4][2]float64{{92, 38}, {108, 38}, {108, 62}, {92, 62}}
	for i, c := range corners {
		if c.X != want[i][0] || c.Z != want[i][1] {
			t.Errorf("corner %d = (%v, %v), want (%v, %v)", i, c.X, c.Z, want[i][0], want[i][1])
		}
	}

	// half turn about the vertical axis
	b.Rotation = snapshot.Quat{Y: 1}
	corners, _ = Footprint(b)
	if corners[0].X != 108 || corners[0].Z != 62 {
		t.Errorf("rotated corner 0 = (%v, %v), want (108, 62)", corners[0].X, corners[0].Z)
	}

	if _, ok := Footprint(snapshot.Building{}); ok {
		t.Error("Footprint() without lot size reported a lot")
	}
}

func TestBuildings(t *testing.T) {
	p := newProducer(Options{})
	stats := p.Buildings([]snapshot.Building{
		{Index: 0, Kind: "commercial", Name: "n1", Renter: &snapshot.Renter{Name: "n2", Resource: "food"}, LotSize: &[2]int{1, 1}},
		{Index: 1, Kind: "residential", Name: "n1"},
		{Index: 2, Kind: "monument"},
	})

	if stats.Nodes != 5 || stats.Ways != 1 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want 5 nodes, 1 way, 1 skipped", stats)
	}

	shop := p.Doc.Ways[0]
	if shop.Tags.Find("name") != "Acme" || shop.Tags.Find("shop") != "food" {
		t.Errorf("shop tags = %v, want renter name and shop=food", shop.Tags)
	}
	if len(shop.Nodes) != 5 || shop.Nodes[0].ID != shop.Nodes[4].ID {
		t.Errorf("footprint = %v, want a closed 4 corner ring", shop.Nodes)
	}

	home := p.Doc.Nodes[4]
	if home.Tags.HasTag("name") {
		t.Errorf("residential node carries a name: %v", home.Tags)
	}
	if home.ID != osm.NodeID(featureid.DefaultBase+7) {
		t.Errorf("residential node id = %d, want %d", home.ID, featureid.DefaultBase+7)
	}
}

func TestStops(t *testing.T) {
	p := newProducer(Options{NonStandardTransit: true, NonStandardModes: map[string]bool{"bus": false}})
	stats := p.Stops([]snapshot.Stop{
		{Index: 0, Kind: "bus", Name: "n1"},
		{Index: 1, Kind: "bus", Owned: true},
		{Index: 2, Kind: "tram"},
		{Index: 3, Kind: "train", Cargo: true},
		{Index: 4, Kind: "airplane"},
	})

	if stats.Nodes != 4 || stats.Skipped != 2 {
		t.Errorf("stats = %+v, want 4 nodes, 2 skipped", stats)
	}
	tests := []struct {
		node int
		want map[string]string
	}{
		{0, map[string]string{"public_transport": "platform", "highway": "bus_stop", "name": "Riverside"}},
		{1, map[string]string{"public_transport": "platform", "highway": "platform"}},
		{2, map[string]string{"public_transport": "platform", "railway": "platform"}},
		{3, map[string]string{"osm_export_stop": "tram"}},
	}
	for _, tt := range tests {
		if got := p.Doc.Nodes[tt.node].Tags; !tagsEqual(got, tt.want) {
			t.Errorf("node %d tags = %v, want %v", tt.node, got, tt.want)
		}
	}
}

func TestLines(t *testing.T) {
	number := 7
	curve := snapshot.Bezier{A: snapshot.Vec3{X: 0}, D: snapshot.Vec3{X: 30}}
	lines := []snapshot.Line{
		{
			Index:  0,
			Mode:   "ship",
			Number: &number,
			Name:   "n3",
			Stops:  []int{0, 1},
			Segments: []snapshot.Segment{
				{Edges: []int{4, 5}, Curves: []snapshot.Bezier{curve, {A: curve.D, D: snapshot.Vec3{X: 60}}}},
				{},
			},
		},
		{Index: 1, Mode: "train", Cargo: true, Stops: []int{0}},
		{Index: 2, Mode: "bus"},
	}

	p := newProducer(Options{NonStandardTransit: true})
	stats := p.Lines(lines)
	if stats.Relations != 1 || stats.Ways != 1 || stats.Nodes != 3 || stats.Skipped != 2 {
		t.Errorf("stats = %+v, want 1 relation, 1 way, 3 nodes, 2 skipped", stats)
	}

	rel := p.Doc.Relations[0]
	want := map[string]string{
		"type": "route", "route": "ferry", "ref": "7", "name": "Harbour Line",
		"roundtrip": "yes", "colour": DefaultColour,
	}
	if !tagsEqual(rel.Tags, want) {
		t.Errorf("relation tags = %v, want %v", rel.Tags, want)
	}
	if len(rel.Members) != 4 {
		t.Fatalf("len(Members) = %d, want 4", len(rel.Members))
	}
	if rel.Members[0].Type != osm.TypeNode || rel.Members[0].Role != "platform" {
		t.Errorf("member 0 = %+v, want platform node", rel.Members[0])
	}
	edge, _ := p.IDs.Lookup(featureid.K(featureid.Way, 4))
	if rel.Members[2].Type != osm.TypeWay || rel.Members[2].Ref != edge || rel.Members[2].Role != "" {
		t.Errorf("member 2 = %+v, want way %d", rel.Members[2], edge)
	}

	route := p.Doc.Ways[0]
	if route.Tags.Find("osm_export_route") != "ferry" || route.Tags.Find("layer") != "5" {
		t.Errorf("route way tags = %v", route.Tags)
	}
	if len(route.Nodes) != 3 {
		t.Errorf("route way has %d nodes, want 3", len(route.Nodes))
	}

	// without the master switch there are no helper ways
	p = newProducer(Options{NonStandardModes: map[string]bool{"ship": true}})
	if stats := p.Lines(lines); stats.Ways != 0 {
		t.Errorf("helper ways emitted with the master switch off: %+v", stats)
	}
}

func TestTrees(t *testing.T) {
	p := newProducer(Options{})
	stats := p.Trees([]snapshot.Tree{{Index: 0}, {Index: 1, Position: snapshot.Vec3{X: 5}}})
	if stats.Nodes != 2 {
		t.Errorf("stats = %+v, want 2 nodes", stats)
	}
	for _, n := range p.Doc.Nodes {
		if n.Tags.Find("natural") != "tree" {
			t.Errorf("tree tags = %v", n.Tags)
		}
	}
}
