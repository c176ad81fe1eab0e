package document

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

func sampleDocument() *Document {
	doc := New(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	doc.NewNode(1, orb.Point{0, 0}, nil)
	doc.NewNode(2, orb.Point{1, 0}, nil)
	doc.NewNode(3, orb.Point{1, 1}, nil)
	doc.NewNode(4, orb.Point{0.2, 0.2}, nil)
	doc.NewNode(5, orb.Point{0.4, 0.2}, nil)
	doc.NewNode(6, orb.Point{0.4, 0.4}, nil)
	doc.NewWay(10, []int64{1, 2, 3, 1}, nil)
	doc.NewWay(11, []int64{4, 5, 6, 4}, nil)
	doc.NewWay(12, []int64{1, 2}, Tags("highway", "residential"))
	doc.NewRelation(20, osm.Members{
		Member(osm.TypeWay, 10, "outer"),
		Member(osm.TypeWay, 11, "inner"),
	}, Tags("type", "multipolygon", "natural", "water"))
	doc.SetBounds(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}})
	return doc
}

func TestSetTag(t *testing.T) {
	tags := Tags("highway", "primary", "name", "", "oneway", "yes")
	if len(tags) != 2 {
		t.Fatalf("len(tags) = %d, want 2 (empty value skipped)", len(tags))
	}

	tags = SetTag(tags, "highway", "primary_link")
	if got := tags.Find("highway"); got != "primary_link" {
		t.Errorf("highway = %q, want primary_link", got)
	}
	if len(tags) != 2 {
		t.Errorf("len(tags) = %d after replace, want 2", len(tags))
	}

	tags = RemoveTag(tags, "oneway")
	if tags.HasTag("oneway") {
		t.Error("oneway still present after RemoveTag")
	}
}

func TestConstructorsStamp(t *testing.T) {
	doc := sampleDocument()

	n := doc.Nodes[0]
	if n.Version != 1 || !n.Visible || !n.Timestamp.Equal(doc.Timestamp) {
		t.Errorf("node stamp = (v%d, visible %v, %v), want (v1, true, %v)", n.Version, n.Visible, n.Timestamp, doc.Timestamp)
	}
	w := doc.Ways[0]
	if len(w.Nodes) != 4 || w.Nodes[3].ID != 1 {
		t.Errorf("way nodes = %v, want closed ring of 4", w.Nodes)
	}
	nodes, ways, relations := doc.Counts()
	if nodes != 6 || ways != 3 || relations != 1 {
		t.Errorf("Counts() = %d, %d, %d, want 6, 3, 1", nodes, ways, relations)
	}

	b, ok := doc.Bound()
	if !ok || b.Max.Lon() != 1 || b.Min.Lat() != 0 {
		t.Errorf("Bound() = %v, %v, want the unit square", b, ok)
	}
	if _, ok := New(time.Now()).Bound(); ok {
		t.Error("Bound() on a fresh document reported bounds")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"xml", FormatXML, false},
		{"JSON", FormatJSON, false},
		{" parquet ", FormatParquet, false},
		{"pbf", FormatPBF, false},
		{"shapefile", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("ParseFormat(%q) error = %v, want ErrUnknownFormat", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestWriteFileXML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "city.osm")

	w, err := WriterFor(FormatXML)
	if err != nil {
		t.Fatalf("WriterFor() error = %v", err)
	}
	if err := WriteFile(path, sampleDocument(), w); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	out := string(data)
	for _, want := range []string{"<?xml", "<osm", `generator="osmexport-go"`, "<bounds", `id="20"`, `k="natural"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the output file", len(entries))
	}
}

func TestXMLBoundsElement(t *testing.T) {
	doc := New(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	doc.SetBounds(orb.Bound{Min: orb.Point{-1, -2}, Max: orb.Point{1, 2}})
	doc.NewNode(1, orb.Point{0, 0}, nil)

	var buf strings.Builder
	if err := (xmlWriter{}).Write(&buf, doc); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.String()

	bounds := strings.Index(out, `<bounds minlat="-2" maxlat="2" minlon="-1" maxlon="1">`)
	if bounds < 0 {
		t.Fatalf("output has no lowercase bounds element:\n%s", out)
	}
	if strings.Contains(out, "<Bounds") {
		t.Errorf("output contains a <Bounds> element:\n%s", out)
	}
	if node := strings.Index(out, "<node"); node < bounds {
		t.Errorf("<node> at %d, want after <bounds> at %d", node, bounds)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "</osm>") {
		t.Errorf("output does not end with </osm>:\n%s", out)
	}

	buf.Reset()
	if err := (xmlWriter{}).Write(&buf, New(time.Now())); err != nil {
		t.Fatalf("Write() without bounds error = %v", err)
	}
	if strings.Contains(buf.String(), "bounds") {
		t.Errorf("document without bounds wrote a bounds element:\n%s", buf.String())
	}
}

func TestWriteFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "city.osm")
	w, _ := WriterFor(FormatXML)
	if err := WriteFile(path, sampleDocument(), w); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if got := fi.Mode().Perm(); got != 0644 {
		t.Errorf("mode = %v, want -rw-r--r--", got)
	}
}

func TestWriteFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "city.osm.json")
	w, _ := WriterFor(FormatJSON)
	if err := WriteFile(path, sampleDocument(), w); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), `"elements"`) {
		t.Errorf("json output missing elements array: %s", data)
	}
}

func TestWriteFileParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "city.parquet")
	w, _ := WriterFor(FormatParquet)
	if err := WriteFile(path, sampleDocument(), w); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(data) < 8 || string(data[:4]) != "PAR1" || string(data[len(data)-4:]) != "PAR1" {
		t.Errorf("output is not a parquet file (%d bytes)", len(data))
	}
}

func TestWriteFilePBFDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "city.osm.pbf")
	w, _ := WriterFor(FormatPBF)

	err := WriteFile(path, sampleDocument(), w)
	if !errors.Is(err, ErrFormatDisabled) {
		t.Fatalf("WriteFile() error = %v, want ErrFormatDisabled", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("failed write left %d files behind", len(entries))
	}
}

func TestGeometryIndex(t *testing.T) {
	doc := sampleDocument()
	g := NewGeometryIndex(doc)

	if _, ok := g.Way(doc.Ways[0]).(orb.Polygon); !ok {
		t.Errorf("closed way geometry = %T, want orb.Polygon", g.Way(doc.Ways[0]))
	}
	if _, ok := g.Way(doc.Ways[2]).(orb.LineString); !ok {
		t.Errorf("open way geometry = %T, want orb.LineString", g.Way(doc.Ways[2]))
	}

	mp, ok := g.Relation(doc.Relations[0]).(orb.MultiPolygon)
	if !ok {
		t.Fatalf("relation geometry = %T, want orb.MultiPolygon", g.Relation(doc.Relations[0]))
	}
	if len(mp) != 1 || len(mp[0]) != 2 {
		t.Errorf("multipolygon shape = %d polygons, %d rings, want 1, 2", len(mp), len(mp[0]))
	}
}
