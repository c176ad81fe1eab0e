package features

import (
	"github.com/paulmach/osm"

	"github.com/wegman-software/osmexport-go/internal/document"
	"github.com/wegman-software/osmexport-go/internal/featureid"
	"github.com/wegman-software/osmexport-go/internal/snapshot"
)

// lotCell is the half width of one lot cell in world units
const lotCell = 4

// officeTags map an industrial renter's resource to an office type
var officeTags = map[string]string{
	"financial": "financial",
	"media":     "newspaper",
	"software":  "it",
	"telecom":   "telecommunication",
}

// shopTags map a commercial renter's resource to the key/value replacing shop=yes
var shopTags = map[string][2]string{
	"beverages":        {"shop", "alcohol"},
	"chemicals":        {"shop", "chemist"},
	"convenience_food": {"shop", "convenience"},
	"food":             {"shop", "food"},
	"furniture":        {"shop", "furniture"},
	"electronics":      {"shop", "electronics"},
	"paper":            {"shop", "books"},
	"petrochemicals":   {"amenity", "fuel"},
	"pharmaceuticals":  {"amenity", "pharmacy"},
	"plastics":         {"shop", "gift"},
	"textiles":         {"shop", "clothes"},
	"vehicles":         {"shop", "car"},
	"meals":            {"amenity", "restaurant"},
	"entertainment":    {"amenity", "bar"},
	"recreation":       {"amenity", "arts_centre"},
	"lodging":          {"tourism", "hotel"},
}

func hasStation(b snapshot.Building, kinds ...string) bool {
	for _, s := range b.Stations {
		for _, k := range kinds {
			if s == k {
				return true
			}
		}
	}
	return false
}

// BuildingTags returns the tags for a building, or false when its kind has
// no map representation
func BuildingTags(b snapshot.Building) (osm.Tags, bool) {
	resource := ""
	if b.Renter != nil {
		resource = b.Renter.Resource
	}

	switch b.Kind {
	case "school", "parking", "hospital", "police", "fire_station", "post_office", "prison":
		return document.Tags("amenity", b.Kind), true

	case "industrial":
		if office, ok := officeTags[resource]; ok {
			return document.Tags("office", office), true
		}
		if b.Warehouse {
			return document.Tags("landuse", "industrial", "industrial", "warehouse"), true
		}
		return document.Tags("landuse", "industrial", "industrial", "factory"), true

	case "commercial":
		tags := document.Tags("shop", "yes")
		if kv, ok := shopTags[resource]; ok {
			tags = document.RemoveTag(tags, "shop")
			tags = document.SetTag(tags, kv[0], kv[1])
		}
		return document.SetTag(tags, "landuse", "commercial"), true

	case "residential":
		return document.Tags("landuse", "residential"), true

	case "depot":
		if b.TrainDepot {
			return document.Tags("landuse", "railway", "railway", "depot"), true
		}
		return document.Tags("landuse", "industrial", "industrial", "depot"), true

	case "passenger_station":
		switch {
		case hasStation(b, "airport"):
			return document.Tags("aeroway", "aerodrome"), true
		case hasStation(b, "train", "subway"):
			return document.Tags("public_transport", "station", "landuse", "railway", "railway", "station"), true
		case hasStation(b, "bus"):
			return document.Tags("public_transport", "station", "amenity", "bus_station"), true
		}
		return document.Tags("public_transport", "station"), true

	case "cargo_station":
		switch {
		case hasStation(b, "ship"):
			return document.Tags("landuse", "industrial", "industrial", "port", "port", "cargo"), true
		case hasStation(b, "train"):
			return document.Tags("landuse", "railway", "railway", "station"), true
		}
		return nil, false

	case "park":
		return document.Tags("leisure", "park"), true
	case "garbage", "telecom":
		return document.Tags("landuse", "industrial"), true
	case "transformer":
		return document.Tags("power", "substation"), true
	case "power_plant":
		return document.Tags("landuse", "industrial", "power", "plant"), true
	}
	return nil, false
}

// Footprint returns the four rotated corners of a building's lot, or false
// when the building has no lot size
func Footprint(b snapshot.Building) ([4]snapshot.Vec3, bool) {
	var corners [4]snapshot.Vec3
	if b.LotSize == nil {
		return corners, false
	}
	w := float64(lotCell * b.LotSize[0])
	l := float64(lotCell * b.LotSize[1])
	local := [4]snapshot.Vec3{{X: -w, Z: -l}, {X: w, Z: -l}, {X: w, Z: l}, {X: -w, Z: l}}
	for i, c := range local {
		r := b.Rotation.Rotate(c)
		corners[i] = snapshot.Vec3{X: b.Position.X + r.X, Y: b.Position.Y + r.Y, Z: b.Position.Z + r.Z}
	}
	return corners, true
}

// Buildings emits a closed footprint way per building with a lot, and a
// tagged node for the rest
func (p *Producer) Buildings(buildings []snapshot.Building) Stats {
	var stats Stats
	for _, b := range buildings {
		nodeID := p.IDs.ID(featureid.K(featureid.Building, b.Index))

		tags, ok := BuildingTags(b)
		if !ok {
			stats.Skipped++
			continue
		}
		if b.Kind != "residential" {
			name := b.Name
			if b.Renter != nil {
				name = b.Renter.Name
			}
			tags = document.SetTag(tags, "name", p.name(name))
		}

		corners, ok := Footprint(b)
		if !ok {
			p.Doc.NewNode(nodeID, p.Proj.Point(b.Position.X, b.Position.Z), tags)
			stats.Nodes++
			continue
		}

		refs := make([]int64, 0, 5)
		for j, c := range corners {
			id := p.IDs.ID(featureid.K(featureid.Building, b.Index, 0, j+1))
			p.Doc.NewNode(id, p.Proj.Point(c.X, c.Z), nil)
			refs = append(refs, id)
			stats.Nodes++
		}
		refs = append(refs, refs[0])
		p.Doc.NewWay(p.IDs.ID(featureid.K(featureid.Building, b.Index, 1)), refs, tags)
		stats.Ways++
	}
	return stats
}
