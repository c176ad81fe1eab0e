package document

import (
	"encoding/json"
	"encoding/xml"
	"io"
)

type xmlWriter struct{}

func (xmlWriter) Format() Format { return FormatXML }

// Write emits OSM XML 0.6: header, bounds, then nodes, ways and relations.
// The osm root is written token by token so the bounds element gets its
// lowercase OSM name.
func (xmlWriter) Write(w io.Writer, doc *Document) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", " ")

	root := xml.StartElement{
		Name: xml.Name{Local: "osm"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "version"}, Value: "0.6"},
			{Name: xml.Name{Local: "generator"}, Value: doc.Generator},
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}
	if doc.Bounds != nil {
		if err := enc.EncodeElement(doc.Bounds, xml.StartElement{Name: xml.Name{Local: "bounds"}}); err != nil {
			return err
		}
	}
	if err := enc.Encode(doc.Nodes); err != nil {
		return err
	}
	if err := enc.Encode(doc.Ways); err != nil {
		return err
	}
	if err := enc.Encode(doc.Relations); err != nil {
		return err
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

type jsonWriter struct{}

func (jsonWriter) Format() Format { return FormatJSON }

// Write emits the OSM JSON (Overpass style "elements") encoding
func (jsonWriter) Write(w io.Writer, doc *Document) error {
	return json.NewEncoder(w).Encode(doc.OSM())
}
