// Package names resolves display names of snapshot entities.
package names

import "strings"

// Kind is how a name's ID is interpreted
type Kind string

const (
	Literal   Kind = "literal"
	Localized Kind = "localized"
	Formatted Kind = "formatted"
)

// Name is a display name as stored by the simulation
type Name struct {
	ID   string   `json:"id"`
	Kind Kind     `json:"kind"`
	Args []string `json:"args,omitempty"`
}

// Resolver turns an entity reference into a display string.
// Unknown references resolve to "".
type Resolver interface {
	ResolveDisplayName(ref string) string
}

// Catalog resolves names against a localisation dictionary
type Catalog struct {
	names  map[string]Name
	locale map[string]string
}

// NewCatalog creates a catalog over entity names and a locale dictionary
func NewCatalog(names map[string]Name, locale map[string]string) *Catalog {
	if names == nil {
		names = map[string]Name{}
	}
	if locale == nil {
		locale = map[string]string{}
	}
	return &Catalog{names: names, locale: locale}
}

// ResolveDisplayName implements Resolver
func (c *Catalog) ResolveDisplayName(ref string) string {
	if ref == "" {
		return ""
	}
	n, ok := c.names[ref]
	if !ok {
		return ""
	}
	return c.Render(n)
}

// Render formats a name. Literal names are returned as is; localized names
// are looked up in the dictionary; formatted names substitute {key}
// placeholders from Args pairs after localising each arg.
func (c *Catalog) Render(n Name) string {
	if n.ID == "" {
		return ""
	}
	switch n.Kind {
	case Localized:
		if s, ok := c.locale[n.ID]; ok {
			return s
		}
		return n.ID
	case Formatted:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			if s, ok := c.locale[a]; ok {
				a = s
			}
			args[i] = a
		}
		tmpl, ok := c.locale[n.ID]
		if !ok {
			return n.ID
		}
		for i := 0; i+1 < len(args); i += 2 {
			tmpl = strings.ReplaceAll(tmpl, "{"+args[i]+"}", args[i+1])
		}
		return tmpl
	default:
		return n.ID
	}
}

// Static is a Resolver backed by a fixed map, mostly for tests
type Static map[string]string

// ResolveDisplayName implements Resolver
func (s Static) ResolveDisplayName(ref string) string {
	return s[ref]
}
