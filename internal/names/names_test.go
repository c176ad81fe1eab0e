package names

import "testing"

func TestCatalogResolve(t *testing.T) {
	locale := map[string]string{
		"Road.MAIN":        "Main Street",
		"Format.STREET":    "{NAME} {SUFFIX}",
		"Suffix.AVENUE":    "Avenue",
		"Format.NOVALUES":  "Plain",
		"District.HARBOUR": "Harbour",
	}
	entities := map[string]Name{
		"lit":     {ID: "Oak Lane", Kind: Literal},
		"loc":     {ID: "Road.MAIN", Kind: Localized},
		"locMiss": {ID: "Road.UNKNOWN", Kind: Localized},
		"fmt":     {ID: "Format.STREET", Kind: Formatted, Args: []string{"NAME", "Elm", "SUFFIX", "Suffix.AVENUE"}},
		"fmtOdd":  {ID: "Format.STREET", Kind: Formatted, Args: []string{"NAME", "Elm", "SUFFIX"}},
		"fmtMiss": {ID: "Format.MISSING", Kind: Formatted, Args: []string{"A", "B"}},
		"fmtNone": {ID: "Format.NOVALUES", Kind: Formatted},
		"empty":   {ID: "", Kind: Localized},
		"nokind":  {ID: "Bare"},
	}
	c := NewCatalog(entities, locale)

	tests := []struct {
		ref  string
		want string
	}{
		{"lit", "Oak Lane"},
		{"loc", "Main Street"},
		{"locMiss", "Road.UNKNOWN"},
		{"fmt", "Elm Avenue"},
		{"fmtOdd", "Elm {SUFFIX}"},
		{"fmtMiss", "Format.MISSING"},
		{"fmtNone", "Plain"},
		{"empty", ""},
		{"nokind", "Bare"},
		{"unknown", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			if got := c.ResolveDisplayName(tt.ref); got != tt.want {
				t.Errorf("ResolveDisplayName(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestStatic(t *testing.T) {
	var r Resolver = Static{"a": "Alpha"}
	if got := r.ResolveDisplayName("a"); got != "Alpha" {
		t.Errorf("ResolveDisplayName(a) = %q, want Alpha", got)
	}
	if got := r.ResolveDisplayName("b"); got != "" {
		t.Errorf("ResolveDisplayName(b) = %q, want empty", got)
	}
}
