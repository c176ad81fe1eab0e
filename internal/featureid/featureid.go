// Package featureid allocates stable OSM ids for structured feature keys.
package featureid

import (
	"strconv"
	"strings"
)

// Category separates id spaces of different feature producers.
type Category int

const (
	Node          Category = 10
	BezierNode    Category = 11
	Way           Category = 20
	Area          Category = 30
	Water         Category = 40
	Building      Category = 60
	TransportStop Category = 70
	TransportLine Category = 80
	Contour       Category = 90
	Tree          Category = 100
)

// DefaultBase is the value ids are counted up from
const DefaultBase int64 = 10000

// Key identifies one feature. The category is always the first element.
type Key struct {
	enc string
}

// NewKey builds a key from a category and integer parts
func NewKey(c Category, parts ...int64) Key {
	var b strings.Builder
	writePart(&b, int64(c))
	for _, p := range parts {
		writePart(&b, p)
	}
	return Key{enc: b.String()}
}

// K is shorthand for NewKey with int parts
func K(c Category, parts ...int) Key {
	wide := make([]int64, len(parts))
	for i, p := range parts {
		wide[i] = int64(p)
	}
	return NewKey(c, wide...)
}

// writePart appends a length-prefixed decimal so that concatenations stay unambiguous
func writePart(b *strings.Builder, v int64) {
	s := strconv.FormatInt(v, 10)
	if len(s) < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.Itoa(len(s)))
	b.WriteString(s)
}

// String returns the canonical encoding
func (k Key) String() string {
	return k.enc
}

// Allocator maps keys to ids. Not safe for concurrent use; one per export run.
type Allocator struct {
	base int64
	ids  map[Key]int64
}

// NewAllocator creates an allocator whose first id is base+1
func NewAllocator(base int64) *Allocator {
	return &Allocator{
		base: base,
		ids:  make(map[Key]int64),
	}
}

// ID returns the id for key, allocating the next one on first use
func (a *Allocator) ID(key Key) int64 {
	if id, ok := a.ids[key]; ok {
		return id
	}
	id := a.base + int64(len(a.ids)) + 1
	a.ids[key] = id
	return id
}

// Lookup returns the id of key without allocating
func (a *Allocator) Lookup(key Key) (int64, bool) {
	id, ok := a.ids[key]
	return id, ok
}

// Len returns the number of distinct keys seen
func (a *Allocator) Len() int {
	return len(a.ids)
}
