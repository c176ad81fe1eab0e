// Package script runs optional Lua tag scripts over an export document.
//
// A script defines any of osmexport.process_node, process_way and
// process_relation. Each is called with an object table
// { id = <number>, type = "node"|"way"|"relation", tags = { ... } } for
// every tagged feature of that type. The callback may edit object.tags in
// place or return a replacement tags table.
package script

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paulmach/osm"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/wegman-software/osmexport-go/internal/document"
)

// Runtime manages the Lua interpreter and the osmexport API
type Runtime struct {
	L               *lua.LState
	log             *zap.Logger
	processNode     lua.LValue
	processWay      lua.LValue
	processRelation lua.LValue
}

// NewRuntime creates a Lua runtime with the osmexport API registered
func NewRuntime(log *zap.Logger) *Runtime {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Runtime{
		L:   lua.NewState(),
		log: log,
	}
	r.registerAPI()
	return r
}

// Close releases Lua resources
func (r *Runtime) Close() {
	r.L.Close()
}

func (r *Runtime) registerAPI() {
	api := r.L.NewTable()
	api.RawSetString("version", lua.LString("1"))
	r.L.SetGlobal("osmexport", api)

	RegisterTransforms(r.L)

	r.L.SetGlobal("print", r.L.NewFunction(r.luaPrint))
}

// LoadFile loads and executes a Lua script file
func (r *Runtime) LoadFile(path string) error {
	if err := r.L.DoFile(path); err != nil {
		return fmt.Errorf("failed to load Lua file: %w", err)
	}
	r.extractCallbacks()
	return nil
}

// LoadString loads and executes Lua code from a string
func (r *Runtime) LoadString(code string) error {
	if err := r.L.DoString(code); err != nil {
		return fmt.Errorf("failed to load Lua code: %w", err)
	}
	r.extractCallbacks()
	return nil
}

func (r *Runtime) extractCallbacks() {
	api, ok := r.L.GetGlobal("osmexport").(*lua.LTable)
	if !ok {
		return
	}
	r.processNode = api.RawGetString("process_node")
	r.processWay = api.RawGetString("process_way")
	r.processRelation = api.RawGetString("process_relation")
}

func isFunction(v lua.LValue) bool {
	return v != nil && v.Type() == lua.LTFunction
}

// HasCallbacks reports whether the script defined any process callback
func (r *Runtime) HasCallbacks() bool {
	return isFunction(r.processNode) || isFunction(r.processWay) || isFunction(r.processRelation)
}

func (r *Runtime) luaPrint(L *lua.LState) int {
	parts := make([]string, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	r.log.Info(strings.Join(parts, "\t"), zap.String("source", "lua"))
	return 0
}

// Stats counts features whose tags a script changed
type Stats struct {
	Nodes     int
	Ways      int
	Relations int
}

// Apply runs the script callbacks over every tagged feature of doc
func (r *Runtime) Apply(doc *document.Document) (Stats, error) {
	var stats Stats
	if isFunction(r.processNode) {
		for _, n := range doc.Nodes {
			if len(n.Tags) == 0 {
				continue
			}
			tags, changed, err := r.process(r.processNode, int64(n.ID), "node", n.Tags)
			if err != nil {
				return stats, err
			}
			if changed {
				n.Tags = tags
				stats.Nodes++
			}
		}
	}
	if isFunction(r.processWay) {
		for _, w := range doc.Ways {
			if len(w.Tags) == 0 {
				continue
			}
			tags, changed, err := r.process(r.processWay, int64(w.ID), "way", w.Tags)
			if err != nil {
				return stats, err
			}
			if changed {
				w.Tags = tags
				stats.Ways++
			}
		}
	}
	if isFunction(r.processRelation) {
		for _, rel := range doc.Relations {
			if len(rel.Tags) == 0 {
				continue
			}
			tags, changed, err := r.process(r.processRelation, int64(rel.ID), "relation", rel.Tags)
			if err != nil {
				return stats, err
			}
			if changed {
				rel.Tags = tags
				stats.Relations++
			}
		}
	}
	return stats, nil
}

func (r *Runtime) process(fn lua.LValue, id int64, kind string, tags osm.Tags) (osm.Tags, bool, error) {
	tagsTbl := r.L.NewTable()
	for _, t := range tags {
		tagsTbl.RawSetString(t.Key, lua.LString(t.Value))
	}
	obj := r.L.NewTable()
	obj.RawSetString("id", lua.LNumber(id))
	obj.RawSetString("type", lua.LString(kind))
	obj.RawSetString("tags", tagsTbl)

	if err := r.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, obj); err != nil {
		return nil, false, fmt.Errorf("%s %d: process callback failed: %w", kind, id, err)
	}
	ret := r.L.Get(-1)
	r.L.Pop(1)

	result, ok := ret.(*lua.LTable)
	if !ok {
		result, ok = obj.RawGetString("tags").(*lua.LTable)
		if !ok {
			return nil, true, nil
		}
	}
	out := mergeTags(tags, tableToMap(result))
	return out, !equalTags(tags, out), nil
}

func tableToMap(tbl *lua.LTable) map[string]string {
	m := make(map[string]string)
	tbl.ForEach(func(k, v lua.LValue) {
		key, ok := k.(lua.LString)
		if !ok || v == lua.LNil {
			return
		}
		if b, isBool := v.(lua.LBool); isBool {
			if !b {
				return
			}
			m[string(key)] = "yes"
			return
		}
		m[string(key)] = lua.LVAsString(v)
	})
	return m
}

// mergeTags keeps the order of surviving keys and appends new keys sorted.
// Empty values delete the key.
func mergeTags(old osm.Tags, m map[string]string) osm.Tags {
	var out osm.Tags
	seen := make(map[string]bool, len(old))
	for _, t := range old {
		seen[t.Key] = true
		out = document.SetTag(out, t.Key, m[t.Key])
	}
	var added []string
	for k := range m {
		if !seen[k] {
			added = append(added, k)
		}
	}
	sort.Strings(added)
	for _, k := range added {
		out = document.SetTag(out, k, m[k])
	}
	return out
}

func equalTags(a, b osm.Tags) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
