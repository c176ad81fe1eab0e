package script

import (
	"regexp"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// RegisterTransforms registers the tag helper functions under osmexport.transforms
func RegisterTransforms(L *lua.LState) {
	transforms := L.NewTable()

	L.SetField(transforms, "trim", L.NewFunction(luaTrim))
	L.SetField(transforms, "lower", L.NewFunction(luaLower))
	L.SetField(transforms, "upper", L.NewFunction(luaUpper))
	L.SetField(transforms, "clean_spaces", L.NewFunction(luaCleanSpaces))
	L.SetField(transforms, "truncate", L.NewFunction(luaTruncate))
	L.SetField(transforms, "parse_int", L.NewFunction(luaParseInt))
	L.SetField(transforms, "parse_bool", L.NewFunction(luaParseBool))
	L.SetField(transforms, "filter_tags", L.NewFunction(luaFilterTags))

	api, ok := L.GetGlobal("osmexport").(*lua.LTable)
	if !ok {
		api = L.NewTable()
		L.SetGlobal("osmexport", api)
	}
	L.SetField(api, "transforms", transforms)
}

func luaTrim(L *lua.LState) int {
	L.Push(lua.LString(strings.TrimSpace(L.CheckString(1))))
	return 1
}

func luaLower(L *lua.LState) int {
	L.Push(lua.LString(strings.ToLower(L.CheckString(1))))
	return 1
}

func luaUpper(L *lua.LState) int {
	L.Push(lua.LString(strings.ToUpper(L.CheckString(1))))
	return 1
}

// luaCleanSpaces collapses runs of whitespace and trims
func luaCleanSpaces(L *lua.LState) int {
	s := whitespaceRegex.ReplaceAllString(L.CheckString(1), " ")
	L.Push(lua.LString(strings.TrimSpace(s)))
	return 1
}

// luaTruncate cuts a string to at most n runes
func luaTruncate(L *lua.LState) int {
	s := L.CheckString(1)
	n := L.CheckInt(2)
	if runes := []rune(s); n >= 0 && len(runes) > n {
		s = string(runes[:n])
	}
	L.Push(lua.LString(s))
	return 1
}

// luaParseInt parses a string to an integer with an optional default
func luaParseInt(L *lua.LState) int {
	s := strings.TrimSpace(L.CheckString(1))
	def := L.OptInt64(2, 0)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		L.Push(lua.LNumber(v))
	} else if f, err := strconv.ParseFloat(s, 64); err == nil {
		L.Push(lua.LNumber(int64(f)))
	} else {
		L.Push(lua.LNumber(def))
	}
	return 1
}

// luaParseBool treats yes/true/1/on as true and no/false/0/off/"" as false
func luaParseBool(L *lua.LState) int {
	switch strings.ToLower(strings.TrimSpace(L.CheckString(1))) {
	case "no", "false", "0", "off", "":
		L.Push(lua.LFalse)
	default:
		L.Push(lua.LTrue)
	}
	return 1
}

// luaFilterTags returns a copy of tags holding only the listed keys.
// Usage: filter_tags(tags, {"name", "highway", "ref"})
func luaFilterTags(L *lua.LState) int {
	tags := L.CheckTable(1)
	keys := L.CheckTable(2)

	keep := make(map[string]bool)
	keys.ForEach(func(_, v lua.LValue) {
		if s := lua.LVAsString(v); s != "" {
			keep[s] = true
		}
	})

	result := L.NewTable()
	tags.ForEach(func(k, v lua.LValue) {
		if keep[lua.LVAsString(k)] {
			result.RawSet(k, v)
		}
	})
	L.Push(result)
	return 1
}
