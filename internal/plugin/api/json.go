package api

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	lua "github.com/yuin/gopher-lua"

	plua "github.com/dshills/macrorunner/internal/plugin/lua"
)

var errInvalidJSON = errors.New("invalid JSON")

// registerJSON adds the JSON path helpers to the util table. Paths use
// gjson syntax: "a.b", "list.0", "list.#".
//
//	local name = util.json_get(doc:getText(), "package.name")
//	doc:setText(util.json_set(doc:getText(), "package.version", "2.0.0"))
func (m *UtilModule) registerJSON(L *lua.LState, mod *lua.LTable, b *plua.Bridge) {
	L.SetField(mod, "json_valid", L.NewFunction(m.jsonValid))
	L.SetField(mod, "json_get", L.NewFunction(m.jsonGet(b)))
	L.SetField(mod, "json_set", L.NewFunction(m.jsonSet(b)))
	L.SetField(mod, "json_delete", L.NewFunction(m.jsonDelete))
	L.SetField(mod, "json_format", L.NewFunction(m.jsonFormat))
}

// json_valid(str) -> bool
func (m *UtilModule) jsonValid(L *lua.LState) int {
	L.Push(lua.LBool(gjson.Valid(L.CheckString(1))))
	return 1
}

// json_get(str, path) -> value or nil
// Objects and arrays come back as tables.
func (m *UtilModule) jsonGet(b *plua.Bridge) lua.LGFunction {
	return func(L *lua.LState) int {
		res := gjson.Get(L.CheckString(1), L.CheckString(2))
		if !res.Exists() {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(b.ToLuaValue(res.Value()))
		return 1
	}
}

// json_set(str, path, value) -> string
func (m *UtilModule) jsonSet(b *plua.Bridge) lua.LGFunction {
	return func(L *lua.LState) int {
		doc := L.CheckString(1)
		path := L.CheckString(2)
		if !gjson.Valid(doc) {
			plua.RaiseError(L, fmt.Errorf("util.json_set: %w", errInvalidJSON))
			return 0
		}
		out, err := sjson.Set(doc, path, b.ToGoValue(L.Get(3)))
		if err != nil {
			plua.RaiseError(L, fmt.Errorf("util.json_set %q: %w", path, err))
			return 0
		}
		L.Push(lua.LString(out))
		return 1
	}
}

// json_delete(str, path) -> string
func (m *UtilModule) jsonDelete(L *lua.LState) int {
	doc := L.CheckString(1)
	path := L.CheckString(2)
	if !gjson.Valid(doc) {
		plua.RaiseError(L, fmt.Errorf("util.json_delete: %w", errInvalidJSON))
		return 0
	}
	out, err := sjson.Delete(doc, path)
	if err != nil {
		plua.RaiseError(L, fmt.Errorf("util.json_delete %q: %w", path, err))
		return 0
	}
	L.Push(lua.LString(out))
	return 1
}

// json_format(str, compact = false) -> string
func (m *UtilModule) jsonFormat(L *lua.LState) int {
	doc := L.CheckString(1)
	if !gjson.Valid(doc) {
		plua.RaiseError(L, fmt.Errorf("util.json_format: %w", errInvalidJSON))
		return 0
	}
	if L.OptBool(2, false) {
		L.Push(lua.LString(pretty.Ugly([]byte(doc))))
		return 1
	}
	L.Push(lua.LString(pretty.Pretty([]byte(doc))))
	return 1
}
