package api

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rivo/uniseg"
	lua "github.com/yuin/gopher-lua"

	plua "github.com/dshills/macrorunner/internal/plugin/lua"
)

const regexType = "macrorunner.regex"

// UtilModule implements the `util` helper namespace.
type UtilModule struct{}

// NewUtilModule creates a new util module.
func NewUtilModule() *UtilModule {
	return &UtilModule{}
}

// Name returns the parameter name.
func (m *UtilModule) Name() string {
	return "util"
}

// Value builds the util table.
func (m *UtilModule) Value(state *plua.State) (lua.LValue, error) {
	L := state.LuaState()
	mod := L.NewTable()

	// String utilities
	L.SetField(mod, "split", L.NewFunction(m.split))
	L.SetField(mod, "trim", L.NewFunction(m.trim))
	L.SetField(mod, "trim_left", L.NewFunction(m.trimLeft))
	L.SetField(mod, "trim_right", L.NewFunction(m.trimRight))
	L.SetField(mod, "starts_with", L.NewFunction(m.startsWith))
	L.SetField(mod, "ends_with", L.NewFunction(m.endsWith))
	L.SetField(mod, "contains", L.NewFunction(m.contains))
	L.SetField(mod, "lines", L.NewFunction(m.lines))
	L.SetField(mod, "join", L.NewFunction(m.join))
	L.SetField(mod, "upper", L.NewFunction(m.upper))
	L.SetField(mod, "lower", L.NewFunction(m.lower))
	L.SetField(mod, "repeat_str", L.NewFunction(m.repeatStr))
	L.SetField(mod, "graphemes", L.NewFunction(m.graphemes))
	L.SetField(mod, "width", L.NewFunction(m.width))

	// Patterns
	L.SetField(mod, "escape", L.NewFunction(m.escape))
	L.SetField(mod, "escape_pattern", L.NewFunction(m.escapePattern))
	L.SetField(mod, "regex", L.NewFunction(m.regex))

	// JSON
	m.registerJSON(L, mod, state.Bridge())

	// Table utilities
	L.SetField(mod, "keys", L.NewFunction(m.keys))
	L.SetField(mod, "values", L.NewFunction(m.values))
	L.SetField(mod, "merge", L.NewFunction(m.merge))
	L.SetField(mod, "is_empty", L.NewFunction(m.isEmpty))
	L.SetField(mod, "len", L.NewFunction(m.tableLen))

	return mod, nil
}

// split(str, sep) -> {parts}
func (m *UtilModule) split(L *lua.LState) int {
	L.Push(stringsTable(L, strings.Split(L.CheckString(1), L.CheckString(2))))
	return 1
}

// trim(str) -> string
func (m *UtilModule) trim(L *lua.LState) int {
	L.Push(lua.LString(strings.TrimSpace(L.CheckString(1))))
	return 1
}

// trim_left(str) -> string
func (m *UtilModule) trimLeft(L *lua.LState) int {
	L.Push(lua.LString(strings.TrimLeft(L.CheckString(1), " \t\n\r")))
	return 1
}

// trim_right(str) -> string
func (m *UtilModule) trimRight(L *lua.LState) int {
	L.Push(lua.LString(strings.TrimRight(L.CheckString(1), " \t\n\r")))
	return 1
}

// starts_with(str, prefix) -> bool
func (m *UtilModule) startsWith(L *lua.LState) int {
	L.Push(lua.LBool(strings.HasPrefix(L.CheckString(1), L.CheckString(2))))
	return 1
}

// ends_with(str, suffix) -> bool
func (m *UtilModule) endsWith(L *lua.LState) int {
	L.Push(lua.LBool(strings.HasSuffix(L.CheckString(1), L.CheckString(2))))
	return 1
}

// contains(str, substr) -> bool
func (m *UtilModule) contains(L *lua.LState) int {
	L.Push(lua.LBool(strings.Contains(L.CheckString(1), L.CheckString(2))))
	return 1
}

// lines(str) -> {lines}
// Splits on \n and \r\n.
func (m *UtilModule) lines(L *lua.LState) int {
	normalized := strings.ReplaceAll(L.CheckString(1), "\r\n", "\n")
	L.Push(stringsTable(L, strings.Split(normalized, "\n")))
	return 1
}

// join(tbl, sep) -> string
// Joins the array part of tbl in order.
func (m *UtilModule) join(L *lua.LState) int {
	tbl := L.CheckTable(1)
	sep := L.OptString(2, "")

	n := tbl.Len()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.ToStringMeta(tbl.RawGetInt(i)).String()
	}
	L.Push(lua.LString(strings.Join(parts, sep)))
	return 1
}

// upper(str) -> string
func (m *UtilModule) upper(L *lua.LState) int {
	L.Push(lua.LString(strings.ToUpper(L.CheckString(1))))
	return 1
}

// lower(str) -> string
func (m *UtilModule) lower(L *lua.LState) int {
	L.Push(lua.LString(strings.ToLower(L.CheckString(1))))
	return 1
}

// repeat_str(str, n, sep = "") -> string
func (m *UtilModule) repeatStr(L *lua.LState) int {
	s := L.CheckString(1)
	n := L.CheckInt(2)
	sep := L.OptString(3, "")
	if n < 0 {
		L.ArgError(2, "count must be non-negative")
		return 0
	}

	parts := make([]string, n)
	for i := range parts {
		parts[i] = s
	}
	L.Push(lua.LString(strings.Join(parts, sep)))
	return 1
}

// graphemes(str) -> {clusters}
// Splits str into user-perceived characters.
func (m *UtilModule) graphemes(L *lua.LState) int {
	var clusters []string
	g := uniseg.NewGraphemes(L.CheckString(1))
	for g.Next() {
		clusters = append(clusters, g.Str())
	}
	L.Push(stringsTable(L, clusters))
	return 1
}

// width(str) -> number
// Returns the monospace display width of str.
func (m *UtilModule) width(L *lua.LState) int {
	L.Push(lua.LNumber(uniseg.StringWidth(L.CheckString(1))))
	return 1
}

// escape(str) -> string
// Escapes regular expression metacharacters for util.regex.
func (m *UtilModule) escape(L *lua.LState) int {
	L.Push(lua.LString(regexp.QuoteMeta(L.CheckString(1))))
	return 1
}

// escape_pattern(str) -> string
// Escapes special characters for Lua string patterns.
func (m *UtilModule) escapePattern(L *lua.LState) int {
	str := L.CheckString(1)

	var sb strings.Builder
	for _, r := range str {
		if strings.ContainsRune("^$()%.[]*+-?", r) {
			sb.WriteByte('%')
		}
		sb.WriteRune(r)
	}
	L.Push(lua.LString(sb.String()))
	return 1
}

// regex(expr) -> regex
// Compiles a regular expression for buffer:matchNext. Matching always
// starts from the position passed to matchNext; the regex has no state.
func (m *UtilModule) regex(L *lua.LState) int {
	expr := L.CheckString(1)
	re, err := regexp.Compile(expr)
	if err != nil {
		plua.RaiseError(L, fmt.Errorf("util.regex: %w", err))
		return 0
	}

	mt := L.NewTypeMetatable(regexType)
	if mt.RawGetString("__tostring") == lua.LNil {
		L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
			ud := L.CheckUserData(1)
			if re, ok := ud.Value.(*regexp.Regexp); ok {
				L.Push(lua.LString("regex(" + re.String() + ")"))
				return 1
			}
			L.Push(lua.LString("regex"))
			return 1
		}))
	}

	ud := L.NewUserData()
	ud.Value = re
	L.SetMetatable(ud, mt)
	L.Push(ud)
	return 1
}

// keys(tbl) -> {keys}
func (m *UtilModule) keys(L *lua.LState) int {
	tbl := L.CheckTable(1)

	result := L.NewTable()
	i := 1
	tbl.ForEach(func(key, _ lua.LValue) {
		result.RawSetInt(i, key)
		i++
	})

	L.Push(result)
	return 1
}

// values(tbl) -> {values}
func (m *UtilModule) values(L *lua.LState) int {
	tbl := L.CheckTable(1)

	result := L.NewTable()
	i := 1
	tbl.ForEach(func(_, value lua.LValue) {
		result.RawSetInt(i, value)
		i++
	})

	L.Push(result)
	return 1
}

// merge(tbl1, tbl2, ...) -> merged
// Later values override earlier ones.
func (m *UtilModule) merge(L *lua.LState) int {
	result := L.NewTable()
	for i := 1; i <= L.GetTop(); i++ {
		L.CheckTable(i).ForEach(func(key, value lua.LValue) {
			result.RawSet(key, value)
		})
	}

	L.Push(result)
	return 1
}

// is_empty(tbl) -> bool
func (m *UtilModule) isEmpty(L *lua.LState) int {
	key, _ := L.CheckTable(1).Next(lua.LNil)
	L.Push(lua.LBool(key == lua.LNil))
	return 1
}

// len(tbl) -> number
// Counts every entry, not just the array part.
func (m *UtilModule) tableLen(L *lua.LState) int {
	count := 0
	L.CheckTable(1).ForEach(func(_, _ lua.LValue) {
		count++
	})

	L.Push(lua.LNumber(count))
	return 1
}

func stringsTable(L *lua.LState, items []string) *lua.LTable {
	t := L.CreateTable(len(items), 0)
	for i, s := range items {
		t.RawSetInt(i+1, lua.LString(s))
	}
	return t
}
