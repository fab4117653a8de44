package lua

import (
	"fmt"
	"reflect"
	"sort"

	lua "github.com/yuin/gopher-lua"
)

// Bridge converts values between Go and Lua.
type Bridge struct {
	L *lua.LState
}

// NewBridge creates a new Bridge for the given Lua state.
func NewBridge(L *lua.LState) *Bridge {
	return &Bridge{L: L}
}

// ToGoValue converts a Lua value to a Go value. Array-like tables become
// []any, other tables map[string]any. Cycles convert to nil.
func (b *Bridge) ToGoValue(lv lua.LValue) any {
	return b.toGo(lv, make(map[*lua.LTable]bool))
}

func (b *Bridge) toGo(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case nil, *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		defer delete(visited, v)
		return b.tableToGo(v, visited)
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

func (b *Bridge) tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	if n, ok := arrayLen(t); ok {
		arr := make([]any, n)
		for i := 1; i <= n; i++ {
			arr[i-1] = b.toGo(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		m[k.String()] = b.toGo(v, visited)
	})
	return m
}

// arrayLen reports whether t is a non-empty sequence 1..n and returns n.
func arrayLen(t *lua.LTable) (int, bool) {
	count, maxN := 0, 0
	isArray := true
	t.ForEach(func(k, _ lua.LValue) {
		count++
		kn, ok := k.(lua.LNumber)
		if !ok || float64(kn) != float64(int(kn)) || kn < 1 {
			isArray = false
			return
		}
		maxN = max(maxN, int(kn))
	})
	if !isArray || maxN == 0 || count != maxN {
		return 0, false
	}
	return maxN, true
}

// ToLuaValue converts a Go value to a Lua value.
func (b *Bridge) ToLuaValue(v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return val
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []byte:
		return lua.LString(val)
	case []string:
		return b.StringsToTable(val)
	case []any:
		t := b.L.CreateTable(len(val), 0)
		for i, e := range val {
			t.RawSetInt(i+1, b.ToLuaValue(e))
		}
		return t
	case map[string]string:
		return b.StringMapToTable(val)
	case map[string]any:
		t := b.L.CreateTable(0, len(val))
		for k, e := range val {
			t.RawSetString(k, b.ToLuaValue(e))
		}
		return t
	case error:
		return lua.LString(val.Error())
	default:
		return b.reflectToLua(v)
	}
}

// reflectToLua handles the remaining numeric kinds, slices and maps.
func (b *Bridge) reflectToLua(v any) lua.LValue {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return lua.LNumber(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lua.LNumber(rv.Uint())
	case reflect.Float32:
		return lua.LNumber(rv.Float())
	case reflect.Pointer:
		if rv.IsNil() {
			return lua.LNil
		}
		return b.ToLuaValue(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		t := b.L.CreateTable(rv.Len(), 0)
		for i := 0; i < rv.Len(); i++ {
			t.RawSetInt(i+1, b.ToLuaValue(rv.Index(i).Interface()))
		}
		return t
	case reflect.Map:
		t := b.L.NewTable()
		iter := rv.MapRange()
		for iter.Next() {
			t.RawSet(b.ToLuaValue(iter.Key().Interface()), b.ToLuaValue(iter.Value().Interface()))
		}
		return t
	default:
		ud := b.L.NewUserData()
		ud.Value = v
		return ud
	}
}

// StringsToTable converts a string slice to a Lua array.
func (b *Bridge) StringsToTable(s []string) *lua.LTable {
	t := b.L.CreateTable(len(s), 0)
	for i, v := range s {
		t.RawSetInt(i+1, lua.LString(v))
	}
	return t
}

// StringMapToTable converts a string map to a Lua table.
func (b *Bridge) StringMapToTable(m map[string]string) *lua.LTable {
	t := b.L.CreateTable(0, len(m))
	for k, v := range m {
		t.RawSetString(k, lua.LString(v))
	}
	return t
}

// TableToStrings reads a Lua array of strings. Numbers are accepted and
// formatted the way Lua's tostring does.
func (b *Bridge) TableToStrings(t *lua.LTable) ([]string, error) {
	n := t.Len()
	out := make([]string, n)
	for i := 1; i <= n; i++ {
		switch v := t.RawGetInt(i).(type) {
		case lua.LString:
			out[i-1] = string(v)
		case lua.LNumber:
			out[i-1] = v.String()
		default:
			return nil, fmt.Errorf("element %d: expected string, got %s", i, v.Type())
		}
	}
	return out, nil
}

// TableToInts reads a Lua array of integers.
func (b *Bridge) TableToInts(t *lua.LTable) ([]int, error) {
	n := t.Len()
	out := make([]int, n)
	for i := 1; i <= n; i++ {
		v, err := toInt(t.RawGetInt(i))
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i-1] = v
	}
	return out, nil
}

// PairsToTable converts pairs to a Lua array of two-element arrays.
func (b *Bridge) PairsToTable(pairs [][2]int) *lua.LTable {
	t := b.L.CreateTable(len(pairs), 0)
	for i, p := range pairs {
		pt := b.L.CreateTable(2, 0)
		pt.RawSetInt(1, lua.LNumber(p[0]))
		pt.RawSetInt(2, lua.LNumber(p[1]))
		t.RawSetInt(i+1, pt)
	}
	return t
}

// TableToPairs reads a Lua array of {a, b} arrays.
func (b *Bridge) TableToPairs(t *lua.LTable) ([][2]int, error) {
	n := t.Len()
	out := make([][2]int, n)
	for i := 1; i <= n; i++ {
		pt, ok := t.RawGetInt(i).(*lua.LTable)
		if !ok || pt.Len() != 2 {
			return nil, fmt.Errorf("element %d: expected {start, end} pair", i)
		}
		for j := 0; j < 2; j++ {
			v, err := toInt(pt.RawGetInt(j + 1))
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i-1][j] = v
		}
	}
	return out, nil
}

// SortedKeys returns the string keys of t in order.
func (b *Bridge) SortedKeys(t *lua.LTable) []string {
	var keys []string
	t.ForEach(func(k, _ lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			keys = append(keys, string(ks))
		}
	})
	sort.Strings(keys)
	return keys
}

func toInt(v lua.LValue) (int, error) {
	n, ok := v.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("expected integer, got %s", v.Type())
	}
	if float64(n) != float64(int(n)) {
		return 0, fmt.Errorf("expected integer, got %v", float64(n))
	}
	return int(n), nil
}
