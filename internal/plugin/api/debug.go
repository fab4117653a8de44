package api

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	plua "github.com/dshills/macrorunner/internal/plugin/lua"
)

// Entry levels recorded by the debug sink.
const (
	LevelLog  = "log"
	LevelWarn = "warn"
)

// maxInspectDepth bounds how deep debug.inspect descends into tables.
const maxInspectDepth = 8

// Logger receives a copy of every debug entry.
type Logger interface {
	Debug(msg string, args ...any)
}

// Entry is one message a script wrote to the debug sink.
type Entry struct {
	Level   string
	Message string
	Time    time.Time
}

// DebugModule is the script's side channel, bound as `debug`.
// The global print writes to it as well.
//
//	debug.log("found", n, "matches")
//	debug.warn("no marker in buffer 1")
//	debug.log(debug.inspect({a = 1}))
type DebugModule struct {
	mu      sync.Mutex
	entries []Entry
	logger  Logger
	now     func() time.Time
}

// NewDebugModule creates a debug sink. logger may be nil.
func NewDebugModule(logger Logger) *DebugModule {
	return &DebugModule{logger: logger, now: time.Now}
}

// Name returns the parameter name.
func (m *DebugModule) Name() string {
	return "debug"
}

// Value builds the debug table and rebinds print to it.
func (m *DebugModule) Value(state *plua.State) (lua.LValue, error) {
	L := state.LuaState()
	mod := L.NewTable()

	logFn := L.NewFunction(m.writer(LevelLog, mod))
	L.SetField(mod, "log", logFn)
	L.SetField(mod, "warn", L.NewFunction(m.writer(LevelWarn, mod)))
	L.SetField(mod, "inspect", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(Inspect(L.Get(argBase(L, mod)))))
		return 1
	}))
	L.SetField(mod, "entries", L.NewFunction(func(L *lua.LState) int {
		entries := m.Entries()
		t := L.CreateTable(len(entries), 0)
		for i, e := range entries {
			t.RawSetInt(i+1, lua.LString(e.Message))
		}
		L.Push(t)
		return 1
	}))

	state.Set("print", logFn)
	return mod, nil
}

// writer returns a function that records its arguments at level.
func (m *DebugModule) writer(level string, self lua.LValue) lua.LGFunction {
	return func(L *lua.LState) int {
		top := L.GetTop()
		parts := make([]string, 0, top)
		for i := argBase(L, self); i <= top; i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		m.Add(level, strings.Join(parts, "\t"))
		return 0
	}
}

// Add records an entry and forwards it to the logger.
func (m *DebugModule) Add(level, message string) {
	m.mu.Lock()
	m.entries = append(m.entries, Entry{Level: level, Message: message, Time: m.now()})
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.Debug("script %s: %s", level, message)
	}
}

// Entries returns a copy of every entry in order.
func (m *DebugModule) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Inspect renders a Lua value as readable Lua-like text. Table keys are
// sorted and cycles print as <cycle>.
func Inspect(v lua.LValue) string {
	var sb strings.Builder
	inspect(&sb, v, make(map[*lua.LTable]bool), 0)
	return sb.String()
}

func inspect(sb *strings.Builder, v lua.LValue, seen map[*lua.LTable]bool, depth int) {
	switch val := v.(type) {
	case lua.LString:
		sb.WriteString(strconv.Quote(string(val)))
	case *lua.LTable:
		if seen[val] {
			sb.WriteString("<cycle>")
			return
		}
		if depth >= maxInspectDepth {
			sb.WriteString("{...}")
			return
		}
		seen[val] = true
		defer delete(seen, val)
		inspectTable(sb, val, seen, depth)
	case *lua.LUserData:
		if s, ok := val.Value.(fmt.Stringer); ok {
			sb.WriteString(s.String())
			return
		}
		fmt.Fprintf(sb, "<%T>", val.Value)
	default:
		sb.WriteString(v.String())
	}
}

func inspectTable(sb *strings.Builder, t *lua.LTable, seen map[*lua.LTable]bool, depth int) {
	n := t.Len()

	type field struct {
		key   string
		value lua.LValue
	}
	var fields []field
	t.ForEach(func(k, v lua.LValue) {
		if kn, ok := k.(lua.LNumber); ok {
			if i := int(kn); float64(i) == float64(kn) && i >= 1 && i <= n {
				return
			}
		}
		key := k.String()
		if _, ok := k.(lua.LString); !ok || !isIdent(key) {
			var kb strings.Builder
			inspect(&kb, k, seen, depth+1)
			key = "[" + kb.String() + "]"
		}
		fields = append(fields, field{key: key, value: v})
	})
	sort.Slice(fields, func(i, j int) bool { return fields[i].key < fields[j].key })

	if n == 0 && len(fields) == 0 {
		sb.WriteString("{}")
		return
	}

	sb.WriteString("{")
	first := true
	sep := func() {
		if !first {
			sb.WriteString(", ")
		}
		first = false
	}
	for i := 1; i <= n; i++ {
		sep()
		inspect(sb, t.RawGetInt(i), seen, depth+1)
	}
	for _, f := range fields {
		sep()
		sb.WriteString(f.key)
		sb.WriteString(" = ")
		inspect(sb, f.value, seen, depth+1)
	}
	sb.WriteString("}")
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9') {
			continue
		}
		return false
	}
	return true
}
