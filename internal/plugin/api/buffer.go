package api

import (
	"fmt"
	"regexp"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/macrorunner/internal/engine/buffer"
	plua "github.com/dshills/macrorunner/internal/plugin/lua"
)

const bufferHandleType = "macrorunner.buffer"

// bufferMethods are the methods of a buffer handle. Offsets are 0-based
// byte offsets; ranges are arrays of {start, end} pairs.
var bufferMethods = map[string]func(*lua.LState, *buffer.Buffer, *plua.Bridge) int{
	"getText":        bufGetText,
	"setText":        bufSetText,
	"markUndoPoint":  bufMarkUndoPoint,
	"matchNext":      bufMatchNext,
	"indexAfter":     bufIndexAfter,
	"lastIndexAfter": bufLastIndexAfter,
	"replace":        bufReplace,
	"insert":         bufInsert,
	"remove":         bufRemove,
	"len":            bufLen,
	"checkpoints":    bufCheckpoints,
	"setDebugMode":   bufSetDebugMode,
	"isDebugMode":    bufIsDebugMode,
}

// newBufferHandle wraps b as userdata with the buffer methods.
func newBufferHandle(L *lua.LState, b *buffer.Buffer, bridge *plua.Bridge) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = b
	L.SetMetatable(ud, bufferMetatable(L, bridge))
	return ud
}

func bufferMetatable(L *lua.LState, bridge *plua.Bridge) *lua.LTable {
	mt := L.NewTypeMetatable(bufferHandleType)
	if mt.RawGetString("__index") != lua.LNil {
		return mt
	}

	methods := L.NewTable()
	for name, fn := range bufferMethods {
		L.SetField(methods, name, L.NewFunction(func(L *lua.LState) int {
			return fn(L, checkBuffer(L), bridge)
		}))
	}
	L.SetField(mt, "__index", methods)
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		b := checkBuffer(L)
		L.Push(lua.LString(fmt.Sprintf("buffer(%d bytes)", b.Len())))
		return 1
	}))
	return mt
}

// checkBuffer returns the buffer behind the receiver.
func checkBuffer(L *lua.LState) *buffer.Buffer {
	ud := L.CheckUserData(1)
	b, ok := ud.Value.(*buffer.Buffer)
	if !ok {
		L.ArgError(1, "buffer expected, call methods with ':'")
		return nil
	}
	return b
}

// getText() -> string
func bufGetText(L *lua.LState, b *buffer.Buffer, _ *plua.Bridge) int {
	L.Push(lua.LString(b.Text()))
	return 1
}

// setText(text)
// Overwrites the whole buffer. In debug mode the old text is checkpointed.
func bufSetText(L *lua.LState, b *buffer.Buffer, _ *plua.Bridge) int {
	b.SetText(L.CheckString(2))
	return 0
}

// markUndoPoint()
func bufMarkUndoPoint(_ *lua.LState, b *buffer.Buffer, _ *plua.Bridge) int {
	b.MarkUndoPoint()
	return 0
}

// matchNext(pattern, position = 0) -> match | nil
// pattern is a string matched verbatim or a regex from util.regex.
func bufMatchNext(L *lua.LState, b *buffer.Buffer, bridge *plua.Bridge) int {
	var re *regexp.Regexp
	switch p := L.Get(2).(type) {
	case lua.LString:
		re = buffer.Literal(string(p))
	case *lua.LUserData:
		r, ok := p.Value.(*regexp.Regexp)
		if !ok {
			L.ArgError(2, "string or regex expected")
			return 0
		}
		re = r
	default:
		L.ArgError(2, "string or regex expected")
		return 0
	}

	m, ok := b.MatchNext(re, L.OptInt(3, 0))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(matchToTable(L, m, bridge))
	return 1
}

// matchToTable converts a match to
// {index=, ["end"]=, value=, groups={captures...}, named={...}}.
func matchToTable(L *lua.LState, m buffer.Match, bridge *plua.Bridge) *lua.LTable {
	t := L.CreateTable(0, 5)
	t.RawSetString("index", lua.LNumber(m.Index))
	t.RawSetString("end", lua.LNumber(m.End))
	t.RawSetString("value", lua.LString(m.Value))
	t.RawSetString("groups", bridge.StringsToTable(m.Groups[1:]))
	t.RawSetString("named", bridge.StringMapToTable(m.Named))
	return t
}

// indexAfter(literal, position = 0) -> integer
func bufIndexAfter(L *lua.LState, b *buffer.Buffer, _ *plua.Bridge) int {
	L.Push(lua.LNumber(b.IndexAfter(L.CheckString(2), L.OptInt(3, 0))))
	return 1
}

// lastIndexAfter(literal, position = -1) -> integer
func bufLastIndexAfter(L *lua.LState, b *buffer.Buffer, _ *plua.Bridge) int {
	L.Push(lua.LNumber(b.LastIndexAfter(L.CheckString(2), L.OptInt(3, -1))))
	return 1
}

// replace(ranges, replacements) -> ranges
// Applies every replacement against the current text in one pass and
// returns where each replacement ended up, in argument order.
func bufReplace(L *lua.LState, b *buffer.Buffer, bridge *plua.Bridge) int {
	ranges := checkRanges(L, 2, bridge)
	texts, err := bridge.TableToStrings(L.CheckTable(3))
	if err != nil {
		L.ArgError(3, err.Error())
		return 0
	}

	out, err := b.Replace(ranges, texts)
	return pushRanges(L, out, err, bridge)
}

// insert(positions, texts) -> ranges
func bufInsert(L *lua.LState, b *buffer.Buffer, bridge *plua.Bridge) int {
	positions, err := bridge.TableToInts(L.CheckTable(2))
	if err != nil {
		L.ArgError(2, err.Error())
		return 0
	}
	texts, err := bridge.TableToStrings(L.CheckTable(3))
	if err != nil {
		L.ArgError(3, err.Error())
		return 0
	}

	out, err := b.Insert(positions, texts)
	return pushRanges(L, out, err, bridge)
}

// remove(ranges) -> ranges
func bufRemove(L *lua.LState, b *buffer.Buffer, bridge *plua.Bridge) int {
	out, err := b.Remove(checkRanges(L, 2, bridge))
	return pushRanges(L, out, err, bridge)
}

// len() -> integer
func bufLen(L *lua.LState, b *buffer.Buffer, _ *plua.Bridge) int {
	L.Push(lua.LNumber(b.Len()))
	return 1
}

// checkpoints() -> {string...}
func bufCheckpoints(L *lua.LState, b *buffer.Buffer, bridge *plua.Bridge) int {
	L.Push(bridge.StringsToTable(b.Checkpoints()))
	return 1
}

// setDebugMode(on)
func bufSetDebugMode(L *lua.LState, b *buffer.Buffer, _ *plua.Bridge) int {
	b.SetDebugMode(L.CheckBool(2))
	return 0
}

// isDebugMode() -> bool
func bufIsDebugMode(L *lua.LState, b *buffer.Buffer, _ *plua.Bridge) int {
	L.Push(lua.LBool(b.DebugMode()))
	return 1
}

func checkRanges(L *lua.LState, n int, bridge *plua.Bridge) []buffer.Range {
	pairs, err := bridge.TableToPairs(L.CheckTable(n))
	if err != nil {
		L.ArgError(n, err.Error())
		return nil
	}
	return buffer.Ranges(pairs...)
}

func pushRanges(L *lua.LState, ranges []buffer.Range, err error, bridge *plua.Bridge) int {
	if err != nil {
		plua.RaiseError(L, err)
		return 0
	}
	pairs := make([][2]int, len(ranges))
	for i, r := range ranges {
		pairs[i] = [2]int{r.Start, r.End}
	}
	L.Push(bridge.PairsToTable(pairs))
	return 1
}
