package api

import (
	"errors"
	"slices"
	"testing"

	"github.com/dshills/macrorunner/internal/engine"
	"github.com/dshills/macrorunner/internal/engine/buffer"
)

func TestBufferGetSetText(t *testing.T) {
	reg := engine.NewRegistry("hello")

	dbg := mustRun(t, reg, `
		local doc = context:getFile(0)
		debug.log(doc:getText(), doc:len())
		doc:setText("bye")
	`)

	if got := messages(dbg); !slices.Equal(got, []string{"hello\t5"}) {
		t.Errorf("unexpected log %q", got)
	}
	if reg.Primary().Text() != "bye" {
		t.Errorf("expected 'bye', got %q", reg.Primary().Text())
	}
}

func TestBufferReplaceReturnsRanges(t *testing.T) {
	reg := engine.NewRegistry("hello world")

	dbg := mustRun(t, reg, `
		local doc = context:getFile(0)
		local out = doc:replace({{6, 11}, {0, 5}}, {"there", "hi"})
		for _, r in ipairs(out) do
			debug.log(r[1], r[2])
		end
	`)

	if reg.Primary().Text() != "hi there" {
		t.Errorf("expected 'hi there', got %q", reg.Primary().Text())
	}
	want := []string{"3\t8", "0\t2"}
	if got := messages(dbg); !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBufferInsertRemove(t *testing.T) {
	reg := engine.NewRegistry("abcdef")

	mustRun(t, reg, `
		local doc = context:getFile(0)
		doc:insert({0, 6}, {"[", "]"})
		doc:remove({{3, 5}})
	`)

	if got := reg.Primary().Text(); got != "[abdef]" {
		t.Errorf("expected '[abdef]', got %q", got)
	}
}

func TestBufferConflictKeepsIdentity(t *testing.T) {
	reg := engine.NewRegistry("hello world")

	_, err := runScript(t, reg, `
		context:getFile(0):replace({{0, 5}, {3, 8}}, {"a", "b"})
	`)

	var conflict *buffer.RangeConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected RangeConflictError, got %v", err)
	}
	if conflict.First != 0 || conflict.Second != 1 {
		t.Errorf("expected indices 0 and 1, got %d and %d", conflict.First, conflict.Second)
	}
	if reg.Primary().Text() != "hello world" {
		t.Errorf("content changed on conflict: %q", reg.Primary().Text())
	}
}

func TestBufferConflictCatchable(t *testing.T) {
	reg := engine.NewRegistry("hello")

	dbg := mustRun(t, reg, `
		local ok, err = pcall(function()
			context:getFile(0):remove({{0, 3}, {1, 2}})
		end)
		debug.log(ok, util.contains(tostring(err), "overlaps"))
	`)

	if got := messages(dbg); !slices.Equal(got, []string{"false\ttrue"}) {
		t.Errorf("unexpected log %q", got)
	}
}

func TestBufferMatchNext(t *testing.T) {
	reg := engine.NewRegistry("name: Ada, name: Bob")

	dbg := mustRun(t, reg, `
		local doc = context:getFile(0)
		local re = util.regex("name: (?P<who>\\w+)")
		local pos = 0
		while true do
			local m = doc:matchNext(re, pos)
			if not m then break end
			debug.log(m.index, m["end"], m.value, m.groups[1], m.named.who)
			pos = m["end"]
		end
	`)

	want := []string{
		"0\t9\tname: Ada\tAda\tAda",
		"11\t20\tname: Bob\tBob\tBob",
	}
	if got := messages(dbg); !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBufferMatchNextLiteralString(t *testing.T) {
	reg := engine.NewRegistry("a.b (c)")

	dbg := mustRun(t, reg, `
		local doc = context:getFile(0)
		local m = doc:matchNext("(c)")
		debug.log(m.index, #m.groups)
		debug.log(doc:matchNext(".").index, doc:matchNext(".", 2) == nil)
		debug.log(doc:matchNext("zzz") == nil)
	`)

	want := []string{"4\t0", "1\ttrue", "true"}
	if got := messages(dbg); !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBufferMatchNextBadPattern(t *testing.T) {
	reg := engine.NewRegistry("x")

	if _, err := runScript(t, reg, `context:getFile(0):matchNext(42)`); err == nil {
		t.Error("expected an argument error")
	}
}

func TestBufferIndexSearch(t *testing.T) {
	reg := engine.NewRegistry("abcabc")

	dbg := mustRun(t, reg, `
		local doc = context:getFile(0)
		debug.log(doc:indexAfter("abc"), doc:indexAfter("abc", 1), doc:indexAfter("x"))
		debug.log(doc:lastIndexAfter("abc"), doc:lastIndexAfter("abc", 4))
	`)

	want := []string{"3\t6\t-1", "6\t3"}
	if got := messages(dbg); !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBufferCheckpoints(t *testing.T) {
	reg := engine.NewRegistry("v0")

	dbg := mustRun(t, reg, `
		local doc = context:getFile(0)
		doc:markUndoPoint()
		doc:setText("v1")
		doc:setDebugMode(true)
		debug.log(doc:isDebugMode())
		doc:setText("v2")
		debug.log(util.join(doc:checkpoints(), ","))
	`)

	want := []string{"true", "v0,v1"}
	if got := messages(dbg); !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBufferToString(t *testing.T) {
	reg := engine.NewRegistry("hello")

	dbg := mustRun(t, reg, `debug.log(tostring(context:getFile(0)))`)

	if got := messages(dbg); !slices.Equal(got, []string{"buffer(5 bytes)"}) {
		t.Errorf("unexpected log %q", got)
	}
}

func TestBufferDotCallFails(t *testing.T) {
	reg := engine.NewRegistry("hello")

	if _, err := runScript(t, reg, `context:getFile(0).getText()`); err == nil {
		t.Error("expected an error calling a method without ':'")
	}
}
