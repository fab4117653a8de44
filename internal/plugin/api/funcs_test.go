package api

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/dshills/macrorunner/internal/engine"
	plua "github.com/dshills/macrorunner/internal/plugin/lua"
)

func TestSleep(t *testing.T) {
	start := time.Now()
	dbg := mustRun(t, engine.NewRegistry(""), `
		debug.log("before")
		sleep(20)
		debug.log("after")
	`, NewFuncModule(Sleep()))

	if got := messages(dbg); !slices.Equal(got, []string{"before", "after"}) {
		t.Errorf("unexpected log %q", got)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("expected to sleep at least 20ms, took %v", elapsed)
	}
}

func TestSleepCancelled(t *testing.T) {
	state, err := plua.NewState()
	if err != nil {
		t.Fatalf("NewState failed: %v", err)
	}
	defer state.Close()

	ns, _ := NewNamespace(NewFuncModule(Sleep()))
	fn, err := state.Compile("test", `sleep(10000)`, ns.Names()...)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	args, err := ns.Values(state)
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = state.Run(ctx, fn, args...)
	if !errors.Is(err, plua.ErrExecutionTimeout) {
		t.Errorf("expected ErrExecutionTimeout, got %v", err)
	}
}

func TestSleepBadArgument(t *testing.T) {
	_, err := runScript(t, engine.NewRegistry(""), `sleep("soon")`, NewFuncModule(Sleep()))
	if !errors.Is(err, ErrBadArgument) {
		t.Errorf("expected ErrBadArgument, got %v", err)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "header.txt"), []byte("// header\n"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	reg := engine.NewRegistry("body")
	mustRun(t, reg, `
		local doc = context:getFile(0)
		doc:insert({0}, {read_file("header.txt")})
	`, NewFuncModule(ReadFile(dir)))

	if got := reg.Primary().Text(); got != "// header\nbody" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		dir    string
		source string
		want   error
	}{
		{"outside", dir, `read_file("../secret")`, ErrOutsideDir},
		{"absolute outside", dir, `read_file("/etc/passwd")`, ErrOutsideDir},
		{"missing", dir, `read_file("nope.txt")`, os.ErrNotExist},
		{"no dir", "", `read_file("a.txt")`, ErrNoIncludeDir},
		{"bad arg", dir, `read_file(1)`, ErrBadArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runScript(t, engine.NewRegistry(""), tt.source, NewFuncModule(ReadFile(tt.dir)))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("MACRORUNNER_TEST_VISIBLE", "yes")
	t.Setenv("MACRORUNNER_TEST_HIDDEN", "no")

	dbg := mustRun(t, engine.NewRegistry(""), `
		debug.log(env("MACRORUNNER_TEST_VISIBLE"), env("MACRORUNNER_TEST_HIDDEN"))
		debug.log(env("MACRORUNNER_TEST_UNSET") == nil)
	`, NewFuncModule(Env([]string{"MACRORUNNER_TEST_VISIBLE", "MACRORUNNER_TEST_UNSET"})))

	want := []string{"yes\tnil", "true"}
	if got := messages(dbg); !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSyncFuncErrorIdentity(t *testing.T) {
	boom := errors.New("boom")
	fail := Func{
		Name: "fail",
		Fn: func(context.Context, []any) (any, error) {
			return nil, boom
		},
	}

	_, err := runScript(t, engine.NewRegistry(""), `fail()`, NewFuncModule(fail))
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestFuncArgumentsAndResult(t *testing.T) {
	sum := Func{
		Name: "sum",
		Fn: func(_ context.Context, args []any) (any, error) {
			var total int64
			for _, a := range args[0].([]any) {
				total += a.(int64)
			}
			return map[string]any{"total": total}, nil
		},
	}
	sumAsync := sum
	sumAsync.Name = "sum_async"
	sumAsync.Async = true

	dbg := mustRun(t, engine.NewRegistry(""), `
		debug.log(sum({1, 2, 3}).total, sum_async({4, 5}).total)
	`, NewFuncModule(sum), NewFuncModule(sumAsync))

	if got := messages(dbg); !slices.Equal(got, []string{"6\t9"}) {
		t.Errorf("unexpected log %q", got)
	}
}

func TestConfine(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		ok   bool
	}{
		{"a.txt", true},
		{"sub/../b.txt", true},
		{"../c.txt", false},
		{"..", false},
		{"..foo", true},
		{filepath.Join(dir, "d.txt"), true},
	}

	for _, tt := range tests {
		_, err := confine(dir, tt.name)
		if (err == nil) != tt.ok {
			t.Errorf("confine(%q): expected ok=%v, got %v", tt.name, tt.ok, err)
		}
	}
}
