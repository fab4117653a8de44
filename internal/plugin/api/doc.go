// Package api provides the values injected into a macro script.
//
// A script is compiled as a function whose parameters are the names of a
// Namespace, in order. The standard namespace is:
//
//   - context: the buffer registry (getFile, fileCount)
//   - debug: the side channel (log, warn, inspect, entries); print writes here too
//   - util: string, table, pattern and JSON path helpers
//
// Hosts may append Func modules after these, such as sleep, read_file and env.
//
// # Modules
//
// Each entry implements the Module interface:
//
//	type Module interface {
//	    Name() string
//	    Value(state *plua.State) (lua.LValue, error)
//	}
//
// Value is called once per run, after the state is created and before the
// script function is invoked. Names are checked against Lua keywords and
// the sandbox builtins when added to a Namespace.
//
// # Buffers
//
// context:getFile(i) returns a buffer handle. Offsets are 0-based byte
// offsets and ranges are {start, end} pairs with end exclusive:
//
//	local doc = context:getFile(0)
//	local m = doc:matchNext(util.regex("(\\w+)@"), 0)
//	if m then
//	    doc:replace({{m.index, m["end"]}}, {"<" .. m.value .. ">"})
//	end
//
// Errors from buffer operations are raised into the script. Uncaught, they
// reach the host with their Go identity intact, so a RangeConflictError can
// be matched with errors.As.
//
// # Usage
//
//	ns, err := api.NewNamespace(
//	    api.NewContextModule(reg),
//	    api.NewDebugModule(logger),
//	    api.NewUtilModule(),
//	    api.NewFuncModule(api.Sleep()),
//	)
//	fn, err := state.Compile("macro", source, ns.Names()...)
//	args, err := ns.Values(state)
//	_, err = state.Run(ctx, fn, args...)
package api
