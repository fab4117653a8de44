// Package plugin runs macro scripts.
//
// A Host takes a script and the text of the document it targets, checks
// the script, and runs it in a fresh sandboxed Lua state against a fresh
// buffer registry:
//
//	host := plugin.NewHost(
//	    plugin.WithLogger(logger),
//	    plugin.WithFuncs(api.Sleep(), api.Env(allowed)),
//	)
//	res, err := host.Run(ctx, plugin.Request{
//	    Name:       "wrap-lines",
//	    Source:     source,
//	    TargetText: target,
//	})
//	if err != nil {
//	    var serr *plugin.ScriptError
//	    if errors.As(err, &serr) {
//	        // compile or run failure, nothing to materialize
//	    }
//	    return err
//	}
//	err = replay.Materialize(ctx, res.Registry, surfaces)
//
// The script sees the parameters context, debug and util followed by any
// functions passed with WithFuncs. See package api for what they provide.
//
// # Subpackages
//
//   - lua: the sandboxed state, the coroutine driver and value conversion
//   - api: the values injected into scripts
package plugin
