// Package macro stores macro scripts on disk and checks them before a run.
//
// Macros are plain Lua files kept in one directory, by default
// <UserConfigDir>/macrorunner/macros. A Store saves, loads, lists and deletes
// them by name:
//
//	store := macro.NewStore(dir)
//	if err := store.Save("wrap-lines", source); err != nil {
//	    var serr *macro.StorageError
//	    errors.As(err, &serr)
//	}
//
// # Validation
//
// Validate rejects sources that are empty or whose first line does not
// mention "macro", which guards against running the wrong file.
// ContainsUnboundedLoop is a heuristic pre-check for while and repeat loops
// that callers may report as a warning or treat as a failure.
package macro
