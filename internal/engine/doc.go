// Package engine holds the buffer registry a macro run edits.
//
// A Registry is created per run with the host document as buffer 0:
//
//	reg := engine.NewRegistry(text, engine.WithMaxFiles(16))
//	scratch, err := reg.File(2) // creates buffers 1 and 2
//
// Buffers are only ever appended, so an index handed to a script stays valid
// for the whole run. After the run the replay package walks Buffers() in
// order to write every state back to the host.
//
// The registry itself is safe for concurrent use. The buffers it returns are
// not; a run owns them exclusively.
package engine
