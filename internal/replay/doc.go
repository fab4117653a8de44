// Package replay materializes a finished run onto display surfaces.
//
// Every buffer in the registry is shown in index order. Buffer 0 goes to the
// host's primary surface, the document the macro targeted; each further
// buffer gets a new surface. A surface receives each checkpoint of its
// buffer in the order it was recorded and then the final text, each as a
// full overwrite, so the sequence of states can be watched or diffed.
//
// Surfaces provided here:
//
//   - MemorySurface records every write, for tests and dry runs
//   - FileSurface writes each state to a file atomically
//   - TerminalSurface draws each state on a tcell screen with a frame delay
//
// Tee fans one materialization out to several hosts.
package replay
