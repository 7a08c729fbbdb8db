// Package statsview serves live runtime statistics (heap, goroutines, GC
// pauses) over HTTP while the emulator runs. It is only built with the
// statsview build tag; otherwise Available returns false and Launch does
// nothing.
package statsview
