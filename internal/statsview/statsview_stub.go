//go:build !statsview
// +build !statsview

package statsview

import "io"

// Launch does nothing without the statsview build tag.
func Launch(output io.Writer) {}

// Available returns false without the statsview build tag.
func Available() bool {
	return false
}
