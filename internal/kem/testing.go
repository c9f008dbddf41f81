package kem

import "io"

// SetRandReaderForTesting sets the random reader used when callers pass a nil reader.
// This is intended for testing only. Returns a function to restore the previous reader.
// Since this package is internal, this function cannot be accessed by external code.
func SetRandReaderForTesting(r io.Reader) func() {
	prev := randReader
	randReader = r
	return func() { randReader = prev }
}
