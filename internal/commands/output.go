package commands

import "io"

// Output returns w, or io.Discard when w is nil, so messages built without
// a writer stay quiet.
func Output(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
