package capture

import "gocv.io/x/gocv"

// Synthetic is a scripted frame source backed by a generator function,
// used by tests and by cmd/record's offline mode. The generator receives a
// monotonically increasing tick number and returns the frame for that tick,
// or an error to simulate an acquisition failure.
type Synthetic struct {
	gen  func(tick int) (gocv.Mat, error)
	tick int
}

// NewSynthetic wraps gen as a Source.
func NewSynthetic(gen func(tick int) (gocv.Mat, error)) *Synthetic {
	return &Synthetic{gen: gen}
}

// Pull returns the next scripted frame.
func (s *Synthetic) Pull() (gocv.Mat, error) {
	m, err := s.gen(s.tick)
	s.tick++
	return m, err
}

// Close is a no-op; the generator owns no resources.
func (s *Synthetic) Close() error {
	return nil
}
