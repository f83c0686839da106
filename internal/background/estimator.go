// Package background builds a noise-suppressed reference image from a burst
// of raw frames. The per-pixel temporal median keeps the estimate stable
// even if the subject briefly crosses the frame during capture.
package background

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	"cloak-cam/internal/capture"
)

// ErrCapture indicates the frame source stayed unavailable past the retry
// budget, or broke its contract mid-capture. The whole capture attempt is
// abandoned; the caller may prompt and retry from scratch.
var ErrCapture = errors.New("background capture failed")

// maxPullRetries bounds how often a single frame slot is retried before the
// capture attempt fails.
const maxPullRetries = 5

// Reference is a finalized background estimate. It is immutable: a recapture
// produces a brand-new Reference, never an in-place update.
type Reference struct {
	mat gocv.Mat
}

// Mat exposes the underlying pixels. Callers must not modify or close them.
func (r *Reference) Mat() gocv.Mat {
	return r.mat
}

// Dims returns the reference size in pixels.
func (r *Reference) Dims() (width, height int) {
	return r.mat.Cols(), r.mat.Rows()
}

// Close releases the backing pixels.
func (r *Reference) Close() {
	r.mat.Close()
}

// Progress is invoked after each accumulated frame, with the frame that was
// just added. The frame is only valid for the duration of the call.
type Progress func(done, total int, frame gocv.Mat)

// Capture pulls frameCount frames from src and reduces them to a per-pixel
// temporal median. It blocks until the capture completes or fails. Transient
// pull failures are retried on the same slot up to maxPullRetries; the
// accumulated count never advances on a failed pull.
func Capture(src capture.Source, frameCount int, progress Progress) (*Reference, error) {
	if frameCount <= 0 {
		return nil, fmt.Errorf("background frame count must be positive, got %d", frameCount)
	}

	buf := newRing(frameCount)
	rows, cols := 0, 0
	matType := gocv.MatTypeCV8UC3

	for buf.size() < frameCount {
		frame, err := pullWithRetry(src)
		if err != nil {
			return nil, err
		}
		if rows == 0 {
			rows, cols, matType = frame.Rows(), frame.Cols(), frame.Type()
		} else if frame.Rows() != rows || frame.Cols() != cols || frame.Type() != matType {
			w, h, ft := frame.Cols(), frame.Rows(), frame.Type()
			frame.Close()
			return nil, fmt.Errorf("frame format changed mid-capture (%dx%d type %d, expected %dx%d type %d): %w",
				w, h, ft, cols, rows, matType, ErrCapture)
		}
		buf.add(frame.ToBytes())
		if progress != nil {
			progress(buf.size(), frameCount, frame)
		}
		frame.Close()
	}

	mat, err := gocv.NewMatFromBytes(rows, cols, matType, temporalMedian(buf.frames()))
	if err != nil {
		return nil, fmt.Errorf("finalize reference: %w", err)
	}
	return &Reference{mat: mat}, nil
}

// pullWithRetry pulls one frame, retrying transient failures up to the
// budget. Failures are logged, not fatal, until the budget is spent.
func pullWithRetry(src capture.Source) (gocv.Mat, error) {
	var lastErr error
	for attempt := 1; attempt <= maxPullRetries; attempt++ {
		frame, err := src.Pull()
		if err == nil && !frame.Empty() {
			return frame, nil
		}
		frame.Close()
		if err == nil {
			err = capture.ErrAcquisition
		}
		lastErr = err
		log.Printf("background: pull attempt %d/%d failed: %v", attempt, maxPullRetries, err)
	}
	return gocv.NewMat(), fmt.Errorf("frame source unavailable after %d attempts (last: %v): %w",
		maxPullRetries, lastErr, ErrCapture)
}

// temporalMedian reduces the buffered frames to one byte plane, taking the
// empirical 0.5 quantile of each byte position across frames. The reduction
// is order-independent: permuting the input frames yields identical output.
func temporalMedian(frames [][]byte) []byte {
	out := make([]byte, len(frames[0]))
	sample := make([]float64, len(frames))
	for i := range out {
		for k, f := range frames {
			sample[k] = float64(f[i])
		}
		sort.Float64s(sample)
		out[i] = byte(stat.Quantile(0.5, stat.Empirical, sample, nil))
	}
	return out
}
