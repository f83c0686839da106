// Package composite merges live frames with the background reference using
// a binary mask.
package composite

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// ErrDimensionMismatch indicates the inputs disagree on frame size. In a
// running session this means the reference is stale (the resolution changed
// after capture); the caller should force a recapture.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// Compose returns a new frame taking reference pixels where the mask is set
// and live pixels everywhere else. All three inputs must share dimensions.
// The caller owns the returned Mat. Compose reads its inputs only; it is
// safe to call concurrently with other reads.
func Compose(live, reference, mask gocv.Mat) (gocv.Mat, error) {
	lw, lh := live.Cols(), live.Rows()
	if rw, rh := reference.Cols(), reference.Rows(); rw != lw || rh != lh {
		return gocv.NewMat(), fmt.Errorf("reference %dx%d vs live %dx%d: %w",
			rw, rh, lw, lh, ErrDimensionMismatch)
	}
	if mw, mh := mask.Cols(), mask.Rows(); mw != lw || mh != lh {
		return gocv.NewMat(), fmt.Errorf("mask %dx%d vs live %dx%d: %w",
			mw, mh, lw, lh, ErrDimensionMismatch)
	}

	out := live.Clone()
	reference.CopyToWithMask(&out, mask)
	return out, nil
}
