// Package mask builds the binary cloak mask for a frame: HSV color-range
// segmentation followed by morphological cleanup.
package mask

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"cloak-cam/internal/profile"
)

// ErrInvalidFrame indicates a malformed or empty frame reached the builder,
// which means the frame source broke its contract. The tick should be
// dropped, not the pipeline.
var ErrInvalidFrame = errors.New("invalid frame")

const (
	kernelSize     = 3
	openIterations = 2
)

// Build converts frame from BGR to HSV, marks every pixel falling inside any
// of the profile's ranges, and cleans the result. The returned mask is a
// single-channel Mat of the frame's size, 255 where the cloak is. The caller
// owns it. Build is a pure function of its inputs.
func Build(frame gocv.Mat, p profile.Profile) (gocv.Mat, error) {
	if frame.Empty() || frame.Rows() == 0 || frame.Cols() == 0 {
		return gocv.NewMat(), fmt.Errorf("%w: empty frame", ErrInvalidFrame)
	}
	if err := p.Validate(); err != nil {
		return gocv.NewMat(), err
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(frame, &hsv, gocv.ColorBGRToHSV)

	total := gocv.NewMat()
	part := gocv.NewMat()
	defer part.Close()
	for i, r := range p.Ranges {
		lower := gocv.NewScalar(r.HueMin, r.SatMin, r.ValMin, 0)
		upper := gocv.NewScalar(r.HueMax, r.SatMax, r.ValMax, 0)
		if i == 0 {
			gocv.InRangeWithScalar(hsv, lower, upper, &total)
			continue
		}
		gocv.InRangeWithScalar(hsv, lower, upper, &part)
		gocv.BitwiseOr(total, part, &total)
	}

	clean(&total)
	return total, nil
}

// clean suppresses speckle false positives and fills small holes. Opening
// runs first so noise is removed before the dilation can amplify it.
func clean(m *gocv.Mat) {
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(kernelSize, kernelSize))
	defer kernel.Close()

	for i := 0; i < openIterations; i++ {
		gocv.MorphologyEx(*m, m, gocv.MorphOpen, kernel)
	}
	gocv.Dilate(*m, m, kernel)
}

// Coverage returns the fraction of mask pixels marked occupied, in [0, 1].
func Coverage(m gocv.Mat) float64 {
	if m.Empty() {
		return 0
	}
	return float64(gocv.CountNonZero(m)) / float64(m.Rows()*m.Cols())
}
