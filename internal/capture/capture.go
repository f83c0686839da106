// Package capture provides frame acquisition for the compositing pipeline.
package capture

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// ErrAcquisition indicates a transient failure to read a frame. Callers may
// retry the pull; persistent failure is for them to decide.
var ErrAcquisition = errors.New("frame acquisition failed")

// Source yields frames at a fixed resolution. Pulled Mats are owned by the
// caller, who must Close them.
type Source interface {
	Pull() (gocv.Mat, error)
	Close() error
}

// Webcam reads frames from a local camera device, mirrored horizontally for
// a natural webcam feel.
type Webcam struct {
	device *gocv.VideoCapture
	index  int
}

// OpenWebcam opens the camera at index and requests the given resolution.
// The device may deliver a different size; check Resolution for what it
// actually produces.
func OpenWebcam(index, width, height int) (*Webcam, error) {
	device, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", index, err)
	}
	device.Set(gocv.VideoCaptureFrameWidth, float64(width))
	device.Set(gocv.VideoCaptureFrameHeight, float64(height))
	device.Set(gocv.VideoCaptureFPS, 30)
	return &Webcam{device: device, index: index}, nil
}

// Resolution returns the frame size the device actually delivers.
func (w *Webcam) Resolution() (width, height int) {
	return int(w.device.Get(gocv.VideoCaptureFrameWidth)),
		int(w.device.Get(gocv.VideoCaptureFrameHeight))
}

// Pull reads the next frame. A failed or empty read is reported as
// ErrAcquisition.
func (w *Webcam) Pull() (gocv.Mat, error) {
	img := gocv.NewMat()
	if ok := w.device.Read(&img); !ok || img.Empty() {
		img.Close()
		return gocv.NewMat(), fmt.Errorf("camera %d: %w", w.index, ErrAcquisition)
	}
	gocv.Flip(img, &img, 1)
	return img, nil
}

// Close releases the camera device.
func (w *Webcam) Close() error {
	return w.device.Close()
}
