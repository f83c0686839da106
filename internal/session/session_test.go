package session

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"

	"cloak-cam/internal/capture"
	"cloak-cam/internal/composite"
	"cloak-cam/internal/profile"
)

// sceneSource is a synthetic camera whose output can be reconfigured
// mid-test, standing in for lighting changes, the cloak entering frame, or
// a resolution change.
type sceneSource struct {
	width, height int
	b, g, r       byte
	// cloak paints a red square in the middle of each frame when set
	cloak bool
}

func (s *sceneSource) frame() (gocv.Mat, error) {
	data := make([]byte, s.width*s.height*3)
	for i := 0; i < len(data); i += 3 {
		data[i], data[i+1], data[i+2] = s.b, s.g, s.r
	}
	if s.cloak {
		x0, y0 := s.width/4, s.height/4
		x1, y1 := 3*s.width/4, 3*s.height/4
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				i := (y*s.width + x) * 3
				data[i], data[i+1], data[i+2] = 0, 0, 255
			}
		}
	}
	return gocv.NewMatFromBytes(s.height, s.width, gocv.MatTypeCV8UC3, data)
}

func (s *sceneSource) source() capture.Source {
	return capture.NewSynthetic(func(int) (gocv.Mat, error) { return s.frame() })
}

func mustProfile(t *testing.T, name string) profile.Profile {
	t.Helper()
	p, err := profile.Resolve(name)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func newTestSession(t *testing.T, scene *sceneSource, frameCount int) *Session {
	t.Helper()
	sess, err := New(scene.source(), Config{Profile: mustProfile(t, "red"), FrameCount: frameCount})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sess.Close() })
	return sess
}

func TestNewRejectsBadConfig(t *testing.T) {
	scene := &sceneSource{width: 4, height: 4}
	if _, err := New(scene.source(), Config{Profile: mustProfile(t, "red"), FrameCount: 0}); err == nil {
		t.Error("zero frame count should be rejected")
	}
	if _, err := New(scene.source(), Config{Profile: profile.Profile{Name: "x"}, FrameCount: 5}); err == nil {
		t.Error("invalid profile should be rejected")
	}
}

func TestTickWithoutReference(t *testing.T) {
	scene := &sceneSource{width: 8, height: 8, b: 100, g: 100, r: 100}
	sess := newTestSession(t, scene, 4)

	if _, err := sess.Tick(); !errors.Is(err, ErrNoReference) {
		t.Fatalf("expected ErrNoReference, got %v", err)
	}
}

func TestTickHidesCloak(t *testing.T) {
	// Gray background: low saturation, so the red profile never matches it.
	scene := &sceneSource{width: 16, height: 16, b: 100, g: 100, r: 100}
	sess := newTestSession(t, scene, 4)

	if err := sess.CaptureBackground(nil); err != nil {
		t.Fatal(err)
	}

	scene.cloak = true
	res, err := sess.Tick()
	if err != nil {
		t.Fatal(err)
	}
	defer res.Output.Close()

	if res.Coverage <= 0 {
		t.Error("cloak in frame but coverage is zero")
	}

	// The cloak area must show the captured background, so every pixel of
	// the output should be the background gray.
	data := res.Output.ToBytes()
	for i := 0; i < len(data); i += 3 {
		if data[i] != 100 || data[i+1] != 100 || data[i+2] != 100 {
			t.Fatalf("pixel %d = (%d, %d, %d), cloak not hidden", i/3, data[i], data[i+1], data[i+2])
		}
	}
}

func TestTickLeavesSceneWithoutCloak(t *testing.T) {
	scene := &sceneSource{width: 12, height: 12, b: 100, g: 100, r: 100}
	sess := newTestSession(t, scene, 4)

	if err := sess.CaptureBackground(nil); err != nil {
		t.Fatal(err)
	}

	res, err := sess.Tick()
	if err != nil {
		t.Fatal(err)
	}
	defer res.Output.Close()

	if res.Coverage != 0 {
		t.Errorf("no cloak in frame but coverage = %v", res.Coverage)
	}
}

// A recapture must fully replace the reference; no trace of the old scene
// may remain.
func TestRecaptureReplacesReference(t *testing.T) {
	scene := &sceneSource{width: 8, height: 8, b: 10, g: 10, r: 10}
	sess := newTestSession(t, scene, 6)

	if err := sess.CaptureBackground(nil); err != nil {
		t.Fatal(err)
	}
	refMat := sess.Reference().Mat()
	for _, v := range refMat.ToBytes() {
		if v != 10 {
			t.Fatalf("reference byte = %d, want 10", v)
		}
	}

	scene.b, scene.g, scene.r = 200, 200, 200
	if err := sess.CaptureBackground(nil); err != nil {
		t.Fatal(err)
	}
	refMat = sess.Reference().Mat()
	for _, v := range refMat.ToBytes() {
		if v != 200 {
			t.Fatalf("stale reference byte %d survived recapture", v)
		}
	}
}

// A resolution change after capture makes the reference stale; the tick must
// surface the mismatch so the controller can force a recapture.
func TestTickSurfacesDimensionMismatch(t *testing.T) {
	scene := &sceneSource{width: 8, height: 8, b: 100, g: 100, r: 100}
	sess := newTestSession(t, scene, 4)

	if err := sess.CaptureBackground(nil); err != nil {
		t.Fatal(err)
	}

	scene.width, scene.height = 12, 12
	_, err := sess.Tick()
	if !errors.Is(err, composite.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}

	// Recapturing at the new size recovers the session.
	if err := sess.CaptureBackground(nil); err != nil {
		t.Fatal(err)
	}
	res, err := sess.Tick()
	if err != nil {
		t.Fatal(err)
	}
	res.Output.Close()
}
