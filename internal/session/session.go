// Package session owns the per-run pipeline state: the frame source, the
// resolved color profile, and the current background reference. State is
// explicit here rather than ambient; every pipeline call goes through the
// Session object.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	"cloak-cam/internal/background"
	"cloak-cam/internal/capture"
	"cloak-cam/internal/composite"
	"cloak-cam/internal/mask"
	"cloak-cam/internal/profile"
)

// ErrNoReference is returned by Tick before any background has been
// captured or installed.
var ErrNoReference = errors.New("no background reference captured")

// fpsWindow is how many recent tick intervals feed the FPS estimate.
const fpsWindow = 30

// Config holds the session parameters fixed at construction.
type Config struct {
	Profile    profile.Profile
	FrameCount int // frames accumulated per background capture
}

// Result carries one tick's output. The caller owns Output and must close it.
type Result struct {
	Output   gocv.Mat
	Coverage float64 // fraction of pixels hidden by the cloak
	FPS      float64 // mean rate over the last fpsWindow ticks; 0 until warm
}

// Session drives the per-tick pipeline. The reference is the only shared
// mutable state: it is written by CaptureBackground/SetReference and read by
// Tick, with the swap atomic under the lock so a tick sees either the whole
// old reference or the whole new one.
type Session struct {
	src capture.Source
	cfg Config

	mu  sync.RWMutex
	ref *background.Reference

	// tick timing, touched only by the loop goroutine
	lastTick    time.Time
	intervals   []float64
	intervalIdx int
}

// New validates the configuration and builds a session. The source is owned
// by the session from here on and released by Close.
func New(src capture.Source, cfg Config) (*Session, error) {
	if err := cfg.Profile.Validate(); err != nil {
		return nil, fmt.Errorf("color profile: %w", err)
	}
	if cfg.FrameCount <= 0 {
		return nil, fmt.Errorf("background frame count must be positive, got %d", cfg.FrameCount)
	}
	return &Session{src: src, cfg: cfg}, nil
}

// CaptureBackground (re)builds the reference from the frame source. On
// success the previous reference is swapped out wholesale and closed; on
// failure it is left untouched.
func (s *Session) CaptureBackground(progress background.Progress) error {
	ref, err := background.Capture(s.src, s.cfg.FrameCount, progress)
	if err != nil {
		return err
	}
	s.swapReference(ref)
	return nil
}

// SetReference installs a pre-built reference, e.g. one loaded from disk.
func (s *Session) SetReference(ref *background.Reference) {
	s.swapReference(ref)
}

func (s *Session) swapReference(ref *background.Reference) {
	s.mu.Lock()
	old := s.ref
	s.ref = ref
	s.mu.Unlock()
	if old != nil {
		old.Close()
	}
}

// Reference returns the current reference, or nil before the first capture.
// The session retains ownership.
func (s *Session) Reference() *background.Reference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ref
}

// Tick runs one pipeline iteration: pull a frame, build the cloak mask,
// compose against the reference. Error cases the caller should distinguish:
// mask.ErrInvalidFrame means drop this tick and carry on;
// composite.ErrDimensionMismatch means the reference is stale and a
// recapture is needed; capture errors are transient pull failures.
//
// Tick is not safe for concurrent use: the lock only guards the reference
// swap against a concurrent recapture, while the FPS bookkeeping assumes a
// single loop goroutine driving ticks.
func (s *Session) Tick() (Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ref == nil {
		return Result{}, ErrNoReference
	}

	frame, err := s.src.Pull()
	if err != nil {
		return Result{}, fmt.Errorf("pull frame: %w", err)
	}
	defer frame.Close()

	m, err := mask.Build(frame, s.cfg.Profile)
	if err != nil {
		return Result{}, err
	}
	defer m.Close()

	out, err := composite.Compose(frame, s.ref.Mat(), m)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Output:   out,
		Coverage: mask.Coverage(m),
		FPS:      s.observeTick(),
	}, nil
}

// Close releases the reference and the frame source.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.ref != nil {
		s.ref.Close()
		s.ref = nil
	}
	s.mu.Unlock()
	return s.src.Close()
}

// observeTick records the interval since the previous tick and returns the
// current FPS estimate.
func (s *Session) observeTick() float64 {
	now := time.Now()
	if !s.lastTick.IsZero() {
		dt := now.Sub(s.lastTick).Seconds()
		if len(s.intervals) < fpsWindow {
			s.intervals = append(s.intervals, dt)
		} else {
			s.intervals[s.intervalIdx] = dt
			s.intervalIdx = (s.intervalIdx + 1) % fpsWindow
		}
	}
	s.lastTick = now

	if len(s.intervals) == 0 {
		return 0
	}
	mean := stat.Mean(s.intervals, nil)
	if mean <= 0 {
		return 0
	}
	return 1 / mean
}
