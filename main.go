// Package main provides the entry point for the cloak-cam application: a
// live "invisibility cloak" effect that hides a colored cloth behind a
// previously captured background.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"strings"

	"gocv.io/x/gocv"

	"cloak-cam/internal/background"
	"cloak-cam/internal/capture"
	"cloak-cam/internal/composite"
	"cloak-cam/internal/mask"
	"cloak-cam/internal/prefs"
	"cloak-cam/internal/profile"
	"cloak-cam/internal/session"
	"cloak-cam/internal/version"
	"cloak-cam/pkg/colorutil"
)

const windowTitle = "Cloak Cam"

// tickFailureLimit bounds consecutive failed ticks before the loop gives up,
// mirroring the retry discipline of the background capture. A camera that
// stays dead should end the run, not spin it.
const tickFailureLimit = 30

// nextTickFailure advances the consecutive-failure streak and reports
// whether the loop should give up.
func nextTickFailure(streak int) (int, bool) {
	streak++
	return streak, streak >= tickFailureLimit
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	p := prefs.Load()
	colorName := flag.String("color", p.String("color", "red"),
		"cloak color to hide ("+strings.Join(profile.Names(), ", ")+")")
	camera := flag.Int("camera", p.Int("camera", 0), "camera device index")
	bgFrames := flag.Int("bg-frames", p.Int("bg_frames", 60), "frames to accumulate for the background")
	width := flag.Int("width", p.Int("width", 640), "capture width")
	height := flag.Int("height", p.Int("height", 480), "capture height")
	bgPath := flag.String("background", "", "load the background reference from an image file instead of capturing")
	savePath := flag.String("save-background", "", "write the captured background reference to this file")
	flag.Parse()

	log.Printf("cloak-cam %s (commit %s, built %s)", version.Version, version.GitCommit, version.BuildTime)

	prof, err := profile.Resolve(*colorName)
	if err != nil {
		log.Fatalf("%v (known colors: %s)", err, strings.Join(profile.Names(), ", "))
	}

	cam, err := capture.OpenWebcam(*camera, *width, *height)
	if err != nil {
		log.Fatalf("open camera: %v", err)
	}
	w, h := cam.Resolution()
	log.Printf("camera %d: requested %dx%d, delivering %dx%d", *camera, *width, *height, w, h)

	sess, err := session.New(cam, session.Config{Profile: prof, FrameCount: *bgFrames})
	if err != nil {
		log.Fatalf("session: %v", err)
	}
	defer sess.Close()

	window := gocv.NewWindow(windowTitle)
	defer window.Close()

	if *bgPath != "" {
		ref, err := background.LoadReference(*bgPath, w, h)
		if err != nil {
			log.Fatalf("load background: %v", err)
		}
		sess.SetReference(ref)
		log.Printf("background loaded from %s", *bgPath)
	} else {
		log.Printf("capturing background over %d frames, step out of view", *bgFrames)
		if err := sess.CaptureBackground(captureProgress(window)); err != nil {
			log.Fatalf("capture background: %v", err)
		}
	}

	if *savePath != "" {
		if err := background.SaveReference(*savePath, sess.Reference()); err != nil {
			log.Printf("save background: %v", err)
		} else {
			log.Printf("background saved to %s", *savePath)
		}
	}

	rememberSettings(p, *colorName, *camera, *bgFrames, *width, *height)

	log.Printf("ready: wear the %s cloak and step into frame (q quits, r recaptures, s saves a frame)", prof.Name)
	runLoop(sess, window, prof, w, h)
}

// captureProgress draws the background-capture progress over the live frame
// so the user can tell when to step back in.
func captureProgress(window *gocv.Window) background.Progress {
	return func(done, total int, frame gocv.Mat) {
		view := frame.Clone()
		defer view.Close()

		gocv.PutText(&view, fmt.Sprintf("Capturing background %d/%d", done, total),
			image.Pt(20, 40), gocv.FontHersheySimplex, 0.9, colorutil.Green, 2)
		gocv.PutText(&view, "Stay out of camera view!",
			image.Pt(20, 80), gocv.FontHersheySimplex, 0.7, colorutil.Yellow, 2)

		const barWidth, barHeight = 400, 20
		filled := done * barWidth / total
		gocv.Rectangle(&view, image.Rect(20, 100, 20+barWidth, 100+barHeight), colorutil.White, 2)
		gocv.Rectangle(&view, image.Rect(20, 100, 20+filled, 100+barHeight), colorutil.Green, -1)

		window.IMShow(view)
		window.WaitKey(1)
	}
}

// runLoop drives the per-tick pipeline until the user quits.
func runLoop(sess *session.Session, window *gocv.Window, prof profile.Profile, width, height int) {
	shots := 0
	failures := 0
	for {
		res, err := sess.Tick()
		switch {
		case err == nil:
			failures = 0
		case errors.Is(err, mask.ErrInvalidFrame):
			// Frame source contract violation; drop the tick and carry on.
			log.Printf("dropping frame: %v", err)
			continue
		case errors.Is(err, composite.ErrDimensionMismatch):
			log.Printf("stale reference (%v), recapturing", err)
			if err := sess.CaptureBackground(captureProgress(window)); err != nil {
				log.Fatalf("recapture background: %v", err)
			}
			continue
		default:
			var giveUp bool
			if failures, giveUp = nextTickFailure(failures); giveUp {
				log.Fatalf("giving up after %d consecutive failed ticks (last: %v)", failures, err)
			}
			log.Printf("tick: %v", err)
			continue
		}

		drawOverlay(&res.Output, prof.Name, res.Coverage, res.FPS, width, height)
		window.IMShow(res.Output)

		switch key := window.WaitKey(1); key {
		case 'q', 27: // q or ESC
			res.Output.Close()
			return
		case 'r':
			res.Output.Close()
			log.Printf("recapturing background, step out of view")
			if err := sess.CaptureBackground(captureProgress(window)); err != nil {
				log.Fatalf("recapture background: %v", err)
			}
			continue
		case 's':
			shots++
			name := fmt.Sprintf("cloak-%03d.png", shots)
			if ok := gocv.IMWrite(name, res.Output); ok {
				log.Printf("saved %s", name)
			} else {
				log.Printf("save %s failed", name)
			}
		}
		res.Output.Close()
	}
}

// drawOverlay adds the status text the renderer shows on every output frame.
func drawOverlay(out *gocv.Mat, colorName string, coverage, fps float64, width, height int) {
	gocv.PutText(out, "Cloak Cam",
		image.Pt(10, 30), gocv.FontHersheySimplex, 0.7, colorutil.White, 2)
	gocv.PutText(out, fmt.Sprintf("Cloak: %s | q quit, r recapture, s save", strings.ToUpper(colorName)),
		image.Pt(10, 60), gocv.FontHersheySimplex, 0.5, colorutil.White, 1)
	gocv.PutText(out, fmt.Sprintf("Coverage: %.1f%%", coverage*100),
		image.Pt(10, out.Rows()-40), gocv.FontHersheySimplex, 0.5, colorutil.White, 1)
	gocv.PutText(out, fmt.Sprintf("FPS: %.0f | Resolution: %dx%d", fps, width, height),
		image.Pt(10, out.Rows()-10), gocv.FontHersheySimplex, 0.4, colorutil.White, 1)
}

// rememberSettings persists the last-used capture settings for the next run.
func rememberSettings(p *prefs.Prefs, color string, camera, bgFrames, width, height int) {
	p.Set("color", color)
	p.Set("camera", camera)
	p.Set("bg_frames", bgFrames)
	p.Set("width", width)
	p.Set("height", height)
	if err := p.Save(); err != nil {
		log.Printf("save preferences: %v", err)
	}
}
