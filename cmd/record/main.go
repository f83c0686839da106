// Command record runs the compositing pipeline without a display and writes
// the output to a video file. Handy on headless machines or for capturing a
// clip of the effect.
package main

import (
	"errors"
	"flag"
	"log"
	"strings"

	"gocv.io/x/gocv"

	"cloak-cam/internal/background"
	"cloak-cam/internal/capture"
	"cloak-cam/internal/mask"
	"cloak-cam/internal/profile"
	"cloak-cam/internal/session"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	colorName := flag.String("color", "red", "cloak color to hide ("+strings.Join(profile.Names(), ", ")+")")
	camera := flag.Int("camera", 0, "camera device index")
	bgFrames := flag.Int("bg-frames", 60, "frames to accumulate for the background")
	width := flag.Int("width", 640, "capture width")
	height := flag.Int("height", 480, "capture height")
	frames := flag.Int("frames", 300, "output frames to record")
	fps := flag.Float64("fps", 30, "output frame rate")
	out := flag.String("out", "cloak.avi", "output video file")
	bgPath := flag.String("background", "", "load the background reference from an image file instead of capturing")
	flag.Parse()

	prof, err := profile.Resolve(*colorName)
	if err != nil {
		log.Fatalf("%v (known colors: %s)", err, strings.Join(profile.Names(), ", "))
	}

	cam, err := capture.OpenWebcam(*camera, *width, *height)
	if err != nil {
		log.Fatalf("open camera: %v", err)
	}
	w, h := cam.Resolution()
	log.Printf("camera %d delivering %dx%d", *camera, w, h)

	sess, err := session.New(cam, session.Config{Profile: prof, FrameCount: *bgFrames})
	if err != nil {
		log.Fatalf("session: %v", err)
	}
	defer sess.Close()

	if *bgPath != "" {
		ref, err := background.LoadReference(*bgPath, w, h)
		if err != nil {
			log.Fatalf("load background: %v", err)
		}
		sess.SetReference(ref)
	} else {
		log.Printf("capturing background over %d frames, step out of view", *bgFrames)
		if err := sess.CaptureBackground(logProgress); err != nil {
			log.Fatalf("capture background: %v", err)
		}
	}

	writer, err := gocv.VideoWriterFile(*out, "MJPG", *fps, w, h, true)
	if err != nil {
		log.Fatalf("open video writer: %v", err)
	}
	defer writer.Close()

	log.Printf("recording %d frames to %s", *frames, *out)
	written := 0
	for written < *frames {
		res, err := sess.Tick()
		if err != nil {
			if errors.Is(err, mask.ErrInvalidFrame) {
				log.Printf("dropping frame: %v", err)
				continue
			}
			log.Fatalf("tick: %v", err)
		}
		if err := writer.Write(res.Output); err != nil {
			res.Output.Close()
			log.Fatalf("write frame: %v", err)
		}
		res.Output.Close()
		written++
		if written%100 == 0 {
			log.Printf("%d/%d frames, coverage %.1f%%, %.0f fps", written, *frames, res.Coverage*100, res.FPS)
		}
	}
	log.Printf("done: %d frames written to %s", written, *out)
}

// logProgress reports background accumulation without a display.
func logProgress(done, total int, _ gocv.Mat) {
	if done%20 == 0 || done == total {
		log.Printf("background: %d/%d frames", done, total)
	}
}
