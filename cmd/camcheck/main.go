// Command camcheck opens a camera device and reports what it actually
// delivers: achieved resolution, measured frame rate, and failed reads.
// Useful before a session to pick the right device index and size.
package main

import (
	"flag"
	"log"
	"time"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	"cloak-cam/internal/capture"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	camera := flag.Int("camera", 0, "camera device index")
	width := flag.Int("width", 640, "requested capture width")
	height := flag.Int("height", 480, "requested capture height")
	frames := flag.Int("frames", 90, "frames to sample for the measurement")
	show := flag.Bool("show", false, "show the live feed while measuring")
	flag.Parse()

	cam, err := capture.OpenWebcam(*camera, *width, *height)
	if err != nil {
		log.Fatalf("open camera: %v", err)
	}
	defer cam.Close()

	w, h := cam.Resolution()
	log.Printf("camera %d: requested %dx%d, delivering %dx%d", *camera, *width, *height, w, h)

	var window *gocv.Window
	if *show {
		window = gocv.NewWindow("camcheck")
		defer window.Close()
	}

	intervals := make([]float64, 0, *frames)
	failures := 0
	last := time.Time{}

	for i := 0; i < *frames; i++ {
		frame, err := cam.Pull()
		if err != nil {
			failures++
			continue
		}
		now := time.Now()
		if !last.IsZero() {
			intervals = append(intervals, now.Sub(last).Seconds())
		}
		last = now

		if window != nil {
			window.IMShow(frame)
			window.WaitKey(1)
		}
		frame.Close()
	}

	if len(intervals) == 0 {
		log.Fatalf("no frames delivered (%d failed reads)", failures)
	}
	mean := stat.Mean(intervals, nil)
	log.Printf("%d frames sampled, %d failed reads, %.1f fps (interval stddev %.1fms)",
		len(intervals)+1, failures, 1/mean, stat.StdDev(intervals, nil)*1000)
}
