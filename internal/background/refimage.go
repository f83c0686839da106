package background

import (
	"fmt"
	"image"
	"os"

	_ "image/jpeg"
	_ "image/png"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// SaveReference writes the reference pixels to path. The format follows the
// file extension (png, jpg, bmp, tiff).
func SaveReference(path string, ref *Reference) error {
	if ok := gocv.IMWrite(path, ref.mat); !ok {
		return fmt.Errorf("write reference image %s", path)
	}
	return nil
}

// LoadReference reads an image file and rescales it to width x height,
// yielding a reference usable in place of a captured one. Useful when the
// scene is static and a previous session's background is still valid.
func LoadReference(path string, width, height int) (*Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode reference image %s: %w", path, err)
	}

	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	data := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := scaled.RGBAAt(x, y)
			i := (y*width + x) * 3
			data[i+0] = c.B
			data[i+1] = c.G
			data[i+2] = c.R
		}
	}
	mat, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, data)
	if err != nil {
		return nil, fmt.Errorf("convert reference image: %w", err)
	}
	return &Reference{mat: mat}, nil
}
