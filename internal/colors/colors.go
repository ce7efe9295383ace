// Package colors derives shelf rendering colors from cached cover images.
package colors

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/rotisserie/eris"
	xdraw "golang.org/x/image/draw"

	"github.com/podshelf/shelf-cli/internal/model"
)

// sampleSize is the edge length covers are downscaled to before averaging.
// Small enough to make the average cheap, large enough to be representative.
const sampleSize = 32

// Extract computes a background color from the average of a downscaled
// cover, and a text color chosen for contrast against it.
func Extract(path string) (background, text string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", eris.Wrapf(err, "colors: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	img, _, err := image.Decode(f)
	if err != nil {
		return "", "", eris.Wrapf(err, "colors: decode %s", path)
	}

	small := image.NewRGBA(image.Rect(0, 0, sampleSize, sampleSize))
	xdraw.ApproxBiLinear.Scale(small, small.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	var r, g, b uint64
	for y := 0; y < sampleSize; y++ {
		for x := 0; x < sampleSize; x++ {
			offset := small.PixOffset(x, y)
			r += uint64(small.Pix[offset])
			g += uint64(small.Pix[offset+1])
			b += uint64(small.Pix[offset+2])
		}
	}
	n := uint64(sampleSize * sampleSize)
	avgR, avgG, avgB := uint8(r/n), uint8(g/n), uint8(b/n)

	background = fmt.Sprintf("#%02x%02x%02x", avgR, avgG, avgB)
	text = textFor(avgR, avgG, avgB)
	return background, text, nil
}

// textFor picks the default dark text on light backgrounds and white on
// dark ones, using the rec. 601 luma weights.
func textFor(r, g, b uint8) string {
	luma := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
	if luma >= 128 {
		return model.DefaultTextColor
	}
	return "#ffffff"
}
