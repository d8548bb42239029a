package reel

import (
	"image"
	"image/color"
	"image/draw"
)

const (
	stripHeight = 6
	stripGap    = 2
)

var (
	stripTrack = color.RGBA{223, 223, 223, 255}
	stripFill  = color.RGBA{66, 133, 244, 255}
)

// toRGBA returns a mutable copy of the frame.
func toRGBA(frame image.Image) *image.RGBA {
	bounds := frame.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, frame, bounds.Min, draw.Src)
	return out
}

// stampProgress draws a segmented strip along the bottom edge: one segment
// per frame, everything up to and including idx filled.
func stampProgress(img *image.RGBA, idx, total int) {
	if total <= 0 {
		return
	}

	bounds := img.Bounds()
	top := bounds.Max.Y - stripHeight
	segment := (bounds.Dx() - stripGap*(total+1)) / total
	if segment < 1 {
		return
	}

	x := bounds.Min.X + stripGap
	for s := 0; s < total; s++ {
		c := stripTrack
		if s <= idx {
			c = stripFill
		}
		fillRect(img, x, top, x+segment, bounds.Max.Y-1, c)
		x += segment + stripGap
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			setPixelSafe(img, x, y, c)
		}
	}
}

func setPixelSafe(img *image.RGBA, x, y int, c color.RGBA) {
	bounds := img.Bounds()
	if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
		img.Set(x, y, c)
	}
}
