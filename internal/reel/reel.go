package reel

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	_ "image/png"
	"os"
	"sort"

	"github.com/nfnt/resize"
	"go.uber.org/zap"

	"github.com/kaboard/kaverify/internal/capture"
)

const (
	outputWidth = 800
	frameDelay  = 100 // hundredths of a second per checkpoint frame
)

// Recorder collects one frame per capture checkpoint and renders the run as
// an animated GIF, a progress strip burned into each frame. Recording is
// strictly additive; scenarios run identically with it off.
type Recorder struct {
	frames []image.Image
	log    *zap.Logger
}

func NewRecorder(log *zap.Logger) *Recorder {
	return &Recorder{log: log.Named("reel")}
}

// Observe is a capture observer: it keeps the checkpoint's PNG bytes as a
// frame. Decode failures are logged and the frame skipped; recording never
// fails a run.
func (r *Recorder) Observe(art capture.Artifact, data []byte) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		r.log.Warn("frame decode failed",
			zap.String("artifact", art.Name),
			zap.Error(err))
		return
	}
	r.frames = append(r.frames, img)
}

// Len returns the number of collected frames.
func (r *Recorder) Len() int {
	return len(r.frames)
}

// Save encodes the collected frames to path and reports the encoded size.
// With no frames it writes nothing.
func (r *Recorder) Save(path string) (int64, error) {
	if len(r.frames) == 0 {
		return 0, nil
	}

	bounds := r.frames[0].Bounds()
	aspect := float64(bounds.Dy()) / float64(bounds.Dx())
	outputHeight := uint(float64(outputWidth) * aspect)

	g := &gif.GIF{
		Image:     make([]*image.Paletted, len(r.frames)),
		Delay:     make([]int, len(r.frames)),
		LoopCount: 0,
	}

	palette := samplePalette(r.frames[0])

	for i, frame := range r.frames {
		resized := resize.Resize(outputWidth, outputHeight, frame, resize.Lanczos3)
		rgba := toRGBA(resized)
		stampProgress(rgba, i, len(r.frames))

		paletted := image.NewPaletted(rgba.Bounds(), palette)
		draw.FloydSteinberg.Draw(paletted, rgba.Bounds(), rgba, image.Point{})

		g.Image[i] = paletted
		g.Delay[i] = frameDelay
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if err := gif.EncodeAll(f, g); err != nil {
		return 0, err
	}

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	r.log.Info("reel written",
		zap.String("path", path),
		zap.Int("frames", len(r.frames)),
		zap.Int64("bytes", info.Size()))
	return info.Size(), nil
}

// samplePalette builds a 256-color palette from the most frequent colors in
// the reference frame, padded with grayscale.
func samplePalette(img image.Image) color.Palette {
	bounds := img.Bounds()
	counts := make(map[color.RGBA]int)

	const step = 4 // sample every 4th pixel
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, a := img.At(x, y).RGBA()
			c := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
			counts[c]++
		}
	}

	ranked := make([]color.RGBA, 0, len(counts))
	for c := range counts {
		ranked = append(ranked, c)
	}
	sort.Slice(ranked, func(i, j int) bool { return counts[ranked[i]] > counts[ranked[j]] })

	palette := make(color.Palette, 0, 256)
	palette = append(palette, color.RGBA{})
	for _, c := range ranked {
		if len(palette) == 256 {
			break
		}
		palette = append(palette, c)
	}
	for len(palette) < 256 {
		gray := uint8(len(palette))
		palette = append(palette, color.RGBA{gray, gray, gray, 255})
	}
	return palette
}
