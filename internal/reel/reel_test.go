package reel

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kaboard/kaverify/internal/capture"
)

func framePNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestObserveCollectsFrames(t *testing.T) {
	t.Parallel()
	rec := NewRecorder(zap.NewNop())
	assert.Equal(t, 0, rec.Len())

	rec.Observe(capture.Artifact{Name: "a.png"}, framePNG(t, 16, 12, color.RGBA{200, 60, 60, 255}))
	rec.Observe(capture.Artifact{Name: "b.png"}, framePNG(t, 16, 12, color.RGBA{60, 200, 60, 255}))
	assert.Equal(t, 2, rec.Len())
}

func TestObserveSkipsUndecodableFrames(t *testing.T) {
	t.Parallel()
	rec := NewRecorder(zap.NewNop())
	rec.Observe(capture.Artifact{Name: "bad.png"}, []byte("not a png"))
	assert.Equal(t, 0, rec.Len(), "a bad frame is dropped, never fatal")
}

func TestSaveWithoutFramesWritesNothing(t *testing.T) {
	t.Parallel()
	rec := NewRecorder(zap.NewNop())
	path := filepath.Join(t.TempDir(), "run.gif")

	size, err := rec.Save(path)
	require.NoError(t, err)
	assert.Zero(t, size)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSaveEncodesAnimatedGIF(t *testing.T) {
	t.Parallel()
	rec := NewRecorder(zap.NewNop())
	colors := []color.RGBA{
		{220, 179, 92, 255},
		{34, 34, 34, 255},
		{245, 245, 245, 255},
	}
	for _, c := range colors {
		rec.Observe(capture.Artifact{Name: "frame.png"}, framePNG(t, 40, 30, c))
	}
	require.Equal(t, 3, rec.Len())

	path := filepath.Join(t.TempDir(), "run.gif")
	size, err := rec.Save(path)
	require.NoError(t, err)
	assert.Positive(t, size)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	g, err := gif.DecodeAll(f)
	require.NoError(t, err)
	assert.Len(t, g.Image, 3)
	assert.Equal(t, 0, g.LoopCount, "the reel loops forever")
	for _, d := range g.Delay {
		assert.Equal(t, frameDelay, d)
	}
	assert.Equal(t, outputWidth, g.Image[0].Bounds().Dx())
	// A 40x30 input keeps its 4:3 aspect after scaling.
	assert.Equal(t, outputWidth*30/40, g.Image[0].Bounds().Dy())
}

func TestSamplePaletteKeepsDominantColor(t *testing.T) {
	t.Parallel()
	dominant := color.RGBA{220, 179, 92, 255}
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetRGBA(x, y, dominant)
		}
	}

	palette := samplePalette(img)
	require.Len(t, palette, 256)
	assert.Equal(t, color.Color(dominant), palette[1], "the most frequent color ranks first after transparent")
}

func TestStampProgressFillsThroughCurrentSegment(t *testing.T) {
	t.Parallel()
	img := image.NewRGBA(image.Rect(0, 0, 100, 40))
	stampProgress(img, 1, 4)

	segment := (100 - stripGap*5) / 4
	firstX := stripGap + segment/2
	thirdX := stripGap + 2*(segment+stripGap) + segment/2
	y := 40 - stripHeight/2 - 1

	assert.Equal(t, stripFill, img.RGBAAt(firstX, y), "segments up to the index are filled")
	assert.Equal(t, stripTrack, img.RGBAAt(thirdX, y), "segments past the index show the track")
}

func TestStampProgressDegenerateSizes(t *testing.T) {
	t.Parallel()
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	// Too narrow for ten segments; must be a no-op rather than a panic.
	stampProgress(img, 0, 10)
	stampProgress(img, 0, 0)
}
