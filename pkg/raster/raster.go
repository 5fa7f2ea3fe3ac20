// Package raster draws the analytics charts into images that can be served
// as PNG or embedded in a PDF.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Default canvas keeps the 7:4 ratio of the PDF chart rectangle.
const (
	DefaultWidth  = 1120
	DefaultHeight = 640
)

// Palette is the slice colour sequence used by pie charts.
var Palette = []color.RGBA{
	mustHex("#22c55e"),
	mustHex("#ef4444"),
	mustHex("#3b82f6"),
	mustHex("#f97316"),
	mustHex("#a855f7"),
}

var (
	TrendColor = mustHex("#06b6d4")
	Background = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	TextColor  = mustHex("#1f2937")
	GridColor  = mustHex("#e5e7eb")
	AxisColor  = mustHex("#9ca3af")
)

// Datum is one labelled value of a chart series.
type Datum struct {
	Label string
	Value int
}

// Options sizes the canvas. Zero values fall back to the defaults.
type Options struct {
	Width  int
	Height int
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// SliceColor returns the palette colour for the i-th slice, wrapping around.
func SliceColor(i int) color.RGBA {
	return Palette[i%len(Palette)]
}

// EncodePNG encodes the image as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func newCanvas(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: Background}, image.Point{}, draw.Src)
	return img
}

func drawText(img *image.RGBA, x, y int, c color.Color, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func textWidth(text string) int {
	return font.MeasureString(basicfont.Face7x13, text).Ceil()
}

func drawTitle(img *image.RGBA, title string) {
	if title == "" {
		return
	}
	w := img.Bounds().Dx()
	drawText(img, (w-textWidth(title))/2, 24, TextColor, title)
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r.Intersect(img.Bounds()), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func mustHex(s string) color.RGBA {
	if len(s) != 7 || s[0] != '#' {
		panic("raster: bad colour " + s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		panic("raster: bad colour " + s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
