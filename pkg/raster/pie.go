package raster

import (
	"fmt"
	"image"
	"math"
)

type pieGeometry struct {
	cx, cy, r int
	legendX   int
}

func layoutPie(w, h int) pieGeometry {
	plotW := w * 3 / 5
	r := plotW / 2
	if maxR := (h - 80) / 2; r > maxR {
		r = maxR
	}
	return pieGeometry{
		cx:      plotW / 2,
		cy:      40 + (h-40)/2,
		r:       r,
		legendX: plotW + 20,
	}
}

// Pie draws a pie chart starting at twelve o'clock and running clockwise,
// with a legend of "label (value)" entries on the right.
func Pie(title string, data []Datum, opts Options) *image.RGBA {
	w, h := opts.size()
	img := newCanvas(w, h)
	drawTitle(img, title)
	g := layoutPie(w, h)

	total := 0
	for _, d := range data {
		if d.Value > 0 {
			total += d.Value
		}
	}

	if total == 0 {
		msg := "No data"
		drawText(img, g.cx-textWidth(msg)/2, g.cy, AxisColor, msg)
		return img
	}

	bounds := make([]float64, len(data))
	acc := 0
	for i, d := range data {
		if d.Value > 0 {
			acc += d.Value
		}
		bounds[i] = float64(acc) / float64(total)
	}

	r2 := g.r * g.r
	for y := g.cy - g.r; y <= g.cy+g.r; y++ {
		for x := g.cx - g.r; x <= g.cx+g.r; x++ {
			dx, dy := x-g.cx, y-g.cy
			if dx*dx+dy*dy > r2 {
				continue
			}
			theta := math.Atan2(float64(dx), float64(-dy))
			if theta < 0 {
				theta += 2 * math.Pi
			}
			frac := theta / (2 * math.Pi)
			for i, b := range bounds {
				if frac < b {
					img.SetRGBA(x, y, SliceColor(i))
					break
				}
			}
		}
	}

	drawLegend(img, g.legendX, 80, data)
	return img
}

func drawLegend(img *image.RGBA, x, y int, data []Datum) {
	for i, d := range data {
		top := y + i*24
		fillRect(img, image.Rect(x, top, x+14, top+14), SliceColor(i))
		drawText(img, x+22, top+11, TextColor, fmt.Sprintf("%s (%d)", d.Label, d.Value))
	}
}
