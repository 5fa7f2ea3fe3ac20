package raster

import (
	"image"
	"image/color"
	"strconv"
)

type plotArea struct {
	left, top, right, bottom int
}

func layoutLine(w, h int) plotArea {
	return plotArea{left: 60, top: 50, right: w - 40, bottom: h - 60}
}

// point maps series index i of n and value v on a 0..max axis to pixels.
func (p plotArea) point(i, n, v, max int) image.Point {
	x := (p.left + p.right) / 2
	if n > 1 {
		x = p.left + i*(p.right-p.left)/(n-1)
	}
	y := p.bottom - v*(p.bottom-p.top)/max
	return image.Pt(x, y)
}

// Line draws a single-series line chart with integer y ticks.
func Line(title string, data []Datum, opts Options) *image.RGBA {
	w, h := opts.size()
	img := newCanvas(w, h)
	drawTitle(img, title)
	area := layoutLine(w, h)

	max := 0
	for _, d := range data {
		if d.Value > max {
			max = d.Value
		}
	}
	step := 1
	if max > 5 {
		step = (max + 4) / 5
	}
	if max < step*5 {
		max = step * 5
	}

	for v := 0; v <= max; v += step {
		y := area.bottom - v*(area.bottom-area.top)/max
		hline(img, area.left, area.right, y, GridColor)
		label := strconv.Itoa(v)
		drawText(img, area.left-8-textWidth(label), y+4, TextColor, label)
	}
	vline(img, area.left, area.top, area.bottom, AxisColor)
	hline(img, area.left, area.right, area.bottom, AxisColor)

	if len(data) == 0 {
		msg := "No data"
		drawText(img, (area.left+area.right-textWidth(msg))/2, (area.top+area.bottom)/2, AxisColor, msg)
		return img
	}

	every := labelStride(data, area.right-area.left)
	var prev image.Point
	for i, d := range data {
		pt := area.point(i, len(data), d.Value, max)
		if i > 0 {
			segment(img, prev, pt, TrendColor)
		}
		prev = pt
		if i%every == 0 {
			drawText(img, pt.X-textWidth(d.Label)/2, area.bottom+20, TextColor, d.Label)
		}
	}
	for i, d := range data {
		pt := area.point(i, len(data), d.Value, max)
		fillRect(img, image.Rect(pt.X-3, pt.Y-3, pt.X+4, pt.Y+4), TrendColor)
	}
	return img
}

func labelStride(data []Datum, width int) int {
	widest := 0
	for _, d := range data {
		if tw := textWidth(d.Label) + 8; tw > widest {
			widest = tw
		}
	}
	if widest == 0 || width <= 0 {
		return 1
	}
	stride := (widest*len(data) + width - 1) / width
	if stride < 1 {
		stride = 1
	}
	return stride
}

func hline(img *image.RGBA, x0, x1, y int, c color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y, c)
	}
}

func vline(img *image.RGBA, x, y0, y1 int, c color.RGBA) {
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x, y, c)
	}
}

// segment draws a two pixel wide Bresenham line.
func segment(img *image.RGBA, a, b image.Point, c color.RGBA) {
	dx, dy := abs(b.X-a.X), -abs(b.Y-a.Y)
	sx, sy := sign(b.X-a.X), sign(b.Y-a.Y)
	e := dx + dy
	x, y := a.X, a.Y
	for {
		img.SetRGBA(x, y, c)
		img.SetRGBA(x+1, y, c)
		img.SetRGBA(x, y+1, c)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
