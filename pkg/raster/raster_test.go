package raster

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPieFillsSlicesClockwiseFromTop(t *testing.T) {
	img := Pie("Status", []Datum{{"Active", 1}, {"Inactive", 1}}, Options{})
	g := layoutPie(DefaultWidth, DefaultHeight)

	// right half is the first slice, left half the second
	assert.Equal(t, Palette[0], img.RGBAAt(g.cx+g.r/2, g.cy))
	assert.Equal(t, Palette[1], img.RGBAAt(g.cx-g.r/2, g.cy))
	assert.Equal(t, Background, img.RGBAAt(g.cx+g.r+5, g.cy))
}

func TestPieSkipsZeroSlices(t *testing.T) {
	img := Pie("", []Datum{{"Active", 0}, {"Inactive", 4}}, Options{Width: 400, Height: 300})
	g := layoutPie(400, 300)
	assert.Equal(t, Palette[1], img.RGBAAt(g.cx+g.r/2, g.cy))
	assert.Equal(t, Palette[1], img.RGBAAt(g.cx-g.r/2, g.cy))
}

func TestPieEmptyLeavesCanvasBlank(t *testing.T) {
	img := Pie("Status", nil, Options{})
	g := layoutPie(DefaultWidth, DefaultHeight)
	assert.Equal(t, Background, img.RGBAAt(g.cx+g.r/2, g.cy+g.r/2))
}

func TestSliceColorWraps(t *testing.T) {
	assert.Equal(t, Palette[0], SliceColor(len(Palette)))
}

func TestLinePlotsPointsInTrendColour(t *testing.T) {
	data := []Datum{{"2024-01", 1}, {"2024-02", 3}, {"2024-03", 2}}
	img := Line("Trend", data, Options{})
	area := layoutLine(DefaultWidth, DefaultHeight)

	for i, d := range data {
		pt := area.point(i, len(data), d.Value, 5)
		assert.Equal(t, TrendColor, img.RGBAAt(pt.X, pt.Y), "point %d", i)
	}
}

func TestLineSinglePointCentred(t *testing.T) {
	area := layoutLine(DefaultWidth, DefaultHeight)
	pt := area.point(0, 1, 0, 5)
	assert.Equal(t, (area.left+area.right)/2, pt.X)
	assert.Equal(t, area.bottom, pt.Y)
}

func TestLabelStride(t *testing.T) {
	few := []Datum{{"2024-01", 1}, {"2024-02", 1}}
	assert.Equal(t, 1, labelStride(few, 1000))

	many := make([]Datum, 60)
	for i := range many {
		many[i] = Datum{Label: "2024-01", Value: i}
	}
	assert.Greater(t, labelStride(many, 1000), 1)
}

func TestEncodePNG(t *testing.T) {
	out, err := EncodePNG(Line("", nil, Options{Width: 200, Height: 120}))
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 200, decoded.Bounds().Dx())
	assert.Equal(t, 120, decoded.Bounds().Dy())
}
