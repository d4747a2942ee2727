package meme

import (
	"image"
	"image/draw"
	"strings"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

/*
Render draws text onto a copy of the template image in opaque black, centered
horizontally per line and vertically as a block within the template's region.
Lines are split on literal newlines only; nothing is re-wrapped to fit the
width. The cached source bitmap is never written, only the returned copy.
*/
func Render(tmpl *Template, f *truetype.Font, text string) *image.RGBA {
	out := cloneRGBA(tmpl.Image)

	face := truetype.NewFace(f, &truetype.Options{
		Size:    float64(tmpl.Scale.Y),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	lines := splitLines(text)
	metrics := face.Metrics()
	lineHeight := lineHeightFor(metrics)
	center := tmpl.Center()
	y := blockStartY(center.Y, lineHeight, len(lines))

	drawer := &font.Drawer{Dst: out, Src: image.Black, Face: face}
	for _, line := range lines {
		x := lineStartX(center.X, lineWidth(face, line))
		drawer.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + metrics.Ascent}
		drawer.DrawString(line)
		y += lineHeight
	}
	return out
}

// splitLines splits on literal newlines and trims each line before
// measurement. Empty text yields no lines at all.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}

// lineHeightFor derives the fixed per-line advance from the face's vertical
// metrics: half the line gap plus the ascent-to-descent span, rounded up.
// Every line uses this one height, there is no per-line measurement.
func lineHeightFor(m font.Metrics) int {
	gap := m.Height - m.Ascent - m.Descent
	return (gap/2 + m.Ascent + m.Descent).Ceil()
}

// blockStartY positions the top of the line block so the block centers on
// centerY, with the division truncating
func blockStartY(centerY, lineHeight, lineCount int) int {
	return centerY - (lineHeight*lineCount)/2
}

// lineStartX centers a line of width w on centerX. The division truncates
// the whole quotient, so an odd-width line lands one pixel left of center.
func lineStartX(centerX, w int) int {
	return (2*centerX - w) / 2
}

// lineWidth is the rightmost edge of the line's glyph bounding box with the
// origin at zero. A line with no renderable glyphs has width zero.
func lineWidth(face font.Face, line string) int {
	bounds, _ := font.BoundString(face, line)
	w := bounds.Max.X.Ceil()
	if w < 0 {
		return 0
	}
	return w
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	out := image.NewRGBA(src.Bounds())
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)
	return out
}
