package checkers

import (
	"image"
	"image/color"
	imagedraw "image/draw"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

type pointF struct {
	X, Y float64
}

func drawSquareOverlay(img *image.RGBA, rect image.Rectangle, clr color.Color) {
	imagedraw.Draw(img, rect, image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func drawArrow(img *image.RGBA, start, end image.Point, clr color.Color) {
	dx := float64(end.X - start.X)
	dy := float64(end.Y - start.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	dirX, dirY := dx/length, dy/length
	perpX, perpY := -dirY, dirX

	baseLength := length - squareSize*0.45
	if baseLength < squareSize*0.35 {
		baseLength = length * 0.6
	}
	halfWidth := squareSize * 0.14
	headWidth := squareSize * 0.34

	sx, sy := float64(start.X), float64(start.Y)
	baseX := sx + dirX*baseLength
	baseY := sy + dirY*baseLength

	fillQuad(img,
		pointF{sx - perpX*halfWidth, sy - perpY*halfWidth},
		pointF{sx + perpX*halfWidth, sy + perpY*halfWidth},
		pointF{baseX + perpX*halfWidth, baseY + perpY*halfWidth},
		pointF{baseX - perpX*halfWidth, baseY - perpY*halfWidth},
		clr,
	)
	fillTriangleF(img,
		pointF{float64(end.X), float64(end.Y)},
		pointF{baseX - perpX*headWidth/2, baseY - perpY*headWidth/2},
		pointF{baseX + perpX*headWidth/2, baseY + perpY*headWidth/2},
		clr,
	)
}

func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || maxWidth <= 0 || face == nil {
		return trimmed
	}
	drawer := font.Drawer{Face: face}
	if drawer.MeasureString(trimmed).Round() <= maxWidth {
		return trimmed
	}
	const ellipsis = "..."
	if drawer.MeasureString(ellipsis).Round() > maxWidth {
		return ""
	}
	runes := []rune(trimmed)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + ellipsis
		if drawer.MeasureString(candidate).Round() <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}

func drawRoundedPanel(img *image.RGBA, rect image.Rectangle, radius int, clr color.Color) {
	if rect.Empty() {
		return
	}
	if limit := minInt(rect.Dx(), rect.Dy()) / 2; radius > limit {
		radius = limit
	}
	if radius < 0 {
		radius = 0
	}
	fill := image.NewUniform(clr)
	if radius == 0 {
		imagedraw.Draw(img, rect, fill, image.Point{}, imagedraw.Over)
		return
	}

	// cross-shaped body, then the four corner discs
	inner := image.Rect(rect.Min.X+radius, rect.Min.Y, rect.Max.X-radius, rect.Max.Y)
	imagedraw.Draw(img, inner, fill, image.Point{}, imagedraw.Over)
	left := image.Rect(rect.Min.X, rect.Min.Y+radius, rect.Min.X+radius, rect.Max.Y-radius)
	imagedraw.Draw(img, left, fill, image.Point{}, imagedraw.Over)
	right := image.Rect(rect.Max.X-radius, rect.Min.Y+radius, rect.Max.X, rect.Max.Y-radius)
	imagedraw.Draw(img, right, fill, image.Point{}, imagedraw.Over)

	for _, c := range []image.Point{
		{rect.Min.X + radius, rect.Min.Y + radius},
		{rect.Max.X - radius - 1, rect.Min.Y + radius},
		{rect.Min.X + radius, rect.Max.Y - radius - 1},
		{rect.Max.X - radius - 1, rect.Max.Y - radius - 1},
	} {
		drawQuarter(img, c, radius, rect, clr)
	}
}

// drawQuarter paints the part of a disc that lies in the corner region of
// rect not already covered by the cross body.
func drawQuarter(img *image.RGBA, center image.Point, radius int, rect image.Rectangle, clr color.Color) {
	rr := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			px, py := center.X+x, center.Y+y
			if x*x+y*y > rr || !(image.Point{X: px, Y: py}).In(rect) {
				continue
			}
			inCrossX := px >= rect.Min.X+radius && px < rect.Max.X-radius
			inCrossY := py >= rect.Min.Y+radius && py < rect.Max.Y-radius
			if inCrossX || inCrossY {
				continue
			}
			blendPixel(img, px, py, clr)
		}
	}
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	metrics := drawer.Face.Metrics()
	width := drawer.MeasureString(text).Round()
	x := rect.Min.X + (rect.Dx()-width)/2
	if x < rect.Min.X {
		x = rect.Min.X
	}
	baseline := rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func drawDisc(img *image.RGBA, center image.Point, radius int, clr color.Color) {
	if radius <= 0 {
		blendPixel(img, center.X, center.Y, clr)
		return
	}
	rr := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= rr {
				blendPixel(img, center.X+x, center.Y+y, clr)
			}
		}
	}
}

// blendPixel composites clr over the pixel at (x, y) using source-over.
func blendPixel(img *image.RGBA, x, y int, clr color.Color) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	sr, sg, sb, sa := clr.RGBA()
	if sa == 0 {
		return
	}
	srcA := float64(sa) / 0xffff
	dst := img.RGBAAt(x, y)
	inv := 1 - srcA

	// color.RGBA is premultiplied, so source-over is a straight lerp.
	img.SetRGBA(x, y, color.RGBA{
		R: floatToUint8(float64(sr)/0xffff*255 + float64(dst.R)*inv),
		G: floatToUint8(float64(sg)/0xffff*255 + float64(dst.G)*inv),
		B: floatToUint8(float64(sb)/0xffff*255 + float64(dst.B)*inv),
		A: floatToUint8(srcA*255 + float64(dst.A)*inv),
	})
}

func floatToUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func fillQuad(img *image.RGBA, p0, p1, p2, p3 pointF, clr color.Color) {
	fillTriangleF(img, p0, p1, p2, clr)
	fillTriangleF(img, p0, p2, p3, clr)
}

func fillTriangleF(img *image.RGBA, a, b, c pointF, clr color.Color) {
	minX := int(math.Floor(math.Min(a.X, math.Min(b.X, c.X))))
	maxX := int(math.Ceil(math.Max(a.X, math.Max(b.X, c.X))))
	minY := int(math.Floor(math.Min(a.Y, math.Min(b.Y, c.Y))))
	maxY := int(math.Ceil(math.Max(a.Y, math.Max(b.Y, c.Y))))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if insideTriangle(float64(x)+0.5, float64(y)+0.5, a, b, c) {
				blendPixel(img, x, y, clr)
			}
		}
	}
}

func insideTriangle(x, y float64, a, b, c pointF) bool {
	denom := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if denom == 0 {
		return false
	}
	alpha := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / denom
	beta := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / denom
	return alpha >= 0 && beta >= 0 && 1-alpha-beta >= 0
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
