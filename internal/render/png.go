package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"callscope/internal/layout"
)

// WritePNG rasterizes lay onto a solid bg and encodes it as PNG.
func WritePNG(w io.Writer, lay layout.Layout, t Theme, bg color.Color) error {
	width := int(math.Ceil(lay.Width))
	height := int(math.Ceil(lay.Height))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	for _, r := range lay.Edges {
		c := parseColor(t.EdgeColor(r.Edge))
		dashed := !r.Edge.Call
		if r.Self {
			x, y := round(r.X1), round(r.Y1)
			drawLine(img, x, y-5, x+12, y-5, c, dashed)
			drawLine(img, x+12, y-5, x+12, y+5, c, dashed)
			drawLine(img, x+12, y+5, x, y+5, c, dashed)
			drawArrow(img, float64(x+12), float64(y+5), float64(x), float64(y+5), c)
			continue
		}
		drawLine(img, round(r.X1), round(r.Y1), round(r.X2), round(r.Y2), c, dashed)
		drawArrow(img, r.X1, r.Y1, r.X2, r.Y2, c)
	}

	face := basicfont.Face7x13
	text := image.NewUniform(parseColor(t.TextColor))
	border := parseColor(t.NodeBorder)
	for _, p := range lay.Nodes {
		box := image.Rect(round(p.Rect.X), round(p.Rect.Y), round(p.Rect.X+p.Rect.W), round(p.Rect.Y+p.Rect.H))
		draw.Draw(img, box, image.NewUniform(parseColor(t.Fill(p.Node))), image.Point{}, draw.Src)
		strokeRect(img, box, border)

		label := fitLabel(face, p.Node.Label, box.Dx()-4)
		adv := font.MeasureString(face, label).Ceil()
		d := &font.Drawer{
			Dst:  img,
			Src:  text,
			Face: face,
			Dot:  fixed.P(box.Min.X+(box.Dx()-adv)/2, box.Min.Y+box.Dy()/2+face.Ascent/2),
		}
		d.DrawString(label)
	}

	return png.Encode(w, img)
}

// fitLabel truncates s until it fits in width pixels.
func fitLabel(face font.Face, s string, width int) string {
	if font.MeasureString(face, s).Ceil() <= width {
		return s
	}
	for n := len(s) - 1; n > 0; n-- {
		cut := truncLabel(s, n)
		if font.MeasureString(face, cut).Ceil() <= width {
			return cut
		}
	}
	return ""
}

func round(v float64) int { return int(math.Round(v)) }

func strokeRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}

// drawLine is Bresenham's algorithm. Dashed lines draw 4 pixels of every 7.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA, dashed bool) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for step := 0; ; step++ {
		if !dashed || step%7 < 4 {
			img.SetRGBA(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// drawArrow draws a head at (x2,y2) pointing away from (x1,y1).
func drawArrow(img *image.RGBA, x1, y1, x2, y2 float64, c color.RGBA) {
	angle := math.Atan2(y2-y1, x2-x1)
	const size, spread = 6.0, math.Pi / 7
	for _, a := range []float64{angle + math.Pi - spread, angle + math.Pi + spread} {
		drawLine(img, round(x2), round(y2), round(x2+size*math.Cos(a)), round(y2+size*math.Sin(a)), c, false)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
