package signature

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strings"
)

// Surface is where a signature is captured.
type Surface interface {
	// HasNonBackgroundContent reports whether anything was put on the surface.
	HasNonBackgroundContent() bool
	// Clear resets the surface to its empty state.
	Clear()
	// Encode returns the payload stored in a Record.
	Encode() (string, error)
}

// Point is a pointer position in surface coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

var (
	background = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	ink        = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

// Raster is a white canvas that records free-hand strokes.
type Raster struct {
	img  *image.RGBA
	pen  int
	last *Point
}

// NewRaster creates a blank canvas of the given size.
func NewRaster(width, height int) *Raster {
	if width <= 0 {
		width = 400
	}
	if height <= 0 {
		height = 150
	}
	r := &Raster{img: image.NewRGBA(image.Rect(0, 0, width, height)), pen: 2}
	r.Clear()
	return r
}

// Bounds returns the canvas size.
func (r *Raster) Bounds() image.Rectangle {
	return r.img.Bounds()
}

// MoveTo starts a stroke and marks its first point.
func (r *Raster) MoveTo(p Point) {
	r.dot(p)
	r.last = &p
}

// LineTo extends the current stroke. Without a prior MoveTo it starts one.
func (r *Raster) LineTo(p Point) {
	if r.last == nil {
		r.MoveTo(p)
		return
	}
	r.line(*r.last, p)
	r.last = &p
}

// Lift ends the current stroke.
func (r *Raster) Lift() {
	r.last = nil
}

// HasNonBackgroundContent implements Surface.
func (r *Raster) HasNonBackgroundContent() bool {
	b := r.img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r.img.RGBAAt(x, y) != background {
				return true
			}
		}
	}
	return false
}

// Clear implements Surface.
func (r *Raster) Clear() {
	draw.Draw(r.img, r.img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)
	r.last = nil
}

// Encode implements Surface, returning a PNG data URL.
func (r *Raster) Encode() (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (r *Raster) dot(p Point) {
	half := r.pen / 2
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			pt := image.Pt(p.X+dx, p.Y+dy)
			if pt.In(r.img.Bounds()) {
				r.img.SetRGBA(pt.X, pt.Y, ink)
			}
		}
	}
}

// line plots with Bresenham's algorithm over the part of a-b that can
// reach the canvas.
func (r *Raster) line(a, b Point) {
	a, b, ok := r.clip(a, b)
	if !ok {
		return
	}
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	e := dx + dy
	x, y := a.X, a.Y
	for {
		r.dot(Point{X: x, Y: y})
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

// clip trims a-b to the canvas grown by the pen radius (Liang-Barsky).
// It reports false when the segment misses the canvas entirely.
func (r *Raster) clip(a, b Point) (Point, Point, bool) {
	half := float64(r.pen / 2)
	bounds := r.img.Bounds()
	xmin, ymin := float64(bounds.Min.X)-half, float64(bounds.Min.Y)-half
	xmax, ymax := float64(bounds.Max.X-1)+half, float64(bounds.Max.Y-1)+half

	x0, y0 := float64(a.X), float64(a.Y)
	dx, dy := float64(b.X)-x0, float64(b.Y)-y0
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, x0 - xmin},
		{dx, xmax - x0},
		{-dy, y0 - ymin},
		{dy, ymax - y0},
	}
	for _, edge := range edges {
		p, q := edge[0], edge[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return a, b, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return a, b, false
			}
			t1 = math.Min(t1, t)
		}
	}
	at := func(t float64) Point {
		return Point{X: int(math.Round(x0 + t*dx)), Y: int(math.Round(y0 + t*dy))}
	}
	return at(t0), at(t1), true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Text holds a typed signature rendered in a script font by the client.
type Text struct {
	value string
}

// Set replaces the typed text.
func (t *Text) Set(s string) {
	t.value = s
}

// Value returns the text as typed.
func (t *Text) Value() string {
	return t.value
}

// HasNonBackgroundContent implements Surface; whitespace does not count.
func (t *Text) HasNonBackgroundContent() bool {
	return strings.TrimSpace(t.value) != ""
}

// Clear implements Surface.
func (t *Text) Clear() {
	t.value = ""
}

// Encode implements Surface.
func (t *Text) Encode() (string, error) {
	return strings.TrimSpace(t.value), nil
}

var (
	_ Surface = (*Raster)(nil)
	_ Surface = (*Text)(nil)
)
