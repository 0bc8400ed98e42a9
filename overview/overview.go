// Package overview renders a path to a flat image: the camera grid, map
// object rectangles and collision lines, with camera names drawn in the
// corner of each cell.
package overview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"

	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/milk9111/pathedit/model"
)

// Margin matches the empty border the editor keeps around the grid.
const Margin = 100

type Options struct {
	// Scale multiplies level pixels. Zero means 1.
	Scale float64
	// Labels draws camera names.
	Labels bool

	Background color.Color
	Cell       color.Color
	EmptyCell  color.Color
	Grid       color.Color
	Object     color.Color
	Collision  color.Color
	Text       color.Color
}

func DefaultOptions() Options {
	return Options{
		Scale:      1,
		Labels:     true,
		Background: colornames.Black,
		Cell:       colornames.Darkslategray,
		EmptyCell:  color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff},
		Grid:       colornames.Gray,
		Object:     colornames.Orange,
		Collision:  colornames.Lime,
		Text:       colornames.White,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Scale <= 0 {
		o.Scale = d.Scale
	}
	if o.Background == nil {
		o.Background = d.Background
	}
	if o.Cell == nil {
		o.Cell = d.Cell
	}
	if o.EmptyCell == nil {
		o.EmptyCell = d.EmptyCell
	}
	if o.Grid == nil {
		o.Grid = d.Grid
	}
	if o.Object == nil {
		o.Object = d.Object
	}
	if o.Collision == nil {
		o.Collision = d.Collision
	}
	if o.Text == nil {
		o.Text = d.Text
	}
	return o
}

type canvas struct {
	img   *image.RGBA
	scale float64
}

func (c *canvas) pt(x, y int) (int, int) {
	return int(math.Round(float64(x+Margin) * c.scale)), int(math.Round(float64(y+Margin) * c.scale))
}

// Render draws doc into a new image sized to the grid plus margin.
func Render(doc *model.Document, opts Options) *image.RGBA {
	opts = opts.withDefaults()
	info := doc.MapInfo()
	w := int(math.Ceil(float64(info.XSize*info.XGridSize+2*Margin) * opts.Scale))
	h := int(math.Ceil(float64(info.YSize*info.YGridSize+2*Margin) * opts.Scale))
	c := &canvas{img: image.NewRGBA(image.Rect(0, 0, w, h)), scale: opts.Scale}
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	for y := 0; y < info.YSize; y++ {
		for x := 0; x < info.XSize; x++ {
			fill := opts.EmptyCell
			if doc.CameraAt(x, y) != nil {
				fill = opts.Cell
			}
			c.fill(x*info.XGridSize, y*info.YGridSize, info.XGridSize, info.YGridSize, fill)
			c.outline(x*info.XGridSize, y*info.YGridSize, info.XGridSize, info.YGridSize, opts.Grid)
		}
	}

	for _, cam := range doc.Cameras() {
		for _, o := range cam.MapObjects {
			c.outline(o.Rect.X, o.Rect.Y, o.Rect.W, o.Rect.H, opts.Object)
		}
	}
	for _, col := range doc.Collisions() {
		x1, y1 := c.pt(col.Line.X1, col.Line.Y1)
		x2, y2 := c.pt(col.Line.X2, col.Line.Y2)
		c.line(x1, y1, x2, y2, opts.Collision)
	}

	if opts.Labels {
		d := &font.Drawer{Dst: c.img, Src: image.NewUniform(opts.Text), Face: basicfont.Face7x13}
		for _, cam := range doc.Cameras() {
			if cam.Name == "" {
				continue
			}
			x, y := c.pt(cam.X*info.XGridSize, cam.Y*info.YGridSize)
			d.Dot = fixed.P(x+3, y+basicfont.Face7x13.Ascent+2)
			d.DrawString(cam.Name)
		}
	}
	return c.img
}

func (c *canvas) fill(x, y, w, h int, col color.Color) {
	x0, y0 := c.pt(x, y)
	x1, y1 := c.pt(x+w, y+h)
	draw.Draw(c.img, image.Rect(x0, y0, x1, y1), image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *canvas) outline(x, y, w, h int, col color.Color) {
	x0, y0 := c.pt(x, y)
	x1, y1 := c.pt(x+w, y+h)
	c.line(x0, y0, x1, y0, col)
	c.line(x1, y0, x1, y1, col)
	c.line(x1, y1, x0, y1, col)
	c.line(x0, y1, x0, y0, col)
}

// line is Bresenham over integer image coordinates.
func (c *canvas) line(x0, y0, x1, y1 int, col color.Color) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.img.Set(x0, y0, col)
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

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// WritePNG encodes the rendered document as PNG.
func WritePNG(w io.Writer, doc *model.Document, opts Options) error {
	if err := png.Encode(w, Render(doc, opts)); err != nil {
		return fmt.Errorf("overview: encode png: %w", err)
	}
	return nil
}

// WritePNGFile renders doc to a PNG file at path.
func WritePNGFile(path string, doc *model.Document, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("overview: %w", err)
	}
	if err := WritePNG(f, doc, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
