package canvas

import (
	"image"

	"golang.org/x/image/draw"
)

// Context draws onto a Canvas.
type Context struct {
	canvas *Canvas
}

// Canvas returns the canvas the context draws on.
func (ctx *Context) Canvas() *Canvas {
	return ctx.canvas
}

// DrawImage copies img at its natural size with its top-left corner at (dx, dy).
// Parts falling outside the canvas are clipped.
func (ctx *Context) DrawImage(img image.Image, dx, dy int) {
	c := ctx.canvas
	c.mu.Lock()
	defer c.mu.Unlock()

	src := img.Bounds()
	dst := image.Rectangle{Min: image.Pt(dx, dy), Max: image.Pt(dx+src.Dx(), dy+src.Dy())}
	draw.Draw(c.img, dst, img, src.Min, draw.Over)
}

// DrawImageScaled draws img stretched into the dw x dh rectangle at (dx, dy).
func (ctx *Context) DrawImageScaled(img image.Image, dx, dy, dw, dh int) {
	c := ctx.canvas
	c.mu.Lock()
	defer c.mu.Unlock()

	dst := image.Rect(dx, dy, dx+dw, dy+dh)
	draw.ApproxBiLinear.Scale(c.img, dst, img, img.Bounds(), draw.Over, nil)
}

// ClearRect makes the rectangle transparent.
func (ctx *Context) ClearRect(x, y, w, h int) {
	c := ctx.canvas
	c.mu.Lock()
	defer c.mu.Unlock()

	draw.Draw(c.img, image.Rect(x, y, x+w, y+h), image.Transparent, image.Point{}, draw.Src)
}
