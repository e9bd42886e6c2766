// Package canvas is an in-memory RGBA drawing surface, optionally shown in a page as
// a <canvas> element.
package canvas

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strconv"
	"sync"

	"github.com/pion/saycheese/pkg/dom"
)

// ErrFrozen is returned when asking for a drawing context on a frozen canvas.
var ErrFrozen = errors.New("canvas: frozen")

// Canvas is safe for concurrent use.
type Canvas struct {
	mu     sync.RWMutex
	img    *image.RGBA
	el     *dom.Element
	frozen bool
}

// New creates a detached, transparent canvas.
func New(width, height int) *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// NewElement creates a canvas backed by a <canvas> element of doc. The element is not
// inserted in the page.
func NewElement(doc *dom.Document, width, height int) *Canvas {
	c := New(width, height)
	c.el = doc.CreateElement("canvas")
	c.el.SetAttribute("width", strconv.Itoa(width))
	c.el.SetAttribute("height", strconv.Itoa(height))
	c.el.SetIntrinsicSize(width, height)
	return c
}

// Element returns the backing element, or nil for detached canvases.
func (c *Canvas) Element() *dom.Element {
	return c.el
}

// Width of the bitmap in pixels.
func (c *Canvas) Width() int {
	return c.img.Rect.Dx()
}

// Height of the bitmap in pixels.
func (c *Canvas) Height() int {
	return c.img.Rect.Dy()
}

// Bounds of the bitmap.
func (c *Canvas) Bounds() image.Rectangle {
	return c.img.Rect
}

// At returns the colour of a pixel.
func (c *Canvas) At(x, y int) color.Color {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.img.At(x, y)
}

// Image returns a copy of the bitmap.
func (c *Canvas) Image() *image.RGBA {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cp := image.NewRGBA(c.img.Rect)
	copy(cp.Pix, c.img.Pix)
	return cp
}

// Freeze makes the bitmap read-only. It cannot be undone.
func (c *Canvas) Freeze() {
	c.mu.Lock()
	c.frozen = true
	c.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (c *Canvas) Frozen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frozen
}

// GetContext2D returns a drawing context, or ErrFrozen.
func (c *Canvas) GetContext2D() (*Context, error) {
	if c.Frozen() {
		return nil, ErrFrozen
	}
	return &Context{canvas: c}, nil
}

// EncodePNG writes the bitmap as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return png.Encode(w, c.img)
}

// EncodeJPEG writes the bitmap as JPEG. quality ranges from 1 to 100.
func (c *Canvas) EncodeJPEG(w io.Writer, quality int) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return jpeg.Encode(w, c.img, &jpeg.Options{Quality: quality})
}

// DataURL returns the bitmap as a PNG data URL.
func (c *Canvas) DataURL() (string, error) {
	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
