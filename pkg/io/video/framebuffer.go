package video

import (
	"image"

	"golang.org/x/image/draw"
)

// FrameBuffer keeps a private copy of the latest frame it was given.
type FrameBuffer struct {
	ycbcr *image.YCbCr
	rgba  *image.RGBA
	last  image.Image
}

// NewFrameBuffer creates an empty FrameBuffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// Load returns the stored copy, or nil when nothing has been stored yet.
func (buff *FrameBuffer) Load() image.Image {
	return buff.last
}

// StoreCopy copies src into the buffer, reusing the memory of the previous copy when
// the format and resolution did not change. YCbCr frames keep their layout; any other
// format is converted to RGBA.
func (buff *FrameBuffer) StoreCopy(src image.Image) {
	if v, ok := src.(*image.YCbCr); ok {
		if buff.ycbcr == nil || buff.ycbcr.Rect != v.Rect || buff.ycbcr.SubsampleRatio != v.SubsampleRatio {
			buff.ycbcr = image.NewYCbCr(v.Rect, v.SubsampleRatio)
		}
		dst := buff.ycbcr
		for y := v.Rect.Min.Y; y < v.Rect.Max.Y; y++ {
			copy(dst.Y[dst.YOffset(v.Rect.Min.X, y):], v.Y[v.YOffset(v.Rect.Min.X, y):v.YOffset(v.Rect.Min.X, y)+v.Rect.Dx()])
		}
		copyChroma(dst, v)
		buff.last = dst
		return
	}

	bounds := src.Bounds()
	if buff.rgba == nil || buff.rgba.Rect != bounds {
		buff.rgba = image.NewRGBA(bounds)
	}
	draw.Draw(buff.rgba, bounds, src, bounds.Min, draw.Src)
	buff.last = buff.rgba
}

func copyChroma(dst, src *image.YCbCr) {
	if dst.CStride == 0 {
		return
	}
	rows := len(dst.Cb) / dst.CStride
	for row := 0; row < rows; row++ {
		start := row * src.CStride
		if start >= len(src.Cb) {
			return
		}
		copy(dst.Cb[row*dst.CStride:(row+1)*dst.CStride], src.Cb[start:])
		copy(dst.Cr[row*dst.CStride:(row+1)*dst.CStride], src.Cr[start:])
	}
}
