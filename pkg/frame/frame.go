// Package frame turns raw frames handed out by capture devices into images.
package frame

import (
	"fmt"
	"image"
)

// Format is the pixel layout of a raw frame.
type Format string

const (
	// FormatI420 https://www.fourcc.org/pixel-format/yuv-i420/
	FormatI420 Format = "I420"
	// FormatNV12 https://www.fourcc.org/pixel-format/yuv-nv12/
	FormatNV12 Format = "NV12"
	// FormatNV21 https://www.fourcc.org/pixel-format/yuv-nv21/
	FormatNV21 Format = "NV21"
	// FormatYUY2 https://www.fourcc.org/pixel-format/yuv-yuy2/
	FormatYUY2 Format = "YUY2"
	// FormatUYVY https://www.fourcc.org/pixel-format/yuv-uyvy/
	FormatUYVY Format = "UYVY"
	// FormatRGBA is 8 bits per channel, red first.
	FormatRGBA Format = "RGBA"
	// FormatMJPEG https://www.fourcc.org/mjpg/
	FormatMJPEG Format = "MJPEG"
)

// FormatYUYV is an alias of FormatYUY2
const FormatYUYV = FormatYUY2

// Decoder converts one raw frame into an image. The returned release function must be
// called once the image is no longer used.
type Decoder interface {
	Decode(frame []byte, width, height int) (image.Image, func(), error)
}

// DecoderFunc is a proxy type for Decoder
type DecoderFunc func(frame []byte, width, height int) (image.Image, func(), error)

// Decode implements Decoder.
func (f DecoderFunc) Decode(frame []byte, width, height int) (image.Image, func(), error) {
	return f(frame, width, height)
}

// NewDecoder returns the decoder for f.
func NewDecoder(f Format) (Decoder, error) {
	var decoder DecoderFunc

	switch f {
	case FormatI420:
		decoder = decodeI420
	case FormatNV12:
		decoder = decodeNV12
	case FormatNV21:
		decoder = decodeNV21
	case FormatYUY2:
		decoder = decodeYUY2
	case FormatUYVY:
		decoder = decodeUYVY
	case FormatRGBA:
		decoder = decodeRGBA
	case FormatMJPEG:
		decoder = decodeMJPEG
	default:
		return nil, fmt.Errorf("frame: %s is not supported", f)
	}

	return decoder, nil
}

func noopRelease() {}

func errShortFrame(got, want int) error {
	return fmt.Errorf("frame length (%d) less than expected (%d)", got, want)
}
