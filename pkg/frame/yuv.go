package frame

import (
	"image"
)

func decodeI420(frame []byte, width, height int) (image.Image, func(), error) {
	yi := width * height
	cbi := yi + yi/4
	cri := cbi + yi/4

	if cri > len(frame) {
		return nil, noopRelease, errShortFrame(len(frame), cri)
	}

	return &image.YCbCr{
		Y:              frame[:yi],
		YStride:        width,
		Cb:             frame[yi:cbi],
		Cr:             frame[cbi:cri],
		CStride:        width / 2,
		SubsampleRatio: image.YCbCrSubsampleRatio420,
		Rect:           image.Rect(0, 0, width, height),
	}, noopRelease, nil
}

// semiPlanar splits an interleaved chroma plane. crFirst is true for NV21.
func semiPlanar(frame []byte, width, height int, crFirst bool) (image.Image, func(), error) {
	yi := width * height
	ci := yi + yi/2

	if ci > len(frame) {
		return nil, noopRelease, errShortFrame(len(frame), ci)
	}

	cb := make([]byte, 0, yi/4)
	cr := make([]byte, 0, yi/4)
	for i := yi; i+1 < ci; i += 2 {
		if crFirst {
			cr = append(cr, frame[i])
			cb = append(cb, frame[i+1])
		} else {
			cb = append(cb, frame[i])
			cr = append(cr, frame[i+1])
		}
	}

	return &image.YCbCr{
		Y:              frame[:yi],
		YStride:        width,
		Cb:             cb,
		Cr:             cr,
		CStride:        width / 2,
		SubsampleRatio: image.YCbCrSubsampleRatio420,
		Rect:           image.Rect(0, 0, width, height),
	}, noopRelease, nil
}

func decodeNV12(frame []byte, width, height int) (image.Image, func(), error) {
	return semiPlanar(frame, width, height, false)
}

func decodeNV21(frame []byte, width, height int) (image.Image, func(), error) {
	return semiPlanar(frame, width, height, true)
}

// packed422 unpacks 4:2:2 packed frames. yFirst is true for YUY2, false for UYVY.
func packed422(frame []byte, width, height int, yFirst bool) (image.Image, func(), error) {
	yi := width * height
	fi := 2 * yi

	if len(frame) < fi {
		return nil, noopRelease, errShortFrame(len(frame), fi)
	}

	y := make([]byte, yi)
	cb := make([]byte, yi/2)
	cr := make([]byte, yi/2)

	fast, slow := 0, 0
	for i := 0; i < fi; i += 4 {
		if yFirst {
			y[fast], cb[slow], y[fast+1], cr[slow] = frame[i], frame[i+1], frame[i+2], frame[i+3]
		} else {
			cb[slow], y[fast], cr[slow], y[fast+1] = frame[i], frame[i+1], frame[i+2], frame[i+3]
		}
		fast += 2
		slow++
	}

	return &image.YCbCr{
		Y:              y,
		YStride:        width,
		Cb:             cb,
		Cr:             cr,
		CStride:        width / 2,
		SubsampleRatio: image.YCbCrSubsampleRatio422,
		Rect:           image.Rect(0, 0, width, height),
	}, noopRelease, nil
}

func decodeYUY2(frame []byte, width, height int) (image.Image, func(), error) {
	return packed422(frame, width, height, true)
}

func decodeUYVY(frame []byte, width, height int) (image.Image, func(), error) {
	return packed422(frame, width, height, false)
}
