// Package video provides frame readers and the transforms applied between a capture
// device and the surfaces that display it.
package video

import (
	"image"
)

// Reader hands out decoded frames. release must be called when the frame is no longer
// used; the reader may reuse its memory afterwards.
type Reader interface {
	Read() (img image.Image, release func(), err error)
}

// ReaderFunc is a proxy type to make easier for users to implement Reader
type ReaderFunc func() (img image.Image, release func(), err error)

// Read implements Reader.
func (rf ReaderFunc) Read() (img image.Image, release func(), err error) {
	img, release, err = rf()
	return
}

// TransformFunc produces a new Reader that will produces a transformed video
type TransformFunc func(r Reader) Reader

// Merge merges transforms and produces a new TransformFunc that will execute
// transforms in order
func Merge(transforms ...TransformFunc) TransformFunc {
	return func(r Reader) Reader {
		for _, transform := range transforms {
			if transform == nil {
				continue
			}

			r = transform(r)
		}

		return r
	}
}

func noopRelease() {}
