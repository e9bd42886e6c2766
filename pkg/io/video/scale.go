package video

import (
	"image"

	"golang.org/x/image/draw"
)

// Scaler represents scaling algorithm
type Scaler draw.Scaler

// List of scaling algorithms
var (
	ScalerNearestNeighbor = Scaler(draw.NearestNeighbor)
	ScalerApproxBiLinear  = Scaler(draw.ApproxBiLinear)
	ScalerBiLinear        = Scaler(draw.BiLinear)
	ScalerCatmullRom      = Scaler(draw.CatmullRom)
)

// FitWidth returns the size of a width x height frame scaled to targetWidth, keeping
// the aspect ratio. Fractional heights are truncated.
func FitWidth(width, height, targetWidth int) (int, int) {
	if width <= 0 || height <= 0 {
		return targetWidth, 0
	}
	return targetWidth, int(float64(height) / (float64(width) / float64(targetWidth)))
}

// Scale returns video scaling transform producing RGBA frames.
// Setting scaler=nil to use default scaler. (ScalerNearestNeighbor)
// A non-positive width or height keeps the aspect ratio of the incoming frame.
func Scale(width, height int, scaler Scaler) TransformFunc {
	if width <= 0 && height <= 0 {
		panic("video: both width and height are non-positive")
	}
	if scaler == nil {
		scaler = ScalerNearestNeighbor
	}

	return func(r Reader) Reader {
		var dst *image.RGBA
		return ReaderFunc(func() (image.Image, func(), error) {
			img, release, err := r.Read()
			if err != nil {
				return nil, noopRelease, err
			}
			defer release()

			src := img.Bounds()
			w, h := width, height
			switch {
			case h <= 0:
				w, h = FitWidth(src.Dx(), src.Dy(), width)
			case w <= 0:
				h, w = FitWidth(src.Dy(), src.Dx(), height)
			}

			rect := image.Rect(0, 0, w, h)
			if dst == nil || dst.Rect != rect {
				dst = image.NewRGBA(rect)
			}
			scaler.Scale(dst, rect, img, src, draw.Src, nil)
			return dst, noopRelease, nil
		})
	}
}
