package video

import (
	"image"
	"time"

	"github.com/pion/saycheese/pkg/prop"
)

// DetectChanges calls onChange whenever the frame size changes, and every interval to
// refresh the measured frame rate. A zero interval reports size changes only.
func DetectChanges(interval time.Duration, onChange func(prop.Media)) TransformFunc {
	return func(r Reader) Reader {
		var current prop.Media
		var lastTaken time.Time
		var frames uint
		return ReaderFunc(func() (image.Image, func(), error) {
			img, release, err := r.Read()
			if err != nil {
				return nil, noopRelease, err
			}

			var dirty bool
			bounds := img.Bounds()
			if current.Width != bounds.Dx() || current.Height != bounds.Dy() {
				current.Width, current.Height = bounds.Dx(), bounds.Dy()
				dirty = true
			}

			now := time.Now()
			if lastTaken.IsZero() {
				lastTaken = now
			}
			if elapsed := now.Sub(lastTaken); interval > 0 && elapsed >= interval {
				current.FrameRate = float32(float64(frames) / elapsed.Seconds())
				frames = 0
				lastTaken = now
				dirty = true
			}

			if dirty {
				onChange(current)
			}

			frames++
			return img, release, nil
		})
	}
}
