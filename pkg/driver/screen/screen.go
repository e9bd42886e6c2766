// Package screen provides a display capture driver. Displays are reachable through
// GetDisplayMedia; GetUserMedia never selects them.
package screen

import (
	"fmt"
	"image"
	"io"
	"time"

	"github.com/kbinani/screenshot"

	"github.com/pion/saycheese/internal/logging"
	"github.com/pion/saycheese/pkg/driver"
	"github.com/pion/saycheese/pkg/frame"
	"github.com/pion/saycheese/pkg/io/video"
	"github.com/pion/saycheese/pkg/prop"
)

const defaultFrameRate = 10

var logger = logging.NewLogger("saycheese/driver/screen")

type screen struct {
	displayIndex int
	bounds       func(int) image.Rectangle
	capture      func(int) (*image.RGBA, error)
	doneCh       chan struct{}
}

func init() {
	activeDisplays := screenshot.NumActiveDisplays()
	for i := 0; i < activeDisplays; i++ {
		priority := driver.PriorityNormal
		if i == 0 {
			priority = driver.PriorityHigh
		}

		err := driver.GetManager().Register(newScreen(i), driver.Info{
			Label:      fmt.Sprint(i),
			DeviceType: driver.Screen,
			Priority:   priority,
		})
		if err != nil {
			logger.Warnf("failed to register display %d: %v", i, err)
		}
	}
}

func newScreen(displayIndex int) *screen {
	return &screen{
		displayIndex: displayIndex,
		bounds:       screenshot.GetDisplayBounds,
		capture:      screenshot.CaptureDisplay,
	}
}

func (s *screen) Open() error {
	s.doneCh = make(chan struct{})
	return nil
}

func (s *screen) Close() error {
	close(s.doneCh)
	return nil
}

func (s *screen) VideoRecord(p prop.Media) (video.Reader, error) {
	fps := p.FrameRate
	if fps <= 0 {
		fps = defaultFrameRate
	}
	tick := time.NewTicker(time.Duration(float32(time.Second) / fps))
	done := s.doneCh

	r := video.ReaderFunc(func() (image.Image, func(), error) {
		select {
		case <-done:
			tick.Stop()
			return nil, func() {}, io.EOF
		default:
		}

		select {
		case <-done:
			tick.Stop()
			return nil, func() {}, io.EOF
		case <-tick.C:
		}

		img, err := s.capture(s.displayIndex)
		if err != nil {
			return nil, func() {}, err
		}
		return img, func() {}, nil
	})
	return r, nil
}

func (s *screen) Properties() []prop.Media {
	resolution := s.bounds(s.displayIndex)
	return []prop.Media{{
		Video: prop.Video{
			Width:       resolution.Dx(),
			Height:      resolution.Dy(),
			FrameFormat: frame.FormatRGBA,
		},
	}}
}
