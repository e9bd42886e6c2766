// Package videotest provides a synthetic camera for tests and demos. Importing it
// registers a "VideoTest" camera with the global driver manager.
package videotest

import (
	"context"
	"image"
	"io"
	"math/rand"
	"time"

	"github.com/pion/saycheese/pkg/driver"
	"github.com/pion/saycheese/pkg/frame"
	"github.com/pion/saycheese/pkg/io/video"
	"github.com/pion/saycheese/pkg/prop"
)

// Label is the label of the camera registered by init.
const Label = "VideoTest"

func init() {
	err := driver.GetManager().Register(NewAdapter(), driver.Info{
		Label:      Label,
		DeviceType: driver.Camera,
		Priority:   driver.PriorityLow,
	})
	if err != nil {
		panic(err)
	}
}

// The default sizes mimic a typical USB webcam.
var defaultProperties = []prop.Media{
	{Video: prop.Video{Width: 640, Height: 480, FrameRate: 30, FrameFormat: frame.FormatYUY2}},
	{Video: prop.Video{Width: 1280, Height: 720, FrameRate: 30, FrameFormat: frame.FormatYUY2}},
}

// Adapter is a camera painting SMPTE-like colour bars with a noisy corner, so that
// consecutive frames differ.
type Adapter struct {
	props  []prop.Media
	closed <-chan struct{}
	cancel func()
}

// NewAdapter creates a synthetic camera offering props, or 640x480 and 1280x720 when
// props is empty.
func NewAdapter(props ...prop.Media) *Adapter {
	if len(props) == 0 {
		props = defaultProperties
	}
	return &Adapter{props: props}
}

// Open implements driver.Adapter.
func (d *Adapter) Open() error {
	ctx, cancel := context.WithCancel(context.Background())
	d.closed = ctx.Done()
	d.cancel = cancel
	return nil
}

// Close implements driver.Adapter.
func (d *Adapter) Close() error {
	if d.cancel != nil {
		d.cancel()
	}
	return nil
}

// Properties implements driver.Adapter.
func (d *Adapter) Properties() []prop.Media {
	return d.props
}

// VideoRecord implements driver.VideoRecorder.
func (d *Adapter) VideoRecord(p prop.Media) (video.Reader, error) {
	if p.FrameRate == 0 {
		p.FrameRate = 30
	}
	if p.Width == 0 || p.Height == 0 {
		p.Width, p.Height = d.props[0].Width, d.props[0].Height
	}

	colors := [][3]byte{
		{235, 128, 128},
		{210, 16, 146},
		{170, 166, 16},
		{145, 54, 34},
		{107, 202, 222},
		{82, 90, 240},
		{41, 240, 110},
	}

	yi := p.Width * p.Height
	ci := yi / 2
	yyBase := make([]byte, yi)
	cbBase := make([]byte, ci)
	crBase := make([]byte, ci)
	hColorBarEnd := p.Height * 3 / 4
	wGradationEnd := p.Width * 5 / 7
	for y := 0; y < hColorBarEnd; y++ {
		yi := p.Width * y
		ci := p.Width * y / 2
		for x := 0; x < p.Width; x++ {
			c := x * 7 / p.Width
			yyBase[yi+x] = uint8(uint16(colors[c][0]) * 75 / 100)
			cbBase[ci+x/2] = colors[c][1]
			crBase[ci+x/2] = colors[c][2]
		}
	}
	for y := hColorBarEnd; y < p.Height; y++ {
		yi := p.Width * y
		ci := p.Width * y / 2
		for x := 0; x < wGradationEnd; x++ {
			yyBase[yi+x] = uint8(x * 255 / wGradationEnd)
			cbBase[ci+x/2] = 128
			crBase[ci+x/2] = 128
		}
		for x := wGradationEnd; x < p.Width; x++ {
			cbBase[ci+x/2] = 128
			crBase[ci+x/2] = 128
		}
	}
	random := rand.New(rand.NewSource(0))

	tick := time.NewTicker(time.Duration(float32(time.Second) / p.FrameRate))
	closed := d.closed

	r := video.ReaderFunc(func() (image.Image, func(), error) {
		select {
		case <-closed:
			tick.Stop()
			return nil, func() {}, io.EOF
		default:
		}

		select {
		case <-closed:
			tick.Stop()
			return nil, func() {}, io.EOF
		case <-tick.C:
		}

		// Every frame gets its own planes so that readers may keep it.
		yy := make([]byte, yi)
		cb := make([]byte, ci)
		cr := make([]byte, ci)
		copy(yy, yyBase)
		copy(cb, cbBase)
		copy(cr, crBase)
		for y := hColorBarEnd; y < p.Height; y++ {
			yi := p.Width * y
			for x := wGradationEnd; x < p.Width; x++ {
				yy[yi+x] = uint8(random.Int31n(2) * 255)
			}
		}
		return &image.YCbCr{
			Y:              yy,
			YStride:        p.Width,
			Cb:             cb,
			Cr:             cr,
			CStride:        p.Width / 2,
			SubsampleRatio: image.YCbCrSubsampleRatio422,
			Rect:           image.Rect(0, 0, p.Width, p.Height),
		}, func() {}, nil
	})

	return r, nil
}
