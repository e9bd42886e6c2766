package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/blackjack/webcam"

	"github.com/pion/saycheese/internal/logging"
	"github.com/pion/saycheese/pkg/driver"
	"github.com/pion/saycheese/pkg/driver/availability"
	"github.com/pion/saycheese/pkg/frame"
	"github.com/pion/saycheese/pkg/io/video"
	"github.com/pion/saycheese/pkg/prop"
)

const (
	maxEmptyFrameCount = 5
	// frameTimeout is in seconds, as expected by webcam.WaitForFrame.
	frameTimeout = 5
)

var (
	errReadTimeout = errors.New("camera: read timeout")
	errEmptyFrame  = errors.New("camera: empty frame")
)

var logger = logging.NewLogger("saycheese/driver/camera")

// fourcc builds a V4L2 pixel format code.
func fourcc(a, b, c, d byte) webcam.PixelFormat {
	return webcam.PixelFormat(uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24)
}

var supportedFormats = map[webcam.PixelFormat]frame.Format{
	fourcc('Y', 'U', 'Y', 'V'): frame.FormatYUYV,
	fourcc('U', 'Y', 'V', 'Y'): frame.FormatUYVY,
	fourcc('N', 'V', '1', '2'): frame.FormatNV12,
	fourcc('N', 'V', '2', '1'): frame.FormatNV21,
	fourcc('Y', 'U', '1', '2'): frame.FormatI420,
	fourcc('M', 'J', 'P', 'G'): frame.FormatMJPEG,
}

// Camera implementation using v4l2
// Reference: https://linuxtv.org/downloads/v4l-dvb-apis/uapi/v4l/videodev.html#videodev
type camera struct {
	path    string
	cam     *webcam.Webcam
	formats map[frame.Format]webcam.PixelFormat
	mutex   sync.Mutex
	cancel  func()
}

func init() {
	discovered := make(map[string]struct{})
	discover(driver.GetManager(), discovered, "/dev/v4l/by-path/*")
	discover(driver.GetManager(), discovered, "/dev/video*")
}

// discover registers every device matching pattern whose real path has not been seen.
func discover(m *driver.Manager, discovered map[string]struct{}, pattern string) {
	devices, err := filepath.Glob(pattern)
	if err != nil {
		// No v4l device.
		return
	}
	for _, device := range devices {
		label := filepath.Base(device)
		reallink, err := os.Readlink(device)
		if err == nil {
			if !filepath.IsAbs(reallink) {
				reallink = filepath.Join(filepath.Dir(device), reallink)
			}
		} else {
			reallink = device
		}
		reallink = filepath.Clean(reallink)
		if _, ok := discovered[reallink]; ok {
			continue
		}
		discovered[reallink] = struct{}{}

		cam := newCamera(device)
		err = m.Register(cam, driver.Info{
			Label:      label + LabelSeparator + filepath.Base(reallink),
			DeviceType: driver.Camera,
		})
		if err != nil {
			logger.Warnf("failed to register %s: %v", device, err)
		}
	}
}

func newCamera(path string) *camera {
	formats := make(map[frame.Format]webcam.PixelFormat, len(supportedFormats))
	for k, v := range supportedFormats {
		formats[v] = k
	}

	return &camera{
		path:    path,
		formats: formats,
	}
}

func (c *camera) Open() error {
	cam, err := webcam.Open(c.path)
	if err != nil {
		return openError(c.path, err)
	}

	c.cam = cam
	return nil
}

// openError maps errno values to the errors callers can act on.
func openError(path string, err error) error {
	switch {
	case errors.Is(err, syscall.EACCES), errors.Is(err, syscall.EPERM):
		return fmt.Errorf("%s: %w", path, availability.ErrPermissionDenied)
	case errors.Is(err, syscall.EBUSY):
		return fmt.Errorf("%s: %w", path, availability.ErrBusy)
	case errors.Is(err, syscall.ENOENT), errors.Is(err, syscall.ENODEV):
		return fmt.Errorf("%s: %w", path, availability.ErrNoDevice)
	}
	return err
}

func (c *camera) Close() error {
	if c.cam == nil {
		return nil
	}

	if c.cancel != nil {
		// Let the reader knows that the caller has closed the camera
		c.cancel()
		// Wait until the reader unref the buffer
		c.mutex.Lock()
		defer c.mutex.Unlock()

		// StopStreaming frees the mmap buffers, so frames must have been copied out.
		if err := c.cam.StopStreaming(); err != nil {
			logger.Debugf("stop streaming %s: %v", c.path, err)
		}
		c.cancel = nil
	}

	err := c.cam.Close()
	c.cam = nil
	return err
}

func (c *camera) VideoRecord(p prop.Media) (video.Reader, error) {
	decoder, err := frame.NewDecoder(p.FrameFormat)
	if err != nil {
		return nil, err
	}

	pf, ok := c.formats[p.FrameFormat]
	if !ok {
		return nil, fmt.Errorf("camera: %s is not a v4l2 format", p.FrameFormat)
	}
	_, w, h, err := c.cam.SetImageFormat(pf, uint32(p.Width), uint32(p.Height))
	if err != nil {
		return nil, err
	}
	// The device may round the requested size.
	width, height := int(w), int(h)

	if err := c.cam.StartStreaming(); err != nil {
		return nil, err
	}
	logger.Infof("streaming %s at %dx%d %s", c.path, width, height, p.FrameFormat)

	cam := c.cam
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	var buf []byte
	r := video.ReaderFunc(func() (image.Image, func(), error) {
		// Lock to avoid accessing the buffer after StopStreaming()
		c.mutex.Lock()
		defer c.mutex.Unlock()

		for i := 0; i < maxEmptyFrameCount; i++ {
			if ctx.Err() != nil {
				// Return EOF if the camera is already closed.
				return nil, func() {}, io.EOF
			}

			err := cam.WaitForFrame(frameTimeout)
			switch err.(type) {
			case nil:
			case *webcam.Timeout:
				return nil, func() {}, errReadTimeout
			default:
				// Camera has been stopped.
				return nil, func() {}, err
			}

			b, err := cam.ReadFrame()
			if err != nil {
				return nil, func() {}, err
			}

			// Frame is empty.
			// Retry reading and return errEmptyFrame if it exceeds maxEmptyFrameCount.
			if len(b) == 0 {
				continue
			}

			if len(b) > len(buf) {
				buf = make([]byte, len(b))
			}

			// Move the memory from mmap to Go so that images outlive StopStreaming.
			n := copy(buf, b)
			return decoder.Decode(buf[:n], width, height)
		}
		return nil, func() {}, errEmptyFrame
	})

	return r, nil
}

func (c *camera) Properties() []prop.Media {
	properties := make([]prop.Media, 0)
	for pf := range c.cam.GetSupportedFormats() {
		format, ok := supportedFormats[pf]
		if !ok {
			continue
		}
		for _, size := range c.cam.GetSupportedFrameSizes(pf) {
			properties = append(properties, prop.Media{
				Video: prop.Video{
					Width:       int(size.MaxWidth),
					Height:      int(size.MaxHeight),
					FrameFormat: format,
				},
			})
		}
	}
	return properties
}
