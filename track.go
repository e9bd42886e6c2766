package saycheese

import (
	"image"
	"sync"

	"github.com/google/uuid"

	"github.com/pion/saycheese/pkg/driver"
	"github.com/pion/saycheese/pkg/io/video"
	"github.com/pion/saycheese/pkg/prop"
)

// Track is an interface that represent MediaStreamTrack
// Reference: https://w3c.github.io/mediacapture-main/#mediastreamtrack
type Track interface {
	ID() string
	Kind() MediaDeviceType
	Label() string
	// Properties returns the settings the device was started with.
	Properties() prop.Media
	// OnEnded registers a handler called once when the source stops producing frames.
	// err is io.EOF after Close.
	OnEnded(func(err error))
	// Close stops the track and releases the device.
	Close() error
}

// VideoTrack is a Track carrying frames.
type VideoTrack interface {
	Track
	// NewVideoReader returns a reader of the track frames. Readers share the source:
	// each frame goes to exactly one of them.
	NewVideoReader() video.Reader
}

type videoTrack struct {
	id     string
	label  string
	props  prop.Media
	source video.Reader
	closer func() error

	mu        sync.Mutex
	onEnded   []func(error)
	ended     bool
	closeOnce sync.Once
	closeErr  error
}

// NewVideoTrack wraps an already started reader. closer is called once by Close.
func NewVideoTrack(label string, props prop.Media, source video.Reader, closer func() error) VideoTrack {
	if closer == nil {
		closer = func() error { return nil }
	}
	return &videoTrack{
		id:     uuid.NewString(),
		label:  label,
		props:  props,
		source: source,
		closer: closer,
	}
}

func newDriverTrack(d driver.Driver, constraints MediaTrackConstraints, selected prop.Media) (*videoTrack, error) {
	recorder, ok := d.(driver.VideoRecorder)
	if !ok {
		return nil, errNotVideoRecorder
	}

	if err := d.Open(); err != nil {
		return nil, openError(err)
	}

	r, err := recorder.VideoRecord(selected)
	if err != nil {
		// The wrapper already released the device.
		return nil, err
	}
	if constraints.VideoTransform != nil {
		r = constraints.VideoTransform(r)
	}

	return NewVideoTrack(d.Info().Label, selected, r, d.Close).(*videoTrack), nil
}

func (t *videoTrack) ID() string {
	return t.id
}

func (t *videoTrack) Kind() MediaDeviceType {
	return VideoInput
}

func (t *videoTrack) Label() string {
	return t.label
}

func (t *videoTrack) Properties() prop.Media {
	return t.props
}

func (t *videoTrack) OnEnded(handler func(error)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onEnded = append(t.onEnded, handler)
}

func (t *videoTrack) NewVideoReader() video.Reader {
	return video.ReaderFunc(func() (image.Image, func(), error) {
		img, release, err := t.source.Read()
		if err != nil {
			t.end(err)
		}
		return img, release, err
	})
}

func (t *videoTrack) end(err error) {
	t.mu.Lock()
	if t.ended {
		t.mu.Unlock()
		return
	}
	t.ended = true
	handlers := t.onEnded
	t.mu.Unlock()

	for _, h := range handlers {
		h(err)
	}
}

func (t *videoTrack) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.closer()
	})
	return t.closeErr
}
