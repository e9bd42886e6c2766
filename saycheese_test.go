package saycheese

import (
	"context"
	"errors"
	"image"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pion/saycheese/pkg/canvas"
	"github.com/pion/saycheese/pkg/dom"
	"github.com/pion/saycheese/pkg/driver"
	"github.com/pion/saycheese/pkg/driver/videotest"
	"github.com/pion/saycheese/pkg/frame"
	"github.com/pion/saycheese/pkg/io/video"
	"github.com/pion/saycheese/pkg/prop"
)

const eventTimeout = 5 * time.Second

const testPage = `<!DOCTYPE html>
<html><body>
<h1 style="height: 40px">Say cheese</h1>
<div id="camera"></div>
<div class="other"></div>
</body></html>`

func newTestDocument(t *testing.T) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(testPage)
	require.NoError(t, err)
	return doc
}

func newTestCamera(t *testing.T, width, height int) *MediaDevices {
	t.Helper()
	m := driver.NewManager()
	err := m.Register(videotest.NewAdapter(prop.Media{
		Video: prop.Video{Width: width, Height: height, FrameRate: 100, FrameFormat: frame.FormatYUY2},
	}), driver.Info{Label: "test", DeviceType: driver.Camera, Priority: driver.PriorityNormal})
	require.NoError(t, err)
	return NewMediaDevices(WithDriverManager(m))
}

// record collects the payloads of event.
func record(s *Session, event Event) <-chan interface{} {
	ch := make(chan interface{}, 64)
	s.On(event, func(data interface{}) { ch <- data })
	return ch
}

func receive(t *testing.T, ch <-chan interface{}) interface{} {
	t.Helper()
	select {
	case data := <-ch:
		return data
	case <-time.After(eventTimeout):
		t.Fatal("timed out waiting for an event")
		return nil
	}
}

func assertNoEvent(t *testing.T, ch <-chan interface{}) {
	t.Helper()
	select {
	case data := <-ch:
		t.Fatalf("unexpected event carrying %v", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNew(t *testing.T) {
	doc := newTestDocument(t)

	s, err := New(doc, "#camera")
	require.NoError(t, err)
	assert.Equal(t, "relative", s.Container().Style().Get("position"))
	assert.Equal(t, StateIdle, s.State())
	assert.Nil(t, s.Stream())
	assert.Nil(t, s.Preview())
	assert.Nil(t, s.Canvas())
	assert.Empty(t, s.Snapshots())
}

func TestNewNoContainer(t *testing.T) {
	doc := newTestDocument(t)

	s, err := New(doc, "#missing")
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrNoContainer)

	_, err = New(doc, "div[")
	assert.Error(t, err)
}

func TestStartNotSupported(t *testing.T) {
	doc := newTestDocument(t)
	s, err := New(doc, "#camera", WithUserMedia(nil))
	require.NoError(t, err)

	errs := record(s, EventError)
	starts := record(s, EventStart)

	assert.ErrorIs(t, s.Start(context.Background()), ErrNotSupported)
	assert.Equal(t, NotSupported, receive(t, errs))
	assertNoEvent(t, errs)
	assertNoEvent(t, starts)

	assert.Equal(t, StateIdle, s.State())
	assert.Empty(t, s.Container().Children())
}

type fakeUserMedia struct {
	mu       sync.Mutex
	requests int
	stream   MediaStream
	err      error
	release  chan struct{}
}

func (f *fakeUserMedia) GetUserMedia(MediaStreamConstraints) (MediaStream, error) {
	f.mu.Lock()
	f.requests++
	f.mu.Unlock()
	if f.release != nil {
		<-f.release
	}
	return f.stream, f.err
}

func (f *fakeUserMedia) GetDisplayMedia(c MediaStreamConstraints) (MediaStream, error) {
	return f.GetUserMedia(c)
}

func (f *fakeUserMedia) EnumerateDevices() []MediaDeviceInfo {
	return nil
}

func (f *fakeUserMedia) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func TestStartAcquisitionError(t *testing.T) {
	hardwareErr := errors.New("camera unplugged")
	doc := newTestDocument(t)
	um := &fakeUserMedia{err: hardwareErr}
	s, err := New(doc, "#camera", WithUserMedia(um))
	require.NoError(t, err)

	errs := record(s, EventError)
	require.NoError(t, s.Start(context.Background()))

	assert.Same(t, hardwareErr, receive(t, errs))
	assertNoEvent(t, errs)
	assert.Equal(t, 1, um.Requests())
	assert.Equal(t, StateIdle, s.State())
	assert.Nil(t, s.Stream())
}

func TestStartPermissionDenied(t *testing.T) {
	m := driver.NewManager()
	require.NoError(t, m.Register(videotest.NewAdapter(), driver.Info{Label: "test", DeviceType: driver.Camera}))
	var asked []MediaDeviceInfo
	um := NewMediaDevices(WithDriverManager(m), WithPermission(func(info MediaDeviceInfo) error {
		asked = append(asked, info)
		return ErrPermissionDenied
	}))

	s, err := New(newTestDocument(t), "#camera", WithUserMedia(um))
	require.NoError(t, err)
	errs := record(s, EventError)

	require.NoError(t, s.Start(context.Background()))
	payload, ok := receive(t, errs).(error)
	require.True(t, ok)
	assert.ErrorIs(t, payload, ErrPermissionDenied)

	require.Len(t, asked, 1)
	assert.Equal(t, "test", asked[0].Label)
	assert.Equal(t, VideoInput, asked[0].Kind)
	for _, d := range m.Query(driver.FilterVideoRecorder()) {
		assert.Equal(t, driver.StateClosed, d.Status())
	}
}

func TestStartCanceled(t *testing.T) {
	closed := make(chan struct{})
	track := NewVideoTrack("late", prop.Media{}, video.ReaderFunc(func() (image.Image, func(), error) {
		return nil, func() {}, io.EOF
	}), func() error {
		close(closed)
		return nil
	})
	stream, err := NewMediaStream(track)
	require.NoError(t, err)
	um := &fakeUserMedia{stream: stream, release: make(chan struct{})}

	s, err := New(newTestDocument(t), "#camera", WithUserMedia(um))
	require.NoError(t, err)
	errs := record(s, EventError)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Equal(t, context.Canceled, receive(t, errs))
	assert.Equal(t, StateIdle, s.State())

	// A stream granted after the session gave up is released.
	close(um.release)
	select {
	case <-closed:
	case <-time.After(eventTimeout):
		t.Fatal("late stream was not released")
	}
	assert.Nil(t, s.Stream())
}

func TestSessionLifecycle(t *testing.T) {
	doc := newTestDocument(t)
	urls := NewObjectURLs()
	s, err := New(doc, "#camera", WithUserMedia(newTestCamera(t, 1280, 720)), WithObjectURLs(urls))
	require.NoError(t, err)

	type boxes struct{ video, canvas dom.Box }
	started := make(chan boxes, 4)
	s.On(EventStart, func(interface{}) {
		started <- boxes{s.Preview().Element().Box(), s.Canvas().Element().Box()}
	})
	snapshots := record(s, EventSnapshot)
	stops := record(s, EventStop)
	errs := record(s, EventError)

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyStarted)

	var b boxes
	select {
	case b = <-started:
	case <-time.After(eventTimeout):
		t.Fatal("timed out waiting for start")
	}
	assert.Equal(t, b.video, b.canvas)
	assert.Equal(t, 1280, b.canvas.Width)
	assert.Equal(t, 720, b.canvas.Height)

	assert.Equal(t, StateStreaming, s.State())
	require.NotNil(t, s.Stream())
	require.NotNil(t, s.Context())
	assert.Equal(t, "absolute", s.Canvas().Element().Style().Get("position"))

	src := s.Preview().Src()
	obj, ok := urls.Resolve(src)
	require.True(t, ok)
	assert.Equal(t, s.Stream(), obj)

	children := s.Container().Children()
	require.Len(t, children, 2)
	assert.Equal(t, "video", children[0].TagName())
	assert.Equal(t, "canvas", children[1].TagName())

	preview := s.Preview().Element()
	require.Eventually(t, func() bool {
		return preview.OffsetWidth() == 320
	}, eventTimeout, 10*time.Millisecond)
	assert.Equal(t, 180, preview.OffsetHeight())

	var taken []*canvas.Canvas
	for i := 0; i < 3; i++ {
		c, err := s.TakeSnapshot()
		require.NoError(t, err)
		taken = append(taken, c)
	}
	for _, c := range taken {
		assert.Same(t, c, receive(t, snapshots))
		assert.Equal(t, 1280, c.Width())
		assert.Equal(t, 720, c.Height())
		assert.True(t, c.Frozen())
	}
	assert.Equal(t, taken, s.Snapshots())

	require.NoError(t, s.Stop())
	assert.Nil(t, receive(t, stops))
	assertNoEvent(t, stops)
	assert.Equal(t, StateStopped, s.State())
	assert.Nil(t, s.Stream())
	_, ok = urls.Resolve(src)
	assert.False(t, ok)
	assert.Zero(t, urls.Len())

	select {
	case <-s.Preview().Done():
	case <-time.After(eventTimeout):
		t.Fatal("preview kept playing after stop")
	}
	assert.True(t, s.Preview().Ended())

	assert.ErrorIs(t, s.Stop(), ErrNotStarted)
	assertNoEvent(t, stops)
	assertNoEvent(t, errs)

	// Snapshots and surfaces survive, and the last frame can still be taken.
	assert.Len(t, s.Snapshots(), 3)
	assert.Len(t, s.Container().Children(), 2)
	last, err := s.TakeSnapshot()
	require.NoError(t, err)
	assert.Equal(t, 1280, last.Width())
	assert.Len(t, s.Snapshots(), 4)
}

func TestPreviewSize(t *testing.T) {
	for name, c := range map[string]struct {
		width, height  int
		previewWidth   int
		expectedHeight int
	}{
		"VGA": {
			width: 640, height: 480, expectedHeight: 240,
		},
		"HD": {
			width: 1280, height: 720, expectedHeight: 180,
		},
		"CIF": {
			width: 352, height: 288, expectedHeight: 261,
		},
		"CustomWidth": {
			width: 640, height: 480, previewWidth: 160, expectedHeight: 120,
		},
	} {
		t.Run(name, func(t *testing.T) {
			opts := []Option{WithUserMedia(newTestCamera(t, c.width, c.height)), WithObjectURLs(NewObjectURLs())}
			expectedWidth := DefaultPreviewWidth
			if c.previewWidth > 0 {
				opts = append(opts, WithPreviewWidth(c.previewWidth))
				expectedWidth = c.previewWidth
			}
			s, err := New(newTestDocument(t), "#camera", opts...)
			require.NoError(t, err)
			starts := record(s, EventStart)

			require.NoError(t, s.Start(context.Background()))
			receive(t, starts)
			defer func() {
				assert.NoError(t, s.Stop())
			}()

			el := s.Preview().Element()
			require.Eventually(t, func() bool {
				return el.OffsetWidth() == expectedWidth
			}, eventTimeout, 10*time.Millisecond)
			assert.Equal(t, c.expectedHeight, el.OffsetHeight())
			assert.Equal(t, c.width, s.Preview().VideoWidth())
			assert.Equal(t, c.height, s.Preview().VideoHeight())

			preview, err := s.Preview().Preview()
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, expectedWidth, c.expectedHeight), preview.Bounds())
		})
	}
}

func TestSnapshotBeforeStart(t *testing.T) {
	s, err := New(newTestDocument(t), "#camera", WithUserMedia(nil))
	require.NoError(t, err)
	snapshots := record(s, EventSnapshot)
	stops := record(s, EventStop)

	_, err = s.TakeSnapshot()
	assert.ErrorIs(t, err, ErrNoFrame)
	assert.ErrorIs(t, s.Stop(), ErrNotStarted)
	assertNoEvent(t, snapshots)
	assertNoEvent(t, stops)
	assert.Empty(t, s.Snapshots())
}

func TestRestart(t *testing.T) {
	s, err := New(newTestDocument(t), "#camera", WithUserMedia(newTestCamera(t, 640, 480)), WithObjectURLs(NewObjectURLs()))
	require.NoError(t, err)
	starts := record(s, EventStart)

	for i := 0; i < 2; i++ {
		require.NoError(t, s.Start(context.Background()))
		receive(t, starts)
		_, err := s.TakeSnapshot()
		require.NoError(t, err)
		require.NoError(t, s.Stop())
	}
	assert.Len(t, s.Snapshots(), 2)
	assert.Len(t, s.Container().Children(), 4)
}

func TestDisplayCapture(t *testing.T) {
	m := driver.NewManager()
	require.NoError(t, m.Register(videotest.NewAdapter(prop.Media{
		Video: prop.Video{Width: 800, Height: 600, FrameRate: 100},
	}), driver.Info{Label: "display", DeviceType: driver.Screen}))
	um := NewMediaDevices(WithDriverManager(m))

	s, err := New(newTestDocument(t), "#camera", WithUserMedia(um), WithDisplayCapture(), WithObjectURLs(NewObjectURLs()))
	require.NoError(t, err)
	starts := record(s, EventStart)

	require.NoError(t, s.Start(context.Background()))
	receive(t, starts)
	defer s.Stop()

	c, err := s.TakeSnapshot()
	require.NoError(t, err)
	assert.Equal(t, 800, c.Width())
	assert.Equal(t, 600, c.Height())
}

func TestVideoTransform(t *testing.T) {
	half := video.Scale(320, 240, nil)
	s, err := New(newTestDocument(t), "#camera",
		WithUserMedia(newTestCamera(t, 640, 480)),
		WithVideoTransform(half),
		WithObjectURLs(NewObjectURLs()),
	)
	require.NoError(t, err)
	starts := record(s, EventStart)

	require.NoError(t, s.Start(context.Background()))
	receive(t, starts)
	defer s.Stop()

	c, err := s.TakeSnapshot()
	require.NoError(t, err)
	assert.Equal(t, 320, c.Width())
	assert.Equal(t, 240, c.Height())
}

func TestEventsStayOnTheirSession(t *testing.T) {
	doc := newTestDocument(t)
	a, err := New(doc, "#camera", WithUserMedia(nil))
	require.NoError(t, err)
	b, err := New(doc, ".other", WithUserMedia(nil))
	require.NoError(t, err)

	var calls []string
	a.On(EventError, func(data interface{}) { calls = append(calls, "a1") })
	a.On(EventError, func(data interface{}) { calls = append(calls, "a2") })
	b.On(EventError, func(data interface{}) { calls = append(calls, "b") })

	a.trigger(EventError, NotSupported)
	assert.Equal(t, []string{"a1", "a2"}, calls)

	a.Off(EventError)
	a.trigger(EventError, NotSupported)
	assert.Equal(t, []string{"a1", "a2"}, calls)

	assert.ErrorIs(t, b.Start(context.Background()), ErrNotSupported)
	assert.Equal(t, []string{"a1", "a2", "b"}, calls)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "starting", StateStarting.String())
	assert.Equal(t, "streaming", StateStreaming.String())
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "State(9)", State(9).String())
}
