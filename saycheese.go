// Package saycheese starts a camera, shows a live preview inside an element of a host
// page and takes snapshots of it.
//
//	doc, _ := dom.ParseString(`<div id="camera"></div>`)
//	s, err := saycheese.New(doc, "#camera")
//	if err != nil {
//		return err
//	}
//	s.On(saycheese.EventStart, func(interface{}) {
//		snapshot, _ := s.TakeSnapshot()
//		_ = snapshot
//	})
//	if err := s.Start(ctx); err != nil {
//		return err
//	}
//
// Everything a session reports goes through its events; see Event.
package saycheese

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pion/saycheese/internal/logging"
	"github.com/pion/saycheese/pkg/canvas"
	"github.com/pion/saycheese/pkg/dom"
	"github.com/pion/saycheese/pkg/io/video"
)

var logger = logging.NewLogger("saycheese")

var (
	// ErrNoContainer is returned by New when the selector matches no element.
	ErrNoContainer = errors.New("saycheese: no element matches the container selector")
	// ErrAlreadyStarted is returned by Start while a stream is being acquired or shown.
	ErrAlreadyStarted = errors.New("saycheese: session already started")
	// ErrNotStarted is returned by Stop when the session holds no stream.
	ErrNotStarted = errors.New("saycheese: session has no stream")
	// ErrNoFrame is returned by TakeSnapshot before the preview shows a frame.
	ErrNoFrame = errors.New("saycheese: preview has no frame")
)

// State is the lifecycle stage of a Session.
type State int

// Session states.
const (
	StateIdle State = iota
	StateStarting
	StateStreaming
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateStreaming:
		return "streaming"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session binds a camera to a container element of a page.
type Session struct {
	doc       *dom.Document
	container *dom.Element
	opts      options
	events    *emitter

	mu        sync.Mutex
	state     State
	stream    MediaStream
	url       string
	video     *Video
	canvas    *canvas.Canvas
	context   *canvas.Context
	snapshots []*canvas.Canvas
}

// New binds a session to the first element of doc matching selector. The container
// is made relatively positioned so that the overlay canvas can be placed over the
// preview.
func New(doc *dom.Document, selector string, opts ...Option) (*Session, error) {
	container, err := doc.QuerySelector(selector)
	if errors.Is(err, dom.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrNoContainer, selector)
	}
	if err != nil {
		return nil, err
	}
	container.Style().Set("position", "relative")

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Session{
		doc:       doc,
		container: container,
		opts:      o,
		events:    newEmitter(),
	}, nil
}

func (s *Session) userMedia() UserMedia {
	if s.opts.userMediaSet {
		return s.opts.userMedia
	}
	return ResolveUserMedia()
}

// Start asks for a video-only stream. Without a capture capability it raises
// EventError with NotSupported and returns ErrNotSupported. Otherwise the stream is
// acquired in the background: failures are raised as EventError carrying the error,
// success ends with EventStart once the preview and the overlay canvas are ready.
// ctx bounds the acquisition only.
func (s *Session) Start(ctx context.Context) error {
	um := s.userMedia()
	if um == nil {
		s.trigger(EventError, NotSupported)
		return ErrNotSupported
	}

	s.mu.Lock()
	if s.state == StateStarting || s.state == StateStreaming {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.state = StateStarting
	s.mu.Unlock()

	go s.acquire(ctx, um)
	return nil
}

type acquisition struct {
	stream MediaStream
	err    error
}

func (s *Session) acquire(ctx context.Context, um UserMedia) {
	done := make(chan acquisition, 1)
	go func() {
		stream, err := s.request(um)
		done <- acquisition{stream, err}
	}()

	var res acquisition
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
		go func() {
			if late := <-done; late.err == nil {
				closeTracks(late.stream)
			}
		}()
	}

	if res.err != nil {
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()

		logger.Warnf("failed to acquire a stream: %v", res.err)
		s.trigger(EventError, res.err)
		return
	}
	s.attach(res.stream)
}

func (s *Session) request(um UserMedia) (MediaStream, error) {
	transforms := s.opts.transforms
	constraints := MediaStreamConstraints{
		Video: func(c *MediaTrackConstraints) {
			c.MediaConstraints = s.opts.constraints
			if len(transforms) > 0 {
				c.VideoTransform = video.Merge(transforms...)
			}
		},
	}
	if s.opts.display {
		return um.GetDisplayMedia(constraints)
	}
	return um.GetUserMedia(constraints)
}

// attach shows stream in a new preview appended to the container.
func (s *Session) attach(stream MediaStream) {
	v := newVideo(s.doc, s.opts.urls)

	v.AddEventListener(VideoEventLoadedMetadata, func(interface{}) {
		s.setupCanvas(v)
	})
	var streaming bool
	v.AddEventListener(VideoEventCanPlay, func(interface{}) {
		if !streaming {
			s.fixPreviewSize(v)
			streaming = true
		}
	})

	url := s.opts.urls.CreateObjectURL(stream)
	v.SetSrc(url)

	s.mu.Lock()
	s.stream = stream
	s.url = url
	s.video = v
	s.state = StateStreaming
	s.mu.Unlock()

	s.container.AppendChild(v.Element())
	if err := v.Play(); err != nil {
		logger.Errorf("failed to play the stream: %v", err)
		s.trigger(EventError, err)
	}
}

// setupCanvas lays a canvas of the same size exactly over the preview.
func (s *Session) setupCanvas(v *Video) {
	box := v.Element().Box()

	c := canvas.NewElement(s.doc, box.Width, box.Height)
	style := c.Element().Style()
	style.Set("position", "absolute")
	style.Set("top", dom.Px(box.Top))
	style.Set("left", dom.Px(box.Left))

	ctx, err := c.GetContext2D()
	if err != nil {
		logger.Errorf("failed to get a drawing context: %v", err)
		return
	}

	s.mu.Lock()
	if s.video != v {
		s.mu.Unlock()
		return
	}
	s.canvas = c
	s.context = ctx
	s.mu.Unlock()

	s.container.AppendChild(c.Element())
	logger.Debugf("preview ready at %+v", box)
	s.trigger(EventStart, nil)
}

// fixPreviewSize scales the preview to the configured width, keeping the aspect ratio
// of the camera.
func (s *Session) fixPreviewSize(v *Video) {
	width, height := video.FitWidth(v.VideoWidth(), v.VideoHeight(), s.opts.previewWidth)

	style := v.Element().Style()
	style.Set("width", dom.Px(width))
	style.Set("height", dom.Px(height))
}

// TakeSnapshot copies the frame currently shown by the preview into a new canvas of
// the camera resolution, appends it to Snapshots and raises EventSnapshot with it.
// After Stop the last frame shown is copied.
func (s *Session) TakeSnapshot() (*canvas.Canvas, error) {
	s.mu.Lock()
	v := s.video
	s.mu.Unlock()
	if v == nil {
		return nil, ErrNoFrame
	}

	snapshot, err := v.snapshot(s.doc)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.snapshots = append(s.snapshots, snapshot)
	s.mu.Unlock()

	s.trigger(EventSnapshot, snapshot)
	return snapshot, nil
}

// Stop stops every track of the stream, revokes its object URL and raises
// EventStop. Snapshots and page elements are kept.
func (s *Session) Stop() error {
	s.mu.Lock()
	stream, url := s.stream, s.url
	if stream == nil {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.stream = nil
	s.url = ""
	s.state = StateStopped
	s.mu.Unlock()

	err := closeTracks(stream)
	s.opts.urls.RevokeObjectURL(url)

	s.trigger(EventStop, nil)
	return err
}

func closeTracks(stream MediaStream) error {
	var errs []error
	for _, t := range stream.GetTracks() {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// On registers h for event. Handlers of an event are called in registration order.
func (s *Session) On(event Event, h Handler) HandlerID {
	return s.events.on(event, h)
}

// Off removes the handlers ids of event, or all of them when no id is given.
func (s *Session) Off(event Event, ids ...HandlerID) {
	s.events.off(event, ids...)
}

func (s *Session) trigger(event Event, data interface{}) {
	s.events.trigger(event, data)
}

// Snapshots returns the snapshots taken so far, oldest first.
func (s *Session) Snapshots() []*canvas.Canvas {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshots := make([]*canvas.Canvas, len(s.snapshots))
	copy(snapshots, s.snapshots)
	return snapshots
}

// State returns the lifecycle stage of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Container returns the element the session renders into.
func (s *Session) Container() *dom.Element {
	return s.container
}

// Preview returns the preview of the last started stream, or nil.
func (s *Session) Preview() *Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.video
}

// Canvas returns the canvas laid over the preview, or nil before EventStart.
func (s *Session) Canvas() *canvas.Canvas {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canvas
}

// Context returns the drawing context of Canvas, or nil before EventStart.
func (s *Session) Context() *canvas.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.context
}

// Stream returns the stream shown by the preview, or nil when stopped.
func (s *Session) Stream() MediaStream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream
}
