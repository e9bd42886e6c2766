package saycheese

import (
	"errors"
	"image"
	"sync"

	"github.com/pion/saycheese/pkg/canvas"
	"github.com/pion/saycheese/pkg/dom"
	"github.com/pion/saycheese/pkg/io/video"
	"github.com/pion/saycheese/pkg/prop"
)

// Events raised by a Video.
const (
	// VideoEventLoadedMetadata is raised when the size of the first frame is known.
	VideoEventLoadedMetadata Event = "loadedmetadata"
	// VideoEventCanPlay is raised once the first frame is ready to be shown.
	VideoEventCanPlay Event = "canplay"
	// VideoEventResize is raised when the frame size changes after the first frame.
	VideoEventResize Event = "resize"
	// VideoEventEnded carries the error that ended playback, io.EOF after Stop.
	VideoEventEnded Event = "ended"
)

var (
	errNoSource     = errors.New("saycheese: video source does not resolve to a stream")
	errNoVideoTrack = errors.New("saycheese: stream has no video track")
	errPlaying      = errors.New("saycheese: video is already playing")
)

// Video is the preview surface: a <video> element showing the frames of a stream.
// The last frame stays available after the stream ends.
type Video struct {
	el     *dom.Element
	urls   *ObjectURLs
	events *emitter

	mu             sync.Mutex
	width, height  int
	frames         *video.FrameBuffer
	playing        bool
	resized        bool
	canPlay        bool
	ended          bool
	done           chan struct{}
}

func newVideo(doc *dom.Document, urls *ObjectURLs) *Video {
	return &Video{
		el:     doc.CreateElement("video"),
		urls:   urls,
		events: newEmitter(),
		frames: video.NewFrameBuffer(),
		done:   make(chan struct{}),
	}
}

// Element returns the <video> element.
func (v *Video) Element() *dom.Element {
	return v.el
}

// SetSrc binds the video to the stream url refers to. The stream is resolved by Play.
func (v *Video) SetSrc(url string) {
	v.el.SetAttribute("src", url)
}

// Src returns the URL the video is bound to.
func (v *Video) Src() string {
	src, _ := v.el.Attribute("src")
	return src
}

// AddEventListener registers h for one of the VideoEvent* events.
func (v *Video) AddEventListener(event Event, h Handler) HandlerID {
	return v.events.on(event, h)
}

// RemoveEventListener removes handlers registered with AddEventListener.
func (v *Video) RemoveEventListener(event Event, ids ...HandlerID) {
	v.events.off(event, ids...)
}

// VideoWidth is the native width of the frames, zero before metadata is loaded.
func (v *Video) VideoWidth() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width
}

// VideoHeight is the native height of the frames, zero before metadata is loaded.
func (v *Video) VideoHeight() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.height
}

// Ended reports whether the stream stopped producing frames.
func (v *Video) Ended() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ended
}

// Done is closed when playback ends.
func (v *Video) Done() <-chan struct{} {
	return v.done
}

// Play resolves the source and starts pulling frames from its first video track in
// the background.
func (v *Video) Play() error {
	obj, ok := v.urls.Resolve(v.Src())
	if !ok {
		return errNoSource
	}
	stream, ok := obj.(MediaStream)
	if !ok {
		return errNoSource
	}
	tracks := stream.GetVideoTracks()
	if len(tracks) == 0 {
		return errNoVideoTrack
	}
	track, ok := tracks[0].(VideoTrack)
	if !ok {
		return errNoVideoTrack
	}

	v.mu.Lock()
	if v.playing {
		v.mu.Unlock()
		return errPlaying
	}
	v.playing = true
	v.mu.Unlock()

	r := video.DetectChanges(0, v.onMetadata)(track.NewVideoReader())
	go v.run(r)
	return nil
}

func (v *Video) run(r video.Reader) {
	defer close(v.done)

	for {
		img, release, err := r.Read()
		if err != nil {
			v.mu.Lock()
			v.ended = true
			v.mu.Unlock()

			logger.Debugf("video ended: %v", err)
			v.events.trigger(VideoEventEnded, err)
			return
		}

		v.mu.Lock()
		v.frames.StoreCopy(img)
		resized := v.resized
		v.resized = false
		first := !v.canPlay
		v.canPlay = true
		v.mu.Unlock()
		release()

		// The frame is stored before anyone hears about it, so handlers can take a
		// snapshot right away.
		if resized {
			v.el.SetIntrinsicSize(v.VideoWidth(), v.VideoHeight())
			if first {
				v.events.trigger(VideoEventLoadedMetadata, nil)
			} else {
				v.events.trigger(VideoEventResize, nil)
			}
		}
		if first {
			v.events.trigger(VideoEventCanPlay, nil)
		}
	}
}

// onMetadata is called by the change detector before the frame it measured is read.
func (v *Video) onMetadata(p prop.Media) {
	v.mu.Lock()
	v.width, v.height = p.Width, p.Height
	v.resized = true
	v.mu.Unlock()
}

// snapshot copies the current frame into a new frozen canvas of native size.
func (v *Video) snapshot(doc *dom.Document) (*canvas.Canvas, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	img := v.frames.Load()
	if img == nil {
		return nil, ErrNoFrame
	}

	bounds := img.Bounds()
	c := canvas.NewElement(doc, bounds.Dx(), bounds.Dy())
	ctx, err := c.GetContext2D()
	if err != nil {
		return nil, err
	}
	ctx.DrawImage(img, 0, 0)
	c.Freeze()
	return c, nil
}

// Preview renders the current frame at the laid out size of the element.
func (v *Video) Preview() (image.Image, error) {
	box := v.el.Box()
	if box.Width <= 0 || box.Height <= 0 {
		return nil, ErrNoFrame
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	img := v.frames.Load()
	if img == nil {
		return nil, ErrNoFrame
	}
	current := video.ReaderFunc(func() (image.Image, func(), error) {
		return img, func() {}, nil
	})
	scaled, release, err := video.Scale(box.Width, box.Height, video.ScalerApproxBiLinear)(current).Read()
	if err != nil {
		return nil, err
	}
	defer release()
	return scaled, nil
}
