package saycheese

import (
	"github.com/pion/saycheese/pkg/io/video"
	"github.com/pion/saycheese/pkg/prop"
)

// DefaultPreviewWidth is the width the preview is fixed to once it can play.
const DefaultPreviewWidth = 320

type options struct {
	userMedia    UserMedia
	userMediaSet bool
	previewWidth int
	constraints  prop.MediaConstraints
	transforms   []video.TransformFunc
	urls         *ObjectURLs
	display      bool
}

// Option configures a Session.
type Option func(*options)

func defaultOptions() options {
	return options{
		previewWidth: DefaultPreviewWidth,
		urls:         DefaultObjectURLs(),
	}
}

// WithUserMedia makes the session acquire its stream from um instead of the
// capability returned by ResolveUserMedia. A nil um means capture is not supported.
func WithUserMedia(um UserMedia) Option {
	return func(o *options) {
		o.userMedia = um
		o.userMediaSet = true
	}
}

// WithPreviewWidth changes the width the preview is fixed to.
func WithPreviewWidth(width int) Option {
	return func(o *options) {
		if width > 0 {
			o.previewWidth = width
		}
	}
}

// WithConstraints narrows the camera the session asks for.
func WithConstraints(c prop.MediaConstraints) Option {
	return func(o *options) {
		o.constraints = c
	}
}

// WithVideoTransform applies transforms to the camera frames before they reach the
// preview, and therefore the snapshots.
func WithVideoTransform(transforms ...video.TransformFunc) Option {
	return func(o *options) {
		o.transforms = append(o.transforms, transforms...)
	}
}

// WithObjectURLs binds streams in u instead of DefaultObjectURLs.
func WithObjectURLs(u *ObjectURLs) Option {
	return func(o *options) {
		if u != nil {
			o.urls = u
		}
	}
}

// WithDisplayCapture makes the session capture a display instead of a camera.
func WithDisplayCapture() Option {
	return func(o *options) {
		o.display = true
	}
}
