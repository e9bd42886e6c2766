package saycheese

import (
	"github.com/pion/saycheese/pkg/io/video"
	"github.com/pion/saycheese/pkg/prop"
)

// MediaStreamConstraints selects the tracks of a stream. A nil option leaves the
// kind out of the stream.
type MediaStreamConstraints struct {
	Audio MediaOption
	Video MediaOption
}

// MediaTrackConstraints represents https://w3c.github.io/mediacapture-main/#dom-mediatrackconstraints
type MediaTrackConstraints struct {
	prop.MediaConstraints

	// VideoTransform is applied to the frames between the driver and the track.
	VideoTransform video.TransformFunc
}

// MediaOption is a function that configures MediaTrackConstraints.
type MediaOption func(*MediaTrackConstraints)
