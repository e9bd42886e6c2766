// Package prop describes media properties and the constraints used to pick them.
package prop

import (
	"fmt"
	"strings"

	"github.com/pion/saycheese/pkg/frame"
)

// Media is a concrete set of properties offered by a device.
type Media struct {
	DeviceID string
	Video
}

// Video represents a video's properties
type Video struct {
	Width, Height int
	FrameRate     float32
	FrameFormat   frame.Format
}

// String prints the properties in a human readable form.
func (p Media) String() string {
	var b strings.Builder
	if p.DeviceID != "" {
		fmt.Fprintf(&b, "DeviceID: %s ", p.DeviceID)
	}
	fmt.Fprintf(&b, "%dx%d", p.Width, p.Height)
	if p.FrameRate != 0 {
		fmt.Fprintf(&b, "@%.2f", p.FrameRate)
	}
	if p.FrameFormat != "" {
		fmt.Fprintf(&b, " %s", p.FrameFormat)
	}
	return b.String()
}

// Merge copies the non-zero fields of o into p.
func (p *Media) Merge(o Media) {
	if o.DeviceID != "" {
		p.DeviceID = o.DeviceID
	}
	if o.Width != 0 {
		p.Width = o.Width
	}
	if o.Height != 0 {
		p.Height = o.Height
	}
	if o.FrameRate != 0 {
		p.FrameRate = o.FrameRate
	}
	if o.FrameFormat != "" {
		p.FrameFormat = o.FrameFormat
	}
}

// MediaConstraints are the requested properties. Nil fields mean "anything".
type MediaConstraints struct {
	DeviceID StringConstraint
	VideoConstraints
}

// VideoConstraints are the video part of MediaConstraints.
type VideoConstraints struct {
	Width, Height IntConstraint
	FrameRate     FloatConstraint
	FrameFormat   FrameFormatConstraint
}

// FitnessDistance is an implementation for https://w3c.github.io/mediacapture-main/#dfn-fitness-distance
// The second value is false when o fails a required constraint.
func (c *MediaConstraints) FitnessDistance(o Media) (float64, bool) {
	var dist float64
	ok := true

	add := func(d float64, matched bool) {
		dist += d
		if !matched {
			ok = false
		}
	}

	if c.DeviceID != nil {
		add(c.DeviceID.Compare(o.DeviceID))
	}
	if c.Width != nil {
		add(c.Width.Compare(o.Width))
	}
	if c.Height != nil {
		add(c.Height.Compare(o.Height))
	}
	if c.FrameRate != nil {
		add(c.FrameRate.Compare(o.FrameRate))
	}
	if c.FrameFormat != nil {
		add(c.FrameFormat.Compare(o.FrameFormat))
	}

	return dist, ok
}

// Media returns the properties the constraints pin to a single value.
func (c *MediaConstraints) Media() Media {
	var m Media
	if c.DeviceID != nil {
		m.DeviceID, _ = c.DeviceID.Value()
	}
	if c.Width != nil {
		m.Width, _ = c.Width.Value()
	}
	if c.Height != nil {
		m.Height, _ = c.Height.Value()
	}
	if c.FrameRate != nil {
		m.FrameRate, _ = c.FrameRate.Value()
	}
	if c.FrameFormat != nil {
		m.FrameFormat, _ = c.FrameFormat.Value()
	}
	return m
}
