// Package driver registers capture devices and tracks their lifecycle.
package driver

import (
	"github.com/pion/saycheese/pkg/io/video"
	"github.com/pion/saycheese/pkg/prop"
)

// OpenCloser is a generic interface for opening and closing a device.
type OpenCloser interface {
	Open() error
	Close() error
}

// Infoer returns the information of a driver.
type Infoer interface {
	Info() Info
}

// Info is the information of a driver.
type Info struct {
	Label      string
	DeviceType DeviceType
	Priority   Priority
}

// Adapter is the interface a device implementation provides to the manager.
type Adapter interface {
	OpenCloser
	Properties() []prop.Media
}

// VideoRecorder is an interface to record video stream.
type VideoRecorder interface {
	VideoRecord(p prop.Media) (r video.Reader, err error)
}

// Driver is an adapter wrapped by the manager with an identity and a state.
type Driver interface {
	Adapter
	Infoer
	ID() string
	Status() State
}

// DeviceType represents human readable device type. DeviceType
// can be useful to filter the drivers too.
type DeviceType string

const (
	// Camera represents camera devices
	Camera DeviceType = "camera"
	// Screen represents screen devices
	Screen DeviceType = "screen"
)

// Priority represents device selection priority level
type Priority float32

const (
	// PriorityHigh is a value for system default devices
	PriorityHigh Priority = 0.1
	// PriorityNormal is a value for normal devices
	PriorityNormal Priority = 0.0
	// PriorityLow is a value for unrecommended devices
	PriorityLow Priority = -0.1
)
