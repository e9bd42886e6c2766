package saycheese

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/pion/saycheese/pkg/driver"
	"github.com/pion/saycheese/pkg/driver/availability"
	"github.com/pion/saycheese/pkg/prop"
)

// NotSupported is the payload of the error event raised when no capture capability
// exists on the host.
const NotSupported = "NOT_SUPPORTED"

var (
	// ErrNotSupported is returned by Session.Start when no capture capability exists.
	ErrNotSupported = errors.New(NotSupported)
	// ErrNotFound is returned when no device satisfies the constraints.
	ErrNotFound = errors.New("saycheese: failed to find the best driver that fits the constraints")
	// ErrPermissionDenied is returned when access to the device is refused, by the
	// PermissionFunc or by the operating system.
	ErrPermissionDenied = availability.ErrPermissionDenied

	errNotVideoRecorder = errors.New("saycheese: driver is not a video recorder")
	errAudioUnsupported = errors.New("saycheese: audio capture is not supported")
)

// UserMedia is the capture capability of the host, the Go counterpart of
// https://developer.mozilla.org/en-US/docs/Web/API/MediaDevices
type UserMedia interface {
	// GetUserMedia prompts for permission to use a camera and returns a stream with
	// the requested tracks.
	GetUserMedia(constraints MediaStreamConstraints) (MediaStream, error)
	// GetDisplayMedia returns a stream capturing a display.
	GetDisplayMedia(constraints MediaStreamConstraints) (MediaStream, error)
	// EnumerateDevices lists the capture devices.
	EnumerateDevices() []MediaDeviceInfo
}

// PermissionFunc decides whether a device may be used. Returning an error refuses
// access; the error is handed back to the caller of GetUserMedia.
type PermissionFunc func(MediaDeviceInfo) error

// MediaDevices implements UserMedia on top of a driver manager.
type MediaDevices struct {
	manager    *driver.Manager
	permission PermissionFunc
}

// MediaDevicesOption is a type of MediaDevices functional option.
type MediaDevicesOption func(*MediaDevices)

// WithDriverManager selects drivers from m instead of the global manager.
func WithDriverManager(m *driver.Manager) MediaDevicesOption {
	return func(md *MediaDevices) {
		md.manager = m
	}
}

// WithPermission installs the hook asked before a device is opened. By default every
// device is granted.
func WithPermission(f PermissionFunc) MediaDevicesOption {
	return func(md *MediaDevices) {
		md.permission = f
	}
}

// NewMediaDevices creates MediaDevices. Without options it uses every driver
// registered with driver.GetManager.
func NewMediaDevices(opts ...MediaDevicesOption) *MediaDevices {
	md := &MediaDevices{
		manager:    driver.GetManager(),
		permission: func(MediaDeviceInfo) error { return nil },
	}
	for _, o := range opts {
		o(md)
	}
	return md
}

var (
	resolveOnce sync.Once
	resolved    UserMedia
)

// ResolveUserMedia detects the capture capability of the host once and returns it
// to every caller. It is nil when no camera driver is registered. Drivers registered
// after the first call are still used by the returned capability, but do not turn a
// nil result into a usable one.
func ResolveUserMedia() UserMedia {
	resolveOnce.Do(func() {
		md := NewMediaDevices()
		if len(md.manager.Query(cameraFilter())) == 0 {
			logger.Info("no camera driver registered, capture is not supported")
			return
		}
		resolved = md
	})
	return resolved
}

func cameraFilter() driver.FilterFn {
	return driver.FilterAnd(
		driver.FilterVideoRecorder(),
		driver.FilterNot(driver.FilterDeviceType(driver.Screen)),
	)
}

func screenFilter() driver.FilterFn {
	return driver.FilterAnd(
		driver.FilterVideoRecorder(),
		driver.FilterDeviceType(driver.Screen),
	)
}

// GetUserMedia implements UserMedia.
// Reference: https://developer.mozilla.org/en-US/docs/Web/API/MediaDevices/getUserMedia
func (m *MediaDevices) GetUserMedia(constraints MediaStreamConstraints) (MediaStream, error) {
	return m.getMedia(constraints, cameraFilter())
}

// GetDisplayMedia implements UserMedia.
// Reference: https://developer.mozilla.org/en-US/docs/Web/API/MediaDevices/getDisplayMedia
func (m *MediaDevices) GetDisplayMedia(constraints MediaStreamConstraints) (MediaStream, error) {
	return m.getMedia(constraints, screenFilter())
}

func (m *MediaDevices) getMedia(constraints MediaStreamConstraints, filter driver.FilterFn) (MediaStream, error) {
	if constraints.Audio != nil {
		return nil, errAudioUnsupported
	}
	if constraints.Video == nil {
		return nil, fmt.Errorf("saycheese: no track requested: %w", ErrNotFound)
	}

	var c MediaTrackConstraints
	constraints.Video(&c)

	track, err := m.selectVideo(c, filter)
	if err != nil {
		return nil, err
	}

	s, err := NewMediaStream(track)
	if err != nil {
		track.Close()
		return nil, err
	}
	return s, nil
}

func (m *MediaDevices) selectVideo(c MediaTrackConstraints, filter driver.FilterFn) (Track, error) {
	d, selected, err := selectBestDriver(m.manager, filter, c.MediaConstraints)
	if err != nil {
		return nil, err
	}

	if err := m.permission(deviceInfo(d)); err != nil {
		return nil, err
	}

	logger.Debugf("selected %s with %s", d.Info().Label, selected)
	return newDriverTrack(d, c, selected)
}

// EnumerateDevices implements UserMedia.
func (m *MediaDevices) EnumerateDevices() []MediaDeviceInfo {
	drivers := m.manager.Query(driver.FilterVideoRecorder())
	info := make([]MediaDeviceInfo, 0, len(drivers))
	for _, d := range drivers {
		info = append(info, deviceInfo(d))
	}
	return info
}

func queryDriverProperties(m *driver.Manager, filter driver.FilterFn) map[driver.Driver][]prop.Media {
	var needToClose []driver.Driver
	drivers := m.Query(filter)
	props := make(map[driver.Driver][]prop.Media)

	for _, d := range drivers {
		if d.Status() == driver.StateClosed {
			if err := d.Open(); err != nil {
				// Skip this driver if we failed to open because we can't get the properties
				logger.Debugf("skipping %s: %v", d.Info().Label, err)
				continue
			}
			needToClose = append(needToClose, d)
		}

		props[d] = d.Properties()
	}

	for _, d := range needToClose {
		// Since it was closed, we should close it to avoid a leak
		d.Close()
	}

	return props
}

// selectBestDriver implements SelectSettings algorithm.
// Reference: https://w3c.github.io/mediacapture-main/#dfn-selectsettings
func selectBestDriver(m *driver.Manager, filter driver.FilterFn, constraints prop.MediaConstraints) (driver.Driver, prop.Media, error) {
	var bestDriver driver.Driver
	var bestProp prop.Media
	minFitnessDist := math.Inf(1)

	for d, props := range queryDriverProperties(m, filter) {
		priority := float64(d.Info().Priority)
		for _, p := range props {
			p.DeviceID = d.ID()
			fitnessDist, ok := constraints.FitnessDistance(p)
			if !ok {
				continue
			}
			fitnessDist -= priority
			if fitnessDist < minFitnessDist || (fitnessDist == minFitnessDist && d.ID() < bestDriver.ID()) {
				minFitnessDist = fitnessDist
				bestDriver = d
				bestProp = p
			}
		}
	}

	if bestDriver == nil {
		return nil, prop.Media{}, ErrNotFound
	}

	selected := constraints.Media()
	selected.Merge(bestProp)
	return bestDriver, selected, nil
}

// openError reports a driver held by someone else as busy.
func openError(err error) error {
	if availability.IsError(err) {
		return err
	}
	return fmt.Errorf("%w: %v", availability.ErrBusy, err)
}
