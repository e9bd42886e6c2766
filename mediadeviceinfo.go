package saycheese

import "github.com/pion/saycheese/pkg/driver"

// MediaDeviceType enumerates type of media device.
type MediaDeviceType int

// MediaDeviceType definitions.
const (
	VideoInput MediaDeviceType = iota + 1
	AudioInput
)

// String implements fmt.Stringer.
func (t MediaDeviceType) String() string {
	switch t {
	case VideoInput:
		return "videoinput"
	case AudioInput:
		return "audioinput"
	}
	return "unknown"
}

// MediaDeviceInfo represents https://w3c.github.io/mediacapture-main/#dom-mediadeviceinfo
type MediaDeviceInfo struct {
	DeviceID   string
	Kind       MediaDeviceType
	Label      string
	DeviceType driver.DeviceType
}

func deviceInfo(d driver.Driver) MediaDeviceInfo {
	info := d.Info()
	return MediaDeviceInfo{
		DeviceID:   d.ID(),
		Kind:       VideoInput,
		Label:      info.Label,
		DeviceType: info.DeviceType,
	}
}
