package saycheese

import (
	"sync"
)

// MediaStream is an interface that represents a collection of existing tracks.
type MediaStream interface {
	// GetAudioTracks implements https://w3c.github.io/mediacapture-main/#dom-mediastream-getaudiotracks
	GetAudioTracks() []Track
	// GetVideoTracks implements https://w3c.github.io/mediacapture-main/#dom-mediastream-getvideotracks
	GetVideoTracks() []Track
	// GetTracks implements https://w3c.github.io/mediacapture-main/#dom-mediastream-gettracks
	GetTracks() []Track
	// AddTrack implements https://w3c.github.io/mediacapture-main/#dom-mediastream-addtrack
	AddTrack(t Track)
	// RemoveTrack implements https://w3c.github.io/mediacapture-main/#dom-mediastream-removetrack
	RemoveTrack(t Track)
}

type mediaStream struct {
	tracks []Track
	l      sync.RWMutex
}

// NewMediaStream creates a MediaStream interface that's defined in
// https://w3c.github.io/mediacapture-main/#dom-mediastream
func NewMediaStream(tracks ...Track) (MediaStream, error) {
	m := &mediaStream{}
	for _, t := range tracks {
		m.AddTrack(t)
	}
	return m, nil
}

func (m *mediaStream) GetAudioTracks() []Track {
	return m.queryTracks(func(t Track) bool { return t.Kind() == AudioInput })
}

func (m *mediaStream) GetVideoTracks() []Track {
	return m.queryTracks(func(t Track) bool { return t.Kind() == VideoInput })
}

func (m *mediaStream) GetTracks() []Track {
	return m.queryTracks(func(Track) bool { return true })
}

// queryTracks returns all tracks accepted by filter, in the order they were added.
func (m *mediaStream) queryTracks(filter func(Track) bool) []Track {
	m.l.RLock()
	defer m.l.RUnlock()

	result := make([]Track, 0, len(m.tracks))
	for _, t := range m.tracks {
		if filter(t) {
			result = append(result, t)
		}
	}
	return result
}

func (m *mediaStream) AddTrack(t Track) {
	m.l.Lock()
	defer m.l.Unlock()

	for _, existing := range m.tracks {
		if existing.ID() == t.ID() {
			return
		}
	}
	m.tracks = append(m.tracks, t)
}

func (m *mediaStream) RemoveTrack(t Track) {
	m.l.Lock()
	defer m.l.Unlock()

	for i, existing := range m.tracks {
		if existing.ID() == t.ID() {
			m.tracks = append(m.tracks[:i], m.tracks[i+1:]...)
			return
		}
	}
}
