package saycheese

import (
	"image"
	"io"
	"testing"

	"github.com/pion/saycheese/pkg/io/video"
	"github.com/pion/saycheese/pkg/prop"
)

type mockAudioTrack struct {
	Track
	id string
}

func (t *mockAudioTrack) ID() string            { return t.id }
func (t *mockAudioTrack) Kind() MediaDeviceType { return AudioInput }

func newMockVideoTrack(label string) VideoTrack {
	return NewVideoTrack(label, prop.Media{}, video.ReaderFunc(nil), nil)
}

func TestMediaStreamFilters(t *testing.T) {
	audioTracks := []Track{
		&mockAudioTrack{id: "audio1"},
		&mockAudioTrack{id: "audio2"},
	}
	videoTracks := []Track{
		newMockVideoTrack("video1"),
		newMockVideoTrack("video2"),
		newMockVideoTrack("video3"),
	}

	tracks := append(append([]Track{}, audioTracks...), videoTracks...)
	stream, err := NewMediaStream(tracks...)
	if err != nil {
		t.Fatal(err)
	}

	expect := func(t *testing.T, actual, expected []Track) {
		if len(actual) != len(expected) {
			t.Fatalf("%s: expected to get %d trackers, but got %d trackers", t.Name(), len(expected), len(actual))
		}
		for i := range expected {
			if actual[i] != expected[i] {
				t.Errorf("%s: track %d is %v, expected %v", t.Name(), i, actual[i], expected[i])
			}
		}
	}

	t.Run("GetAudioTracks", func(t *testing.T) {
		expect(t, stream.GetAudioTracks(), audioTracks)
	})

	t.Run("GetVideoTracks", func(t *testing.T) {
		expect(t, stream.GetVideoTracks(), videoTracks)
	})

	t.Run("GetTracks", func(t *testing.T) {
		expect(t, stream.GetTracks(), tracks)
	})

	t.Run("AddTrackTwice", func(t *testing.T) {
		stream.AddTrack(videoTracks[0])
		expect(t, stream.GetTracks(), tracks)
	})

	t.Run("RemoveTrack", func(t *testing.T) {
		stream.RemoveTrack(audioTracks[1])
		stream.RemoveTrack(videoTracks[0])
		expect(t, stream.GetTracks(), []Track{audioTracks[0], videoTracks[1], videoTracks[2]})
	})
}

func TestVideoTrackEnded(t *testing.T) {
	closes := 0
	done := make(chan struct{})
	track := NewVideoTrack("test", prop.Media{}, video.ReaderFunc(func() (img image.Image, release func(), err error) {
		<-done
		return nil, func() {}, io.EOF
	}), func() error {
		closes++
		close(done)
		return nil
	})

	var ended []error
	track.OnEnded(func(err error) { ended = append(ended, err) })

	if err := track.Close(); err != nil {
		t.Fatal(err)
	}
	if err := track.Close(); err != nil {
		t.Fatal(err)
	}
	if closes != 1 {
		t.Errorf("expected the device to be released once, released %d times", closes)
	}

	r := track.NewVideoReader()
	for i := 0; i < 2; i++ {
		if _, _, err := r.Read(); err != io.EOF {
			t.Errorf("expected EOF, got %v", err)
		}
	}
	if len(ended) != 1 || ended[0] != io.EOF {
		t.Errorf("expected one ended notification with EOF, got %v", ended)
	}
	if track.Kind() != VideoInput || track.Label() != "test" || track.ID() == "" {
		t.Errorf("unexpected track identity: %s %s %s", track.Kind(), track.Label(), track.ID())
	}
}
