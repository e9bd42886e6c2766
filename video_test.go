package saycheese

import (
	"image"
	"image/color"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pion/saycheese/pkg/dom"
	"github.com/pion/saycheese/pkg/io/video"
	"github.com/pion/saycheese/pkg/prop"
)

// frames returns a reader producing imgs, then io.EOF.
func frames(imgs ...image.Image) video.Reader {
	return video.ReaderFunc(func() (image.Image, func(), error) {
		if len(imgs) == 0 {
			return nil, func() {}, io.EOF
		}
		img := imgs[0]
		imgs = imgs[1:]
		return img, func() {}, nil
	})
}

func filled(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		r, g, b, a := c.RGBA()
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8)
	}
	return img
}

func TestVideoEvents(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	track := NewVideoTrack("test", prop.Media{}, frames(
		filled(4, 2, red),
		filled(4, 2, red),
		filled(8, 6, blue),
	), nil)
	stream, err := NewMediaStream(track)
	require.NoError(t, err)

	urls := NewObjectURLs()
	doc := dom.NewDocument()
	v := newVideo(doc, urls)
	v.SetSrc(urls.CreateObjectURL(stream))

	var events []Event
	for _, e := range []Event{VideoEventLoadedMetadata, VideoEventCanPlay, VideoEventResize, VideoEventEnded} {
		v.AddEventListener(e, func(data interface{}) {
			events = append(events, e)
			if e == VideoEventEnded {
				assert.Equal(t, io.EOF, data)
			}
		})
	}

	require.NoError(t, v.Play())
	assert.Error(t, v.Play())

	select {
	case <-v.Done():
	case <-time.After(eventTimeout):
		t.Fatal("video did not end")
	}

	assert.Equal(t, []Event{VideoEventLoadedMetadata, VideoEventCanPlay, VideoEventResize, VideoEventEnded}, events)
	assert.True(t, v.Ended())
	assert.Equal(t, 8, v.VideoWidth())
	assert.Equal(t, 6, v.VideoHeight())
	assert.Equal(t, dom.Box{Width: 8, Height: 6}, v.Element().Box())

	snapshot, err := v.snapshot(doc)
	require.NoError(t, err)
	assert.Equal(t, 8, snapshot.Width())
	assert.Equal(t, color.RGBAModel.Convert(blue), snapshot.At(3, 3))
	w, ok := snapshot.Element().Attribute("width")
	assert.True(t, ok)
	assert.Equal(t, "8", w)
}

func TestVideoPlayErrors(t *testing.T) {
	urls := NewObjectURLs()
	v := newVideo(dom.NewDocument(), urls)

	assert.ErrorIs(t, v.Play(), errNoSource)

	v.SetSrc(urls.CreateObjectURL("not a stream"))
	assert.ErrorIs(t, v.Play(), errNoSource)

	empty, err := NewMediaStream()
	require.NoError(t, err)
	v.SetSrc(urls.CreateObjectURL(empty))
	assert.ErrorIs(t, v.Play(), errNoVideoTrack)

	_, err = v.snapshot(dom.NewDocument())
	assert.ErrorIs(t, err, ErrNoFrame)
	_, err = v.Preview()
	assert.ErrorIs(t, err, ErrNoFrame)
}
