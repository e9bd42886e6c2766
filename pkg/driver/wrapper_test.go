package driver

import (
	"errors"
	"testing"

	"github.com/pion/saycheese/pkg/io/video"
	"github.com/pion/saycheese/pkg/prop"
)

var errRecord = errors.New("failed to start recording")

type adapterMock struct{}

func (a *adapterMock) Open() error              { return nil }
func (a *adapterMock) Close() error             { return nil }
func (a *adapterMock) Properties() []prop.Media { return []prop.Media{{}} }

type videoAdapterMock struct{ adapterMock }

func (a *videoAdapterMock) VideoRecord(p prop.Media) (r video.Reader, err error) { return nil, nil }

type videoAdapterBrokenMock struct{ adapterMock }

func (a *videoAdapterBrokenMock) VideoRecord(p prop.Media) (r video.Reader, err error) {
	return nil, errRecord
}

func TestVideoWrapperState(t *testing.T) {
	var a videoAdapterMock
	d := wrapAdapter(&a, Info{})

	if d.Properties() != nil {
		t.Errorf("expected nil, but got %v", d.Properties())
	}

	vr := d.(VideoRecorder)
	if _, err := vr.VideoRecord(prop.Media{}); err == nil {
		t.Errorf("expected to get an invalid state")
	}

	if err := d.Open(); err != nil {
		t.Errorf("expected to successfully open, but got %v", err)
	}
	if len(d.Properties()) != 1 {
		t.Errorf("expected the adapter properties once opened")
	}

	if _, err := vr.VideoRecord(prop.Media{}); err != nil {
		t.Errorf("expected to successfully start recording, but got %v", err)
	}
	if d.Status() != StateRunning {
		t.Errorf("expected the status to be %v, but got %v", StateRunning, d.Status())
	}

	if _, err := vr.VideoRecord(prop.Media{}); err == nil {
		t.Errorf("expected recording twice to fail")
	}
	if d.Status() != StateRunning {
		t.Errorf("a rejected second recording must not stop the first, got %v", d.Status())
	}

	if err := d.Close(); err != nil {
		t.Errorf("expected to close, but got %v", err)
	}
	if d.Status() != StateClosed {
		t.Errorf("expected the status to be %v, but got %v", StateClosed, d.Status())
	}
}

func TestVideoWrapperWithBrokenRecorderState(t *testing.T) {
	var a videoAdapterBrokenMock
	d := wrapAdapter(&a, Info{})

	if err := d.Open(); err != nil {
		t.Errorf("expected to open successfully")
	}

	vr := d.(VideoRecorder)
	_, err := vr.VideoRecord(prop.Media{})
	if !errors.Is(err, errRecord) {
		t.Errorf("expected to get %v, but got %v", errRecord, err)
	}

	if d.Status() != StateClosed {
		t.Errorf("expected the status to be %v, but got %v", StateClosed, d.Status())
	}
}
