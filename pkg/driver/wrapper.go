package driver

import (
	"sync"

	"github.com/google/uuid"

	"github.com/pion/saycheese/pkg/io/video"
	"github.com/pion/saycheese/pkg/prop"
)

func wrapAdapter(a Adapter, info Info) Driver {
	w := &adapterWrapper{
		Adapter: a,
		id:      uuid.NewString(),
		info:    info,
		state:   StateClosed,
	}

	if _, ok := a.(VideoRecorder); ok {
		return &videoAdapterWrapper{w}
	}
	return nil
}

type adapterWrapper struct {
	Adapter
	id    string
	info  Info
	mu    sync.Mutex
	state State
}

func (w *adapterWrapper) ID() string {
	return w.id
}

func (w *adapterWrapper) Info() Info {
	return w.info
}

func (w *adapterWrapper) Status() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *adapterWrapper) Open() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Update(StateOpened, w.Adapter.Open)
}

func (w *adapterWrapper) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateClosed {
		return nil
	}
	return w.state.Update(StateClosed, w.Adapter.Close)
}

// Properties returns nil until the driver is opened, since most devices only know
// their formats once the hardware has been queried.
func (w *adapterWrapper) Properties() []prop.Media {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateClosed {
		return nil
	}
	return w.Adapter.Properties()
}

type videoAdapterWrapper struct {
	*adapterWrapper
}

func (w *videoAdapterWrapper) VideoRecord(p prop.Media) (video.Reader, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.state.toRunning(); err != nil {
		return nil, err
	}

	r, err := w.Adapter.(VideoRecorder).VideoRecord(p)
	if err != nil {
		// A device that failed to start is released so that it can be opened again.
		if closeErr := w.Adapter.Close(); closeErr == nil {
			w.state = StateClosed
		}
		return nil, err
	}

	w.state = StateRunning
	return r, nil
}
