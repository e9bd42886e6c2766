package driver

import "errors"

// State represents driver's state
type State string

const (
	// StateClosed means that the driver has not been opened. In this state,
	// all information related to the hardware are still unknown. For example,
	// if it's a video driver, the pixel format information is still unknown.
	StateClosed State = "closed"
	// StateOpened means that the driver is already opened and information about
	// the hardware are already known and may be extracted from the driver.
	StateOpened State = "opened"
	// StateRunning means that the driver has been sending data. The caller
	// who started the driver may start reading data from the hardware.
	StateRunning State = "running"
)

var (
	errAlreadyOpened  = errors.New("invalid state: driver is already opened")
	errNotOpened      = errors.New("invalid state: driver is closed")
	errAlreadyRunning = errors.New("invalid state: driver is already running")
)

// Update moves s to next when the transition is valid and f succeeds. Otherwise s is
// left unchanged.
func (s *State) Update(next State, f func() error) error {
	var err error
	switch next {
	case StateOpened:
		err = s.toOpened()
	case StateRunning:
		err = s.toRunning()
	}
	if err != nil {
		return err
	}

	if err := f(); err != nil {
		return err
	}
	*s = next
	return nil
}

func (s *State) toOpened() error {
	if *s != StateClosed {
		return errAlreadyOpened
	}
	return nil
}

func (s *State) toRunning() error {
	switch *s {
	case StateClosed:
		return errNotOpened
	case StateRunning:
		return errAlreadyRunning
	}
	return nil
}
