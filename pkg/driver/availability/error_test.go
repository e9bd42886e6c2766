package availability

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsError(t *testing.T) {
	cases := map[string]struct {
		err  error
		want bool
	}{
		"Busy":    {ErrBusy, true},
		"Wrapped": {fmt.Errorf("open /dev/video0: %w", ErrNoDevice), true},
		"Custom":  {NewError("unplugged"), true},
		"Other":   {errors.New("boom"), false},
		"Nil":     {nil, false},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if got := IsError(c.err); got != c.want {
				t.Errorf("expected %v, got %v", c.want, got)
			}
		})
	}
}
