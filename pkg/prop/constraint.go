package prop

import (
	"math"

	"github.com/pion/saycheese/pkg/frame"
)

// IntConstraint is an interface to represent integer value constraint.
type IntConstraint interface {
	Compare(int) (float64, bool)
	Value() (int, bool)
}

// Int specifies ideal int value.
// Any value may be selected, but closest value takes priority.
type Int int

// Compare implements IntConstraint.
func (i Int) Compare(a int) (float64, bool) {
	if int(i) == a {
		return 0.0, true
	}
	return math.Abs(float64(a-int(i))) / math.Max(math.Abs(float64(a)), math.Abs(float64(i))), true
}

// Value implements IntConstraint.
func (i Int) Value() (int, bool) { return int(i), true }

// IntExact specifies exact int value.
type IntExact int

// Compare implements IntConstraint.
func (i IntExact) Compare(a int) (float64, bool) {
	if int(i) == a {
		return 0.0, true
	}
	return 1.0, false
}

// Value implements IntConstraint.
func (i IntExact) Value() (int, bool) { return int(i), true }

// IntRanged specifies range of expected int value.
// If Ideal is non-zero, closest value to Ideal takes priority.
type IntRanged struct {
	Min   int
	Max   int
	Ideal int
}

// Compare implements IntConstraint.
func (i IntRanged) Compare(a int) (float64, bool) {
	if i.Min != 0 && i.Min > a {
		return 1.0, false
	}
	if i.Max != 0 && i.Max < a {
		return 1.0, false
	}
	if i.Ideal == 0 || a == i.Ideal {
		return 0.0, true
	}
	if a < i.Ideal {
		if i.Min == 0 {
			return 0.0, true
		}
		return float64(i.Ideal-a) / float64(i.Ideal-i.Min), true
	}
	if i.Max == 0 {
		return 0.0, true
	}
	return float64(a-i.Ideal) / float64(i.Max-i.Ideal), true
}

// Value implements IntConstraint.
func (IntRanged) Value() (int, bool) { return 0, false }

// FloatConstraint is an interface to represent float value constraint.
type FloatConstraint interface {
	Compare(float32) (float64, bool)
	Value() (float32, bool)
}

// Float specifies ideal float value.
type Float float32

// Compare implements FloatConstraint.
func (f Float) Compare(a float32) (float64, bool) {
	if float32(f) == a {
		return 0.0, true
	}
	return math.Abs(float64(a-float32(f))) / math.Max(math.Abs(float64(a)), math.Abs(float64(f))), true
}

// Value implements FloatConstraint.
func (f Float) Value() (float32, bool) { return float32(f), true }

// StringConstraint is an interface to represent string constraint.
type StringConstraint interface {
	Compare(string) (float64, bool)
	Value() (string, bool)
}

// String specifies expected string.
// Any value may be selected, but matched value takes priority.
type String string

// Compare implements StringConstraint.
func (s String) Compare(a string) (float64, bool) {
	if string(s) == a {
		return 0.0, true
	}
	return 1.0, true
}

// Value implements StringConstraint.
func (s String) Value() (string, bool) { return string(s), true }

// StringExact specifies exact string.
type StringExact string

// Compare implements StringConstraint.
func (s StringExact) Compare(a string) (float64, bool) {
	if string(s) == a {
		return 0.0, true
	}
	return 1.0, false
}

// Value implements StringConstraint.
func (s StringExact) Value() (string, bool) { return string(s), true }

// FrameFormatConstraint is an interface to represent frame format constraint.
type FrameFormatConstraint interface {
	Compare(frame.Format) (float64, bool)
	Value() (frame.Format, bool)
}

// FrameFormat specifies expected frame format.
// Any value may be selected, but matched value takes priority.
type FrameFormat frame.Format

// Compare implements FrameFormatConstraint.
func (f FrameFormat) Compare(a frame.Format) (float64, bool) {
	if frame.Format(f) == a {
		return 0.0, true
	}
	return 1.0, true
}

// Value implements FrameFormatConstraint.
func (f FrameFormat) Value() (frame.Format, bool) { return frame.Format(f), true }

// FrameFormatOneOf specifies list of expected frame format.
type FrameFormatOneOf []frame.Format

// Compare implements FrameFormatConstraint.
func (f FrameFormatOneOf) Compare(a frame.Format) (float64, bool) {
	for _, ff := range f {
		if ff == a {
			return 0.0, true
		}
	}
	return 1.0, false
}

// Value implements FrameFormatConstraint.
func (FrameFormatOneOf) Value() (frame.Format, bool) { return "", false }
