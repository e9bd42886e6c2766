package frame

// Size returns how many bytes a width x height frame occupies in f. Compressed formats
// have no fixed size and report false.
func Size(f Format, width, height int) (int, bool) {
	pixels := width * height
	switch f {
	case FormatI420, FormatNV12, FormatNV21:
		return pixels + pixels/2, true
	case FormatYUY2, FormatUYVY:
		return 2 * pixels, true
	case FormatRGBA:
		return 4 * pixels, true
	default:
		return 0, false
	}
}
