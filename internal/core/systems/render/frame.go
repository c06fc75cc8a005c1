package render

// Frame is one rendered canvas with intensities in [0, 1], stored first-axis
// major: pixel (x, y) lives at x*CanvasHeight + y.
type Frame struct {
	pixels []float32
}

func NewFrame() Frame {
	return Frame{pixels: make([]float32, CanvasWidth*CanvasHeight)}
}

func (f Frame) At(x, y int) float32 {
	return f.pixels[x*CanvasHeight+y]
}

// Pixels exposes the backing slice. Callers must not modify it.
func (f Frame) Pixels() []float32 {
	return f.pixels
}

// Gray8 converts the frame to 8-bit intensities, rounding to nearest.
func (f Frame) Gray8() []uint8 {
	out := make([]uint8, len(f.pixels))
	for i, v := range f.pixels {
		out[i] = uint8(v*maxIntensity + 0.5)
	}
	return out
}
