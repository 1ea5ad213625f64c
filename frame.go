package pixelwork

// Frame is one captured image of the source, taken at Timestamp seconds.
type Frame struct {
	Buffer    *PixelBuffer
	Timestamp float64
	Selected  bool
}

// Selected returns the buffers and timestamps of the selected frames, in order.
func Selected(frames []Frame) ([]*PixelBuffer, []float64) {
	var (
		bufs []*PixelBuffer
		ts   []float64
	)
	for _, f := range frames {
		if !f.Selected {
			continue
		}
		bufs = append(bufs, f.Buffer)
		ts = append(ts, f.Timestamp)
	}
	return bufs, ts
}

// Buffers returns the buffers of every frame.
func Buffers(frames []Frame) []*PixelBuffer {
	out := make([]*PixelBuffer, len(frames))
	for i, f := range frames {
		out[i] = f.Buffer
	}
	return out
}

// Release drops the pixel data held by frames so it can be collected.
func Release(frames []Frame) {
	for i := range frames {
		frames[i].Buffer = nil
	}
}
