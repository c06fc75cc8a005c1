package sprites

import (
	"context"
	"math"
)

// SyntheticProvider draws Count procedural digit-like glyphs: a ring whose
// radius depends on the glyph index, crossed by a bar. The test split uses a
// different glyph range than train.
type SyntheticProvider struct {
	Count int
}

func (p SyntheticProvider) Images(ctx context.Context, split Split) (Images, error) {
	if err := ctx.Err(); err != nil {
		return Images{}, err
	}

	offset := 0
	if split == SplitTest {
		offset = p.Count
	}

	img := Images{
		Count:    p.Count,
		Width:    Width,
		Height:   Height,
		Channels: 1,
		Pixels:   make([]byte, p.Count*Width*Height),
	}
	for i := 0; i < p.Count; i++ {
		Glyph(i+offset, img.Pixels[i*Width*Height:(i+1)*Width*Height])
	}
	return img, nil
}

// Glyph renders pattern n into dst (Width*Height bytes).
func Glyph(n int, dst []byte) {
	const c = (Width - 1) / 2.0
	radius := 5.0 + float64(n%7)
	bar := 4 + (n*5)%20
	vertical := n%2 == 0

	for x := 0; x < Width; x++ {
		for y := 0; y < Height; y++ {
			var v float64
			d := math.Hypot(float64(x)-c, float64(y)-c)
			if ring := 1.5 - math.Abs(d-radius); ring > 0 {
				v = 255 * math.Min(ring, 1)
			}
			along := y
			if vertical {
				along = x
			}
			if along >= bar && along < bar+2 && d <= radius {
				v = 255
			}
			dst[x*Height+y] = uint8(v)
		}
	}
}
