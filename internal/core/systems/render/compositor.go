package render

import (
	"github.com/zeusync/movingmnist/internal/core/sprites"
	"github.com/zeusync/movingmnist/internal/core/systems/physics"
	"github.com/zeusync/movingmnist/pkg/generic"
)

const (
	CanvasWidth  = 64
	CanvasHeight = 64

	// LimitX and LimitY are the largest sprite offsets that keep a sprite on the canvas.
	LimitX = CanvasWidth - sprites.Width
	LimitY = CanvasHeight - sprites.Height

	maxIntensity = 255
)

type accumulator = [CanvasWidth * CanvasHeight]uint32

// Placement puts a sprite at a real-valued position.
type Placement struct {
	Sprite   sprites.Sprite
	Position physics.Vec2
}

// Compositor renders placements onto a blank canvas. It is safe for concurrent use.
type Compositor struct {
	buffers *generic.Pool[*accumulator]
}

func NewCompositor() *Compositor {
	return &Compositor{
		buffers: generic.NewResetPool(
			func() *accumulator { return new(accumulator) },
			func(a *accumulator) { clear(a[:]) },
		),
	}
}

// Offset truncates pos toward zero and clamps it so the sprite lies fully on the canvas.
func Offset(pos physics.Vec2) (x, y int) {
	return clamp(int(pos.X), 0, LimitX), clamp(int(pos.Y), 0, LimitY)
}

// Render sums every placed sprite, saturates at 255 and scales to [0, 1].
func (c *Compositor) Render(placements []Placement) Frame {
	acc := c.buffers.Get()
	defer c.buffers.Put(acc)

	for _, p := range placements {
		ox, oy := Offset(p.Position)
		for x := 0; x < sprites.Width; x++ {
			base := (ox+x)*CanvasHeight + oy
			for y, v := range p.Sprite.Row(x) {
				acc[base+y] += uint32(v)
			}
		}
	}

	frame := NewFrame()
	for i, v := range acc {
		if v > maxIntensity {
			v = maxIntensity
		}
		frame.pixels[i] = float32(v) / maxIntensity
	}
	return frame
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
