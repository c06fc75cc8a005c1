package physics

import "math"

// BounceMargin is how far past the sprite-adjusted canvas edge a digit may be
// predicted to travel before its velocity reflects.
const BounceMargin = 2.0

// Vec2 is a 2D vector. X is the canvas first axis.
type Vec2 struct{ X, Y float64 }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Polar builds the vector of length r and heading theta (radians).
func Polar(r, theta float64) Vec2 {
	return Vec2{r * math.Cos(theta), r * math.Sin(theta)}
}

// Bounds is the region a predicted position may occupy without reflecting.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// CanvasBounds returns the reflection bounds for a sprite moving on a canvas:
// [-margin, canvas-sprite+margin] on each axis.
func CanvasBounds(canvasW, canvasH, spriteW, spriteH int, margin float64) Bounds {
	return Bounds{
		MinX: -margin,
		MaxX: float64(canvasW-spriteW) + margin,
		MinY: -margin,
		MaxY: float64(canvasH-spriteH) + margin,
	}
}

// Reflect negates each velocity component whose predicted next position
// pos+vel falls outside b. The position itself is never clamped.
func Reflect(pos, vel Vec2, b Bounds) Vec2 {
	next := pos.Add(vel)
	if next.X < b.MinX || next.X > b.MaxX {
		vel.X = -vel.X
	}
	if next.Y < b.MinY || next.Y > b.MaxY {
		vel.Y = -vel.Y
	}
	return vel
}

// Advance moves one tick: the reflection test uses the unreflected prediction,
// and the move uses the reflected velocity in the same tick.
func Advance(pos, vel Vec2, b Bounds) (Vec2, Vec2) {
	vel = Reflect(pos, vel, b)
	return pos.Add(vel), vel
}
