package env

import (
	"github.com/zeusync/movingmnist/internal/core/errs"
	"github.com/zeusync/movingmnist/internal/core/random"
	"github.com/zeusync/movingmnist/internal/core/systems/physics"
	"github.com/zeusync/movingmnist/internal/core/systems/render"
)

// ActionDim is the width of an action vector.
const ActionDim = 2

// Action is accepted by Step but does not influence the dynamics.
type Action [ActionDim]float32

// DigitState holds the moving digits of one episode. Indices are fixed for the
// episode; positions and velocities change every tick.
type DigitState struct {
	Indices    []int
	Positions  []physics.Vec2
	Velocities []physics.Vec2
}

// Len returns the number of digits.
func (d DigitState) Len() int {
	return len(d.Indices)
}

func (d DigitState) validate() error {
	if len(d.Positions) != len(d.Indices) || len(d.Velocities) != len(d.Indices) {
		return errs.New(errs.ErrProgrammer, "digit state slices have different lengths").
			WithContext("indices", len(d.Indices)).
			WithContext("positions", len(d.Positions)).
			WithContext("velocities", len(d.Velocities))
	}
	return nil
}

// EnvState is the carry threaded through Step. The stream is left over from
// Reset and is not consulted while stepping.
type EnvState struct {
	Digits DigitState
	Stream *random.Stream
}

// Info is the per-step auxiliary map. It is always empty.
type Info map[string]any

// Transition is the outcome of a single Step.
type Transition struct {
	State  EnvState
	Frame  render.Frame
	Reward float64
	Done   bool
	Info   Info
}

// Sequence holds the frames of one episode in tick order.
type Sequence []render.Frame
