package env

import (
	"fmt"
	"iter"
	"math"

	"github.com/zeusync/movingmnist/internal/core/errs"
	"github.com/zeusync/movingmnist/internal/core/observability/log"
	"github.com/zeusync/movingmnist/internal/core/random"
	"github.com/zeusync/movingmnist/internal/core/sprites"
	"github.com/zeusync/movingmnist/internal/core/systems/physics"
	"github.com/zeusync/movingmnist/internal/core/systems/render"
	"github.com/zeusync/movingmnist/pkg/sequence"
)

const (
	DefaultSeqLen = 100
	DefaultDigits = 2

	// Speeds are drawn from [MinSpeed, MinSpeed+SpeedRange).
	MinSpeed   = 2
	SpeedRange = 5

	stepReward = 1.0
)

// Config sizes the episodes produced by an Env.
type Config struct {
	SeqLen            int `json:"seq_len" yaml:"seq_len"`
	DigitsPerSequence int `json:"digits_per_sequence" yaml:"digits_per_sequence"`
}

func DefaultConfig() Config {
	return Config{SeqLen: DefaultSeqLen, DigitsPerSequence: DefaultDigits}
}

// Validate validates the episode configuration
func (c Config) Validate() error {
	if c.SeqLen <= 0 {
		return errs.New(errs.ErrInvalidConfiguration, "seq_len must be positive").WithContext("seq_len", c.SeqLen)
	}
	if c.DigitsPerSequence < 1 {
		return errs.New(errs.ErrInvalidConfiguration, "digits_per_sequence must be at least 1").
			WithContext("digits_per_sequence", c.DigitsPerSequence)
	}
	return nil
}

// Env simulates digits bouncing on a 64×64 canvas. It holds no per-episode
// state and is safe for concurrent use.
type Env struct {
	store      *sprites.Store
	cfg        Config
	bounds     physics.Bounds
	compositor *render.Compositor
	logger     log.Log
}

type Option func(*Env)

func WithLogger(logger log.Log) Option {
	return func(e *Env) {
		e.logger = logger
	}
}

// New validates the configuration up front; an Env never fails later because of it.
func New(store *sprites.Store, cfg Config, opts ...Option) (*Env, error) {
	if store == nil || store.Len() == 0 {
		return nil, errs.New(errs.ErrInvalidConfiguration, "sprite store is empty")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Env{
		store:      store,
		cfg:        cfg,
		bounds:     physics.CanvasBounds(render.CanvasWidth, render.CanvasHeight, sprites.Width, sprites.Height, physics.BounceMargin),
		compositor: render.NewCompositor(),
		logger:     log.Provide(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.logger.Debug("environment created",
		log.Int("sprites", store.Len()),
		log.Int("seq_len", cfg.SeqLen),
		log.Int("digits", cfg.DigitsPerSequence),
	)
	return e, nil
}

func (e *Env) Config() Config {
	return e.cfg
}

func (e *Env) Store() *sprites.Store {
	return e.store
}

// Reset draws a fresh episode from stream, consuming it. Headings, sprite
// indices, speeds and positions each come from their own split, in that order.
// The returned state carries the stream left after the last split.
func (e *Env) Reset(stream *random.Stream) (EnvState, render.Frame, error) {
	k := e.cfg.DigitsPerSequence

	next, sub, err := stream.Split()
	if err != nil {
		return EnvState{}, render.Frame{}, err
	}
	unit, err := sub.Uniform(k)
	if err != nil {
		return EnvState{}, render.Frame{}, err
	}

	next, sub, err = next.Split()
	if err != nil {
		return EnvState{}, render.Frame{}, err
	}
	indices, err := sub.IntN(k, 0, e.store.Len())
	if err != nil {
		return EnvState{}, render.Frame{}, err
	}

	next, sub, err = next.Split()
	if err != nil {
		return EnvState{}, render.Frame{}, err
	}
	speeds, err := sub.IntN(k, 0, SpeedRange)
	if err != nil {
		return EnvState{}, render.Frame{}, err
	}

	next, sub, err = next.Split()
	if err != nil {
		return EnvState{}, render.Frame{}, err
	}
	points, err := sub.UniformBox(k, []float64{0, 0}, []float64{render.LimitX, render.LimitY})
	if err != nil {
		return EnvState{}, render.Frame{}, err
	}

	digits := DigitState{
		Indices:    indices,
		Positions:  make([]physics.Vec2, k),
		Velocities: make([]physics.Vec2, k),
	}
	for i := 0; i < k; i++ {
		heading := headingFor(unit[i])
		speed := float64(speeds[i] + MinSpeed)
		digits.Velocities[i] = physics.Polar(speed, heading)
		digits.Positions[i] = physics.Vec2{X: points[i][0], Y: points[i][1]}
	}

	frame, err := e.Render(digits)
	if err != nil {
		return EnvState{}, render.Frame{}, err
	}
	return EnvState{Digits: digits, Stream: next}, frame, nil
}

// headingFor maps u in [0, 1) onto a heading in [-π, π).
func headingFor(u float64) float64 {
	return math.Pi * (u*2 - 1)
}

// Step advances every digit by one tick. The action is ignored, the reward is
// always 1 and the episode never ends. The input state is not modified.
func (e *Env) Step(state EnvState, _ Action) (Transition, error) {
	cur := state.Digits
	if err := cur.validate(); err != nil {
		return Transition{}, err
	}

	next := DigitState{
		Indices:    cur.Indices,
		Positions:  make([]physics.Vec2, cur.Len()),
		Velocities: make([]physics.Vec2, cur.Len()),
	}
	for i := range cur.Positions {
		next.Positions[i], next.Velocities[i] = physics.Advance(cur.Positions[i], cur.Velocities[i], e.bounds)
	}

	frame, err := e.Render(next)
	if err != nil {
		return Transition{}, err
	}
	return Transition{
		State:  EnvState{Digits: next, Stream: state.Stream},
		Frame:  frame,
		Reward: stepReward,
		Done:   false,
		Info:   Info{},
	}, nil
}

// Render composites the digits at their current positions.
func (e *Env) Render(d DigitState) (render.Frame, error) {
	if err := d.validate(); err != nil {
		return render.Frame{}, err
	}
	placements := make([]render.Placement, d.Len())
	for i, idx := range d.Indices {
		s, err := e.store.At(idx)
		if err != nil {
			return render.Frame{}, fmt.Errorf("digit %d: %w", i, err)
		}
		placements[i] = render.Placement{Sprite: s, Position: d.Positions[i]}
	}
	return e.compositor.Render(placements), nil
}

// Build produces the SeqLen frames of the episode seeded by stream. The frame
// rendered by Reset is not part of the sequence: the first frame is the one
// after the first tick.
func (e *Env) Build(stream *random.Stream) (Sequence, error) {
	start, _, err := e.Reset(stream)
	if err != nil {
		return nil, err
	}

	_, frames, err := sequence.Scan(
		sequence.Repeat(Action{}, e.cfg.SeqLen),
		start,
		func(s EnvState, a Action) (EnvState, render.Frame, error) {
			tr, err := e.Step(s, a)
			return tr.State, tr.Frame, err
		},
	)
	if err != nil {
		return nil, err
	}
	return frames, nil
}

// Rollout resets from stream and steps ticks times, yielding every transition.
// On failure it yields the error once and stops.
func (e *Env) Rollout(stream *random.Stream, ticks int) iter.Seq2[Transition, error] {
	return func(yield func(Transition, error) bool) {
		state, _, err := e.Reset(stream)
		if err != nil {
			yield(Transition{}, err)
			return
		}
		for i := 0; i < ticks; i++ {
			tr, err := e.Step(state, Action{})
			if err != nil {
				yield(Transition{}, err)
				return
			}
			if !yield(tr, nil) {
				return
			}
			state = tr.State
		}
	}
}
