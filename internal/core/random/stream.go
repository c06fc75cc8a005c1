package random

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/zeusync/movingmnist/internal/core/errs"
)

// ErrStreamConsumed is returned when a stream is split or drawn from a second time.
var ErrStreamConsumed = fmt.Errorf("random stream already consumed: %w", errs.ErrProgrammer)

const (
	tagSplit uint64 = 0x73706c6974 // "split"
	tagHi    byte   = 'h'
	tagLo    byte   = 'l'
)

// Key is the 128-bit state identifying a stream.
type Key struct {
	Hi, Lo uint64
}

// Stream is a splittable, one-shot pseudo-random stream.
//
// Exactly one of Split, SplitN, Uniform, UniformBox or IntN may be called on a
// Stream; every later call fails with ErrStreamConsumed. Children produced by a
// split are fresh streams with their own single use.
type Stream struct {
	key      Key
	consumed atomic.Bool
}

// New seeds a root stream.
func New(seed uint64) *Stream {
	return FromKey(derive(Key{Lo: seed}, 0, 0))
}

// FromKey rebuilds a stream from a key, typically one recorded for replay.
func FromKey(key Key) *Stream {
	return &Stream{key: key}
}

// Key returns the stream identity without consuming it.
func (s *Stream) Key() Key {
	return s.key
}

// Consumed reports whether the stream has been used.
func (s *Stream) Consumed() bool {
	return s.consumed.Load()
}

// Split consumes s and returns two independent children. By convention the
// first is carried forward and the second is used for a single draw.
func (s *Stream) Split() (next, sub *Stream, err error) {
	children, err := s.SplitN(2)
	if err != nil {
		return nil, nil, err
	}
	return children[0], children[1], nil
}

// SplitN consumes s and returns n independent children.
func (s *Stream) SplitN(n int) ([]*Stream, error) {
	if n < 0 {
		return nil, errs.New(errs.ErrInvalidConfiguration, "negative split count").WithContext("n", n)
	}
	if err := s.consume(); err != nil {
		return nil, err
	}
	children := make([]*Stream, n)
	for i := range children {
		children[i] = FromKey(derive(s.key, tagSplit, uint64(i)))
	}
	return children, nil
}

// Uniform consumes s and draws n values in [0, 1).
func (s *Stream) Uniform(n int) ([]float64, error) {
	if err := s.consume(); err != nil {
		return nil, err
	}
	r := s.source()
	out := make([]float64, n)
	for i := range out {
		out[i] = r.Float64()
	}
	return out, nil
}

// UniformBox consumes s and draws n points, column j uniform in [min[j], max[j]).
func (s *Stream) UniformBox(n int, min, max []float64) ([][]float64, error) {
	if len(min) != len(max) {
		return nil, errs.New(errs.ErrInvalidConfiguration, "box bounds have different dimensions")
	}
	if err := s.consume(); err != nil {
		return nil, err
	}
	r := s.source()
	out := make([][]float64, n)
	for i := range out {
		row := make([]float64, len(min))
		for j := range row {
			row[j] = min[j] + r.Float64()*(max[j]-min[j])
		}
		out[i] = row
	}
	return out, nil
}

// IntN consumes s and draws n integers in [lo, hi).
func (s *Stream) IntN(n, lo, hi int) ([]int, error) {
	if hi <= lo {
		return nil, errs.New(errs.ErrInvalidConfiguration, "empty integer range").
			WithContext("lo", lo).
			WithContext("hi", hi)
	}
	if err := s.consume(); err != nil {
		return nil, err
	}
	r := s.source()
	out := make([]int, n)
	for i := range out {
		out[i] = lo + r.IntN(hi-lo)
	}
	return out, nil
}

func (s *Stream) consume() error {
	if !s.consumed.CompareAndSwap(false, true) {
		return ErrStreamConsumed
	}
	return nil
}

func (s *Stream) source() *rand.Rand {
	return rand.New(rand.NewPCG(s.key.Hi, s.key.Lo))
}

func derive(parent Key, tag, index uint64) Key {
	var buf [33]byte
	binary.LittleEndian.PutUint64(buf[0:], parent.Hi)
	binary.LittleEndian.PutUint64(buf[8:], parent.Lo)
	binary.LittleEndian.PutUint64(buf[16:], tag)
	binary.LittleEndian.PutUint64(buf[24:], index)

	buf[32] = tagHi
	hi := xxhash.Sum64(buf[:])
	buf[32] = tagLo
	lo := xxhash.Sum64(buf[:])
	return Key{Hi: hi, Lo: lo}
}
