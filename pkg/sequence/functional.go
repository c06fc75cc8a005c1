package sequence

import (
	"iter"
)

// Iterator is a generic, immutable, chainable iterator for any type T.
type Iterator[T any] struct {
	seq iter.Seq[T]
}

// From creates a new Iterator from a slice of T.
func From[T any](data []T) *Iterator[T] {
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			for _, v := range data {
				if !yield(v) {
					return
				}
			}
		},
	}
}

// Repeat creates an Iterator yielding value n times.
func Repeat[T any](value T, n int) *Iterator[T] {
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			for i := 0; i < n; i++ {
				if !yield(value) {
					return
				}
			}
		},
	}
}

// Collect exhausts the iterator and returns a slice of all elements.
func (i *Iterator[T]) Collect() []T {
	var out []T
	i.seq(func(v T) bool {
		out = append(out, v)
		return true
	})
	return out
}

/*
Scan folds step over the iterator with an explicit carry and stacks one output per element.

Parameters:

	it   - input elements, consumed in order.
	init - initial carry.
	step - returns the next carry and the output for one element.

Returns:

	The final carry and the outputs in input order. On the first step error the
	fold stops and returns the carry and outputs accumulated so far.
*/
func Scan[T any, S any, R any](it *Iterator[T], init S, step func(S, T) (S, R, error)) (S, []R, error) {
	carry := init
	var (
		out []R
		err error
	)
	it.seq(func(v T) bool {
		var y R
		var next S
		next, y, err = step(carry, v)
		if err != nil {
			return false
		}
		carry = next
		out = append(out, y)
		return true
	})
	return carry, out, err
}
