package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPool_Generate(t *testing.T) {
	calls := 0
	p := NewPool(func() *[]int {
		calls++
		s := make([]int, 4)
		return &s
	})

	v := p.Get()
	assert.Len(t, *v, 4)
	assert.GreaterOrEqual(t, calls, 1)
}

func TestResetPool_ResetsOnPut(t *testing.T) {
	var reset int
	p := NewResetPool(
		func() *[4]int { return new([4]int) },
		func(a *[4]int) {
			reset++
			clear(a[:])
		},
	)

	v := p.Get()
	v[0] = 7
	p.Put(v)
	assert.Equal(t, 1, reset)
	assert.Equal(t, 0, v[0])
}
