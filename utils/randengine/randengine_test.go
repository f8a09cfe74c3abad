package randengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedIn(t *testing.T) {
	e := New(0, 0)
	for range 100 {
		s := e.SeedIn(5, 3)
		assert.GreaterOrEqual(t, s, 5)
		assert.Less(t, s, 8)
	}
	assert.Equal(t, 7, e.SeedIn(7, 1))
	assert.Equal(t, 7, e.SeedIn(7, 0))
}

func TestDeterministic(t *testing.T) {
	a, b := New(1, 2), New(3, 0)
	for range 20 {
		assert.Equal(t, a.SeedIn(0, 1000), b.SeedIn(0, 1000))
	}
}
