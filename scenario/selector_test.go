package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/logreplay-sim/utils/config"
)

func TestSelectorGeneralization(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	s := NewSelector(config.ModeGeneralization, ids, "")
	for i := 0; i < 3; i++ {
		id, err := s.Select(3)
		require.NoError(t, err)
		assert.Equal(t, "d", id)
	}
	assert.Equal(t, 5, s.Len())

	_, err := s.Select(len(ids))
	assert.ErrorIs(t, err, ErrSeedOutOfRange)
	_, err = s.Select(-1)
	assert.ErrorIs(t, err, ErrSeedOutOfRange)
}

func TestSelectorSingle(t *testing.T) {
	s := NewSelector(config.ModeSingle, nil, "fixed")
	for _, seed := range []int{0, 1, 100} {
		id, err := s.Select(seed)
		require.NoError(t, err)
		assert.Equal(t, "fixed", id)
	}
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, []string{"fixed"}, s.IDs())
}
