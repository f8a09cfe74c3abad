package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
)

func TestParseOverride(t *testing.T) {
	o, err := ParseOverride("('7903', '9713', 0)\n('968',)\n")
	require.NoError(t, err)
	assert.Equal(t, entity.LaneRef{From: "7903", To: "9713", Index: 0}, o.SpawnLane)
	assert.Equal(t, entity.NodeRef("968"), o.TargetNode)

	o, err = ParseOverride("\n[\"1\", \"2\", 3]\n\n['4', '5']")
	require.NoError(t, err)
	assert.Equal(t, entity.LaneRef{From: "1", To: "2", Index: 3}, o.SpawnLane)
	assert.Equal(t, entity.NodeRef("4"), o.TargetNode)

	for _, bad := range []string{
		"",
		"('1', '2', 0)",
		"('1', '2')\n('3',)",
		"('1', '2', x)\n('3',)",
		"1, 2, 0\n('3',)",
		"('1', '2', 0)\n()",
		"('1, '2', 0)\n('3',)",
		"('1', '2', 4294967296)\n('3',)",
	} {
		_, err := ParseOverride(bad)
		assert.Error(t, err, bad)
	}
}

func TestDirOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), []byte("('1', '2', 1)\n('9',)\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad"), []byte("nonsense"), 0o644))
	d := NewDirOverrides(dir)
	ctx := context.Background()

	o, err := d.Get(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, entity.NodeRef("9"), o.TargetNode)

	o, err = d.Get(ctx, "none")
	require.NoError(t, err)
	assert.Nil(t, o)

	_, err = d.Get(ctx, "bad")
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func TestStaticOverrides(t *testing.T) {
	s := StaticOverrides{"a": {TargetNode: "1"}}
	o, err := s.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, entity.NodeRef("1"), o.TargetNode)
	o, err = s.Get(context.Background(), "b")
	require.NoError(t, err)
	assert.Nil(t, o)

	o, err = NoOverrides{}.Get(context.Background(), "a")
	assert.NoError(t, err)
	assert.Nil(t, o)
}
