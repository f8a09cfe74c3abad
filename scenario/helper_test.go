package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// testRecord 构造一条完整的日志文档
func testRecord(cx, cy float64) bson.M {
	return bson.M{
		"city":                   "PIT",
		"map_center":             bson.A{cx, cy},
		"agent_spawn_lane_index": bson.A{"7903", "9713", int32(0)},
		"agent_targ_node":        "968",
		"locate_info": bson.M{
			"AGENT": bson.M{
				"init_pos": bson.A{0.0, 0.0},
				"traj": bson.M{
					"0.1": bson.A{1.0, 2.0},
					"0.0": bson.A{0.0, 0.0},
					"0.2": bson.A{2.0, 4.0},
				},
			},
			"bg-1": bson.M{
				"init_pos": bson.A{5.0, 5.0},
				"traj":     bson.M{"0.0": bson.A{5.0, 5.0}, "0.1": bson.A{5.5, 5.0}},
			},
			"bg-2": bson.M{
				"traj": bson.M{"0.0": bson.A{9.0, 1.0}},
			},
		},
	}
}

func writeBSON(t *testing.T, dir, id string, doc any) {
	t.Helper()
	data, err := bson.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+FormatBSON), data, 0o644))
}

func writeJSON(t *testing.T, dir, id string, doc any) {
	t.Helper()
	data, err := bson.MarshalExtJSON(doc, false, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+FormatExtJSON), data, 0o644))
}
