package scenario

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// 记录文件格式
const (
	FormatBSON    = ".bson" // 原始BSON
	FormatExtJSON = ".json" // MongoDB Extended JSON（relaxed）
)

// rawTrack 记录中单个智能体的轨迹
type rawTrack struct {
	InitPos []float64            `bson:"init_pos"`
	Traj    map[string][]float64 `bson:"traj"`
}

// rawRecord 记录文件/文档的存储结构
type rawRecord struct {
	City       string               `bson:"city"`
	MapCenter  []float64            `bson:"map_center"`
	SpawnLane  bson.RawValue        `bson:"agent_spawn_lane_index"`
	TargNode   bson.RawValue        `bson:"agent_targ_node"`
	LocateInfo map[string]*rawTrack `bson:"locate_info"`
}

// DecodeRecord 解码一条日志记录
// 功能：按格式反序列化记录并转换为强类型结构，缺少必需字段时立即失败
// 参数：id-日志ID，data-序列化数据，format-FormatBSON或FormatExtJSON，tracksOnly-是否只要求locate_info
// 返回：日志记录，失败时返回包装了ErrCorruptRecord的错误
func DecodeRecord(id string, data []byte, format string, tracksOnly bool) (*entity.LogRecord, error) {
	var raw rawRecord
	var err error
	switch format {
	case FormatBSON:
		err = bson.Unmarshal(data, &raw)
	case FormatExtJSON:
		err = bson.UnmarshalExtJSON(data, false, &raw)
	default:
		return nil, fmt.Errorf("%w: %s: unknown format %q", ErrCorruptRecord, id, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, id, err)
	}
	return raw.toRecord(id, tracksOnly)
}

func (r *rawRecord) toRecord(id string, tracksOnly bool) (*entity.LogRecord, error) {
	corrupt := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", ErrCorruptRecord, id, fmt.Sprintf(format, args...))
	}
	rec := &entity.LogRecord{ID: id}
	if r.LocateInfo == nil {
		return nil, corrupt("missing locate_info")
	}
	rec.LocateInfo = make(entity.LocateInfo, len(r.LocateInfo))
	for agent, raw := range r.LocateInfo {
		if raw == nil {
			return nil, corrupt("agent %s: empty track", agent)
		}
		track, err := raw.toTrack()
		if err != nil {
			return nil, corrupt("agent %s: %v", agent, err)
		}
		rec.LocateInfo[entity.AgentID(agent)] = track
	}
	if tracksOnly {
		return rec, nil
	}

	if r.City == "" {
		return nil, corrupt("missing city")
	}
	rec.City = r.City
	center, err := toPoint(r.MapCenter)
	if err != nil {
		return nil, corrupt("map_center: %v", err)
	}
	rec.MapCenter = center
	if r.SpawnLane.Type == 0 {
		return nil, corrupt("missing agent_spawn_lane_index")
	}
	if rec.EgoSpawnLane, err = toLaneRef(r.SpawnLane); err != nil {
		return nil, corrupt("agent_spawn_lane_index: %v", err)
	}
	if r.TargNode.Type == 0 {
		return nil, corrupt("missing agent_targ_node")
	}
	node, err := toNodeString(r.TargNode)
	if err != nil {
		return nil, corrupt("agent_targ_node: %v", err)
	}
	rec.EgoTargetNode = entity.NodeRef(node)
	return rec, nil
}

// toTrack 转换轨迹，按时间戳升序排列采样点
// 说明：缺少init_pos时使用第一个采样点
func (t *rawTrack) toTrack() (*entity.AgentTrack, error) {
	track := &entity.AgentTrack{Traj: make([]entity.Sample, 0, len(t.Traj))}
	for key, pos := range t.Traj {
		ts, err := strconv.ParseFloat(key, 64)
		if err != nil {
			return nil, fmt.Errorf("bad timestamp %q", key)
		}
		p, err := toPoint(pos)
		if err != nil {
			return nil, fmt.Errorf("traj at %s: %v", key, err)
		}
		track.Traj = append(track.Traj, entity.Sample{T: ts, Pos: p})
	}
	sort.Slice(track.Traj, func(i, j int) bool {
		return track.Traj[i].T < track.Traj[j].T
	})
	// "0"与"0.0"等写法解析为同一时刻，先后顺序无法确定
	for i := 1; i < len(track.Traj); i++ {
		if track.Traj[i].T == track.Traj[i-1].T {
			return nil, fmt.Errorf("duplicate timestamp %v", track.Traj[i].T)
		}
	}
	switch {
	case len(t.InitPos) > 0:
		p, err := toPoint(t.InitPos)
		if err != nil {
			return nil, fmt.Errorf("init_pos: %v", err)
		}
		track.InitPos = p
	case len(track.Traj) > 0:
		track.InitPos = track.Traj[0].Pos
	default:
		return nil, fmt.Errorf("neither init_pos nor traj")
	}
	return track, nil
}

func toPoint(v []float64) (geometry.Point, error) {
	if len(v) < 2 {
		return geometry.Point{}, fmt.Errorf("expect at least 2 coordinates, got %d", len(v))
	}
	return geometry.Point{X: v[0], Y: v[1]}, nil
}

// toLaneRef 将[from, to, index]数组转换为车道标识
func toLaneRef(v bson.RawValue) (entity.LaneRef, error) {
	arr, ok := v.ArrayOK()
	if !ok {
		return entity.LaneRef{}, fmt.Errorf("expect array, got %v", v.Type)
	}
	values, err := arr.Values()
	if err != nil {
		return entity.LaneRef{}, err
	}
	if len(values) != 3 {
		return entity.LaneRef{}, fmt.Errorf("expect 3 elements, got %d", len(values))
	}
	from, err := toNodeString(values[0])
	if err != nil {
		return entity.LaneRef{}, err
	}
	to, err := toNodeString(values[1])
	if err != nil {
		return entity.LaneRef{}, err
	}
	var index int64
	switch values[2].Type {
	case bsontype.Int32:
		index = int64(values[2].Int32())
	case bsontype.Int64:
		index = values[2].Int64()
	case bsontype.Double:
		f := values[2].Double()
		if f < math.MinInt32 || f > math.MaxInt32 {
			return entity.LaneRef{}, fmt.Errorf("lane index %v out of range", f)
		}
		if f != float64(int64(f)) {
			return entity.LaneRef{}, fmt.Errorf("non-integer lane index %v", f)
		}
		index = int64(f)
	default:
		return entity.LaneRef{}, fmt.Errorf("bad lane index type %v", values[2].Type)
	}
	if index < math.MinInt32 || index > math.MaxInt32 {
		return entity.LaneRef{}, fmt.Errorf("lane index %d out of range", index)
	}
	return entity.LaneRef{From: entity.NodeRef(from), To: entity.NodeRef(to), Index: int32(index)}, nil
}

// toNodeString 节点标识可能以字符串或整数存储
func toNodeString(v bson.RawValue) (string, error) {
	switch v.Type {
	case bsontype.String:
		return v.StringValue(), nil
	case bsontype.Int32:
		return strconv.Itoa(int(v.Int32())), nil
	case bsontype.Int64:
		return strconv.FormatInt(v.Int64(), 10), nil
	default:
		return "", fmt.Errorf("bad node type %v", v.Type)
	}
}
