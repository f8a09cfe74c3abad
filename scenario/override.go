package scenario

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
)

// SpawnOverride 自车出生车道与目的地的覆盖
type SpawnOverride struct {
	SpawnLane  entity.LaneRef
	TargetNode entity.NodeRef
}

// OverrideSource 出生点覆盖来源
type OverrideSource interface {
	// 返回日志对应的覆盖，不存在覆盖时返回nil, nil
	Get(ctx context.Context, id string) (*SpawnOverride, error)
}

// NoOverrides 不提供任何覆盖
type NoOverrides struct{}

func (NoOverrides) Get(context.Context, string) (*SpawnOverride, error) {
	return nil, nil
}

// StaticOverrides 内存中的覆盖表
type StaticOverrides map[string]SpawnOverride

func (s StaticOverrides) Get(_ context.Context, id string) (*SpawnOverride, error) {
	if o, ok := s[id]; ok {
		return &o, nil
	}
	return nil, nil
}

// DirOverrides 基于目录的覆盖来源
// 说明：文件名即日志ID，无扩展名，共两行：
//
//	('7903', '9713', 0)
//	('968',)
//
// 第一行为出生车道，第二行第一个元素为目的地节点
type DirOverrides struct {
	dir string
}

// NewDirOverrides 创建基于目录的覆盖来源
func NewDirOverrides(dir string) *DirOverrides {
	return &DirOverrides{dir: dir}
}

// Get 读取日志对应的覆盖文件
// 功能：文件不存在时视为无覆盖，存在但格式错误时返回ErrCorruptRecord
func (d *DirOverrides) Get(ctx context.Context, id string) (*SpawnOverride, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(d.dir, id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read override of %s: %w", id, err)
	}
	o, err := ParseOverride(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: override of %s: %v", ErrCorruptRecord, id, err)
	}
	return o, nil
}

// ParseOverride 解析覆盖文件内容
// 参数：text-文件内容
// 返回：覆盖，格式错误时返回错误
// 算法说明：
// 1. 忽略空行，要求至少两行
// 2. 第一行解析为三元组(from, to, index)
// 3. 第二行解析为元组并取第一个元素作为目的地节点
func ParseOverride(text string) (*SpawnOverride, error) {
	lines := make([]string, 0, 2)
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return nil, fmt.Errorf("expect 2 lines, got %d", len(lines))
	}
	lane, err := parseTuple(lines[0])
	if err != nil {
		return nil, fmt.Errorf("spawn lane: %w", err)
	}
	if len(lane) != 3 {
		return nil, fmt.Errorf("spawn lane: expect 3 elements, got %d", len(lane))
	}
	index, err := strconv.ParseInt(lane[2], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("spawn lane: bad index %q", lane[2])
	}
	dest, err := parseTuple(lines[1])
	if err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}
	if len(dest) == 0 {
		return nil, errors.New("destination: empty tuple")
	}
	return &SpawnOverride{
		SpawnLane: entity.LaneRef{
			From:  entity.NodeRef(lane[0]),
			To:    entity.NodeRef(lane[1]),
			Index: int32(index),
		},
		TargetNode: entity.NodeRef(dest[0]),
	}, nil
}

// parseTuple 解析形如('a', 'b', 0)或['a', 'b']的元组字面量
func parseTuple(s string) ([]string, error) {
	if len(s) < 2 {
		return nil, fmt.Errorf("bad tuple %q", s)
	}
	open, close := s[0], s[len(s)-1]
	if !(open == '(' && close == ')') && !(open == '[' && close == ']') {
		return nil, fmt.Errorf("bad tuple %q", s)
	}
	var res []string
	for _, part := range strings.Split(s[1:len(s)-1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			// 单元素元组的结尾逗号
			continue
		}
		if n := len(part); n >= 2 && (part[0] == '\'' || part[0] == '"') {
			if part[n-1] != part[0] {
				return nil, fmt.Errorf("unterminated string %q", part)
			}
			part = part[1 : n-1]
		}
		res = append(res, part)
	}
	return res, nil
}
