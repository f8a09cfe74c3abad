package scenario

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tsinghua-fib-lab/logreplay-sim/entity"
)

// Order 日志ID列表的顺序
type Order int

const (
	// OrderNative 存储自身的枚举顺序（目录项顺序/数据库自然顺序），不保证跨机器一致
	OrderNative Order = iota
	// OrderSorted 字典序
	OrderSorted
)

// Store 日志记录存储
type Store interface {
	// 按ID加载一条日志记录，ID不存在时返回ErrNotFound
	Load(ctx context.Context, id string) (*entity.LogRecord, error)
	// 列出所有日志ID
	ListIDs(ctx context.Context, order Order) ([]string, error)
}

// 支持的文件扩展名，按查找优先级排列
var recordFormats = []string{FormatBSON, FormatExtJSON}

// DirStore 基于目录的日志记录存储
// 说明：每条日志一个文件，文件名为{id}.bson或{id}.json
type DirStore struct {
	dir        string
	tracksOnly bool
}

// DirStoreOption DirStore的可选参数
type DirStoreOption func(*DirStore)

// TracksOnly 记录文件只包含locate_info
func TracksOnly() DirStoreOption {
	return func(s *DirStore) {
		s.tracksOnly = true
	}
}

// NewDirStore 创建基于目录的日志存储
func NewDirStore(dir string, opts ...DirStoreOption) *DirStore {
	s := &DirStore{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PartitionDir 分区目录，与数据预处理的输出布局一致
func PartitionDir(root, partition string) string {
	return filepath.Join(root, partition+"_parsed")
}

// Dir 存储目录
func (s *DirStore) Dir() string {
	return s.dir
}

// Load 加载日志记录
// 功能：按扩展名优先级查找并解码记录文件
// 参数：ctx-上下文，id-日志ID
// 返回：日志记录，不存在时返回ErrNotFound，解码失败时返回ErrCorruptRecord
func (s *DirStore) Load(ctx context.Context, id string) (*entity.LogRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}
	for _, format := range recordFormats {
		data, err := os.ReadFile(filepath.Join(s.dir, id+format))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record %s: %w", id, err)
		}
		return DecodeRecord(id, data, format, s.tracksOnly)
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, id, s.dir)
}

// ListIDs 列出目录下的所有日志ID
// 功能：枚举记录文件，去掉扩展名得到ID
// 参数：ctx-上下文，order-返回顺序
// 返回：日志ID列表
// 算法说明：
// 1. 按目录项顺序读取（不排序），跳过子目录与不支持的文件
// 2. ID取文件名第一个"."之前的部分，同一ID只保留第一次出现
// 3. OrderSorted时按字典序排序
func (s *DirStore) ListIDs(ctx context.Context, order Order) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open record dir: %w", err)
	}
	defer f.Close()
	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("failed to read record dir: %w", err)
	}
	ids := make([]string, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isRecordFile(e.Name()) {
			continue
		}
		id, _, _ := strings.Cut(e.Name(), ".")
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if order == OrderSorted {
		sort.Strings(ids)
	}
	return ids, nil
}

func isRecordFile(name string) bool {
	for _, format := range recordFormats {
		if strings.HasSuffix(name, format) {
			return true
		}
	}
	return false
}
