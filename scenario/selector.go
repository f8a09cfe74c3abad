package scenario

import (
	"fmt"

	"github.com/tsinghua-fib-lab/logreplay-sim/utils/config"
)

// Selector 按种子选择日志
type Selector struct {
	mode    string
	ids     []string
	fixedID string
}

// NewSelector 创建选择器
// 参数：mode-场景模式，ids-候选日志ID（已排序或窗口化），fixedID-单场景模式的日志ID
func NewSelector(mode string, ids []string, fixedID string) *Selector {
	return &Selector{mode: mode, ids: ids, fixedID: fixedID}
}

// Select 选择种子对应的日志ID
// 功能：单场景模式总是返回固定日志，其余模式以种子为下标索引候选列表
// 参数：seed-种子
// 返回：日志ID，种子越界时返回ErrSeedOutOfRange
func (s *Selector) Select(seed int) (string, error) {
	if s.mode == config.ModeSingle {
		return s.fixedID, nil
	}
	if seed < 0 || seed >= len(s.ids) {
		return "", fmt.Errorf("%w: seed %d not in [0, %d)", ErrSeedOutOfRange, seed, len(s.ids))
	}
	return s.ids[seed], nil
}

// Len 候选日志数量
func (s *Selector) Len() int {
	if s.mode == config.ModeSingle {
		return 1
	}
	return len(s.ids)
}

// IDs 候选日志ID
func (s *Selector) IDs() []string {
	if s.mode == config.ModeSingle {
		return []string{s.fixedID}
	}
	return s.ids
}
