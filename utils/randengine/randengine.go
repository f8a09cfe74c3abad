// 随机数引擎，包装了golang.org/x/exp/rand，用于可复现的episode种子选择
package randengine

import (
	"sync"

	"golang.org/x/exp/rand"
)

// Engine 随机数引擎
// 功能：提供线程安全的随机数生成
type Engine struct {
	*rand.Rand            // 底层随机数生成器
	mtx        sync.Mutex // 互斥锁，用于线程安全操作
}

// New 创建随机数引擎
// 参数：seed-随机数种子，offset-种子偏移量
// 返回：随机数引擎指针
// 说明：种子偏移量允许在不修改其他配置的情况下得到不同的episode序列
func New(seed, offset uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + offset))}
}

// IntnSafe 随机生成整数（线程安全）
// 参数：n-范围上限（不包含）
// 返回：[0, n)范围内的随机整数
func (e *Engine) IntnSafe(n int) int {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.Intn(n)
}

// SeedIn 在[start, start+num)内随机选择一个episode种子（线程安全）
func (e *Engine) SeedIn(start, num int) int {
	if num <= 1 {
		return start
	}
	return start + e.IntnSafe(num)
}
