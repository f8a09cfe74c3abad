package clock

import (
	"fmt"

	"git.fiblab.net/sim/protos/v2/go/city/clock/v1/clockv1connect"
	"github.com/tsinghua-fib-lab/logreplay-sim/utils/config"
)

// Clock 仿真时钟
// 功能：管理每个episode内的时间推进
// 说明：每个episode从起始步重新计时，Episode记录当前episode序号
type Clock struct {
	clockv1connect.UnimplementedClockServiceHandler

	DT         float64 // 每步时间间隔（秒）
	START_STEP int32   // 起始步
	END_STEP   int32   // 结束步，模拟区间[START, END)

	T            float64 // episode内当前时间（秒）
	InternalStep int32   // 当前步数
	Episode      int     // 当前episode序号，从0开始
}

// New 根据配置创建新的时钟实例
// 参数：stepConfig-控制步配置，Interval需已补全
// 返回：初始化完成的时钟实例
func New(stepConfig config.ControlStep) *Clock {
	c := &Clock{
		DT:         stepConfig.Interval,
		START_STEP: stepConfig.Start,
		END_STEP:   stepConfig.Start + stepConfig.Total,
	}
	c.Init()
	return c
}

// Init 重置到起始步
func (c *Clock) Init() {
	c.InternalStep = c.START_STEP
	c.T = float64(c.InternalStep) * c.DT
}

// ResetEpisode 开始新的episode
func (c *Clock) ResetEpisode(episode int) {
	c.Episode = episode
	c.Init()
}

// Advance 前进一步
func (c *Clock) Advance() {
	c.InternalStep++
	c.T = float64(c.InternalStep) * c.DT
}

// Elapsed episode内已经过的时间（秒）
func (c *Clock) Elapsed() float64 {
	return float64(c.InternalStep-c.START_STEP) * c.DT
}

// IsLastStep 是否为episode的最后一步
func (c *Clock) IsLastStep() bool {
	return c.InternalStep+1 >= c.END_STEP
}

// String 获取时钟的字符串表示
// 返回：格式化的时间字符串（Episode X: MM:SS.ss）
func (c *Clock) String() string {
	m := int(c.T / 60)
	s := c.T - float64(m*60)
	return fmt.Sprintf("Episode %d: %02d:%05.2f", c.Episode, m, s)
}
