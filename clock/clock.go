package clock

import (
	"fmt"
	"sync"

	"github.com/tsinghua-fib-lab/signal-priority-sim/utils/config"
)

// Clock 仿真虚拟时钟
// 功能：记录当前虚拟时间与主循环片段数
// 说明：时间单位为毫秒；T只由调度器与主循环在仿真协程中修改，
// 其他协程（RPC）通过Published读取主循环发布的快照
type Clock struct {
	DT       float64 // 每个主循环片段推进的虚拟时间（毫秒）
	END_STEP int32   // 结束片段，0表示不结束

	T            float64 // 当前虚拟时间（毫秒）
	InternalStep int32   // 当前片段数

	mtx        sync.RWMutex
	publishedT float64 // 最近一次发布的虚拟时间
}

// New 根据配置创建新的时钟实例
// 参数：stepConfig-控制步配置，包含片段时长与片段总数
// 返回：初始化完成的时钟实例
func New(stepConfig config.ControlStep) *Clock {
	c := &Clock{
		DT:       stepConfig.Interval,
		END_STEP: stepConfig.Total,
	}
	c.Init()
	return c
}

// Init 重置时钟状态
func (c *Clock) Init() {
	c.InternalStep = 0
	c.T = 0
	c.Publish()
}

// Unbounded 是否无限运行
func (c *Clock) Unbounded() bool {
	return c.END_STEP == 0
}

// Publish 发布当前时间
// 功能：将当前虚拟时间写入快照，供其他协程读取
func (c *Clock) Publish() {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.publishedT = c.T
}

// Published 读取最近一次发布的虚拟时间（毫秒）
func (c *Clock) Published() float64 {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.publishedT
}

// String 获取时钟的字符串表示
// 功能：将当前虚拟时间格式化为 HH:MM:SS.mmm
func (c *Clock) String() string {
	h, m, s := c.GetHourMinuteSecond()
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, s)
}

// GetHourMinuteSecond 获取当前时间的小时、分钟、秒
// 返回：小时、分钟、秒（秒为浮点数，支持毫秒精度）
func (c *Clock) GetHourMinuteSecond() (int, int, float64) {
	seconds := c.T / 1000
	hour := int(seconds) / 3600
	minute := int(seconds) % 3600 / 60
	second := seconds - float64(hour*3600+minute*60)
	return hour, minute, second
}
