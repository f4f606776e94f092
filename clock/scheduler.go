package clock

import (
	"math"

	"github.com/tsinghua-fib-lab/signal-priority-sim/utils/container"
)

// Scheduler 单协程协作式定时调度器
// 功能：在虚拟时间上按到期先后执行一次性回调
// 说明：
// 1. 回调按到期时间非递减顺序执行，同一时刻按调度顺序执行
// 2. 回调执行完毕后才会执行下一个回调，回调之间不会交错
// 3. 周期行为由回调内部再次调度实现，调度只入队，不会产生递归调用
type Scheduler struct {
	clock *Clock
	queue *container.PriorityQueue[func()]
}

// NewScheduler 创建调度器
// 参数：c-虚拟时钟，调度器执行回调时推进其T
func NewScheduler(c *Clock) *Scheduler {
	return &Scheduler{
		clock: c,
		queue: container.NewPriorityQueue[func()](),
	}
}

// Now 当前虚拟时间（毫秒）
func (s *Scheduler) Now() float64 {
	return s.clock.T
}

// Schedule 调度一次性回调
// 功能：在当前虚拟时间delay毫秒后执行callback，恰好执行一次
// 说明：delay为负数或NaN属于调用错误，直接panic
func (s *Scheduler) Schedule(callback func(), delay float64) {
	if delay < 0 || math.IsNaN(delay) {
		log.Panicf("schedule with invalid delay %v", delay)
	}
	s.queue.HeapPush(callback, s.clock.T+delay)
}

// Pending 尚未执行的回调数
func (s *Scheduler) Pending() int {
	return s.queue.Len()
}

// Next 下一个回调的到期时间
// 返回：到期时间，队列为空时ok为false
func (s *Scheduler) Next() (at float64, ok bool) {
	if s.queue.Len() == 0 {
		return 0, false
	}
	_, at = s.queue.First()
	return at, true
}

// RunUntil 执行所有在t之前（含t）到期的回调
// 功能：依次弹出到期回调并执行，执行前将时钟推进到回调的到期时间；
// 执行过程中新调度且在t之前到期的回调同样会被执行
// 参数：t-目标虚拟时间
// 返回：本次执行的回调数量
// 说明：结束时时钟停在t（若t晚于当前时间）
func (s *Scheduler) RunUntil(t float64) int {
	n := 0
	for s.queue.Len() > 0 {
		if _, at := s.queue.First(); at > t {
			break
		}
		callback, at := s.queue.HeapPop()
		s.clock.T = at
		callback()
		n++
	}
	if t > s.clock.T {
		s.clock.T = t
	}
	return n
}
