package junction

import (
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/signal-priority-sim/entity"
	"github.com/tsinghua-fib-lab/signal-priority-sim/entity/junction/trafficlight"
)

// 依赖倒置，表达junction对信号灯实现的接口需求

// 信号灯接口（trafficlight.PriorityTrafficLight）
type ITrafficLight interface {
	entity.ISignalController

	Start()                                       // 开始信号循环
	OnTransition(f func(trafficlight.Transition)) // 设置状态变化回调

	Phase() entity.PhaseGroup  // 当前相位
	LightState() entity.Colour // 当前相位的灯态
	NextChangeAt() float64     // 下一次状态变化时间（毫秒）
	Timing() trafficlight.Timing
	Members(group entity.PhaseGroup) []entity.ApproachID
}

// 给外部观察者提供的信控读取接口，只读取Prepare发布的快照
type ITrafficLightGetter interface {
	Get() *mapv2.TrafficLight // 当前程序
	Step() int32              // 当前相位
	RemainingTime() float64   // 当前相位剩余时长（秒）
}
