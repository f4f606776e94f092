package entity

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
)

// ApproachID 进口道标识（停车线名称，例如 "NB"、"RS_L"）
type ApproachID string

// PhaseGroup 相位组
// 功能：标识一组共享绿灯/红灯周期的对向进口道
type PhaseGroup int32

const (
	PhaseNS PhaseGroup = iota // 南北相位
	PhaseEW                   // 东西相位
)

func (p PhaseGroup) String() string {
	switch p {
	case PhaseNS:
		return "NS"
	case PhaseEW:
		return "EW"
	default:
		return fmt.Sprintf("PhaseGroup(%d)", int32(p))
	}
}

// Other 另一个相位组
func (p PhaseGroup) Other() PhaseGroup {
	if p == PhaseNS {
		return PhaseEW
	}
	return PhaseNS
}

// Colour 信号灯颜色，沿用地图协议中的灯色枚举
type Colour = mapv2.LightState

const (
	Green  Colour = mapv2.LightState_LIGHT_STATE_GREEN
	Yellow Colour = mapv2.LightState_LIGHT_STATE_YELLOW
	Red    Colour = mapv2.LightState_LIGHT_STATE_RED
)

// 依赖倒置：信号控制器、车辆控制器对外部协作者的接口需求

// 调度器接口（clock.Scheduler）
type IScheduler interface {
	Now() float64                            // 当前虚拟时间（毫秒）
	Schedule(callback func(), delay float64) // delay毫秒后执行一次callback
}

// 进口道几何位置读取接口，由地图层提供
type IApproachPositioner interface {
	Position(id ApproachID) geometry.Point // 停车线中心坐标，不存在则panic
}

// 进口道登记表接口（entity/approach.Registry）
type IApproachRegistry interface {
	IApproachPositioner

	Has(id ApproachID) bool            // 是否存在
	IDs() []ApproachID                 // 全部进口道（登记顺序）
	Colour(id ApproachID) Colour       // 当前灯色，不存在则panic
	SetColour(id ApproachID, c Colour) // 写入灯色，不存在则panic
}

// 车辆侧使用的信号控制器接口
type ISignalController interface {
	Colour(id ApproachID) Colour        // 进口道当前灯色，不存在则panic
	RequestPriority(id ApproachID) bool // 请求当前绿灯延长，返回是否被接受
}
