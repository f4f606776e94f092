package vehicle

import (
	"errors"
	"fmt"

	"github.com/tsinghua-fib-lab/signal-priority-sim/entity"
)

var (
	ErrInvalidZones  = errors.New("zones must satisfy 0 < stop_zone < slow_zone < request_zone")
	ErrInvalidSpeeds = errors.New("speeds must satisfy 0 < slow_speed < go_speed")
)

// Params 车辆控制参数
type Params struct {
	Tick        float64 // 控制间隔（毫秒）
	GoSpeed     float64 // 正常行驶每次前进的距离
	SlowSpeed   float64 // 减速行驶每次前进的距离
	StopZone    float64 // 红灯停车区半径
	SlowZone    float64 // 红黄灯减速区半径
	RequestZone float64 // 优先请求区半径
}

// Validate 校验参数
func (p Params) Validate() error {
	if p.Tick <= 0 {
		return fmt.Errorf("tick must be positive, got %v", p.Tick)
	}
	if !(0 < p.SlowSpeed && p.SlowSpeed < p.GoSpeed) {
		return fmt.Errorf("%w, got %v/%v", ErrInvalidSpeeds, p.SlowSpeed, p.GoSpeed)
	}
	if !(0 < p.StopZone && p.StopZone < p.SlowZone && p.SlowZone < p.RequestZone) {
		return fmt.Errorf("%w, got %v/%v/%v", ErrInvalidZones, p.StopZone, p.SlowZone, p.RequestZone)
	}
	return nil
}

// DecideSpeed 根据前方停车线灯色与距离决定本次前进距离
// 参数：colour-停车线灯色，distanceRemaining-沿行驶方向到停车线的距离（已越过时不大于0）
// 返回：本次前进距离
// 算法说明：
// 1. 已越过停车线：正常行驶
// 2. 红灯且位于停车区内：停车
// 3. 红灯或黄灯且位于减速区内：减速
// 4. 其他情况：正常行驶
func (p Params) DecideSpeed(colour entity.Colour, distanceRemaining float64) float64 {
	if distanceRemaining <= 0 {
		return p.GoSpeed
	}
	switch {
	case colour == entity.Red && distanceRemaining <= p.StopZone:
		return 0
	case (colour == entity.Red || colour == entity.Yellow) && distanceRemaining <= p.SlowZone:
		return p.SlowSpeed
	default:
		return p.GoSpeed
	}
}
