package vehicle

import (
	"errors"
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/tsinghua-fib-lab/signal-priority-sim/entity"
	"github.com/tsinghua-fib-lab/signal-priority-sim/utils/randengine"
)

var (
	ErrEmptyPath   = errors.New("path must contain at least two waypoints")
	ErrInvalidLegs = errors.New("checkpoint legs must match path legs")
)

// State 车辆状态
type State struct {
	Position          geometry.Point // 当前位置
	TargetIndex       int            // 目标路径点下标
	LegIndex          int            // 当前路段下标（路段起点的路径点下标）
	StopIndex         int            // 当前路段上关注的检查点下标
	IsLate            bool           // 是否晚点
	PriorityRequested bool           // 当前检查点的优先请求是否已被接受
	Speed             float64        // 最近一次决定的前进距离
	Heading           Heading        // 朝向
}

// Stats 车辆统计
type Stats struct {
	Ticks    int // 控制次数
	Laps     int // 完成的环线圈数
	Requests int // 发出的优先请求数
	Grants   int // 被接受的优先请求数
}

// Vehicle 公交车辆控制器
// 功能：沿固定环线行驶，按前方检查点灯色决定速度，晚点时发出公交优先请求
// 说明：
// 1. 每Tick毫秒由调度器调用一次Advance，Advance结束时再调度下一次
// 2. 每个路段的检查点序列在构建时给定，检查点下标只向前推进
// 3. 只通过信号控制器读取灯色与发出请求，信号控制器不会调用车辆
type Vehicle struct {
	scheduler entity.IScheduler
	signal    entity.ISignalController
	positions entity.IApproachPositioner

	path   []geometry.Point
	legs   [][]entity.ApproachID // legs[i]为路段path[i]->path[i+1]的检查点序列
	params Params

	state   State
	stats   Stats
	started bool

	lateness        *randengine.Engine // 每圈重新抽样晚点状态，为nil时晚点状态固定
	lateProbability float64
}

// New 创建车辆控制器
// 参数：scheduler-调度器，signal-信号控制器，positions-停车线位置，path-环线路径点，legs-每段路径的检查点序列，params-控制参数
// 返回：位于path[0]、朝向path[1]的车辆控制器；参数非法时返回错误
func New(
	scheduler entity.IScheduler,
	signal entity.ISignalController,
	positions entity.IApproachPositioner,
	path []geometry.Point,
	legs [][]entity.ApproachID,
	params Params,
) (*Vehicle, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(path) < 2 {
		return nil, fmt.Errorf("%w, got %d", ErrEmptyPath, len(path))
	}
	if len(legs) != len(path) {
		return nil, fmt.Errorf("%w: %d legs for %d waypoints", ErrInvalidLegs, len(legs), len(path))
	}
	v := &Vehicle{
		scheduler: scheduler,
		signal:    signal,
		positions: positions,
		path:      append([]geometry.Point(nil), path...),
		legs:      make([][]entity.ApproachID, len(legs)),
		params:    params,
	}
	for i, leg := range legs {
		v.legs[i] = append([]entity.ApproachID(nil), leg...)
	}
	v.state = State{
		Position:    path[0],
		TargetIndex: 1,
		LegIndex:    0,
		Speed:       params.GoSpeed,
		Heading:     headingOf(path[1].X-path[0].X, path[1].Y-path[0].Y),
	}
	return v, nil
}

// SetLate 设置固定的晚点状态
func (v *Vehicle) SetLate(late bool) {
	v.lateness = nil
	v.state.IsLate = late
}

// SetLatenessSampler 设置晚点抽样
// 功能：立即以概率p抽样晚点状态，此后每完成一圈重新抽样
func (v *Vehicle) SetLatenessSampler(engine *randengine.Engine, p float64) {
	v.lateness = engine
	v.lateProbability = p
	v.sampleLateness()
}

func (v *Vehicle) sampleLateness() {
	if v.lateness != nil {
		v.state.IsLate = v.lateness.PTrue(v.lateProbability)
	}
}

// Start 开始周期控制，重复调用会被忽略
func (v *Vehicle) Start() {
	if v.started {
		log.Warn("vehicle already started")
		return
	}
	v.started = true
	v.scheduler.Schedule(v.tick, v.params.Tick)
}

func (v *Vehicle) tick() {
	v.Advance()
	v.scheduler.Schedule(v.tick, v.params.Tick)
}

// DecideSpeed 根据灯色与到停车线的距离决定本次前进距离
func (v *Vehicle) DecideSpeed(colour entity.Colour, distanceRemaining float64) float64 {
	return v.params.DecideSpeed(colour, distanceRemaining)
}

// Advance 单次控制
// 算法说明：
// 1. 沿当前路段所在坐标轴计算到当前检查点的距离，已越过且不是最后一个检查点时推进到下一个
// 2. 晚点且当前检查点尚未请求成功时，在请求区内向信号控制器发出优先请求
// 3. 根据检查点灯色与距离决定速度；路段没有检查点时正常行驶
// 4. 两个方向上到目标路径点的距离都小于正常行驶一次的距离时，吸附到路径点并转向下一个路径点
// 5. 否则按剩余位移中较大分量确定朝向，沿朝向前进，不越过目标路径点
func (v *Vehicle) Advance() {
	v.stats.Ticks++
	s := &v.state
	from, to := v.path[s.LegIndex], v.path[s.TargetIndex]
	axis := entity.LegAxis(from, to)
	direction := entity.LegDirection(from, to)

	colour, distance := entity.Green, mathutil.INF
	if checkpoints := v.legs[s.LegIndex]; len(checkpoints) > 0 {
		distance = v.distanceTo(checkpoints[s.StopIndex], axis, direction)
		for distance < 0 && s.StopIndex < len(checkpoints)-1 {
			s.StopIndex++
			s.PriorityRequested = false
			distance = v.distanceTo(checkpoints[s.StopIndex], axis, direction)
			log.Debugf("checkpoint %s on leg %d, distance %.1f", checkpoints[s.StopIndex], s.LegIndex, distance)
		}
		approach := checkpoints[s.StopIndex]
		colour = v.signal.Colour(approach)
		if s.IsLate && !s.PriorityRequested && 0 < distance && distance < v.params.RequestZone {
			v.stats.Requests++
			if v.signal.RequestPriority(approach) {
				v.stats.Grants++
				s.PriorityRequested = true
			}
		}
	}
	s.Speed = v.DecideSpeed(colour, distance)

	dx, dy := to.X-s.Position.X, to.Y-s.Position.Y
	if math.Abs(dx) < v.params.GoSpeed && math.Abs(dy) < v.params.GoSpeed {
		v.arrive()
		return
	}
	s.Heading = headingOf(dx, dy)
	switch s.Heading {
	case HeadingEast, HeadingWest:
		s.Position.X += math.Copysign(math.Min(s.Speed, math.Abs(dx)), dx)
	default:
		s.Position.Y += math.Copysign(math.Min(s.Speed, math.Abs(dy)), dy)
	}
}

// distanceTo 沿行驶方向到停车线的距离，停车线在前方时为正
func (v *Vehicle) distanceTo(id entity.ApproachID, axis entity.Axis, direction float64) float64 {
	return (axis.On(v.positions.Position(id)) - axis.On(v.state.Position)) * direction
}

// arrive 到达目标路径点
func (v *Vehicle) arrive() {
	s := &v.state
	s.Position = v.path[s.TargetIndex]
	s.LegIndex = s.TargetIndex
	s.TargetIndex = (s.TargetIndex + 1) % len(v.path)
	s.StopIndex = 0
	s.PriorityRequested = false
	log.Debugf("arrived at waypoint %d (%.1f, %.1f)", s.LegIndex, s.Position.X, s.Position.Y)
	if s.LegIndex == 0 {
		v.stats.Laps++
		v.sampleLateness()
		log.Infof("lap %d completed, late=%v", v.stats.Laps, s.IsLate)
	}
}

// State 当前状态
func (v *Vehicle) State() State {
	return v.state
}

// Stats 当前统计
func (v *Vehicle) Stats() Stats {
	return v.stats
}

// Params 控制参数
func (v *Vehicle) Params() Params {
	return v.params
}
