package trafficlight

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/signal-priority-sim/entity"
)

var (
	ErrInvalidPartition = errors.New("approaches must be partitioned into disjoint, exhaustive NS and EW groups")
	ErrUnknownApproach  = errors.New("unknown approach")
	ErrInvalidTiming    = errors.New("invalid signal timing")
)

// ExtensionPolicy 绿灯延长的判定时机
type ExtensionPolicy int

const (
	// ExtendAtExpiry 绿灯到期时判定：绿灯期间任意时刻被接受的优先请求都会使本次绿灯延长一次
	ExtendAtExpiry ExtensionPolicy = iota
	// ExtendAtOnset 绿灯开始时判定：此时请求标志刚被清除，绿灯期间到达的请求不会延长本次绿灯
	ExtendAtOnset
)

func (p ExtensionPolicy) String() string {
	if p == ExtendAtOnset {
		return "onset"
	}
	return "expiry"
}

// Timing 相位时长（毫秒）
type Timing struct {
	GreenTime     float64 // 绿灯名义时长
	YellowTime    float64 // 黄灯时长
	ExtensionTime float64 // 优先延长时长，每次绿灯最多一次
}

// Transition 状态变化记录
type Transition struct {
	At         float64           // 虚拟时间（毫秒）
	Phase      entity.PhaseGroup // 变化后的相位
	LightState entity.Colour     // 变化后的灯态（GREEN或YELLOW）
	Extended   bool              // 本次为绿灯延长，相位与灯态未变化
}

// PriorityTrafficLight 两相位公交优先信号控制器
// 功能：按 (NS,绿)→(NS,黄)→(EW,绿)→(EW,黄)→… 无限循环，并处理公交优先请求
// 说明：
// 1. 所有状态只在调度器回调与同一协程的方法调用中修改，不需要加锁
// 2. 当前相位组的进口道显示lightState对应的灯色，其他进口道为红灯
// 3. 被接受的优先请求使当前绿灯延长ExtensionTime，每次绿灯最多延长一次
type PriorityTrafficLight struct {
	scheduler entity.IScheduler
	registry  entity.IApproachRegistry

	groups  map[entity.ApproachID]entity.PhaseGroup // 进口道->相位组
	members [2][]entity.ApproachID                  // 相位组->进口道
	timing  Timing
	policy  ExtensionPolicy

	phase             entity.PhaseGroup // 当前相位
	lightState        entity.Colour     // 当前相位的灯态，GREEN或YELLOW
	priorityRequested bool              // 本次绿灯是否已接受优先请求
	extensionUsed     bool              // 本次绿灯是否已延长
	greenStartedAt    float64           // 本次绿灯开始时间
	nextChangeAt      float64           // 下一次状态变化时间
	started           bool

	onTransition func(Transition)
}

// NewPriorityTrafficLight 创建公交优先信号控制器
// 功能：校验相位划分与时长，初始化为 (NS,绿) 并写入初始灯色
// 参数：scheduler-调度器，registry-进口道登记表，ns/ew-两个相位组的进口道，timing-相位时长，policy-延长判定时机
// 返回：信号控制器；相位划分不完整或相交时返回ErrInvalidPartition，时长非法时返回ErrInvalidTiming
func NewPriorityTrafficLight(
	scheduler entity.IScheduler,
	registry entity.IApproachRegistry,
	ns, ew []entity.ApproachID,
	timing Timing,
	policy ExtensionPolicy,
) (*PriorityTrafficLight, error) {
	if timing.GreenTime <= 0 || timing.YellowTime <= 0 || timing.ExtensionTime < 0 {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidTiming, timing)
	}
	if len(ns) == 0 || len(ew) == 0 {
		return nil, fmt.Errorf("%w: empty group", ErrInvalidPartition)
	}
	groups := make(map[entity.ApproachID]entity.PhaseGroup, len(ns)+len(ew))
	for group, ids := range map[entity.PhaseGroup][]entity.ApproachID{entity.PhaseNS: ns, entity.PhaseEW: ew} {
		for _, id := range ids {
			if !registry.Has(id) {
				return nil, fmt.Errorf("%w: %w %q", ErrInvalidPartition, ErrUnknownApproach, id)
			}
			if _, ok := groups[id]; ok {
				return nil, fmt.Errorf("%w: approach %q listed twice", ErrInvalidPartition, id)
			}
			groups[id] = group
		}
	}
	if missing := lo.Filter(registry.IDs(), func(id entity.ApproachID, _ int) bool {
		_, ok := groups[id]
		return !ok
	}); len(missing) > 0 {
		return nil, fmt.Errorf("%w: approaches %v belong to no group", ErrInvalidPartition, missing)
	}

	l := &PriorityTrafficLight{
		scheduler:  scheduler,
		registry:   registry,
		groups:     groups,
		members:    [2][]entity.ApproachID{append([]entity.ApproachID(nil), ns...), append([]entity.ApproachID(nil), ew...)},
		timing:     timing,
		policy:     policy,
		phase:      entity.PhaseNS,
		lightState: entity.Green,
	}
	l.applyColours()
	return l, nil
}

// OnTransition 设置状态变化回调（在状态变化、灯色写入之后调用）
func (l *PriorityTrafficLight) OnTransition(f func(Transition)) {
	l.onTransition = f
}

// Start 开始信号循环
// 功能：写入当前相位的灯色，并调度本次绿灯的到期
// 说明：重复调用会被忽略，避免同时存在两条计时链
func (l *PriorityTrafficLight) Start() {
	if l.started {
		log.Warn("traffic light already started")
		return
	}
	l.started = true
	l.applyColours()
	l.greenStartedAt = l.scheduler.Now()
	l.scheduleGreenExpiry()
	l.notify(false)
}

// Colour 进口道当前灯色
// 说明：未知进口道属于配置错误，直接panic
func (l *PriorityTrafficLight) Colour(id entity.ApproachID) entity.Colour {
	if _, ok := l.groups[id]; !ok {
		log.Panicf("no id %q in traffic light approaches", id)
	}
	return l.registry.Colour(id)
}

// RequestPriority 公交优先请求
// 功能：当前为绿灯、进口道已知且属于当前相位时接受请求
// 参数：id-公交所在进口道
// 返回：是否接受；同一次绿灯内重复请求仍返回true，但不会再次延长
func (l *PriorityTrafficLight) RequestPriority(id entity.ApproachID) bool {
	if l.lightState != entity.Green {
		return false
	}
	group, ok := l.groups[id]
	if !ok || group != l.phase {
		return false
	}
	if !l.priorityRequested {
		l.priorityRequested = true
		log.Infof("priority granted to %s during %s green at %.0f", id, l.phase, l.scheduler.Now())
	}
	return true
}

// scheduleGreenExpiry 调度本次绿灯到期
// 说明：ExtendAtOnset策略在此时判定是否延长
func (l *PriorityTrafficLight) scheduleGreenExpiry() {
	delay := l.timing.GreenTime
	if l.policy == ExtendAtOnset && l.priorityRequested && !l.extensionUsed {
		delay += l.timing.ExtensionTime
		l.extensionUsed = true
	}
	l.nextChangeAt = l.scheduler.Now() + delay
	l.scheduler.Schedule(l.onGreenExpiry, delay)
}

// onGreenExpiry 绿灯到期
// 说明：ExtendAtExpiry策略下，若本次绿灯已接受优先请求且尚未延长，则延长一次，否则转为黄灯
func (l *PriorityTrafficLight) onGreenExpiry() {
	if l.policy == ExtendAtExpiry && l.priorityRequested && !l.extensionUsed && l.timing.ExtensionTime > 0 {
		l.extensionUsed = true
		l.nextChangeAt = l.scheduler.Now() + l.timing.ExtensionTime
		l.scheduler.Schedule(l.onGreenExpiry, l.timing.ExtensionTime)
		log.Infof("%s green extended by %.0f until %.0f", l.phase, l.timing.ExtensionTime, l.nextChangeAt)
		l.notify(true)
		return
	}
	l.toYellow()
}

func (l *PriorityTrafficLight) toYellow() {
	l.lightState = entity.Yellow
	l.applyColours()
	l.nextChangeAt = l.scheduler.Now() + l.timing.YellowTime
	l.scheduler.Schedule(l.swapPhase, l.timing.YellowTime)
	l.notify(false)
}

// swapPhase 黄灯到期，切换到另一相位的绿灯并清除优先状态
func (l *PriorityTrafficLight) swapPhase() {
	l.phase = l.phase.Other()
	l.lightState = entity.Green
	l.priorityRequested = false
	l.extensionUsed = false
	l.applyColours()
	l.greenStartedAt = l.scheduler.Now()
	l.scheduleGreenExpiry()
	l.notify(false)
}

// applyColours 写入全部进口道灯色：当前相位组为lightState，其他为红灯
func (l *PriorityTrafficLight) applyColours() {
	for _, id := range l.members[l.phase] {
		l.registry.SetColour(id, l.lightState)
	}
	for _, id := range l.members[l.phase.Other()] {
		l.registry.SetColour(id, entity.Red)
	}
}

func (l *PriorityTrafficLight) notify(extended bool) {
	log.Debugf("t=%.0f phase=%s light=%s extended=%v next=%.0f",
		l.scheduler.Now(), l.phase, l.lightState, extended, l.nextChangeAt)
	if l.onTransition != nil {
		l.onTransition(Transition{
			At:         l.scheduler.Now(),
			Phase:      l.phase,
			LightState: l.lightState,
			Extended:   extended,
		})
	}
}

// Group 进口道所属相位组
func (l *PriorityTrafficLight) Group(id entity.ApproachID) (entity.PhaseGroup, bool) {
	g, ok := l.groups[id]
	return g, ok
}

// Members 相位组内的进口道
func (l *PriorityTrafficLight) Members(group entity.PhaseGroup) []entity.ApproachID {
	return append([]entity.ApproachID(nil), l.members[group]...)
}

func (l *PriorityTrafficLight) Phase() entity.PhaseGroup  { return l.phase }
func (l *PriorityTrafficLight) LightState() entity.Colour { return l.lightState }
func (l *PriorityTrafficLight) PriorityRequested() bool   { return l.priorityRequested }
func (l *PriorityTrafficLight) ExtensionUsed() bool       { return l.extensionUsed }
func (l *PriorityTrafficLight) GreenStartedAt() float64   { return l.greenStartedAt }
func (l *PriorityTrafficLight) NextChangeAt() float64     { return l.nextChangeAt }
func (l *PriorityTrafficLight) Timing() Timing            { return l.timing }
func (l *PriorityTrafficLight) Policy() ExtensionPolicy   { return l.policy }
