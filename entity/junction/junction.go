package junction

import (
	"fmt"
	"sync"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	mapv2connect "git.fiblab.net/sim/protos/v2/go/city/map/v2/mapv2connect"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/signal-priority-sim/entity"
	"github.com/tsinghua-fib-lab/signal-priority-sim/entity/junction/trafficlight"
	"github.com/tsinghua-fib-lab/signal-priority-sim/utils/config"
)

// Stats 路口信控统计
type Stats struct {
	Requests   int // 收到的优先请求数
	Grants     int // 被接受的优先请求数
	Extensions int // 绿灯延长次数
	Cycles     int // 完成的信号周期数（回到NS绿灯）
}

// junctionRuntime 发布给其他协程读取的路口状态
type junctionRuntime struct {
	phaseIndex    int32   // 程序中的相位下标
	remainingTime float64 // 当前相位剩余时长（秒）
	stats         Stats
}

type Junction struct {
	mapv2connect.UnimplementedTrafficLightServiceHandler

	ctx entity.ITaskContext

	id           int32
	registry     entity.IApproachRegistry
	approachIDs  []entity.ApproachID
	trafficLight ITrafficLight       // 信号灯模块
	program      *mapv2.TrafficLight // 信控程序的协议表示，构建后不再变化

	lastPhase entity.PhaseGroup
	stats     Stats

	mtx      sync.RWMutex
	snapshot junctionRuntime // snapshot，用于保存输出的数据
}

// New 创建路口及其公交优先信号灯
// 功能：根据信控配置创建信号灯，并生成信控程序的协议表示
// 参数：ctx-任务上下文，registry-进口道登记表
// 返回：路口实例；配置与登记表不一致时返回错误
func New(ctx entity.ITaskContext, registry entity.IApproachRegistry) (*Junction, error) {
	cfg := ctx.RuntimeConfig().All.Signal
	policy := trafficlight.ExtendAtExpiry
	if cfg.ExtensionPolicy == config.ExtensionPolicyOnset {
		policy = trafficlight.ExtendAtOnset
	}
	toIDs := func(ids []string) []entity.ApproachID {
		return lo.Map(ids, func(id string, _ int) entity.ApproachID { return entity.ApproachID(id) })
	}
	tl, err := trafficlight.NewPriorityTrafficLight(
		ctx.Scheduler(), registry,
		toIDs(cfg.NS), toIDs(cfg.EW),
		trafficlight.Timing{
			GreenTime:     cfg.GreenTime,
			YellowTime:    cfg.YellowTime,
			ExtensionTime: cfg.ExtensionTime,
		},
		policy,
	)
	if err != nil {
		return nil, fmt.Errorf("junction %d: %w", cfg.JunctionID, err)
	}
	return newJunction(ctx, cfg.JunctionID, registry, tl), nil
}

// newJunction 根据已创建的信号灯初始化路口
func newJunction(ctx entity.ITaskContext, id int32, registry entity.IApproachRegistry, tl ITrafficLight) *Junction {
	j := &Junction{
		ctx:          ctx,
		id:           id,
		registry:     registry,
		approachIDs:  registry.IDs(),
		trafficLight: tl,
		lastPhase:    tl.Phase(),
	}
	j.program = j.buildProgram()
	tl.OnTransition(j.onTransition)
	j.Prepare()
	return j
}

// buildProgram 生成信控程序
// 算法说明：
// 1. 相位顺序为 NS绿、NS黄、EW绿、EW黄，时长单位为秒
// 2. 每个相位的States按登记表顺序给出每个进口道的灯色
// 3. 绿灯时长为名义时长，不包含优先延长
func (j *Junction) buildProgram() *mapv2.TrafficLight {
	timing := j.trafficLight.Timing()
	groups := make(map[entity.ApproachID]entity.PhaseGroup, len(j.approachIDs))
	for _, g := range []entity.PhaseGroup{entity.PhaseNS, entity.PhaseEW} {
		for _, id := range j.trafficLight.Members(g) {
			groups[id] = g
		}
	}
	phases := make([]*mapv2.Phase, 0, 4)
	for _, g := range []entity.PhaseGroup{entity.PhaseNS, entity.PhaseEW} {
		for _, c := range []entity.Colour{entity.Green, entity.Yellow} {
			duration := timing.GreenTime
			if c == entity.Yellow {
				duration = timing.YellowTime
			}
			phases = append(phases, &mapv2.Phase{
				Duration: duration / 1000,
				States: lo.Map(j.approachIDs, func(id entity.ApproachID, _ int) mapv2.LightState {
					if groups[id] == g {
						return c
					}
					return entity.Red
				}),
			})
		}
	}
	return &mapv2.TrafficLight{
		JunctionId: j.id,
		Phases:     phases,
	}
}

// onTransition 信号灯状态变化回调，更新统计
func (j *Junction) onTransition(tr trafficlight.Transition) {
	if tr.Extended {
		j.stats.Extensions++
		return
	}
	if tr.LightState == entity.Green && tr.Phase == entity.PhaseNS && j.lastPhase == entity.PhaseEW {
		j.stats.Cycles++
		log.Debugf("junction %d cycle %d completed at %s", j.id, j.stats.Cycles, j.ctx.Clock())
	}
	j.lastPhase = tr.Phase
}

// Start 开始信号循环
func (j *Junction) Start() {
	j.trafficLight.Start()
}

// Colour 进口道当前灯色，进口道不存在则panic
func (j *Junction) Colour(id entity.ApproachID) entity.Colour {
	return j.trafficLight.Colour(id)
}

// RequestPriority 转发公交优先请求并计数
func (j *Junction) RequestPriority(id entity.ApproachID) bool {
	j.stats.Requests++
	ok := j.trafficLight.RequestPriority(id)
	if ok {
		j.stats.Grants++
	}
	return ok
}

// Prepare 准备阶段，将当前状态写入snapshot
// 说明：只能在仿真协程中调用，两次调用之间RPC协程读取的都是同一份数据
func (j *Junction) Prepare() {
	rt := junctionRuntime{
		phaseIndex:    j.phaseIndex(),
		remainingTime: (j.trafficLight.NextChangeAt() - j.ctx.Clock().T) / 1000,
		stats:         j.stats,
	}
	if rt.remainingTime < 0 {
		rt.remainingTime = 0
	}
	j.mtx.Lock()
	defer j.mtx.Unlock()
	j.snapshot = rt
}

// phaseIndex 当前状态在程序中的相位下标
func (j *Junction) phaseIndex() int32 {
	i := int32(j.trafficLight.Phase()) * 2
	if j.trafficLight.LightState() == entity.Yellow {
		i++
	}
	return i
}

// ID 路口ID
func (j *Junction) ID() int32 {
	return j.id
}

// TrafficLight 信号灯模块
func (j *Junction) TrafficLight() ITrafficLight {
	return j.trafficLight
}

// Stats 当前统计，只能在仿真协程中调用
func (j *Junction) Stats() Stats {
	return j.stats
}

// PublishedStats 最近一次Prepare发布的统计
func (j *Junction) PublishedStats() Stats {
	j.mtx.RLock()
	defer j.mtx.RUnlock()
	return j.snapshot.stats
}

// Get 信控程序
func (j *Junction) Get() *mapv2.TrafficLight {
	return j.program
}

// Step 最近一次Prepare发布的相位下标
func (j *Junction) Step() int32 {
	j.mtx.RLock()
	defer j.mtx.RUnlock()
	return j.snapshot.phaseIndex
}

// RemainingTime 最近一次Prepare发布的当前相位剩余时长（秒）
func (j *Junction) RemainingTime() float64 {
	j.mtx.RLock()
	defer j.mtx.RUnlock()
	return j.snapshot.remainingTime
}
