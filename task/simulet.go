package task

import (
	"flag"
	"time"
)

const (
	SelfName = "signal-priority" // 本程序在模拟任务集群中的名字
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// prepare 准备阶段，每步执行一次
// 功能：发布当前时刻的时钟与路口快照，供RPC协程读取
// 算法说明：
// 1. 发布时钟时间
// 2. 路口写入snapshot
// 3. 心跳日志：定期输出系统状态信息
func (ctx *Context) prepare() {
	ctx.clock.Publish()
	ctx.junction.Prepare()

	if *heartBeatInterval > 0 && ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		hour, minute, second := ctx.clock.GetHourMinuteSecond()
		s := ctx.vehicle.State()
		log.Infof(
			"STEP: %d(%d:%d:%.2f) signal=%d bus=(%.1f,%.1f) %v",
			ctx.clock.InternalStep,
			hour, minute, second,
			ctx.junction.Step(),
			s.Position.X, s.Position.Y, s.Heading,
		)
	}
}

// update 更新阶段，每步执行一次
// 功能：执行调度器中所有在本步结束时刻之前到期的回调
// 说明：这是仿真的核心阶段，信号灯与车辆的状态都在回调中更新
func (ctx *Context) update() {
	ctx.scheduler.RunUntil(float64(ctx.clock.InternalStep+1) * ctx.clock.DT)
	log.Debugf("step %d complete, +1", ctx.clock.InternalStep)
	ctx.clock.InternalStep++
}

// pace 按墙钟倍速等待
// 参数：start-本步开始的墙钟时间
func (ctx *Context) pace(start time.Time) {
	realtime := ctx.runtimeConfig.C.Realtime
	if realtime <= 0 {
		return
	}
	want := time.Duration(ctx.clock.DT / realtime * float64(time.Millisecond))
	if elapsed := time.Since(start); elapsed < want {
		time.Sleep(want - elapsed)
	}
}

// Run 运行
// 说明：END_STEP为0时一直运行，直到Close被调用或syncer要求退出
func (ctx *Context) Run() {
	// 初始化
	ctx.Init()
	// init syncer
	if ctx.sidecar != nil {
		ctx.sidecar.Step(false)
	}
	for {
		start := time.Now()
		ctx.prepare()
		if ctx.sidecar != nil {
			// 通知准备阶段完成
			log.Debugf("step %d: prepare complete and call NotifyStepReady", ctx.clock.InternalStep)
			ctx.sidecar.NotifyStepReady()
		}
		ctx.update()
		last := !ctx.clock.Unbounded() && ctx.clock.InternalStep >= ctx.clock.END_STEP
		close := last
		if ctx.sidecar != nil {
			close = ctx.sidecar.Step(last) || last
		}
		if close || ctx.closed.Load() {
			break
		}
		ctx.pace(start)
	}
	ctx.prepare()

	js, vs := ctx.junction.Stats(), ctx.vehicle.Stats()
	log.Infof("engine complete at %v", ctx.clock)
	log.Infof("junction: cycles=%d requests=%d grants=%d extensions=%d", js.Cycles, js.Requests, js.Grants, js.Extensions)
	log.Infof("vehicle: laps=%d requests=%d grants=%d", vs.Laps, vs.Requests, vs.Grants)
	ctx.Close()
}
