package task

import (
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"git.fiblab.net/sim/syncer/v3"
	"github.com/tsinghua-fib-lab/signal-priority-sim/clock"
	"github.com/tsinghua-fib-lab/signal-priority-sim/entity/approach"
	"github.com/tsinghua-fib-lab/signal-priority-sim/entity/junction"
	"github.com/tsinghua-fib-lab/signal-priority-sim/entity/layout"
	"github.com/tsinghua-fib-lab/signal-priority-sim/entity/vehicle"
	"github.com/tsinghua-fib-lab/signal-priority-sim/utils/config"
	"github.com/tsinghua-fib-lab/signal-priority-sim/utils/randengine"
)

// waitForServerReady 等待服务器就绪
// 功能：通过HTTP请求检查服务器是否已经启动并可以响应
// 参数：addr-服务器地址，retryCount-重试次数，interval-重试间隔
// 返回：错误信息，如果服务器就绪则返回nil
func waitForServerReady(addr string, retryCount int, interval time.Duration) error {
	client := &http.Client{
		Timeout: interval,
	}
	for range retryCount {
		resp, err := client.Get(addr)
		if err == nil {
			resp.Body.Close()
			return nil
		}
		time.Sleep(interval)
	}
	return fmt.Errorf("server `%v` did not become ready after %d retries", addr, retryCount)
}

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态，替代全局变量
// 说明：管理时钟、调度器、路网、路口信控与公交车辆
type Context struct {

	// 任务名
	job string
	// 关闭指令
	closed atomic.Bool

	// 时钟
	clock *clock.Clock
	// 调度器，所有实体状态只在其回调中修改
	scheduler *clock.Scheduler

	// 辅助程序，处理与syncer的交互并提供RPC服务，为nil时不提供
	sidecar *syncer.Sidecar
	// sidecar close channel
	sidecarCloseCh chan struct{}
	// 是否由本任务启动了sidecar服务
	serving bool

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig

	// 路网布局
	layout *layout.Layout
	// 进口道登记表
	registry *approach.Registry
	// 路口
	junction *junction.Junction
	// 公交车辆
	vehicle *vehicle.Vehicle
}

// NewContext 创建新的仿真任务上下文
// 功能：初始化仿真系统的所有组件和配置
// 参数：
//   - job: 任务名称
//   - c: 配置对象
//   - sidecar: sidecar实例，为nil时不注册RPC服务
//   - startSidecarServe: 是否启动sidecar服务
//
// 返回：初始化完成的Context实例，配置非法时返回错误
// 算法说明：
// 1. 校验配置并创建时钟与调度器
// 2. 根据几何配置生成路网布局与进口道登记表
// 3. 创建路口信控与公交车辆
// 4. 注册RPC服务到sidecar，并启动sidecar服务（如果需要）
func NewContext(
	job string,
	c config.Config,
	sidecar *syncer.Sidecar,
	startSidecarServe bool,
) (*Context, error) {
	runtimeConfig, err := config.NewRuntimeConfig(c)
	if err != nil {
		return nil, err
	}
	ctx := &Context{
		job:            job,
		sidecar:        sidecar,
		sidecarCloseCh: make(chan struct{}),
		runtimeConfig:  runtimeConfig,
	}
	ctx.clock = clock.New(c.Control.Step)
	ctx.scheduler = clock.NewScheduler(ctx.clock)

	// 新建各类模拟对象
	ctx.layout = layout.New(c.Map)
	ctx.registry = ctx.layout.NewRegistry()
	if ctx.junction, err = junction.New(ctx, ctx.registry); err != nil {
		return nil, err
	}
	v := c.Vehicle
	ctx.vehicle, err = vehicle.New(
		ctx.scheduler, ctx.junction, ctx.registry,
		ctx.layout.Path, ctx.layout.Legs,
		vehicle.Params{
			Tick:        v.Tick,
			GoSpeed:     v.GoSpeed,
			SlowSpeed:   v.SlowSpeed,
			StopZone:    v.StopZone,
			SlowZone:    v.SlowZone,
			RequestZone: v.RequestZone,
		},
	)
	if err != nil {
		return nil, err
	}
	if v.LateProbability != nil {
		ctx.vehicle.SetLatenessSampler(randengine.New(v.Seed), *v.LateProbability)
	} else {
		ctx.vehicle.SetLate(v.Late)
	}

	if ctx.sidecar != nil {
		ctx.clock.Register(ctx.sidecar)
		ctx.junction.Register(ctx.sidecar)

		// sidecar协程，用于提供gRPC服务
		if startSidecarServe {
			ctx.serving = true
			go func() {
				err := ctx.sidecar.Serve()
				if err != nil {
					log.Panicf("failed to serve: %v", err)
				}
				ctx.sidecarCloseCh <- struct{}{}
			}()
		}
	}

	return ctx, nil
}

// WaitForServing 等待sidecar服务就绪
// 参数：listen-sidecar监听地址，例如 ":51102"
func (ctx *Context) WaitForServing(listen string) error {
	addr := listen
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return waitForServerReady("http://"+addr, 50, 100*time.Millisecond)
}

func (ctx *Context) Job() string {
	return ctx.job
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) Scheduler() *clock.Scheduler {
	return ctx.scheduler
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) Layout() *layout.Layout {
	return ctx.layout
}

func (ctx *Context) Registry() *approach.Registry {
	return ctx.registry
}

func (ctx *Context) Junction() *junction.Junction {
	return ctx.junction
}

func (ctx *Context) Vehicle() *vehicle.Vehicle {
	return ctx.vehicle
}

// Init 启动信号灯与车辆的周期行为
func (ctx *Context) Init() {
	ctx.clock.Init()

	c := ctx.runtimeConfig.All
	log.Infof("Job: %v", ctx.job)
	log.Infof("Approach: %v", len(ctx.layout.Stoplines))
	log.Infof("Path: %v waypoints, checkpoints %v", len(ctx.layout.Path), ctx.layout.Legs)
	log.Infof("Signal: green=%v yellow=%v extension=%v policy=%v",
		c.Signal.GreenTime, c.Signal.YellowTime, c.Signal.ExtensionTime, c.Signal.ExtensionPolicy)
	log.Infof("Vehicle: late=%v", ctx.vehicle.State().IsLate)

	ctx.junction.Start()
	ctx.vehicle.Start()
}

// Close 关闭任务，可以在其他协程中调用，重复调用会被忽略
func (ctx *Context) Close() {
	if !ctx.closed.CompareAndSwap(false, true) {
		return
	}
	if ctx.sidecar != nil {
		ctx.sidecar.Close()
		// wait for graceful stop
		if ctx.serving {
			<-ctx.sidecarCloseCh
		}
	}
}
