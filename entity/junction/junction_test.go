package junction_test

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/signal-priority-sim/clock"
	"github.com/tsinghua-fib-lab/signal-priority-sim/entity"
	"github.com/tsinghua-fib-lab/signal-priority-sim/entity/junction"
	"github.com/tsinghua-fib-lab/signal-priority-sim/entity/layout"
	"github.com/tsinghua-fib-lab/signal-priority-sim/utils/config"
)

type testContext struct {
	clock         *clock.Clock
	scheduler     *clock.Scheduler
	runtimeConfig *config.RuntimeConfig
}

func (c *testContext) Clock() *clock.Clock                  { return c.clock }
func (c *testContext) Scheduler() *clock.Scheduler          { return c.scheduler }
func (c *testContext) RuntimeConfig() *config.RuntimeConfig { return c.runtimeConfig }

func newJunction(t *testing.T, modify func(*config.Config)) (*testContext, *junction.Junction) {
	c := config.Default()
	if modify != nil {
		modify(&c)
	}
	rc, err := config.NewRuntimeConfig(c)
	require.NoError(t, err)
	clk := clock.New(c.Control.Step)
	ctx := &testContext{clock: clk, scheduler: clock.NewScheduler(clk), runtimeConfig: rc}
	j, err := junction.New(ctx, layout.New(c.Map).NewRegistry())
	require.NoError(t, err)
	return ctx, j
}

func TestProgram(t *testing.T) {
	_, j := newJunction(t, func(c *config.Config) { c.Signal.JunctionID = 7 })
	tl := j.Get()
	assert.Equal(t, int32(7), tl.JunctionId)
	require.Len(t, tl.Phases, 4)
	assert.Equal(t, []float64{3, 1.5, 3, 1.5}, []float64{
		tl.Phases[0].Duration, tl.Phases[1].Duration, tl.Phases[2].Duration, tl.Phases[3].Duration,
	})
	// 登记表顺序：NB SB WB EB ...
	assert.Equal(t, entity.Green, tl.Phases[0].States[0])
	assert.Equal(t, entity.Red, tl.Phases[0].States[2])
	assert.Equal(t, entity.Yellow, tl.Phases[1].States[1])
	assert.Equal(t, entity.Red, tl.Phases[2].States[0])
	assert.Equal(t, entity.Green, tl.Phases[2].States[3])
	assert.Equal(t, entity.Yellow, tl.Phases[3].States[2])
}

func TestSnapshotAndStats(t *testing.T) {
	ctx, j := newJunction(t, nil)
	j.Start()

	ctx.scheduler.RunUntil(1000)
	assert.True(t, j.RequestPriority("NB"))
	assert.False(t, j.RequestPriority("EB"))
	j.Prepare()
	assert.Equal(t, int32(0), j.Step())
	assert.InDelta(t, 2.0, j.RemainingTime(), 1e-9)

	// 3000到期时延长到5000
	ctx.scheduler.RunUntil(3500)
	j.Prepare()
	assert.Equal(t, int32(0), j.Step())
	assert.InDelta(t, 1.5, j.RemainingTime(), 1e-9)

	ctx.scheduler.RunUntil(5000)
	j.Prepare()
	assert.Equal(t, int32(1), j.Step())

	// 5000+1500 EW绿，+3000 EW黄，+1500 回到NS绿
	ctx.scheduler.RunUntil(11000)
	j.Prepare()
	assert.Equal(t, int32(0), j.Step())
	assert.Equal(t, junction.Stats{Requests: 2, Grants: 1, Extensions: 1, Cycles: 1}, j.Stats())
	assert.Equal(t, j.Stats(), j.PublishedStats())
}

func TestOnsetPolicyFromConfig(t *testing.T) {
	ctx, j := newJunction(t, func(c *config.Config) { c.Signal.ExtensionPolicy = config.ExtensionPolicyOnset })
	j.Start()
	require.True(t, j.RequestPriority("RS_L"))
	ctx.scheduler.RunUntil(3000)
	assert.Equal(t, entity.Yellow, j.Colour("RS_L"))
	assert.Equal(t, 0, j.Stats().Extensions)
}

func TestInvalidGroups(t *testing.T) {
	c := config.Default()
	c.Signal.NS = append(c.Signal.NS, "XX")
	rc, err := config.NewRuntimeConfig(c)
	require.NoError(t, err)
	clk := clock.New(c.Control.Step)
	ctx := &testContext{clock: clk, scheduler: clock.NewScheduler(clk), runtimeConfig: rc}
	_, err = junction.New(ctx, layout.New(c.Map).NewRegistry())
	assert.Error(t, err)
}

func TestGetTrafficLight(t *testing.T) {
	ctx, j := newJunction(t, nil)
	j.Start()
	ctx.scheduler.RunUntil(4000)
	j.Prepare()

	res, err := j.GetTrafficLight(context.Background(), connect.NewRequest(&mapv2.GetTrafficLightRequest{JunctionId: 0}))
	require.NoError(t, err)
	assert.Equal(t, int32(1), res.Msg.PhaseIndex)
	assert.InDelta(t, 0.5, res.Msg.TimeRemaining, 1e-9)
	assert.Len(t, res.Msg.TrafficLight.Phases, 4)

	_, err = j.GetTrafficLight(context.Background(), connect.NewRequest(&mapv2.GetTrafficLightRequest{JunctionId: 3}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}
