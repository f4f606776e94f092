package clock_test

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	clockv1 "git.fiblab.net/sim/protos/v2/go/city/clock/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/signal-priority-sim/clock"
	"github.com/tsinghua-fib-lab/signal-priority-sim/utils/config"
)

func newScheduler() (*clock.Clock, *clock.Scheduler) {
	c := clock.New(config.ControlStep{Interval: 100})
	return c, clock.NewScheduler(c)
}

func TestScheduleOrder(t *testing.T) {
	c, s := newScheduler()
	var got []string
	var times []float64
	record := func(name string) func() {
		return func() {
			got = append(got, name)
			times = append(times, s.Now())
		}
	}
	s.Schedule(record("c"), 300)
	s.Schedule(record("a"), 100)
	s.Schedule(record("b1"), 200)
	s.Schedule(record("b2"), 200)
	assert.Equal(t, 4, s.Pending())

	at, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, 100.0, at)

	assert.Equal(t, 3, s.RunUntil(250))
	assert.Equal(t, []string{"a", "b1", "b2"}, got)
	assert.Equal(t, []float64{100, 200, 200}, times)
	assert.Equal(t, 250.0, c.T)

	assert.Equal(t, 1, s.RunUntil(1000))
	assert.Equal(t, "c", got[3])
	assert.Equal(t, 1000.0, c.T)

	_, ok = s.Next()
	assert.False(t, ok)
}

func TestScheduleIsRelativeToNow(t *testing.T) {
	_, s := newScheduler()
	s.RunUntil(500)
	fired := -1.0
	s.Schedule(func() { fired = s.Now() }, 20)
	s.RunUntil(519)
	assert.Equal(t, -1.0, fired)
	s.RunUntil(520)
	assert.Equal(t, 520.0, fired)
}

func TestSelfReschedulingDoesNotRecurse(t *testing.T) {
	_, s := newScheduler()
	count := 0
	var tick func()
	tick = func() {
		count++
		s.Schedule(tick, 20)
	}
	s.Schedule(tick, 20)
	s.RunUntil(100000)
	assert.Equal(t, 5000, count)
	assert.Equal(t, 1, s.Pending())
}

func TestZeroDelayRunsInSameSlice(t *testing.T) {
	_, s := newScheduler()
	var got []int
	s.Schedule(func() {
		got = append(got, 1)
		s.Schedule(func() { got = append(got, 2) }, 0)
	}, 10)
	s.RunUntil(10)
	assert.Equal(t, []int{1, 2}, got)
}

func TestScheduleInvalidDelayPanics(t *testing.T) {
	_, s := newScheduler()
	assert.Panics(t, func() { s.Schedule(func() {}, -1) })
}

func TestClockPublishAndString(t *testing.T) {
	c, s := newScheduler()
	s.RunUntil(3723500)
	assert.Equal(t, 0.0, c.Published())
	c.Publish()
	assert.Equal(t, 3723500.0, c.Published())
	assert.Equal(t, "01:02:03.500", c.String())
	assert.True(t, c.Unbounded())
}

func TestClockNow(t *testing.T) {
	c, s := newScheduler()
	s.RunUntil(2500)
	c.Publish()
	resp, err := clock.NewService(c).Now(context.Background(), connect.NewRequest(&clockv1.NowRequest{}))
	require.NoError(t, err)
	assert.Equal(t, 2.5, resp.Msg.T)
}
