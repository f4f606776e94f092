package entity

import (
	"github.com/tsinghua-fib-lab/signal-priority-sim/clock"
	"github.com/tsinghua-fib-lab/signal-priority-sim/utils/config"
)

type ITaskContext interface {
	Clock() *clock.Clock
	Scheduler() *clock.Scheduler
	RuntimeConfig() *config.RuntimeConfig
}
