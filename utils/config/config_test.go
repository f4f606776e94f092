package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/signal-priority-sim/utils/config"
)

func TestDefaultIsValid(t *testing.T) {
	rc, err := config.NewRuntimeConfig(config.Default())
	require.NoError(t, err)
	assert.Equal(t, 3000.0, rc.All.Signal.GreenTime)
	assert.Equal(t, rc.All.Control, rc.C)
}

func TestValidateRejects(t *testing.T) {
	p := 1.5
	cases := map[string]func(c *config.Config){
		"interval":       func(c *config.Config) { c.Control.Step.Interval = 0 },
		"total":          func(c *config.Config) { c.Control.Step.Total = -1 },
		"green":          func(c *config.Config) { c.Signal.GreenTime = 0 },
		"extension":      func(c *config.Config) { c.Signal.ExtensionTime = -1 },
		"policy":         func(c *config.Config) { c.Signal.ExtensionPolicy = "sometimes" },
		"empty group":    func(c *config.Config) { c.Signal.EW = nil },
		"tick":           func(c *config.Config) { c.Vehicle.Tick = 0 },
		"speeds":         func(c *config.Config) { c.Vehicle.SlowSpeed = c.Vehicle.GoSpeed },
		"stop over slow": func(c *config.Config) { c.Vehicle.StopZone = c.Vehicle.SlowZone },
		"request":        func(c *config.Config) { c.Vehicle.RequestZone = c.Vehicle.SlowZone },
		"probability":    func(c *config.Config) { c.Vehicle.LateProbability = &p },
		"world":          func(c *config.Config) { c.Map.World = 100 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := config.Default()
			mutate(&c)
			_, err := config.NewRuntimeConfig(c)
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}
