package layout_test

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/signal-priority-sim/entity"
	"github.com/tsinghua-fib-lab/signal-priority-sim/entity/layout"
	"github.com/tsinghua-fib-lab/signal-priority-sim/utils/config"
)

func TestDefaultLayout(t *testing.T) {
	l := layout.New(config.Default().Map)

	assert.Len(t, l.Stoplines, 16)
	assert.Equal(t, []geometry.Point{
		{X: -285, Y: -285},
		{X: 285, Y: -285},
		{X: 285, Y: 285},
		{X: -285, Y: 285},
	}, l.Path)

	r := l.NewRegistry()
	assert.Equal(t, l.IDs(), r.IDs())
	for _, id := range r.IDs() {
		assert.Equal(t, entity.Red, r.Colour(id))
	}
	assert.Equal(t, geometry.Point{X: 0, Y: -45}, r.Position("NB"))
	assert.Equal(t, geometry.Point{X: -45, Y: -270}, r.Position("RS_L"))
	assert.Equal(t, geometry.Point{X: 225, Y: 0}, r.Position("RE_C"))
}

func TestDefaultLegs(t *testing.T) {
	l := layout.New(config.Default().Map)
	assert.Equal(t, [][]entity.ApproachID{
		{"RS_L", "RS_R"}, // 南侧向东
		{"RE_B", "RE_T"}, // 东侧向北
		{"RN_R", "RN_L"}, // 北侧向西
		{"RW_T", "RW_B"}, // 西侧向南
	}, l.Legs)
}

func TestDefaultGroupsCoverLayout(t *testing.T) {
	c := config.Default()
	ids := layout.New(c.Map).IDs()
	groups := append(append([]string{}, c.Signal.NS...), c.Signal.EW...)
	assert.Len(t, groups, len(ids))
	for _, id := range ids {
		assert.Contains(t, groups, string(id))
	}
}

func TestCheckpointsEmptyLeg(t *testing.T) {
	path := []geometry.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}}
	stoplines := []layout.Stopline{
		{ID: "A", Center: geometry.Point{X: 80, Y: 0}, Width: 2, Height: 10},
		{ID: "B", Center: geometry.Point{X: 20, Y: 3}, Width: 2, Height: 10},
		{ID: "far", Center: geometry.Point{X: 50, Y: 30}, Width: 2, Height: 10},
		{ID: "end", Center: geometry.Point{X: 100, Y: 0}, Width: 2, Height: 10},
	}
	legs := layout.Checkpoints(path, stoplines)
	assert.Equal(t, []entity.ApproachID{"B", "A"}, legs[0])
	assert.Empty(t, legs[1])
	assert.Empty(t, legs[2])
}
