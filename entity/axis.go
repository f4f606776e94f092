package entity

import (
	"math"

	"git.fiblab.net/general/common/v2/geometry"
)

// Axis 路段行驶所沿的坐标轴（路网只包含水平、竖直路段）
type Axis int

const (
	AxisX Axis = iota // 水平
	AxisY             // 竖直
)

// LegAxis 路段from->to所沿的坐标轴，水平分量不小于竖直分量时为水平
func LegAxis(from, to geometry.Point) Axis {
	if math.Abs(to.X-from.X) >= math.Abs(to.Y-from.Y) {
		return AxisX
	}
	return AxisY
}

// On 点p在坐标轴上的分量
func (a Axis) On(p geometry.Point) float64 {
	if a == AxisX {
		return p.X
	}
	return p.Y
}

// Across 点p在垂直于坐标轴方向上的分量
func (a Axis) Across(p geometry.Point) float64 {
	if a == AxisX {
		return p.Y
	}
	return p.X
}

// LegDirection 路段from->to在所沿坐标轴上的方向（+1或-1）
func LegDirection(from, to geometry.Point) float64 {
	a := LegAxis(from, to)
	if a.On(to) >= a.On(from) {
		return 1
	}
	return -1
}
