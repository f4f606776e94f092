package config

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid config")

// Default 默认配置
// 功能：返回单路口、单公交场景的默认参数
// 说明：YAML中缺省的字段保留此处的值
func Default() Config {
	return Config{
		Control: Control{
			Step: ControlStep{Interval: 100, Total: 0},
		},
		Signal: Signal{
			JunctionID:      0,
			GreenTime:       3000,
			YellowTime:      1500,
			ExtensionTime:   2000,
			ExtensionPolicy: ExtensionPolicyExpiry,
			NS:              []string{"NB", "SB", "RN_L", "RN_R", "RN_C", "RS_L", "RS_R", "RS_C"},
			EW:              []string{"EB", "WB", "RE_T", "RE_B", "RE_C", "RW_T", "RW_B", "RW_C"},
		},
		Vehicle: Vehicle{
			Tick:        20,
			GoSpeed:     4,
			SlowSpeed:   1.5,
			StopZone:    60,
			SlowZone:    100,
			RequestZone: 120,
			Late:        false,
		},
		Map: Map{
			World:         300,
			RoadWidth:     60,
			StopSetback:   12,
			StopThickness: 6,
		},
	}
}

// RuntimeConfig 运行时配置
// 功能：存储经过校验的配置，供各模块在初始化时读取
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：校验配置的取值范围并创建运行时配置对象
// 参数：config-原始配置对象
// 返回：运行时配置指针，配置非法时返回包装了ErrInvalidConfig的错误
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &RuntimeConfig{
		All: config,
		C:   config.Control,
	}, nil
}

// Validate 校验配置
// 说明：进口道划分是否完整、不相交由信号控制器在拿到路网后检查
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}
	if c.Control.Step.Interval <= 0 {
		return invalid("control.step.interval must be positive, got %v", c.Control.Step.Interval)
	}
	if c.Control.Step.Total < 0 {
		return invalid("control.step.total must not be negative, got %v", c.Control.Step.Total)
	}
	if c.Control.Realtime < 0 {
		return invalid("control.realtime must not be negative, got %v", c.Control.Realtime)
	}

	s := c.Signal
	if s.GreenTime <= 0 || s.YellowTime <= 0 {
		return invalid("signal green_time and yellow_time must be positive, got %v/%v", s.GreenTime, s.YellowTime)
	}
	if s.ExtensionTime < 0 {
		return invalid("signal.extension_time must not be negative, got %v", s.ExtensionTime)
	}
	switch s.ExtensionPolicy {
	case ExtensionPolicyExpiry, ExtensionPolicyOnset:
	default:
		return invalid("signal.extension_policy must be %q or %q, got %q", ExtensionPolicyExpiry, ExtensionPolicyOnset, s.ExtensionPolicy)
	}
	if len(s.NS) == 0 || len(s.EW) == 0 {
		return invalid("signal.ns and signal.ew must both be non-empty")
	}

	v := c.Vehicle
	if v.Tick <= 0 {
		return invalid("vehicle.tick must be positive, got %v", v.Tick)
	}
	if !(0 < v.SlowSpeed && v.SlowSpeed < v.GoSpeed) {
		return invalid("vehicle speeds must satisfy 0 < slow_speed < go_speed, got %v/%v", v.SlowSpeed, v.GoSpeed)
	}
	if !(0 < v.StopZone && v.StopZone < v.SlowZone && v.SlowZone < v.RequestZone) {
		return invalid("vehicle zones must satisfy 0 < stop_zone < slow_zone < request_zone, got %v/%v/%v", v.StopZone, v.SlowZone, v.RequestZone)
	}
	if p := v.LateProbability; p != nil && (*p < 0 || *p > 1) {
		return invalid("vehicle.late_probability must be within [0, 1], got %v", *p)
	}

	m := c.Map
	if m.RoadWidth <= 0 || m.StopThickness <= 0 || m.StopSetback < 0 {
		return invalid("map road_width/stop_thickness must be positive and stop_setback non-negative")
	}
	if m.World <= 2*m.RoadWidth {
		return invalid("map.world must exceed twice the road width, got %v", m.World)
	}
	return nil
}
