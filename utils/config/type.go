package config

// 信号灯绿灯延长的判定时机
const (
	ExtensionPolicyExpiry = "expiry" // 绿灯到期时判定，绿灯期间到达的优先请求有效
	ExtensionPolicyOnset  = "onset"  // 绿灯开始时判定，绿灯期间到达的优先请求不延长本次绿灯
)

// ControlStep 指定模拟器运行时间范围和间隔的配置项
// 功能：定义主循环每个片段推进的虚拟时长与片段总数
// 说明：时间单位均为毫秒，Total为0表示无限运行
type ControlStep struct {
	Interval float64 `yaml:"interval"` // 每个循环片段推进的虚拟时间（毫秒）
	Total    int32   `yaml:"total"`    // 总片段数，0表示一直运行
}

// Control 模拟器控制配置
type Control struct {
	Step     ControlStep `yaml:"step"`
	Realtime float64     `yaml:"realtime,omitempty"` // 相对墙钟的倍速，0表示不等待、尽快运行
}

// Signal 信号控制器配置
// 功能：定义相位时长、优先延长策略与相位分组
// 说明：NS与EW必须构成全部进口道的不相交划分
type Signal struct {
	JunctionID      int32    `yaml:"junction_id"`
	GreenTime       float64  `yaml:"green_time"`       // 绿灯时长（毫秒）
	YellowTime      float64  `yaml:"yellow_time"`      // 黄灯时长（毫秒）
	ExtensionTime   float64  `yaml:"extension_time"`   // 优先延长时长（毫秒）
	ExtensionPolicy string   `yaml:"extension_policy"` // expiry | onset
	NS              []string `yaml:"ns"`               // 南北相位的进口道
	EW              []string `yaml:"ew"`               // 东西相位的进口道
}

// Vehicle 公交车辆配置
// 功能：定义车辆步长、速度档位、减速/停车/请求区半径以及晚点设置
// 说明：速度单位为每步移动的距离；LateProbability非空时每圈重新采样是否晚点
type Vehicle struct {
	Tick            float64  `yaml:"tick"`       // 每步间隔（毫秒）
	GoSpeed         float64  `yaml:"go_speed"`   // 正常行驶速度
	SlowSpeed       float64  `yaml:"slow_speed"` // 减速速度
	StopZone        float64  `yaml:"stop_zone"`
	SlowZone        float64  `yaml:"slow_zone"`
	RequestZone     float64  `yaml:"request_zone"`
	Late            bool     `yaml:"late"`
	LateProbability *float64 `yaml:"late_probability,omitempty"`
	Seed            uint64   `yaml:"seed,omitempty"`
}

// Map 路网几何配置
// 功能：定义外环路与中央十字路的尺寸，停车线位置由此推导
type Map struct {
	World         float64 `yaml:"world"`          // 世界半边长
	RoadWidth     float64 `yaml:"road_width"`     // 道路宽度
	StopSetback   float64 `yaml:"stop_setback"`   // 停车线距路口的后退距离
	StopThickness float64 `yaml:"stop_thickness"` // 停车线厚度
}

// Config YAML配置文件的根结构
type Config struct {
	Control Control `yaml:"control"` // 模拟过程控制
	Signal  Signal  `yaml:"signal"`  // 信号控制
	Vehicle Vehicle `yaml:"vehicle"` // 公交车辆
	Map     Map     `yaml:"map"`     // 路网几何
}
