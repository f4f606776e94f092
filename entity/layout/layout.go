package layout

import (
	"math"
	"sort"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/signal-priority-sim/entity"
	"github.com/tsinghua-fib-lab/signal-priority-sim/entity/approach"
	"github.com/tsinghua-fib-lab/signal-priority-sim/utils/config"
)

// Stopline 停车线
// 功能：描述一条停车线的中心与尺寸，停车线即一个进口道
type Stopline struct {
	ID     entity.ApproachID
	Center geometry.Point
	Width  float64 // x方向尺寸
	Height float64 // y方向尺寸
}

// Layout 路网布局
// 功能：外环路 + 中央十字路，包含全部停车线、公交环线路径以及每段路径经过的停车线
// 说明：Legs[i]对应路段Path[i]->Path[(i+1)%len(Path)]，停车线按离路段起点由近到远排列
type Layout struct {
	Stoplines []Stopline
	Path      []geometry.Point
	Legs      [][]entity.ApproachID
}

// New 根据几何配置生成路网布局
// 参数：m-路网几何配置
// 返回：路网布局
// 算法说明：
// 1. 中央十字路四个进口道停车线NB/SB/EB/WB，距路中心 h+setback+thickness/2
// 2. 外环路每侧三条停车线：两条跨环路（_L/_R或_T/_B）位于中央道路两侧，一条（_C）位于中央道路的环路出口
// 3. 公交沿外环路外侧车道逆时针行驶
// 4. 根据停车线是否横跨路段计算每段路径的检查点
func New(m config.Map) *Layout {
	rw := m.RoadWidth
	h := rw / 2
	s := m.StopSetback
	t := m.StopThickness
	inner := m.World - rw       // 外环路内边界
	ringMid := inner + h        // 外环路中线
	outerLane := ringMid + h/2  // 外环路外侧车道中线
	ringBand := m.World - inner // 外环路宽度
	ringCentre := (inner + m.World) / 2
	side := h + s + t/2         // 停车线到中央道路中线的距离
	ringStop := inner - s - t/2 // 中央道路上环路出口停车线

	pt := func(x, y float64) geometry.Point { return geometry.Point{X: x, Y: y} }
	stoplines := []Stopline{
		{ID: "NB", Center: pt(0, -side), Width: rw, Height: t},
		{ID: "SB", Center: pt(0, side), Width: rw, Height: t},
		{ID: "WB", Center: pt(side, 0), Width: t, Height: rw},
		{ID: "EB", Center: pt(-side, 0), Width: t, Height: rw},

		{ID: "RN_L", Center: pt(-side, ringCentre), Width: t, Height: ringBand},
		{ID: "RN_R", Center: pt(side, ringCentre), Width: t, Height: ringBand},
		{ID: "RN_C", Center: pt(0, ringStop), Width: rw, Height: t},

		{ID: "RE_T", Center: pt(ringCentre, side), Width: ringBand, Height: t},
		{ID: "RE_B", Center: pt(ringCentre, -side), Width: ringBand, Height: t},
		{ID: "RE_C", Center: pt(ringStop, 0), Width: t, Height: rw},

		{ID: "RS_L", Center: pt(-side, -ringCentre), Width: t, Height: ringBand},
		{ID: "RS_R", Center: pt(side, -ringCentre), Width: t, Height: ringBand},
		{ID: "RS_C", Center: pt(0, -ringStop), Width: rw, Height: t},

		{ID: "RW_T", Center: pt(-ringCentre, side), Width: ringBand, Height: t},
		{ID: "RW_B", Center: pt(-ringCentre, -side), Width: ringBand, Height: t},
		{ID: "RW_C", Center: pt(-ringStop, 0), Width: t, Height: rw},
	}
	path := []geometry.Point{
		pt(-outerLane, -outerLane),
		pt(outerLane, -outerLane),
		pt(outerLane, outerLane),
		pt(-outerLane, outerLane),
	}
	return &Layout{
		Stoplines: stoplines,
		Path:      path,
		Legs:      Checkpoints(path, stoplines),
	}
}

// Checkpoints 计算环线每段路径经过的停车线
// 功能：对每段路径筛选横跨该路段的停车线，并按离路段起点的距离由近到远排序
// 参数：path-环线路径点，stoplines-全部停车线
// 返回：每段路径的检查点序列，可能为空
func Checkpoints(path []geometry.Point, stoplines []Stopline) [][]entity.ApproachID {
	n := len(path)
	legs := make([][]entity.ApproachID, n)
	for i := range path {
		from, to := path[i], path[(i+1)%n]
		axis := entity.LegAxis(from, to)
		crossed := lo.Filter(stoplines, func(s Stopline, _ int) bool {
			return crosses(s, from, to, axis)
		})
		sort.SliceStable(crossed, func(a, b int) bool {
			return math.Abs(axis.On(crossed[a].Center)-axis.On(from)) <
				math.Abs(axis.On(crossed[b].Center)-axis.On(from))
		})
		legs[i] = lo.Map(crossed, func(s Stopline, _ int) entity.ApproachID { return s.ID })
	}
	return legs
}

// crosses 停车线是否横跨路段
// 说明：停车线在垂直方向覆盖路段所在直线，且沿路段方向位于两端点之间（不含端点）
func crosses(s Stopline, from, to geometry.Point, axis entity.Axis) bool {
	halfAcross := s.Height / 2
	if axis == entity.AxisY {
		halfAcross = s.Width / 2
	}
	if math.Abs(axis.Across(s.Center)-axis.Across(from)) > halfAcross {
		return false
	}
	low, high := axis.On(from), axis.On(to)
	if low > high {
		low, high = high, low
	}
	at := axis.On(s.Center)
	return low < at && at < high
}

// IDs 全部停车线ID
func (l *Layout) IDs() []entity.ApproachID {
	return lo.Map(l.Stoplines, func(s Stopline, _ int) entity.ApproachID { return s.ID })
}

// NewRegistry 根据布局创建进口道登记表，初始全部为红灯
func (l *Layout) NewRegistry() *approach.Registry {
	r := approach.NewRegistry()
	for _, s := range l.Stoplines {
		if err := r.Add(s.ID, s.Center, entity.Red); err != nil {
			log.Panicf("layout: %v", err)
		}
	}
	return r
}
