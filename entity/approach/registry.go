package approach

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/signal-priority-sim/entity"
)

// approach 单个进口道的数据
type approach struct {
	position geometry.Point // 停车线中心坐标（地图层给定，不再变化）
	colour   entity.Colour  // 当前灯色
}

// Registry 进口道登记表
// 功能：维护进口道ID到停车线位置与当前灯色的映射
// 说明：由地图层创建并登记几何位置，由信号控制器写入灯色，车辆经信号控制器读取灯色
type Registry struct {
	data map[entity.ApproachID]*approach
	ids  []entity.ApproachID
}

// NewRegistry 创建空的进口道登记表
func NewRegistry() *Registry {
	return &Registry{
		data: make(map[entity.ApproachID]*approach),
		ids:  make([]entity.ApproachID, 0),
	}
}

// Add 登记进口道
// 参数：id-进口道ID，position-停车线中心坐标，colour-初始灯色
// 返回：ID重复时返回错误
func (r *Registry) Add(id entity.ApproachID, position geometry.Point, colour entity.Colour) error {
	if _, ok := r.data[id]; ok {
		return fmt.Errorf("duplicated approach id %q", id)
	}
	r.data[id] = &approach{position: position, colour: colour}
	r.ids = append(r.ids, id)
	return nil
}

// get 根据ID查找进口道，如果不存在则panic
func (r *Registry) get(id entity.ApproachID) *approach {
	if a, ok := r.data[id]; !ok {
		log.Panicf("no id %q in approach data", id)
		return nil
	} else {
		return a
	}
}

// Has 是否存在该进口道
func (r *Registry) Has(id entity.ApproachID) bool {
	_, ok := r.data[id]
	return ok
}

// IDs 按登记顺序返回全部进口道ID
func (r *Registry) IDs() []entity.ApproachID {
	return append([]entity.ApproachID(nil), r.ids...)
}

// Position 停车线中心坐标，ID不存在则panic
func (r *Registry) Position(id entity.ApproachID) geometry.Point {
	return r.get(id).position
}

// Colour 当前灯色，ID不存在则panic
func (r *Registry) Colour(id entity.ApproachID) entity.Colour {
	return r.get(id).colour
}

// SetColour 写入灯色，ID不存在则panic
func (r *Registry) SetColour(id entity.ApproachID, colour entity.Colour) {
	r.get(id).colour = colour
}

// Colours 当前全部灯色的拷贝
func (r *Registry) Colours() map[entity.ApproachID]entity.Colour {
	res := make(map[entity.ApproachID]entity.Colour, len(r.data))
	for id, a := range r.data {
		res[id] = a.colour
	}
	return res
}
