package junction

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	mapv2connect "git.fiblab.net/sim/protos/v2/go/city/map/v2/mapv2connect"
	"git.fiblab.net/sim/syncer/v3"
)

// Register 将路口信控服务注册到sidecar
// 说明：RPC只读取Prepare发布的快照，不需要sidecar加锁
func (j *Junction) Register(sidecar *syncer.Sidecar) {
	sidecar.Register(
		mapv2connect.TrafficLightServiceName,
		func(opts ...connect.HandlerOption) (pattern string, handler http.Handler) {
			return mapv2connect.NewTrafficLightServiceHandler(j, opts...)
		},
		syncer.WithNoLock(),
	)
}

// GetTrafficLight RPC接口：获取路口的信号灯状态
// 功能：返回信控程序、当前相位下标与当前相位剩余时长
// 说明：相位下标 0-NS绿 1-NS黄 2-EW绿 3-EW黄；被优先延长的绿灯剩余时长包含延长部分
func (j *Junction) GetTrafficLight(
	ctx context.Context, in *connect.Request[mapv2.GetTrafficLightRequest],
) (*connect.Response[mapv2.GetTrafficLightResponse], error) {
	if in.Msg.JunctionId != j.id {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("junction id does not exist"))
	}
	return connect.NewResponse(&mapv2.GetTrafficLightResponse{
		TrafficLight:  j.Get(),
		PhaseIndex:    j.Step(),
		TimeRemaining: j.RemainingTime(),
	}), nil
}
