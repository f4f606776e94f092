package clock

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	clockv1 "git.fiblab.net/sim/protos/v2/go/city/clock/v1"
	"git.fiblab.net/sim/protos/v2/go/city/clock/v1/clockv1connect"
	"git.fiblab.net/sim/syncer/v3"
)

// clockService 时钟RPC服务
// 说明：只读取发布的快照，可以在RPC协程中安全调用
type clockService struct {
	clockv1connect.UnimplementedClockServiceHandler

	c *Clock
}

// NewService 创建时钟RPC服务处理器
func NewService(c *Clock) clockv1connect.ClockServiceHandler {
	return &clockService{c: c}
}

// Register 将ClockService注册到sidecar
// 功能：注册时钟服务的RPC处理器，使外部可以查询当前虚拟时间
// 参数：sidecar-sidecar实例
func (c *Clock) Register(sidecar *syncer.Sidecar) {
	s := NewService(c)
	sidecar.Register(
		clockv1connect.ClockServiceName,
		func(opts ...connect.HandlerOption) (pattern string, handler http.Handler) {
			return clockv1connect.NewClockServiceHandler(s, opts...)
		},
		syncer.WithNoLock(),
	)
}

// Now 获取当前仿真时间
// 返回：最近一次发布的虚拟时间（秒）
func (s *clockService) Now(ctx context.Context, in *connect.Request[clockv1.NowRequest]) (*connect.Response[clockv1.NowResponse], error) {
	return connect.NewResponse(&clockv1.NowResponse{
		T: s.c.Published() / 1000,
	}), nil
}
