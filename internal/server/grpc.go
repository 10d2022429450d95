package server

import (
	"prizewheel/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/grpc"
)

// NewGRPCServer 只承载 kratos 内置的健康检查，供编排系统探活
func NewGRPCServer(c *conf.Server, logger log.Logger) *grpc.Server {
	var opts = []grpc.ServerOption{
		grpc.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
		),
	}
	if gc := c.GetGrpc(); gc != nil {
		if gc.Network != "" {
			opts = append(opts, grpc.Network(gc.Network))
		}
		if gc.Addr != "" {
			opts = append(opts, grpc.Address(gc.Addr))
		}
		if gc.Timeout != nil {
			opts = append(opts, grpc.Timeout(gc.Timeout.AsDuration()))
		}
	}
	return grpc.NewServer(opts...)
}
