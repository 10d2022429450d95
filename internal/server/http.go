package server

import (
	"prizewheel/internal/conf"
	"prizewheel/internal/service"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/metrics"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHTTPServer new an HTTP server.
func NewHTTPServer(c *conf.Server, wheel *service.WheelService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
			metrics.Server(),
		),
	}
	if hc := c.GetHttp(); hc != nil {
		if hc.Network != "" {
			opts = append(opts, http.Network(hc.Network))
		}
		if hc.Addr != "" {
			opts = append(opts, http.Address(hc.Addr))
		}
		if hc.Timeout != nil {
			opts = append(opts, http.Timeout(hc.Timeout.AsDuration()))
		}
	}
	srv := http.NewServer(opts...)
	service.RegisterWheelHTTPServer(srv, wheel)

	// 注册 Prometheus /metrics 端点
	srv.Handle("/metrics", promhttp.Handler())

	return srv
}
