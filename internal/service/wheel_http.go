package service

import (
	"context"

	"prizewheel/internal/biz"

	"github.com/go-kratos/kratos/v2/transport/http"
)

const (
	OperationWheelListWheels    = "/prizewheel.v1.Wheel/ListWheels"
	OperationWheelGetWheel      = "/prizewheel.v1.Wheel/GetWheel"
	OperationWheelCreateSession = "/prizewheel.v1.Wheel/CreateSession"
	OperationWheelListSessions  = "/prizewheel.v1.Wheel/ListSessions"
	OperationWheelGetSession    = "/prizewheel.v1.Wheel/GetSession"
	OperationWheelSpin          = "/prizewheel.v1.Wheel/Spin"
	OperationWheelReveal        = "/prizewheel.v1.Wheel/Reveal"
	OperationWheelReset         = "/prizewheel.v1.Wheel/Reset"
	OperationWheelDeleteSession = "/prizewheel.v1.Wheel/DeleteSession"
	OperationWheelSimulate      = "/prizewheel.v1.Wheel/Simulate"
	OperationWheelAwards        = "/prizewheel.v1.Wheel/Awards"
)

// RegisterWheelHTTPServer 注册轮盘路由，请求经过服务端中间件链
func RegisterWheelHTTPServer(s *http.Server, srv *WheelService) {
	r := s.Route("/")
	r.GET("/wheel/wheels", _Wheel_ListWheels_HTTP_Handler(srv))
	r.GET("/wheel/wheels/{wheel_id}/layout", _Wheel_GetWheel_HTTP_Handler(srv))
	r.GET("/wheel/awards", _Wheel_Awards_HTTP_Handler(srv))
	r.POST("/wheel/sessions", _Wheel_CreateSession_HTTP_Handler(srv))
	r.GET("/wheel/sessions", _Wheel_ListSessions_HTTP_Handler(srv))
	r.GET("/wheel/sessions/{session_id}", sessionHandler(OperationWheelGetSession, srv.GetSession))
	r.DELETE("/wheel/sessions/{session_id}", sessionHandler(OperationWheelDeleteSession, srv.DeleteSession))
	r.POST("/wheel/sessions/{session_id}/spin", sessionHandler(OperationWheelSpin, srv.Spin))
	r.POST("/wheel/sessions/{session_id}/reveal", sessionHandler(OperationWheelReveal, srv.Reveal))
	r.POST("/wheel/sessions/{session_id}/reset", sessionHandler(OperationWheelReset, srv.Reset))
	r.POST("/wheel/simulate", _Wheel_Simulate_HTTP_Handler(srv))
}

func _Wheel_ListWheels_HTTP_Handler(srv *WheelService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in ListWheelsRequest
		http.SetOperation(ctx, OperationWheelListWheels)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.ListWheels(ctx, req.(*ListWheelsRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out.(*ListWheelsReply))
	}
}

func _Wheel_GetWheel_HTTP_Handler(srv *WheelService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in GetWheelRequest
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationWheelGetWheel)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.GetWheel(ctx, req.(*GetWheelRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out.(*biz.Manifest))
	}
}

func _Wheel_Awards_HTTP_Handler(srv *WheelService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in AwardsRequest
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationWheelAwards)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.Awards(ctx, req.(*AwardsRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out.(*AwardsReply))
	}
}

func _Wheel_CreateSession_HTTP_Handler(srv *WheelService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in CreateSessionRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationWheelCreateSession)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.CreateSession(ctx, req.(*CreateSessionRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out.(*Session))
	}
}

func _Wheel_ListSessions_HTTP_Handler(srv *WheelService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in ListWheelsRequest
		http.SetOperation(ctx, OperationWheelListSessions)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.ListSessions(ctx, req.(*ListWheelsRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out.(*ListSessionsReply))
	}
}

func _Wheel_Simulate_HTTP_Handler(srv *WheelService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in SimulateRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationWheelSimulate)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.Simulate(ctx, req.(*SimulateRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out.(*SimulateReply))
	}
}

// sessionHandler 路径只带 session_id 的路由共用
func sessionHandler[T any](operation string, call func(context.Context, *SessionRequest) (*T, error)) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in SessionRequest
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, operation)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(ctx, req.(*SessionRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out.(*T))
	}
}
