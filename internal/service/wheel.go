package service

import (
	"context"
	"time"

	"prizewheel/internal/biz"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// WheelService 轮盘 HTTP 服务
type WheelService struct {
	uc  *biz.UseCase
	log *log.Helper
}

// NewWheelService new a wheel service.
func NewWheelService(uc *biz.UseCase, logger log.Logger) *WheelService {
	return &WheelService{
		uc:  uc,
		log: log.NewHelper(log.With(logger, "module", "service/wheel")),
	}
}

// ListWheels 轮盘列表
func (s *WheelService) ListWheels(ctx context.Context, _ *ListWheelsRequest) (*ListWheelsReply, error) {
	wheels := s.uc.ListWheels()
	return &ListWheelsReply{
		Default: s.uc.Catalog().Default(),
		Wheels:  wheels,
		Total:   int32(len(wheels)),
	}, nil
}

// GetWheel 轮盘清单
func (s *WheelService) GetWheel(ctx context.Context, in *GetWheelRequest) (*biz.Manifest, error) {
	return s.uc.GetManifest(in.WheelId)
}

// CreateSession 创建会话
func (s *WheelService) CreateSession(ctx context.Context, in *CreateSessionRequest) (*Session, error) {
	sess, err := s.uc.CreateSession(ctx, in.WheelId)
	if err != nil {
		return nil, err
	}
	return toSession(sess), nil
}

// GetSession 会话状态
func (s *WheelService) GetSession(ctx context.Context, in *SessionRequest) (*Session, error) {
	sess, err := s.uc.GetSession(in.SessionId)
	if err != nil {
		return nil, err
	}
	return toSession(sess), nil
}

// ListSessions 会话列表
func (s *WheelService) ListSessions(ctx context.Context, _ *ListWheelsRequest) (*ListSessionsReply, error) {
	all := s.uc.ListSessions()
	out := make([]*Session, len(all))
	for i, sess := range all {
		out[i] = toSession(sess)
	}
	return &ListSessionsReply{Sessions: out, Total: int32(len(out))}, nil
}

// Spin 请求旋转
func (s *WheelService) Spin(ctx context.Context, in *SessionRequest) (*SpinReply, error) {
	res, ok, err := s.uc.Spin(ctx, in.SessionId)
	if err != nil {
		return nil, err
	}
	sess, err := s.uc.GetSession(in.SessionId)
	if err != nil {
		return nil, err
	}
	reply := &SpinReply{Accepted: ok, State: toState(sess.GetEngine())}
	if ok {
		reply.Result = toResult(res)
	}
	return reply, nil
}

// Reveal 消费揭晓结果
func (s *WheelService) Reveal(ctx context.Context, in *SessionRequest) (*RevealReply, error) {
	res, ok, err := s.uc.Reveal(ctx, in.SessionId)
	if err != nil {
		return nil, err
	}
	sess, err := s.uc.GetSession(in.SessionId)
	if err != nil {
		return nil, err
	}
	reply := &RevealReply{Revealed: ok, State: toState(sess.GetEngine())}
	reply.Pending = !ok && reply.State.InProgress
	if ok {
		reply.Result = toResult(res)
	}
	return reply, nil
}

// Reset 重置会话
func (s *WheelService) Reset(ctx context.Context, in *SessionRequest) (*Session, error) {
	if _, err := s.uc.ResetSession(ctx, in.SessionId); err != nil {
		return nil, err
	}
	return s.GetSession(ctx, in)
}

// DeleteSession 删除会话
func (s *WheelService) DeleteSession(ctx context.Context, in *SessionRequest) (*DeleteSessionReply, error) {
	if err := s.uc.DeleteSession(ctx, in.SessionId); err != nil {
		return nil, err
	}
	return &DeleteSessionReply{}, nil
}

// Simulate 批量模拟审计
func (s *WheelService) Simulate(ctx context.Context, in *SimulateRequest) (*SimulateReply, error) {
	report, err := s.uc.Simulate(ctx, biz.SimulateRequest{
		WheelID:  in.WheelId,
		Sessions: int(in.Sessions),
		Spins:    int(in.Spins),
		Seed:     in.Seed,
		Notify:   in.Notify,
	})
	if err != nil {
		return nil, err
	}
	return &SimulateReply{Passed: report.Passed(), Report: report}, nil
}

// Awards 每日奖品计数
func (s *WheelService) Awards(ctx context.Context, in *AwardsRequest) (*AwardsReply, error) {
	day := time.Now()
	if in.Date != "" {
		d, err := time.ParseInLocation("20060102", in.Date, time.Local)
		if err != nil {
			return nil, errors.BadRequest(biz.ReasonInvalidRequest, "date must be YYYYMMDD")
		}
		day = d
	}
	counts, err := s.uc.AwardTally(ctx, day, in.WheelId)
	if err != nil {
		return nil, err
	}
	return &AwardsReply{Date: day.Format("20060102"), Counts: counts}, nil
}
