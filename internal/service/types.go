package service

import (
	"time"

	"prizewheel/internal/biz"
	"prizewheel/internal/biz/session"
	"prizewheel/internal/biz/wheel"
)

type ListWheelsRequest struct{}

type ListWheelsReply struct {
	Default string          `json:"default"`
	Wheels  []*biz.Manifest `json:"wheels"`
	Total   int32           `json:"total"`
}

type GetWheelRequest struct {
	WheelId string `json:"wheel_id"`
}

type CreateSessionRequest struct {
	WheelId string `json:"wheel_id"`
}

type SessionRequest struct {
	SessionId string `json:"session_id"`
}

type SpinState struct {
	SpinNumber         int     `json:"spin_number"`
	CumulativeRotation float64 `json:"cumulative_rotation"`
	InProgress         bool    `json:"in_progress"`
	Phase              string  `json:"phase"`
}

type Session struct {
	SessionId  string    `json:"session_id"`
	WheelId    string    `json:"wheel_id"`
	State      SpinState `json:"state"`
	CreatedAt  string    `json:"created_at"`
	LastActive string    `json:"last_active"`
}

type SpinResult struct {
	SpinNumber     int     `json:"spin_number"`
	SegmentIndex   int     `json:"segment_index"`
	PrizeLabel     string  `json:"prize_label"`
	Tier           string  `json:"tier"`
	StartRotation  float64 `json:"start_rotation"`
	TargetRotation float64 `json:"target_rotation"`
	Epoch          uint64  `json:"epoch"`
	RevealAt       string  `json:"reveal_at"`
}

type SpinReply struct {
	// Accepted false 表示动画未结束或结果未消费，请求被忽略
	Accepted bool        `json:"accepted"`
	Result   *SpinResult `json:"result,omitempty"`
	State    SpinState   `json:"state"`
}

type RevealReply struct {
	Revealed bool `json:"revealed"`
	// Pending 动画进行中，稍后再取
	Pending bool        `json:"pending"`
	Result  *SpinResult `json:"result,omitempty"`
	State   SpinState   `json:"state"`
}

type ListSessionsReply struct {
	Sessions []*Session `json:"sessions"`
	Total    int32      `json:"total"`
}

type DeleteSessionReply struct{}

type SimulateRequest struct {
	WheelId  string `json:"wheel_id"`
	Sessions int32  `json:"sessions"`
	Spins    int32  `json:"spins"`
	Seed     uint64 `json:"seed"`
	Notify   bool   `json:"notify"`
}

type SimulateReply struct {
	Passed bool                  `json:"passed"`
	Report *biz.SimulationReport `json:"report"`
}

type AwardsRequest struct {
	// Date YYYYMMDD，空为今天
	Date    string `json:"date"`
	WheelId string `json:"wheel_id"`
}

type AwardsReply struct {
	Date   string           `json:"date"`
	Counts map[string]int64 `json:"counts"`
}

func toState(e *wheel.Engine) SpinState {
	st := e.State()
	return SpinState{
		SpinNumber:         st.SpinNumber,
		CumulativeRotation: st.CumulativeRotation,
		InProgress:         st.InProgress,
		Phase:              e.Phase().String(),
	}
}

func toSession(s *session.Session) *Session {
	return &Session{
		SessionId:  s.GetID(),
		WheelId:    s.GetWheelID(),
		State:      toState(s.GetEngine()),
		CreatedAt:  s.GetCreatedAt().Format(time.RFC3339),
		LastActive: s.GetLastActive().Format(time.RFC3339),
	}
}

func toResult(r wheel.SpinResult) *SpinResult {
	return &SpinResult{
		SpinNumber:     r.SpinNumber,
		SegmentIndex:   r.SegmentIndex,
		PrizeLabel:     r.PrizeLabel,
		Tier:           r.Tier.String(),
		StartRotation:  r.StartRotation,
		TargetRotation: r.TargetRotation,
		Epoch:          r.Epoch,
		RevealAt:       r.RevealAt.Format(time.RFC3339Nano),
	}
}
