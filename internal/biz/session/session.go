package session

import (
	"sync/atomic"
	"time"

	"prizewheel/internal/biz/wheel"
)

// Session 一个玩家会话，独占一个引擎
type Session struct {
	id         string
	wheelID    string
	engine     *wheel.Engine
	createdAt  time.Time
	lastActive atomic.Int64
}

// New 创建会话
func New(id, wheelID string, engine *wheel.Engine) *Session {
	s := &Session{
		id:        id,
		wheelID:   wheelID,
		engine:    engine,
		createdAt: time.Now(),
	}
	s.lastActive.Store(s.createdAt.UnixNano())
	return s
}

func (s *Session) GetID() string            { return s.id }
func (s *Session) GetWheelID() string       { return s.wheelID }
func (s *Session) GetEngine() *wheel.Engine { return s.engine }
func (s *Session) GetCreatedAt() time.Time  { return s.createdAt }
func (s *Session) GetLastActive() time.Time { return time.Unix(0, s.lastActive.Load()) }
func (s *Session) touchAt(t time.Time)      { s.lastActive.Store(t.UnixNano()) }

// Touch 刷新活跃时间
func (s *Session) Touch() { s.touchAt(time.Now()) }

// idleSince 动画中的会话不算空闲
func (s *Session) idleSince(cutoff time.Time) bool {
	if s.engine.State().InProgress {
		return false
	}
	return s.GetLastActive().Before(cutoff)
}
