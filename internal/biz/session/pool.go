package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

// Pool 会话池
type Pool struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewPool 创建会话池
func NewPool() *Pool {
	return &Pool{sessions: make(map[string]*Session)}
}

// Add 添加会话，id 重复时返回 false
func (p *Pool) Add(s *Session) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.sessions[s.GetID()]; ok {
		return false
	}
	p.sessions[s.GetID()] = s
	return true
}

// Get 获取会话并刷新活跃时间
func (p *Pool) Get(id string) (*Session, bool) {
	p.mu.RLock()
	s, ok := p.sessions[id]
	p.mu.RUnlock()
	if ok {
		s.Touch()
	}
	return s, ok
}

// List 列出所有会话（按创建时间倒序）
func (p *Pool) List() []*Session {
	p.mu.RLock()
	out := make([]*Session, 0, len(p.sessions))
	for _, s := range p.sessions {
		out = append(out, s)
	}
	p.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].createdAt.After(out[j].createdAt)
	})
	return out
}

// Len 会话数
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.sessions)
}

// Remove 移除会话并重置引擎，使在途揭晓失效
func (p *Pool) Remove(id string) (*Session, bool) {
	p.mu.Lock()
	s, ok := p.sessions[id]
	if ok {
		delete(p.sessions, id)
	}
	p.mu.Unlock()
	if ok {
		s.GetEngine().Reset()
	}
	return s, ok
}

// Clear 移除全部会话
func (p *Pool) Clear() int {
	p.mu.Lock()
	all := p.sessions
	p.sessions = make(map[string]*Session)
	p.mu.Unlock()
	for _, s := range all {
		s.GetEngine().Reset()
	}
	return len(all)
}

// StartAutoCleanup 周期清理空闲会话，ctx 结束时退出
func (p *Pool) StartAutoCleanup(ctx context.Context, logger log.Logger, ttl time.Duration, interval time.Duration) {
	logHelper := log.NewHelper(logger)
	logHelper.Infof("Session cleaner started, ttl=%v, interval=%v", ttl, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logHelper.Info("closing session cleaner")
			return
		case <-ticker.C:
			if n := p.CleanupIdle(ttl); n > 0 {
				logHelper.Infof("Session cleanup: removed %d idle sessions", n)
			}
		}
	}
}

// CleanupIdle 移除超过 ttl 未活跃的会话，返回移除数量
func (p *Pool) CleanupIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	p.mu.Lock()
	var expired []*Session
	for id, s := range p.sessions {
		if s.idleSince(cutoff) {
			delete(p.sessions, id)
			expired = append(expired, s)
		}
	}
	p.mu.Unlock()

	for _, s := range expired {
		s.GetEngine().Reset()
	}
	return len(expired)
}
