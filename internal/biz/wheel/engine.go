package wheel

import (
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

const (
	// DefaultRevealDelay 动画时长，到期后揭晓结果
	DefaultRevealDelay = 5 * time.Second
	// DefaultTurnJitter random 模式未配置抖动时使用，即 8~16 圈
	DefaultTurnJitter = 8
)

// Phase 单次旋转的生命周期
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseResolving
	PhaseAnimating
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseResolving:
		return "resolving"
	case PhaseAnimating:
		return "animating"
	case PhaseResolved:
		return "resolved"
	default:
		return "idle"
	}
}

// SpinState 只读快照
type SpinState struct {
	SpinNumber         int     `json:"spin_number"`
	CumulativeRotation float64 `json:"cumulative_rotation"`
	InProgress         bool    `json:"in_progress"`
}

// SpinResult 一次旋转的结论
type SpinResult struct {
	SpinNumber     int       `json:"spin_number"`
	SegmentIndex   int       `json:"segment_index"`
	PrizeLabel     string    `json:"prize_label"`
	Tier           Tier      `json:"tier"`
	StartRotation  float64   `json:"start_rotation"`
	TargetRotation float64   `json:"target_rotation"`
	Epoch          uint64    `json:"epoch"`
	RevealAt       time.Time `json:"reveal_at"`
}

// Stats 引擎计数
type Stats struct {
	Spins             int64
	Reveals           int64
	StaleReveals      int64
	AlignmentFailures int64
}

// Config 引擎配置
type Config struct {
	Segments     []Segment
	Rules        Rules
	PointerAngle float64
	TieBreak     TieBreakMode
	// MinFullTurns 为 0 时取 DefaultMinFullTurns
	MinFullTurns int
	// TurnJitter 仅 random 模式可用，为 0 时取 DefaultTurnJitter
	TurnJitter int
	// RevealDelay 为 0 时取 DefaultRevealDelay
	RevealDelay time.Duration
	Seed        uint64
	Rand        Rand
	Clock       Clock
	Logger      log.Logger
	// OnReveal 在定时器协程中调用，不持有引擎锁
	OnReveal func(SpinResult)
	// OnStale 过期的揭晓被丢弃时调用
	OnStale func(epoch uint64)
}

// Engine 单个轮盘会话的状态机，所有方法并发安全
type Engine struct {
	layout *Layout
	policy *Policy
	solver Solver
	delay  time.Duration
	clock  Clock
	log    *log.Helper

	onReveal func(SpinResult)
	onStale  func(uint64)

	mu       sync.Mutex
	phase    Phase
	state    SpinState
	epoch    uint64
	timer    Timer
	pending  *SpinResult
	revealed *SpinResult
	stats    Stats
}

// Configure 校验配置并创建引擎，任何配置错误都会阻止创建
func Configure(c Config) (*Engine, error) {
	layout, err := NewLayout(c.Segments)
	if err != nil {
		return nil, err
	}
	mode, err := ParseTieBreakMode(string(c.TieBreak))
	if err != nil {
		return nil, err
	}
	if c.MinFullTurns == 0 {
		c.MinFullTurns = DefaultMinFullTurns
	}
	if c.TurnJitter > 0 && mode != TieBreakRandom {
		return nil, invalidConfig("turn jitter %d requires random tie-break mode", c.TurnJitter)
	}
	if c.TurnJitter == 0 && mode == TieBreakRandom {
		c.TurnJitter = DefaultTurnJitter
	}
	if c.RevealDelay < 0 {
		return nil, invalidConfig("reveal delay must not be negative, got %s", c.RevealDelay)
	}
	if c.RevealDelay == 0 {
		c.RevealDelay = DefaultRevealDelay
	}
	rng := c.Rand
	if rng == nil && mode == TieBreakRandom {
		rng = NewRand(c.Seed)
	}
	solver := Solver{
		PointerAngle: c.PointerAngle,
		MinFullTurns: c.MinFullTurns,
		TurnJitter:   c.TurnJitter,
		Rand:         rng,
	}
	if err := solver.Validate(); err != nil {
		return nil, err
	}
	policy, err := NewPolicy(layout, c.Rules, mode, rng)
	if err != nil {
		return nil, err
	}
	if c.Clock == nil {
		c.Clock = SystemClock
	}
	if c.Logger == nil {
		c.Logger = log.GetLogger()
	}
	return &Engine{
		layout:   layout,
		policy:   policy,
		solver:   solver,
		delay:    c.RevealDelay,
		clock:    c.Clock,
		log:      log.NewHelper(log.With(c.Logger, "module", "wheel/engine")),
		onReveal: c.OnReveal,
		onStale:  c.OnStale,
	}, nil
}

// Layout 布局
func (e *Engine) Layout() *Layout { return e.layout }

// Rules 规则
func (e *Engine) Rules() Rules { return e.policy.Rules() }

// TieBreak 裁决方式
func (e *Engine) TieBreak() TieBreakMode { return e.policy.Mode() }

// PointerAngle 指针角
func (e *Engine) PointerAngle() float64 { return e.solver.PointerAngle }

// RevealDelay 动画时长
func (e *Engine) RevealDelay() time.Duration { return e.delay }

// RequestSpin 非 Idle 时返回 ok=false，不算错误。
// 选奖或对齐失败时序号保留、角度不变，并回到 Idle。
func (e *Engine) RequestSpin() (SpinResult, bool, error) {
	e.mu.Lock()
	if e.phase != PhaseIdle {
		e.mu.Unlock()
		return SpinResult{}, false, nil
	}
	e.phase = PhaseResolving
	e.state.SpinNumber++
	res, err := e.resolve(e.state.SpinNumber, e.state.CumulativeRotation)
	if err != nil {
		e.phase = PhaseIdle
		e.mu.Unlock()
		return SpinResult{}, false, err
	}
	e.epoch++
	res.Epoch = e.epoch
	res.RevealAt = e.clock.Now().Add(e.delay)
	e.state.CumulativeRotation = res.TargetRotation
	e.phase = PhaseAnimating
	e.pending = &res
	e.stats.Spins++
	e.mu.Unlock()

	epoch := res.Epoch
	t := e.clock.AfterFunc(e.delay, func() { e.complete(epoch) })

	e.mu.Lock()
	switch {
	case e.epoch != epoch:
		t.Stop()
	case e.phase == PhaseAnimating:
		e.timer = t
	}
	e.mu.Unlock()
	return res, true, nil
}

// resolve 调用方持有锁
func (e *Engine) resolve(n int, start float64) (SpinResult, error) {
	idx, tier, err := e.policy.Select(n)
	if err != nil {
		e.log.Errorf("spin %d: select failed: %v", n, err)
		return SpinResult{}, err
	}
	target, err := e.solver.Solve(e.layout, idx, start)
	if err != nil {
		e.log.Errorf("spin %d: solve failed: %v", n, err)
		return SpinResult{}, err
	}
	if err := Verify(e.layout, idx, target, e.solver.PointerAngle); err != nil {
		e.stats.AlignmentFailures++
		e.log.Errorf("spin %d: %v", n, err)
		return SpinResult{}, err
	}
	seg := e.layout.Segment(idx)
	e.log.Debugf("spin %d: tier=%s index=%d label=%q rotation %.3f -> %.3f",
		n, tier, idx, seg.Label, start, target)
	return SpinResult{
		SpinNumber:     n,
		SegmentIndex:   idx,
		PrizeLabel:     seg.Label,
		Tier:           tier,
		StartRotation:  start,
		TargetRotation: target,
	}, nil
}

func (e *Engine) complete(epoch uint64) {
	e.mu.Lock()
	if epoch != e.epoch || e.phase != PhaseAnimating || e.pending == nil {
		e.stats.StaleReveals++
		onStale := e.onStale
		e.mu.Unlock()
		e.log.Warnf("discard stale reveal, epoch %d", epoch)
		if onStale != nil {
			onStale(epoch)
		}
		return
	}
	res := *e.pending
	e.pending = nil
	e.revealed = &res
	e.timer = nil
	e.phase = PhaseResolved
	e.stats.Reveals++
	onReveal := e.onReveal
	e.mu.Unlock()

	if onReveal != nil {
		onReveal(res)
	}
}

// Revealed 已揭晓但未消费的结果
func (e *Engine) Revealed() (SpinResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseResolved || e.revealed == nil {
		return SpinResult{}, false
	}
	return *e.revealed, true
}

// Consume 消费揭晓结果，Resolved -> Idle
func (e *Engine) Consume() (SpinResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseResolved || e.revealed == nil {
		return SpinResult{}, false
	}
	res := *e.revealed
	e.revealed = nil
	e.phase = PhaseIdle
	return res, true
}

// Reset 任意阶段可调用，清零序号与角度并作废在途的揭晓
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.epoch++
	e.state = SpinState{}
	e.phase = PhaseIdle
	e.pending = nil
	e.revealed = nil
}

// State 状态快照
func (e *Engine) State() SpinState {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.state
	s.InProgress = e.phase == PhaseResolving || e.phase == PhaseAnimating
	return s
}

// Phase 当前阶段
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Stats 计数快照
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}
