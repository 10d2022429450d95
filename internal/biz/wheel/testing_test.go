package wheel

import (
	"sync"
	"time"
)

// merchLabels 十二格商品轮盘
var merchLabels = []string{
	"Base T-Shirt", "Tote Bag", "Better Luck Next Time", "Base T-Shirt", "Cap", "Better Luck Next Time",
	"Base T-Shirt", "Tote Bag", "Better Luck Next Time", "Base T-Shirt", "Cap", "Better Luck Next Time",
}

var merchRules = Rules{
	MajorCadence:  10,
	MinorCadence:  5,
	MajorLabels:   []string{"Base T-Shirt", "Cap"},
	MinorLabel:    "Tote Bag",
	FallbackLabel: "Better Luck Next Time",
}

func mustLayout(labels []string) *Layout {
	l, err := NewLayout(SegmentsFromLabels(labels))
	if err != nil {
		panic(err)
	}
	return l
}

// fixedRand 依次返回预设值（对 n 取模）
type fixedRand struct {
	vals []int
	i    int
}

func (f *fixedRand) IntN(n int) int {
	v := f.vals[f.i%len(f.vals)] % n
	f.i++
	return v
}

// manualClock 只有 Advance 才会触发定时器
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance 推进时间，并触发到期的回调
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.fired && !t.stopped && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

// fireAll 无视 Stop 强制触发所有回调，模拟停止失败的定时器
func (c *manualClock) fireAll() {
	c.mu.Lock()
	all := append([]*manualTimer(nil), c.timers...)
	c.mu.Unlock()
	for _, t := range all {
		t.f()
	}
}
