package wheel

import "time"

// Timer 可取消的定时任务
type Timer interface {
	Stop() bool
}

// Clock 揭晓定时器来源，测试中替换为手动时钟
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock 真实时钟
var SystemClock Clock = systemClock{}

type immediateClock struct{}

func (immediateClock) Now() time.Time { return time.Now() }

func (immediateClock) AfterFunc(_ time.Duration, f func()) Timer {
	f()
	return stoppedTimer{}
}

type stoppedTimer struct{}

func (stoppedTimer) Stop() bool { return false }

// ImmediateClock 同步立即触发回调，用于批量模拟
var ImmediateClock Clock = immediateClock{}
