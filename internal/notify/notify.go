package notify

import (
	"context"
)

// Level 卡片颜色
type Level string

const (
	LevelInfo  Level = "blue"
	LevelAlert Level = "red"
	LevelOK    Level = "green"
)

// Message 通知消息
type Message struct {
	Title   string
	Content string
	Level   Level
}

// Notifier 通知发送接口
type Notifier interface {
	Send(ctx context.Context, msg *Message) error
}

// Noop 空实现
type Noop struct{}

func (Noop) Send(context.Context, *Message) error { return nil }
