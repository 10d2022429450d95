package notify

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// PrizeAward 大奖揭晓事件
type PrizeAward struct {
	WheelID    string
	SessionID  string
	SpinNumber int
	Segment    int
	Label      string
	RevealedAt time.Time
}

// BuildPrizeAwardMessage 大奖揭晓
func BuildPrizeAwardMessage(a PrizeAward) *Message {
	lines := []string{
		fmt.Sprintf("**轮盘**：%s", a.WheelID),
		fmt.Sprintf("**会话**：%s", a.SessionID),
		fmt.Sprintf("**第几次**：%d", a.SpinNumber),
		fmt.Sprintf("**奖品**：%s（扇区 %d）", a.Label, a.Segment),
		fmt.Sprintf("**时间**：%s", a.RevealedAt.Format(time.DateTime)),
	}
	return &Message{Title: "大奖揭晓", Content: strings.Join(lines, "\n"), Level: LevelAlert}
}

// SimulationSummary 批量模拟结束摘要
type SimulationSummary struct {
	WheelID           string
	Sessions          int
	Spins             int64
	Duration          time.Duration
	LabelCounts       map[string]int64
	CadenceViolations int64
	AlignmentFailures int64
}

// BuildSimulationMessage 模拟审计结果，出现违规时标红
func BuildSimulationMessage(s SimulationSummary) *Message {
	lines := []string{
		fmt.Sprintf("**轮盘**：%s", s.WheelID),
		fmt.Sprintf("**会话数**：%d", s.Sessions),
		fmt.Sprintf("**总次数**：%d", s.Spins),
		fmt.Sprintf("**耗时**：%s", s.Duration.Round(time.Millisecond)),
		fmt.Sprintf("**节奏违规**：%d", s.CadenceViolations),
		fmt.Sprintf("**对齐失败**：%d", s.AlignmentFailures),
	}
	labels := make([]string, 0, len(s.LabelCounts))
	for l := range s.LabelCounts {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		lines = append(lines, fmt.Sprintf("- %s：%d", l, s.LabelCounts[l]))
	}
	level := LevelOK
	if s.CadenceViolations > 0 || s.AlignmentFailures > 0 {
		level = LevelAlert
	}
	return &Message{Title: "轮盘模拟结束", Content: strings.Join(lines, "\n"), Level: level}
}
