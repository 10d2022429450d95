package biz

import (
	"context"
	"strings"
	"time"

	"prizewheel/internal/biz/wheel"
	"prizewheel/internal/conf"

	"github.com/cespare/xxhash/v2"
	"github.com/go-kratos/kratos/v2/errors"
)

// 错误原因
const (
	ReasonSessionNotFound = "SESSION_NOT_FOUND"
	ReasonWheelNotFound   = "WHEEL_NOT_FOUND"
	ReasonInvalidRequest  = "INVALID_REQUEST"
)

// DataRepo 数据层接口：轮盘目录/会话ID计数/奖品计数/清单发布
type DataRepo interface {
	// LoadWheels 数据库中的轮盘定义，未配置数据库时返回空
	LoadWheels(ctx context.Context) ([]*WheelDefinition, error)
	NextSessionID(ctx context.Context, wheelID string) (string, error)
	IncrAward(ctx context.Context, wheelID, label string) error
	// AwardTally 某天各 <wheel>:<label> 的揭晓次数
	AwardTally(ctx context.Context, day time.Time) (map[string]int64, error)
	// PublishManifest 上传清单，未配置存储时返回空 URL
	PublishManifest(ctx context.Context, wheelID string, body []byte) (string, error)
}

// WheelDefinition 一个可创建会话的轮盘
type WheelDefinition struct {
	ID           string
	Name         string
	Labels       []string
	Rules        wheel.Rules
	PointerAngle float64
	TieBreak     wheel.TieBreakMode
	MinFullTurns int
	TurnJitter   int
	RevealDelay  time.Duration
	Seed         uint64
	// Source conf / mysql
	Source string
}

// EngineConfig 转换为引擎配置，调用方补充时钟与回调
func (d *WheelDefinition) EngineConfig() wheel.Config {
	return wheel.Config{
		Segments:     wheel.SegmentsFromLabels(d.Labels),
		Rules:        d.Rules,
		PointerAngle: d.PointerAngle,
		TieBreak:     d.TieBreak,
		MinFullTurns: d.MinFullTurns,
		TurnJitter:   d.TurnJitter,
		RevealDelay:  d.RevealDelay,
		Seed:         d.Seed,
	}
}

// Validate 用一次试构造校验定义
func (d *WheelDefinition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return errors.BadRequest(wheel.ReasonInvalidConfig, "wheel id is required")
	}
	if _, err := wheel.Configure(d.EngineConfig()); err != nil {
		return errors.Newf(400, wheel.ReasonInvalidConfig, "wheel %q: %s", d.ID, errors.FromError(err).Message).WithCause(err)
	}
	return nil
}

// definitionFromConf 配置文件中的定义；单个轮盘未设置 reveal_delay 时沿用全局值
func definitionFromConf(c *conf.Wheel_Definition, revealDelay time.Duration) (*WheelDefinition, error) {
	mode, err := wheel.ParseTieBreakMode(c.TieBreak)
	if err != nil {
		return nil, err
	}
	delay := c.RevealDelay.AsDuration()
	if delay == 0 {
		delay = revealDelay
	}
	name := c.Name
	if name == "" {
		name = c.Id
	}
	return &WheelDefinition{
		ID:     c.Id,
		Name:   name,
		Labels: append([]string(nil), c.Segments...),
		Rules: wheel.Rules{
			MajorCadence:  int(c.MajorCadence),
			MinorCadence:  int(c.MinorCadence),
			MajorLabels:   append([]string(nil), c.MajorLabels...),
			MinorLabel:    c.MinorLabel,
			FallbackLabel: c.FallbackLabel,
		},
		PointerAngle: c.PointerAngle,
		TieBreak:     mode,
		MinFullTurns: int(c.MinFullTurns),
		TurnJitter:   int(c.TurnJitter),
		RevealDelay:  delay,
		Seed:         c.Seed,
		Source:       "conf",
	}, nil
}

// Manifest 供前端渲染的轮盘清单
type Manifest struct {
	WheelID      string      `json:"wheel_id"`
	Name         string      `json:"name"`
	PointerAngle float64     `json:"pointer_angle"`
	SectorAngle  float64     `json:"sector_angle"`
	TieBreak     string      `json:"tie_break"`
	RevealDelay  string      `json:"reveal_delay"`
	Rules        wheel.Rules `json:"rules"`
	// Prizes 去重后的奖品，按首次出现排序
	Prizes  []string       `json:"prizes"`
	Sectors []wheel.Sector `json:"sectors"`
	URL     string         `json:"url,omitempty"`
}

// sessionSeed 固定种子按会话序号错开；0 仍表示随机
func sessionSeed(base uint64, i int) uint64 {
	if base == 0 {
		return 0
	}
	return base + uint64(i)
}

// sessionIDSeed 固定种子与会话 ID 混合，同一 ID 可复现
func sessionIDSeed(base uint64, id string) uint64 {
	if base == 0 {
		return 0
	}
	if s := base ^ xxhash.Sum64String(id); s != 0 {
		return s
	}
	return base
}
