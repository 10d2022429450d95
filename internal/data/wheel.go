package data

import (
	"context"
	"sort"
	"strings"
	"time"

	"prizewheel/internal/biz"
	"prizewheel/internal/biz/wheel"

	"github.com/go-kratos/kratos/v2/errors"
)

// wheelRow 轮盘定义表
type wheelRow struct {
	Id            string    `xorm:"pk varchar(64) 'id'"`
	Name          string    `xorm:"varchar(128) notnull default '' 'name'"`
	MajorCadence  int       `xorm:"notnull 'major_cadence'"`
	MinorCadence  int       `xorm:"notnull 'minor_cadence'"`
	MajorLabels   string    `xorm:"varchar(512) notnull 'major_labels'"`
	MinorLabel    string    `xorm:"varchar(128) notnull 'minor_label'"`
	FallbackLabel string    `xorm:"varchar(128) notnull 'fallback_label'"`
	PointerAngle  float64   `xorm:"notnull default 0 'pointer_angle'"`
	TieBreak      string    `xorm:"varchar(16) notnull default 'deterministic' 'tie_break'"`
	MinFullTurns  int       `xorm:"notnull default 0 'min_full_turns'"`
	TurnJitter    int       `xorm:"notnull default 0 'turn_jitter'"`
	RevealDelayMs int64     `xorm:"notnull default 0 'reveal_delay_ms'"`
	Enabled       bool      `xorm:"notnull default true index 'enabled'"`
	CreatedAt     time.Time `xorm:"created 'created_at'"`
	UpdatedAt     time.Time `xorm:"updated 'updated_at'"`
}

func (wheelRow) TableName() string { return "wheel" }

// wheelSegmentRow 扇区表，idx 为顺时针位置
type wheelSegmentRow struct {
	Id      int64  `xorm:"pk autoincr 'id'"`
	WheelId string `xorm:"varchar(64) notnull unique(wheel_idx) 'wheel_id'"`
	Idx     int    `xorm:"notnull unique(wheel_idx) 'idx'"`
	Label   string `xorm:"varchar(128) notnull 'label'"`
}

func (wheelSegmentRow) TableName() string { return "wheel_segment" }

// LoadWheels 读取启用的轮盘定义；未配置数据库时返回空
func (r *dataRepo) LoadWheels(ctx context.Context) ([]*biz.WheelDefinition, error) {
	if r.data.db == nil {
		return nil, nil
	}
	var wheels []wheelRow
	if err := r.data.db.Context(ctx).Where("enabled = ?", true).Asc("id").Find(&wheels); err != nil {
		return nil, errors.Newf(500, "DB_QUERY_FAILED", "load wheels: %v", err)
	}
	if len(wheels) == 0 {
		return nil, nil
	}
	ids := make([]string, len(wheels))
	for i, w := range wheels {
		ids[i] = w.Id
	}
	var segs []wheelSegmentRow
	if err := r.data.db.Context(ctx).In("wheel_id", ids).Find(&segs); err != nil {
		return nil, errors.Newf(500, "DB_QUERY_FAILED", "load wheel segments: %v", err)
	}
	defs, err := rowsToDefinitions(wheels, segs)
	if err != nil {
		return nil, err
	}
	r.log.Infof("loaded %d wheels from database", len(defs))
	return defs, nil
}

// rowsToDefinitions 按 idx 组装扇区；索引连续性交给 wheel.NewLayout 校验
func rowsToDefinitions(wheels []wheelRow, segs []wheelSegmentRow) ([]*biz.WheelDefinition, error) {
	byWheel := make(map[string][]wheelSegmentRow, len(wheels))
	for _, s := range segs {
		byWheel[s.WheelId] = append(byWheel[s.WheelId], s)
	}
	out := make([]*biz.WheelDefinition, 0, len(wheels))
	for _, w := range wheels {
		rows := byWheel[w.Id]
		sort.Slice(rows, func(i, j int) bool { return rows[i].Idx < rows[j].Idx })
		labels := make([]string, len(rows))
		for i, s := range rows {
			if s.Idx != i {
				return nil, errors.Newf(400, wheel.ReasonInvalidConfig, "wheel %q: segment idx %d at position %d", w.Id, s.Idx, i)
			}
			labels[i] = s.Label
		}
		mode, err := wheel.ParseTieBreakMode(w.TieBreak)
		if err != nil {
			return nil, err
		}
		name := w.Name
		if name == "" {
			name = w.Id
		}
		out = append(out, &biz.WheelDefinition{
			ID:     w.Id,
			Name:   name,
			Labels: labels,
			Rules: wheel.Rules{
				MajorCadence:  w.MajorCadence,
				MinorCadence:  w.MinorCadence,
				MajorLabels:   splitLabels(w.MajorLabels),
				MinorLabel:    w.MinorLabel,
				FallbackLabel: w.FallbackLabel,
			},
			PointerAngle: w.PointerAngle,
			TieBreak:     mode,
			MinFullTurns: w.MinFullTurns,
			TurnJitter:   w.TurnJitter,
			RevealDelay:  time.Duration(w.RevealDelayMs) * time.Millisecond,
			Source:       "mysql",
		})
	}
	return out, nil
}

// splitLabels 逗号分隔，去空白与空项
func splitLabels(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
