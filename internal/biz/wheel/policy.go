package wheel

import (
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"
)

// Tier 奖品档位
type Tier int

const (
	TierFallback Tier = iota
	TierMinor
	TierMajor
)

func (t Tier) String() string {
	switch t {
	case TierMajor:
		return "major"
	case TierMinor:
		return "minor"
	default:
		return "fallback"
	}
}

// TieBreakMode 同标签多扇区时的裁决方式
type TieBreakMode string

const (
	TieBreakDeterministic TieBreakMode = "deterministic"
	TieBreakRandom        TieBreakMode = "random"
)

// ParseTieBreakMode 空字符串视为 deterministic
func ParseTieBreakMode(s string) (TieBreakMode, error) {
	switch TieBreakMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", TieBreakDeterministic:
		return TieBreakDeterministic, nil
	case TieBreakRandom:
		return TieBreakRandom, nil
	default:
		return "", invalidConfig("unknown tie-break mode %q", s)
	}
}

// Rules 节奏保底规则
type Rules struct {
	MajorCadence  int      `json:"major_cadence"`
	MinorCadence  int      `json:"minor_cadence"`
	MajorLabels   []string `json:"major_labels"`
	MinorLabel    string   `json:"minor_label"`
	FallbackLabel string   `json:"fallback_label"`
}

// Validate 校验节奏与标签；layout 为 nil 时只校验节奏
func (r Rules) Validate(l *Layout) error {
	if r.MajorCadence <= 0 || r.MinorCadence <= 0 {
		return invalidConfig("cadences must be positive, got major=%d minor=%d", r.MajorCadence, r.MinorCadence)
	}
	if !isMultiple(r.MajorCadence, r.MinorCadence) {
		return invalidConfig("major cadence %d is not a multiple of minor cadence %d", r.MajorCadence, r.MinorCadence)
	}
	if len(r.MajorLabels) == 0 {
		return invalidConfig("major prize set is empty")
	}
	if r.MinorLabel == "" || r.FallbackLabel == "" {
		return invalidConfig("minor and fallback labels are required")
	}
	if l == nil {
		return nil
	}
	for _, label := range r.labels() {
		if !l.Has(label) {
			return invalidConfig("label %q has no matching segment", label)
		}
	}
	return nil
}

func (r Rules) labels() []string {
	out := make([]string, 0, len(r.MajorLabels)+2)
	out = append(out, r.MajorLabels...)
	return append(out, r.MinorLabel, r.FallbackLabel)
}

// TierFor 按规则顺序判定档位，先大奖后小奖
func (r Rules) TierFor(spinNumber int) Tier {
	switch {
	case isMultiple(spinNumber, r.MajorCadence):
		return TierMajor
	case isMultiple(spinNumber, r.MinorCadence):
		return TierMinor
	default:
		return TierFallback
	}
}

// LabelsFor 档位对应的合法标签
func (r Rules) LabelsFor(t Tier) []string {
	switch t {
	case TierMajor:
		return r.MajorLabels
	case TierMinor:
		return []string{r.MinorLabel}
	default:
		return []string{r.FallbackLabel}
	}
}

func isMultiple[T constraints.Integer](n, m T) bool {
	return m != 0 && n%m == 0
}

// Policy 把旋转序号映射为扇区索引
type Policy struct {
	layout *Layout
	rules  Rules
	mode   TieBreakMode
	rng    Rand

	candidates map[Tier][]int
}

// NewPolicy 创建选奖策略，random 模式下 rng 为 nil 时使用随机种子
func NewPolicy(l *Layout, rules Rules, mode TieBreakMode, rng Rand) (*Policy, error) {
	if l == nil {
		return nil, invalidConfig("layout is required")
	}
	if err := rules.Validate(l); err != nil {
		return nil, err
	}
	mode, err := ParseTieBreakMode(string(mode))
	if err != nil {
		return nil, err
	}
	if mode == TieBreakRandom && rng == nil {
		rng = NewRand(0)
	}
	p := &Policy{
		layout:     l,
		rules:      rules,
		mode:       mode,
		rng:        rng,
		candidates: make(map[Tier][]int, 3),
	}
	for _, t := range []Tier{TierMajor, TierMinor, TierFallback} {
		p.candidates[t] = l.IndicesOf(rules.LabelsFor(t)...)
	}
	return p, nil
}

// Rules 当前规则
func (p *Policy) Rules() Rules { return p.rules }

// Mode 当前裁决方式
func (p *Policy) Mode() TieBreakMode { return p.mode }

// Describe 只判断命中哪一档，不选扇区
func (p *Policy) Describe(spinNumber int) Tier {
	return p.rules.TierFor(spinNumber)
}

// Select 返回扇区索引与命中档位
func (p *Policy) Select(spinNumber int) (int, Tier, error) {
	if spinNumber < 1 {
		return 0, TierFallback, ErrInvalidSpinNumber.WithMetadata(map[string]string{
			"spin_number": fmt.Sprint(spinNumber),
		})
	}
	tier := p.Describe(spinNumber)
	cands := p.candidates[tier]
	if len(cands) == 0 {
		return 0, tier, ErrNoMatchingSegment.WithMetadata(map[string]string{
			"tier":        tier.String(),
			"spin_number": fmt.Sprint(spinNumber),
		})
	}
	return cands[p.pick(spinNumber, len(cands))], tier, nil
}

func (p *Policy) pick(spinNumber, n int) int {
	if n == 1 {
		return 0
	}
	if p.mode == TieBreakRandom {
		return p.rng.IntN(n)
	}
	return spinNumber % n
}

// MarshalText 以名称序列化
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
