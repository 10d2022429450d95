package wheel

import (
	"testing"

	"github.com/go-kratos/kratos/v2/errors"
)

func newMerchPolicy(t *testing.T, mode TieBreakMode, rng Rand) (*Policy, *Layout) {
	t.Helper()
	l := mustLayout(merchLabels)
	p, err := NewPolicy(l, merchRules, mode, rng)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	return p, l
}

func TestPolicyCadence(t *testing.T) {
	for _, mode := range []TieBreakMode{TieBreakDeterministic, TieBreakRandom} {
		p, l := newMerchPolicy(t, mode, NewRand(7))
		for n := 1; n <= 200; n++ {
			idx, tier, err := p.Select(n)
			if err != nil {
				t.Fatalf("%s: Select(%d): %v", mode, n, err)
			}
			label := l.Segment(idx).Label
			switch {
			case n%10 == 0:
				if tier != TierMajor || (label != "Base T-Shirt" && label != "Cap") {
					t.Fatalf("%s: spin %d got %s/%q", mode, n, tier, label)
				}
			case n%5 == 0:
				if tier != TierMinor || label != "Tote Bag" {
					t.Fatalf("%s: spin %d got %s/%q", mode, n, tier, label)
				}
			default:
				if tier != TierFallback || label != "Better Luck Next Time" {
					t.Fatalf("%s: spin %d got %s/%q", mode, n, tier, label)
				}
			}
		}
	}
}

func TestPolicyConcreteScenario(t *testing.T) {
	p, l := newMerchPolicy(t, TieBreakDeterministic, nil)
	cases := map[int]string{5: "Tote Bag", 15: "Tote Bag", 23: "Better Luck Next Time"}
	for n, want := range cases {
		idx, _, err := p.Select(n)
		if err != nil || l.Segment(idx).Label != want {
			t.Fatalf("spin %d: idx=%d err=%v want %q", n, idx, err, want)
		}
	}
	idx, tier, _ := p.Select(10)
	// 大奖候选 [0 3 4 6 9 10]，10 % 6 = 4 -> 9
	if tier != TierMajor || idx != 9 {
		t.Fatalf("spin 10: idx=%d tier=%s", idx, tier)
	}
}

func TestPolicyDeterministicRepeatable(t *testing.T) {
	a, _ := newMerchPolicy(t, TieBreakDeterministic, nil)
	b, _ := newMerchPolicy(t, TieBreakDeterministic, nil)
	for n := 1; n <= 100; n++ {
		x, _, _ := a.Select(n)
		y, _, _ := a.Select(n)
		z, _, _ := b.Select(n)
		if x != y || x != z {
			t.Fatalf("spin %d: %d %d %d", n, x, y, z)
		}
	}
}

func TestPolicyRandomUsesSource(t *testing.T) {
	p, _ := newMerchPolicy(t, TieBreakRandom, &fixedRand{vals: []int{0, 5}})
	first, _, _ := p.Select(10)
	second, _, _ := p.Select(10)
	if first != 0 || second != 10 {
		t.Fatalf("got %d, %d", first, second)
	}
}

func TestPolicyInvalidSpinNumber(t *testing.T) {
	p, _ := newMerchPolicy(t, TieBreakDeterministic, nil)
	for _, n := range []int{0, -3} {
		if _, _, err := p.Select(n); !errors.Is(err, ErrInvalidSpinNumber) {
			t.Fatalf("Select(%d) err=%v", n, err)
		}
	}
}

func TestPolicyNoMatchingSegment(t *testing.T) {
	p, _ := newMerchPolicy(t, TieBreakDeterministic, nil)
	p.candidates[TierMinor] = nil
	_, _, err := p.Select(5)
	if !errors.Is(err, ErrNoMatchingSegment) {
		t.Fatalf("want NO_MATCHING_SEGMENT, got %v", err)
	}
	if errors.Code(err) != 500 {
		t.Fatalf("code=%d", errors.Code(err))
	}
}

func TestRulesValidate(t *testing.T) {
	l := mustLayout(merchLabels)
	mutate := func(f func(r *Rules)) Rules {
		r := merchRules
		r.MajorLabels = append([]string(nil), merchRules.MajorLabels...)
		f(&r)
		return r
	}
	tests := []struct {
		name  string
		rules Rules
	}{
		{"zero major", mutate(func(r *Rules) { r.MajorCadence = 0 })},
		{"negative minor", mutate(func(r *Rules) { r.MinorCadence = -5 })},
		{"not a multiple", mutate(func(r *Rules) { r.MajorCadence = 12 })},
		{"no major labels", mutate(func(r *Rules) { r.MajorLabels = nil })},
		{"unknown major", mutate(func(r *Rules) { r.MajorLabels = append(r.MajorLabels, "Hoodie") })},
		{"unknown minor", mutate(func(r *Rules) { r.MinorLabel = "Mug" })},
		{"missing fallback", mutate(func(r *Rules) { r.FallbackLabel = "" })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.rules.Validate(l); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("want INVALID_CONFIG, got %v", err)
			}
		})
	}
	if err := merchRules.Validate(l); err != nil {
		t.Fatalf("valid rules rejected: %v", err)
	}
}

func TestParseTieBreakMode(t *testing.T) {
	if m, err := ParseTieBreakMode(""); err != nil || m != TieBreakDeterministic {
		t.Fatalf("empty: %v %v", m, err)
	}
	if m, err := ParseTieBreakMode(" Random "); err != nil || m != TieBreakRandom {
		t.Fatalf("random: %v %v", m, err)
	}
	if _, err := ParseTieBreakMode("weighted"); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("weighted: %v", err)
	}
}

func TestPolicyDescribe(t *testing.T) {
	p, _ := newMerchPolicy(t, TieBreakDeterministic, nil)
	cases := map[int]Tier{1: TierFallback, 5: TierMinor, 10: TierMajor, 15: TierMinor, 20: TierMajor, 23: TierFallback}
	for n, want := range cases {
		if got := p.Describe(n); got != want {
			t.Fatalf("spin %d: tier=%s want %s", n, got, want)
		}
		if _, tier, err := p.Select(n); err != nil || tier != want {
			t.Fatalf("spin %d: select tier=%s err=%v", n, tier, err)
		}
	}
}
