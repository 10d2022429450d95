package wheel

import (
	"math"
	"slices"
	"testing"

	"github.com/go-kratos/kratos/v2/errors"
)

func TestNewLayout(t *testing.T) {
	tests := []struct {
		name    string
		segs    []Segment
		wantErr bool
	}{
		{"empty", nil, true},
		{"single", []Segment{{0, "A"}}, false},
		{"unordered input", []Segment{{1, "B"}, {0, "A"}}, false},
		{"gap", []Segment{{0, "A"}, {2, "B"}}, true},
		{"duplicate index", []Segment{{0, "A"}, {0, "B"}}, true},
		{"blank label", []Segment{{0, "A"}, {1, "  "}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLayout(tt.segs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewLayout err=%v wantErr=%v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("want INVALID_CONFIG, got %v", err)
			}
			if err == nil && l.Segment(0).Label != "A" {
				t.Fatalf("segment 0 = %+v", l.Segment(0))
			}
		})
	}
}

func TestLayoutGeometry(t *testing.T) {
	l := mustLayout(merchLabels)
	if l.Len() != 12 || l.SectorAngle() != 30 {
		t.Fatalf("len=%d sector=%v", l.Len(), l.SectorAngle())
	}
	if c := l.Center(0); c != 15 {
		t.Fatalf("center(0)=%v", c)
	}
	if c := l.Center(11); c != 345 {
		t.Fatalf("center(11)=%v", c)
	}
	s := l.Sector(4)
	if s.Start != 120 || s.End != 150 || s.Center != 135 || s.Label != "Cap" {
		t.Fatalf("sector(4)=%+v", s)
	}
	got := l.IndicesOf("Cap", "Base T-Shirt")
	want := []int{0, 3, 4, 6, 9, 10}
	if len(got) != len(want) {
		t.Fatalf("IndicesOf=%v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("IndicesOf=%v want %v", got, want)
		}
	}
	if l.Has("Jacket") {
		t.Fatalf("unexpected label")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{360, 0},
		{-90, 270},
		{725, 5},
		{-725, 355},
		{-1e-15, 0},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Normalize(%v)=%v want %v", tt.in, got, tt.want)
		}
	}
}

func TestLayoutLabelsDistinct(t *testing.T) {
	got := mustLayout(merchLabels).Labels()
	want := []string{"Base T-Shirt", "Tote Bag", "Better Luck Next Time", "Cap"}
	if !slices.Equal(got, want) {
		t.Fatalf("labels=%v want %v", got, want)
	}
}
