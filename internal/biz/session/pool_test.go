package session

import (
	"testing"
	"time"

	"prizewheel/internal/biz/wheel"
)

func newEngine(t *testing.T) *wheel.Engine {
	t.Helper()
	e, err := wheel.Configure(wheel.Config{
		Segments: wheel.SegmentsFromLabels([]string{"Cap", "Tote Bag", "Nothing"}),
		Rules: wheel.Rules{
			MajorCadence:  10,
			MinorCadence:  5,
			MajorLabels:   []string{"Cap"},
			MinorLabel:    "Tote Bag",
			FallbackLabel: "Nothing",
		},
		PointerAngle: 0,
		Clock:        wheel.ImmediateClock,
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	return e
}

func TestPoolAddGetRemove(t *testing.T) {
	p := NewPool()
	s := New("20260101-merch-1", "merch", newEngine(t))
	if !p.Add(s) {
		t.Fatal("Add failed")
	}
	if p.Add(New("20260101-merch-1", "merch", newEngine(t))) {
		t.Fatal("duplicate id accepted")
	}
	got, ok := p.Get(s.GetID())
	if !ok || got != s {
		t.Fatalf("Get ok=%v", ok)
	}

	s.GetEngine().RequestSpin()
	if _, ok := p.Remove(s.GetID()); !ok {
		t.Fatal("Remove failed")
	}
	if st := s.GetEngine().State(); st.SpinNumber != 0 {
		t.Fatalf("engine not reset: %+v", st)
	}
	if _, ok := p.Get(s.GetID()); ok || p.Len() != 0 {
		t.Fatal("session still present")
	}
}

func TestPoolListOrder(t *testing.T) {
	p := NewPool()
	a := New("a", "merch", newEngine(t))
	b := New("b", "merch", newEngine(t))
	b.createdAt = a.createdAt.Add(time.Second)
	p.Add(a)
	p.Add(b)
	list := p.List()
	if len(list) != 2 || list[0].GetID() != "b" {
		t.Fatalf("list order: %v", list)
	}
}

func TestPoolCleanupIdle(t *testing.T) {
	p := NewPool()
	old := New("old", "merch", newEngine(t))
	old.touchAt(time.Now().Add(-time.Hour))
	fresh := New("fresh", "merch", newEngine(t))
	p.Add(old)
	p.Add(fresh)

	if n := p.CleanupIdle(30 * time.Minute); n != 1 {
		t.Fatalf("removed %d", n)
	}
	if _, ok := p.Get("old"); ok {
		t.Fatal("idle session kept")
	}
	if _, ok := p.Get("fresh"); !ok {
		t.Fatal("fresh session removed")
	}
	if n := p.Clear(); n != 1 || p.Len() != 0 {
		t.Fatalf("Clear=%d len=%d", n, p.Len())
	}
}
