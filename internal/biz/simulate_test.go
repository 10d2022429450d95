package biz

import (
	"context"
	"testing"

	"prizewheel/internal/biz/wheel"

	"github.com/go-kratos/kratos/v2/errors"
)

func TestSimulateAuditPasses(t *testing.T) {
	notifier := &recordingNotifier{}
	uc := newTestUseCase(t, newFakeRepo(), notifier, wheel.ImmediateClock)

	for _, id := range []string{"merch", "merch-fixed"} {
		r, err := uc.Simulate(context.Background(), SimulateRequest{WheelID: id, Sessions: 8, Spins: 100, Seed: 1})
		if err != nil {
			t.Fatalf("%s: %v", id, err)
		}
		if !r.Passed() {
			t.Fatalf("%s: audit failed: %+v", id, r)
		}
		if r.TotalSpins != 800 {
			t.Fatalf("%s: total=%d", id, r.TotalSpins)
		}
		// 每 10 次 1 个大奖、1 个小奖、8 个未中
		if r.TierCounts["major"] != 80 || r.TierCounts["minor"] != 80 || r.TierCounts["fallback"] != 640 {
			t.Fatalf("%s: tiers=%v", id, r.TierCounts)
		}
		if r.LabelCounts["Tote Bag"] != 80 || r.LabelShares["Better Luck Next Time"] != 80 {
			t.Fatalf("%s: labels=%v shares=%v", id, r.LabelCounts, r.LabelShares)
		}
	}
	if notifier.count() != 0 {
		t.Fatalf("passing audit should not notify unless asked")
	}
}

func TestSimulateDeterministicIsRepeatable(t *testing.T) {
	uc := newTestUseCase(t, newFakeRepo(), nil, wheel.ImmediateClock)
	req := SimulateRequest{WheelID: "merch-fixed", Sessions: 3, Spins: 40}
	a, err := uc.Simulate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := uc.Simulate(context.Background(), req)
	for k, v := range a.LabelCounts {
		if b.LabelCounts[k] != v {
			t.Fatalf("label %q: %d vs %d", k, v, b.LabelCounts[k])
		}
	}
}

func TestSimulateRejectsBadRequests(t *testing.T) {
	uc := newTestUseCase(t, newFakeRepo(), nil, wheel.ImmediateClock)
	ctx := context.Background()
	if _, err := uc.Simulate(ctx, SimulateRequest{WheelID: "merch", Sessions: 0, Spins: 10}); errors.Reason(err) != ReasonInvalidRequest {
		t.Fatalf("zero sessions: %v", err)
	}
	if _, err := uc.Simulate(ctx, SimulateRequest{WheelID: "merch", Sessions: 2000, Spins: 1000}); errors.Reason(err) != ReasonInvalidRequest {
		t.Fatalf("over limit: %v", err)
	}
	if _, err := uc.Simulate(ctx, SimulateRequest{WheelID: "ghost", Sessions: 1, Spins: 1}); !errors.IsNotFound(err) {
		t.Fatalf("unknown wheel: %v", err)
	}
}
