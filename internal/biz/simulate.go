package biz

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"prizewheel/internal/biz/wheel"
	"prizewheel/internal/notify"
	"prizewheel/pkg/xgo"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/panjf2000/ants/v2"
)

const (
	defaultSimulateConcurrency = 32
	defaultMaxSimulateSpins    = 1_000_000
)

// SimulateRequest 批量模拟参数
type SimulateRequest struct {
	WheelID  string
	Sessions int
	Spins    int
	// Seed 非 0 时第 i 个会话使用 Seed+i，为 0 时沿用轮盘的种子
	Seed   uint64
	Notify bool
}

// SimulationReport 模拟审计结果
type SimulationReport struct {
	WheelID           string             `json:"wheel_id"`
	Sessions          int                `json:"sessions"`
	SpinsPerSession   int                `json:"spins_per_session"`
	TotalSpins        int64              `json:"total_spins"`
	LabelCounts       map[string]int64   `json:"label_counts"`
	LabelShares       map[string]float64 `json:"label_shares"`
	TierCounts        map[string]int64   `json:"tier_counts"`
	CadenceViolations int64              `json:"cadence_violations"`
	LandingMismatches int64              `json:"landing_mismatches"`
	AlignmentFailures int64              `json:"alignment_failures"`
	Duration          time.Duration      `json:"-"`
	Elapsed           string             `json:"elapsed"`
}

// Passed 无任何违规
func (r *SimulationReport) Passed() bool {
	return r.CadenceViolations == 0 && r.LandingMismatches == 0 && r.AlignmentFailures == 0
}

// simTally 单个会话的局部统计，结束后合并
type simTally struct {
	labels     map[string]int64
	tiers      map[string]int64
	spins      int64
	cadence    int64
	landing    int64
	alignments int64
}

func newSimTally() *simTally {
	return &simTally{labels: make(map[string]int64), tiers: make(map[string]int64)}
}

// Simulate 在内存中跑 Sessions 个独立会话，每个 Spins 次，校验节奏与落点
func (uc *UseCase) Simulate(ctx context.Context, req SimulateRequest) (*SimulationReport, error) {
	def, err := uc.catalog.Get(req.WheelID)
	if err != nil {
		return nil, err
	}
	if req.Sessions <= 0 || req.Spins <= 0 {
		return nil, errors.BadRequest(ReasonInvalidRequest, "sessions and spins must be positive")
	}
	limit := uc.c.MaxSimulateSpins
	if limit <= 0 {
		limit = defaultMaxSimulateSpins
	}
	if total := int64(req.Sessions) * int64(req.Spins); total > limit {
		return nil, errors.Newf(400, ReasonInvalidRequest, "%d spins exceeds limit %d", total, limit)
	}

	workers := int(uc.c.SimulateConcurrency)
	if workers <= 0 {
		workers = defaultSimulateConcurrency
	}
	pool, err := ants.NewPool(min(workers, req.Sessions))
	if err != nil {
		return nil, errors.Newf(500, "SIMULATE_POOL_FAILED", "create simulate pool: %v", err)
	}
	defer pool.Release()

	start := time.Now()
	quiet := log.NewFilter(uc.logger, log.FilterLevel(log.LevelWarn))
	tallies := make([]*simTally, req.Sessions)
	var (
		wg       sync.WaitGroup
		firstErr atomic.Pointer[error]
	)
	for i := 0; i < req.Sessions; i++ {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			defer xgo.RecoverFromError(func(e any) {
				err := fmt.Errorf("session %d panic: %v", i, e)
				firstErr.CompareAndSwap(nil, &err)
			})
			if ctx.Err() != nil || firstErr.Load() != nil {
				return
			}
			base := req.Seed
			if base == 0 {
				base = def.Seed
			}
			t, err := simulateSession(ctx, def, req.Spins, sessionSeed(base, i), quiet)
			if err != nil {
				firstErr.CompareAndSwap(nil, &err)
				return
			}
			tallies[i] = t
		})
		if submitErr != nil {
			wg.Done()
			return nil, errors.Newf(500, "SIMULATE_POOL_FAILED", "submit: %v", submitErr)
		}
	}
	wg.Wait()
	if p := firstErr.Load(); p != nil {
		return nil, *p
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := mergeTallies(def.ID, req, tallies)
	report.Duration = time.Since(start)
	report.Elapsed = xgo.ShortDuration(report.Duration)

	cSimulatedSpins.WithLabelValues(def.ID).Add(float64(report.TotalSpins))
	hSimDuration.WithLabelValues(def.ID).Observe(report.Duration.Seconds())
	for reason, n := range map[string]int64{
		"cadence":   report.CadenceViolations,
		"landing":   report.LandingMismatches,
		"alignment": report.AlignmentFailures,
	} {
		if n > 0 {
			cSimViolations.WithLabelValues(def.ID, reason).Add(float64(n))
		}
	}
	uc.log.Infof("simulation on %q: %d sessions x %d spins in %s, passed=%v",
		def.ID, req.Sessions, req.Spins, report.Elapsed, report.Passed())

	if req.Notify || !report.Passed() {
		msg := notify.BuildSimulationMessage(notify.SimulationSummary{
			WheelID:           def.ID,
			Sessions:          report.Sessions,
			Spins:             report.TotalSpins,
			Duration:          report.Duration,
			LabelCounts:       report.LabelCounts,
			CadenceViolations: report.CadenceViolations + report.LandingMismatches,
			AlignmentFailures: report.AlignmentFailures,
		})
		if err := uc.notify.Send(ctx, msg); err != nil {
			uc.log.Warnf("simulation notify: %v", err)
		}
	}
	return report, nil
}

// simulateSession 用立即时钟驱动一个完整生命周期的引擎
func simulateSession(ctx context.Context, def *WheelDefinition, spins int, seed uint64, logger log.Logger) (*simTally, error) {
	cfg := def.EngineConfig()
	cfg.Clock = wheel.ImmediateClock
	cfg.Logger = logger
	if seed != 0 {
		cfg.Seed = seed
	}
	engine, err := wheel.Configure(cfg)
	if err != nil {
		return nil, err
	}
	layout, rules, pointer := engine.Layout(), engine.Rules(), engine.PointerAngle()

	t := newSimTally()
	for n := 1; n <= spins; n++ {
		if n%1024 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		res, ok, err := engine.RequestSpin()
		if err != nil {
			if errors.Reason(err) == wheel.ReasonAlignmentFailed {
				t.alignments++
				continue
			}
			return nil, err
		}
		if !ok {
			return nil, errors.Newf(500, "SIMULATE_STATE", "spin %d ignored in phase %s", n, engine.Phase())
		}
		if _, ok := engine.Consume(); !ok {
			return nil, errors.Newf(500, "SIMULATE_STATE", "spin %d not revealed", n)
		}

		t.spins++
		t.labels[res.PrizeLabel]++
		t.tiers[res.Tier.String()]++
		want := rules.TierFor(res.SpinNumber)
		if res.Tier != want || !slices.Contains(rules.LabelsFor(want), res.PrizeLabel) {
			t.cadence++
		}
		if wheel.LandedIndex(layout, res.TargetRotation, pointer) != res.SegmentIndex {
			t.landing++
		}
	}
	return t, nil
}

func mergeTallies(wheelID string, req SimulateRequest, tallies []*simTally) *SimulationReport {
	r := &SimulationReport{
		WheelID:         wheelID,
		Sessions:        req.Sessions,
		SpinsPerSession: req.Spins,
		LabelCounts:     make(map[string]int64),
		LabelShares:     make(map[string]float64),
		TierCounts:      make(map[string]int64),
	}
	for _, t := range tallies {
		if t == nil {
			continue
		}
		r.TotalSpins += t.spins
		r.CadenceViolations += t.cadence
		r.LandingMismatches += t.landing
		r.AlignmentFailures += t.alignments
		for k, v := range t.labels {
			r.LabelCounts[k] += v
		}
		for k, v := range t.tiers {
			r.TierCounts[k] += v
		}
	}
	for k, v := range r.LabelCounts {
		r.LabelShares[k] = xgo.Round(xgo.Pct(v, r.TotalSpins), 4)
	}
	return r
}
