package biz

import (
	"context"
	"strings"
	"time"

	"prizewheel/internal/biz/session"
	"prizewheel/internal/biz/wheel"
	"prizewheel/internal/conf"
	"prizewheel/internal/notify"
	"prizewheel/pkg/xgo"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"
)

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(NewUseCase)

// 业务常量
const (
	defaultSessionTTL      = 30 * time.Minute
	defaultCleanupInterval = time.Minute
	defaultFanoutWorkers   = 16
	startupTimeout         = 30 * time.Second
	fanoutTimeout          = 5 * time.Second
	releaseTimeout         = 5 * time.Second
)

// UseCase 编排层：轮盘目录 + 会话池 + 揭晓后的异步分发
type UseCase struct {
	ctx    context.Context
	cancel context.CancelFunc

	repo     DataRepo
	logger   log.Logger
	log      *log.Helper
	c        *conf.Wheel
	catalog  *Catalog
	sessions *session.Pool
	fanout   *ants.Pool
	notify   notify.Notifier
	clock    wheel.Clock
}

// NewUseCase 创建 UseCase，目录非法时返回错误阻止启动
func NewUseCase(repo DataRepo, logger log.Logger, c *conf.Wheel, n notify.Notifier) (*UseCase, func(), error) {
	return newUseCase(repo, logger, c, n, wheel.SystemClock)
}

func newUseCase(repo DataRepo, logger log.Logger, c *conf.Wheel, n notify.Notifier, clock wheel.Clock) (*UseCase, func(), error) {
	if n == nil {
		n = notify.Noop{}
	}
	if c == nil {
		c = &conf.Wheel{}
	}
	l := log.NewHelper(log.With(logger, "module", "biz"))

	startCtx, cancelStart := context.WithTimeout(context.Background(), startupTimeout)
	defer cancelStart()
	catalog, err := LoadCatalog(startCtx, c, repo, logger)
	if err != nil {
		return nil, nil, err
	}

	workers := int(c.FanoutWorkers)
	if workers <= 0 {
		workers = defaultFanoutWorkers
	}
	fanout, err := ants.NewPool(workers, ants.WithPanicHandler(func(p any) {
		l.Errorf("reveal fan-out panic: %v", p)
	}))
	if err != nil {
		return nil, nil, errors.Newf(500, "FANOUT_POOL_FAILED", "create fan-out pool: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	uc := &UseCase{
		ctx:      ctx,
		cancel:   cancel,
		repo:     repo,
		logger:   logger,
		log:      l,
		c:        c,
		catalog:  catalog,
		sessions: session.NewPool(),
		fanout:   fanout,
		notify:   n,
		clock:    clock,
	}

	uc.publishManifests(startCtx)

	ttl := c.SessionTtl.AsDuration()
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	interval := c.CleanupInterval.AsDuration()
	if interval <= 0 {
		interval = defaultCleanupInterval
	}
	xgo.Go(func() { uc.sessions.StartAutoCleanup(ctx, logger, ttl, interval) })
	xgo.Go(func() { ReportSessionMetrics(ctx, uc.sessions, catalog.IDs()) })

	cleanup := func() {
		uc.cancel()
		if n := uc.sessions.Clear(); n > 0 {
			l.Infof("closed %d sessions", n)
		}
		if err := uc.fanout.ReleaseTimeout(releaseTimeout); err != nil {
			l.Warnf("release fan-out pool: %v", err)
		}
	}
	return uc, cleanup, nil
}

// publishManifests 并发上传轮盘清单，失败只记录日志
func (uc *UseCase) publishManifests(ctx context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, id := range uc.catalog.IDs() {
		g.Go(func() error {
			m, err := uc.catalog.Manifest(id)
			if err != nil {
				return err
			}
			body, err := xgo.MarshalIndent(m)
			if err != nil {
				return err
			}
			url, err := uc.repo.PublishManifest(ctx, id, body)
			if err != nil {
				uc.log.Warnf("publish manifest %q: %v", id, err)
				return nil
			}
			if url != "" {
				uc.catalog.setManifestURL(id, url)
				uc.log.Infof("manifest %q published", id)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		uc.log.Warnf("publish manifests: %v", err)
	}
}

// Catalog 轮盘目录
func (uc *UseCase) Catalog() *Catalog { return uc.catalog }

// ListWheels 全部轮盘清单（按 ID 升序）
func (uc *UseCase) ListWheels() []*Manifest {
	ids := uc.catalog.IDs()
	out := make([]*Manifest, 0, len(ids))
	for _, id := range ids {
		if m, err := uc.catalog.Manifest(id); err == nil {
			out = append(out, m)
		}
	}
	return out
}

// GetManifest 单个轮盘清单，空 ID 取默认轮盘
func (uc *UseCase) GetManifest(wheelID string) (*Manifest, error) {
	return uc.catalog.Manifest(wheelID)
}

// CreateSession 新建会话，空 wheelID 使用默认轮盘
func (uc *UseCase) CreateSession(ctx context.Context, wheelID string) (*session.Session, error) {
	def, err := uc.catalog.Get(wheelID)
	if err != nil {
		return nil, err
	}
	sessionID, err := uc.repo.NextSessionID(ctx, def.ID)
	if err != nil {
		return nil, err
	}

	cfg := def.EngineConfig()
	cfg.Seed = sessionIDSeed(def.Seed, sessionID)
	cfg.Clock = uc.clock
	cfg.Logger = log.With(uc.logger, "session", sessionID)
	cfg.OnReveal = func(res wheel.SpinResult) { uc.onReveal(def.ID, sessionID, res) }
	cfg.OnStale = func(uint64) { cStaleReveals.WithLabelValues(def.ID).Inc() }
	engine, err := wheel.Configure(cfg)
	if err != nil {
		return nil, err
	}

	s := session.New(sessionID, def.ID, engine)
	if !uc.sessions.Add(s) {
		return nil, errors.Conflict("SESSION_EXISTS", "session "+sessionID+" already exists")
	}
	uc.log.Infof("session %s created on wheel %q", sessionID, def.ID)
	return s, nil
}

// GetSession 获取会话
func (uc *UseCase) GetSession(id string) (*session.Session, error) {
	s, ok := uc.sessions.Get(id)
	if !ok {
		return nil, errors.NotFound(ReasonSessionNotFound, "session "+id+" not found")
	}
	return s, nil
}

// ListSessions 全部会话（按创建时间倒序）
func (uc *UseCase) ListSessions() []*session.Session {
	return uc.sessions.List()
}

// Spin 请求旋转；ok=false 表示动画或待消费中，请求被忽略
func (uc *UseCase) Spin(ctx context.Context, sessionID string) (wheel.SpinResult, bool, error) {
	s, err := uc.GetSession(sessionID)
	if err != nil {
		return wheel.SpinResult{}, false, err
	}
	res, ok, err := s.GetEngine().RequestSpin()
	switch {
	case err != nil:
		cSpinErrors.WithLabelValues(s.GetWheelID(), errors.Reason(err)).Inc()
		uc.log.WithContext(ctx).Errorf("session %s spin failed: %v", sessionID, err)
		return res, false, err
	case !ok:
		cNoOps.WithLabelValues(s.GetWheelID()).Inc()
	default:
		cSpins.WithLabelValues(s.GetWheelID(), res.Tier.String()).Inc()
	}
	return res, ok, nil
}

// Reveal 消费已揭晓的结果，Resolved -> Idle；未揭晓时 ok=false
func (uc *UseCase) Reveal(_ context.Context, sessionID string) (wheel.SpinResult, bool, error) {
	s, err := uc.GetSession(sessionID)
	if err != nil {
		return wheel.SpinResult{}, false, err
	}
	res, ok := s.GetEngine().Consume()
	return res, ok, nil
}

// ResetSession 重置会话，作废在途揭晓
func (uc *UseCase) ResetSession(_ context.Context, sessionID string) (wheel.SpinState, error) {
	s, err := uc.GetSession(sessionID)
	if err != nil {
		return wheel.SpinState{}, err
	}
	s.GetEngine().Reset()
	uc.log.Infof("session %s reset", sessionID)
	return s.GetEngine().State(), nil
}

// DeleteSession 删除会话
func (uc *UseCase) DeleteSession(_ context.Context, sessionID string) error {
	if _, ok := uc.sessions.Remove(sessionID); !ok {
		return errors.NotFound(ReasonSessionNotFound, "session "+sessionID+" not found")
	}
	uc.log.Infof("session %s deleted", sessionID)
	return nil
}

// AwardTally 某天的奖品揭晓计数，wheelID 非空时只保留该轮盘
func (uc *UseCase) AwardTally(ctx context.Context, day time.Time, wheelID string) (map[string]int64, error) {
	all, err := uc.repo.AwardTally(ctx, day)
	if err != nil {
		return nil, err
	}
	if wheelID == "" {
		return all, nil
	}
	out := make(map[string]int64)
	for k, v := range all {
		if strings.HasPrefix(k, wheelID+":") {
			out[k] = v
		}
	}
	return out, nil
}

// onReveal 运行在定时器协程，外部 IO 全部交给 fan-out 池
func (uc *UseCase) onReveal(wheelID, sessionID string, res wheel.SpinResult) {
	cReveals.WithLabelValues(wheelID, res.PrizeLabel).Inc()
	uc.log.Infof("session %s spin %d revealed %q (%s)", sessionID, res.SpinNumber, res.PrizeLabel, res.Tier)

	err := uc.fanout.Submit(func() {
		defer xgo.RecoverFromError(nil)
		ctx, cancel := context.WithTimeout(uc.ctx, fanoutTimeout)
		defer cancel()

		if err := uc.repo.IncrAward(ctx, wheelID, res.PrizeLabel); err != nil {
			uc.log.Warnf("session %s award tally: %v", sessionID, err)
		}
		if res.Tier != wheel.TierMajor {
			return
		}
		msg := notify.BuildPrizeAwardMessage(notify.PrizeAward{
			WheelID:    wheelID,
			SessionID:  sessionID,
			SpinNumber: res.SpinNumber,
			Segment:    res.SegmentIndex,
			Label:      res.PrizeLabel,
			RevealedAt: res.RevealAt,
		})
		if err := uc.notify.Send(ctx, msg); err != nil {
			uc.log.Warnf("session %s major prize notify: %v", sessionID, err)
		}
	})
	if err != nil {
		uc.log.Warnf("session %s fan-out rejected: %v", sessionID, err)
	}
}
