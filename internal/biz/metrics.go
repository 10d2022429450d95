package biz

import (
	"context"
	"time"

	"prizewheel/internal/biz/session"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 通用标签
const labelWheelID, labelTier, labelLabel, labelReason = "wheel_id", "tier", "label", "reason"

// 会话数上报间隔
const metricsReportInterval = 10 * time.Second

// 旋转与揭晓
var (
	cSpins        = newCounter("prizewheel_spins_total", "已受理的旋转次数", labelWheelID, labelTier)
	cNoOps        = newCounter("prizewheel_spin_noops_total", "动画中被忽略的旋转请求", labelWheelID)
	cSpinErrors   = newCounter("prizewheel_spin_errors_total", "旋转失败次数", labelWheelID, labelReason)
	cReveals      = newCounter("prizewheel_reveals_total", "揭晓的奖品", labelWheelID, labelLabel)
	cStaleReveals = newCounter("prizewheel_stale_reveals_total", "重置后被丢弃的揭晓", labelWheelID)
)

// 会话与模拟
var (
	gSessions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "prizewheel_sessions",
		Help: "当前会话数",
	}, []string{labelWheelID})
	cSimulatedSpins = newCounter("prizewheel_simulated_spins_total", "模拟的旋转次数", labelWheelID)
	cSimViolations  = newCounter("prizewheel_simulation_violations_total", "模拟中发现的违规", labelWheelID, labelReason)
	hSimDuration    = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "prizewheel_simulation_duration_seconds",
		Help:    "单次模拟耗时",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
	}, []string{labelWheelID})
)

func newCounter(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
}

// ReportSessionMetrics 周期上报各轮盘会话数，ctx 取消后退出
func ReportSessionMetrics(ctx context.Context, pool *session.Pool, wheelIDs []string) {
	ticker := time.NewTicker(metricsReportInterval)
	defer ticker.Stop()

	reportSessions(pool, wheelIDs)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reportSessions(pool, wheelIDs)
		}
	}
}

func reportSessions(pool *session.Pool, wheelIDs []string) {
	counts := make(map[string]int, len(wheelIDs))
	for _, id := range wheelIDs {
		counts[id] = 0
	}
	for _, s := range pool.List() {
		counts[s.GetWheelID()]++
	}
	for id, n := range counts {
		gSessions.WithLabelValues(id).Set(float64(n))
	}
}
