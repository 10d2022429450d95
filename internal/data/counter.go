package data

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
)

const counterTimeout = 5 * time.Second

// NextSessionID 会话ID YYYYMMDD-<wheel>-<n>。
// Redis Hash <prefix>:session:YYYYMMDD，field=wheelID，过期为次日 0 点；无 Redis 时用进程内计数
func (r *dataRepo) NextSessionID(ctx context.Context, wheelID string) (string, error) {
	now := time.Now()
	date := now.Format("20060102")
	if r.data.rdb == nil {
		return fmt.Sprintf("%s-%s-%d", date, wheelID, r.seq.Add(1)), nil
	}

	ctx, cancel := context.WithTimeout(ctx, counterTimeout)
	defer cancel()

	key := fmt.Sprintf("%s:session:%s", r.data.keyPrefix, date)
	count, err := r.data.rdb.HIncrBy(ctx, key, wheelID, 1).Result()
	if err != nil {
		return "", errors.Newf(500, "REDIS_COUNTER_FAILED", "redis counter: %v", err)
	}
	if count == 1 {
		_ = r.data.rdb.ExpireAt(ctx, key, nextMidnight(now)).Err()
	}
	return fmt.Sprintf("%s-%s-%d", date, wheelID, count), nil
}

// IncrAward 每日奖品计数 <prefix>:award:YYYYMMDD，field=<wheel>:<label>，保留 7 天
func (r *dataRepo) IncrAward(ctx context.Context, wheelID, label string) error {
	if r.data.rdb == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, counterTimeout)
	defer cancel()

	now := time.Now()
	key := awardKey(r.data.keyPrefix, now)
	count, err := r.data.rdb.HIncrBy(ctx, key, wheelID+":"+label, 1).Result()
	if err != nil {
		return errors.Newf(500, "REDIS_COUNTER_FAILED", "award counter: %v", err)
	}
	if count == 1 {
		_ = r.data.rdb.ExpireAt(ctx, key, nextMidnight(now).AddDate(0, 0, 7)).Err()
	}
	return nil
}

// AwardTally 读取某天的奖品计数
func (r *dataRepo) AwardTally(ctx context.Context, day time.Time) (map[string]int64, error) {
	out := make(map[string]int64)
	if r.data.rdb == nil {
		return out, nil
	}
	ctx, cancel := context.WithTimeout(ctx, counterTimeout)
	defer cancel()
	vals, err := r.data.rdb.HGetAll(ctx, awardKey(r.data.keyPrefix, day)).Result()
	if err != nil {
		return nil, errors.Newf(500, "REDIS_COUNTER_FAILED", "award tally: %v", err)
	}
	return r.parseTally(vals), nil
}

// parseTally 非法计数记日志后跳过
func (r *dataRepo) parseTally(vals map[string]string) map[string]int64 {
	out := make(map[string]int64, len(vals))
	for k, v := range vals {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			r.log.Warnf("award tally field %q: bad value %q: %v", k, v, err)
			continue
		}
		out[k] = n
	}
	return out
}

func awardKey(prefix string, day time.Time) string {
	return fmt.Sprintf("%s:award:%s", prefix, day.Format("20060102"))
}

func nextMidnight(now time.Time) time.Time {
	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, now.Location())
}
