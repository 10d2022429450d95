package data

import (
	"context"
	"sync/atomic"
	"time"

	"prizewheel/internal/biz"
	"prizewheel/internal/conf"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"xorm.io/xorm"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(NewData, NewRedis, NewMysql, NewDataRepo, NewS3Bucket)

const defaultKeyPrefix = "prizewheel"

type dataRepo struct {
	data *Data
	log  *log.Helper
	// seq Redis 不可用时的进程内会话计数
	seq atomic.Int64
}

func NewDataRepo(data *Data, logger log.Logger) biz.DataRepo {
	return &dataRepo{
		data: data,
		log:  log.NewHelper(log.With(logger, "module", "data")),
	}
}

// Data 各存储均可为 nil，对应功能降级为内存实现或跳过
type Data struct {
	db        *xorm.Engine
	rdb       redis.UniversalClient
	s3Bucket  *S3Bucket
	keyPrefix string
}

// NewData 组装存储，数据库存在时同步表结构
func NewData(c *conf.Data, logger log.Logger, db *xorm.Engine, rdb redis.UniversalClient, s3 *S3Bucket) (*Data, func(), error) {
	l := log.NewHelper(logger)
	if db != nil {
		if err := db.Sync(new(wheelRow), new(wheelSegmentRow)); err != nil {
			return nil, nil, errors.Newf(500, "DB_SYNC_FAILED", "sync wheel tables: %v", err)
		}
	}
	prefix := defaultKeyPrefix
	if r := c.GetRedis(); r != nil && r.KeyPrefix != "" {
		prefix = r.KeyPrefix
	}
	cleanup := func() {
		l.Info("closing the data resources")
	}
	return &Data{db: db, rdb: rdb, s3Bucket: s3, keyPrefix: prefix}, cleanup, nil
}

// NewRedis 创建并配置 Redis 客户端，未配置时返回 nil
func NewRedis(c *conf.Data, logger log.Logger) (redis.UniversalClient, func(), error) {
	l := log.NewHelper(logger)

	rc := c.GetRedis()
	if rc == nil || len(rc.Addr) == 0 {
		l.Info("redis not configured, using in-process counters")
		return nil, func() {}, nil
	}

	rdb := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        rc.Addr,
		Password:     rc.Password,
		DB:           int(rc.Db),
		ReadTimeout:  rc.ReadTimeout.AsDuration(),
		WriteTimeout: rc.WriteTimeout.AsDuration(),
		// 计数写入量小，池子不必大
		PoolSize:        20,
		MinIdleConns:    2,
		PoolTimeout:     5 * time.Second,
		ConnMaxLifetime: 10 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		MaxRetries:      3,
		MinRetryBackoff: 100 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		l.Errorf("failed pinging redis: %v", err)
		_ = rdb.Close()
		return nil, nil, errors.Newf(500, "REDIS_PING_FAILED", "failed pinging redis: %v", err)
	}

	cleanup := func() {
		l.Infof("closing redis connection")
		if err := rdb.Close(); err != nil {
			l.Error(err)
		}
	}

	l.Info("Redis connection established successfully")
	return rdb, cleanup, nil
}

// NewMysql 创建 MySQL 连接，未配置时返回 nil
func NewMysql(c *conf.Data, logger log.Logger) (*xorm.Engine, func(), error) {
	l := log.NewHelper(logger)
	dc := c.GetDatabase()
	if dc == nil || dc.Source == "" {
		l.Info("database not configured, wheel catalog comes from config only")
		return nil, func() {}, nil
	}
	driver := dc.Driver
	if driver == "" {
		driver = "mysql"
	}
	db, err := xorm.NewEngine(driver, dc.Source)
	if err != nil {
		l.Errorf("failed opening db: %v", err)
		return nil, nil, errors.Newf(500, "DB_OPEN_FAILED", "failed opening db: %v", err)
	}

	db.SetMaxIdleConns(defaultInt(dc.MaxIdleConns, 5))
	db.SetMaxOpenConns(defaultInt(dc.MaxOpenConns, 30))
	db.ShowSQL(dc.ShowSql)
	if db.DB() != nil {
		db.DB().SetConnMaxLifetime(3 * time.Minute)
		db.DB().SetConnMaxIdleTime(1 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		l.Errorf("failed pinging db: %v", err)
		_ = db.Close()
		return nil, nil, errors.Newf(500, "DB_PING_FAILED", "failed pinging db: %v", err)
	}
	cleanup := func() {
		l.Info("closing mysql connection")
		if err := db.Close(); err != nil {
			l.Error(err)
		}
	}
	l.Info("MySQL connection established successfully")
	return db, cleanup, nil
}

// defaultInt 返回配置值或默认值
func defaultInt(value int32, defaultValue int) int {
	if v := int(value); v > 0 {
		return v
	}
	return defaultValue
}
