// Package conf 服务配置，由 kratos config 从 YAML 扫描得到。
// 可选段缺省时为 nil，所有 Get 方法对 nil 接收者安全。
package conf

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

type Bootstrap struct {
	Server *Server `json:"server"`
	Data   *Data   `json:"data"`
	Wheel  *Wheel  `json:"wheel"`
	Notify *Notify `json:"notify"`
	Log    *Log    `json:"log"`
}

type Server struct {
	Http *Server_HTTP `json:"http"`
	Grpc *Server_GRPC `json:"grpc"`
}

type Server_HTTP struct {
	Network string    `json:"network"`
	Addr    string    `json:"addr"`
	Timeout *Duration `json:"timeout"`
}

type Server_GRPC struct {
	Network string    `json:"network"`
	Addr    string    `json:"addr"`
	Timeout *Duration `json:"timeout"`
}

type Data struct {
	Database *Data_Database `json:"database"`
	Redis    *Data_Redis    `json:"redis"`
	S3       *Data_S3       `json:"s3"`
}

type Data_Database struct {
	Driver       string `json:"driver"`
	Source       string `json:"source"`
	MaxIdleConns int32  `json:"max_idle_conns"`
	MaxOpenConns int32  `json:"max_open_conns"`
	ShowSql      bool   `json:"show_sql"`
}

type Data_Redis struct {
	Addr         []string  `json:"addr"`
	Password     string    `json:"password"`
	Db           int32     `json:"db"`
	ReadTimeout  *Duration `json:"read_timeout"`
	WriteTimeout *Duration `json:"write_timeout"`
	KeyPrefix    string    `json:"key_prefix"`
}

type Data_S3 struct {
	Region          string `json:"region"`
	Bucket          string `json:"bucket"`
	Endpoint        string `json:"endpoint"`
	AccessKeyId     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	Prefix          string `json:"prefix"`
	UsePathStyle    bool   `json:"use_path_style"`
}

// Wheel 轮盘目录与会话参数
type Wheel struct {
	DefaultWheel        string              `json:"default_wheel"`
	RevealDelay         *Duration           `json:"reveal_delay"`
	SessionTtl          *Duration           `json:"session_ttl"`
	CleanupInterval     *Duration           `json:"cleanup_interval"`
	FanoutWorkers       int32               `json:"fanout_workers"`
	SimulateConcurrency int32               `json:"simulate_concurrency"`
	MaxSimulateSpins    int64               `json:"max_simulate_spins"`
	Wheels              []*Wheel_Definition `json:"wheels"`
}

// Wheel_Definition 单个轮盘定义，Segments 按顺时针顺序
type Wheel_Definition struct {
	Id            string    `json:"id"`
	Name          string    `json:"name"`
	Segments      []string  `json:"segments"`
	MajorCadence  int32     `json:"major_cadence"`
	MinorCadence  int32     `json:"minor_cadence"`
	MajorLabels   []string  `json:"major_labels"`
	MinorLabel    string    `json:"minor_label"`
	FallbackLabel string    `json:"fallback_label"`
	PointerAngle  float64   `json:"pointer_angle"`
	TieBreak      string    `json:"tie_break"`
	MinFullTurns  int32     `json:"min_full_turns"`
	TurnJitter    int32     `json:"turn_jitter"`
	RevealDelay   *Duration `json:"reveal_delay"`
	Seed          uint64    `json:"seed"`
}

type Notify struct {
	Enabled       bool   `json:"enabled"`
	WebhookUrl    string `json:"webhook_url"`
	SigningSecret string `json:"signing_secret"`
	Prefix        string `json:"prefix"`
}

type Log struct {
	Mode  int32  `json:"mode"`
	Level string `json:"level"`
	App   string `json:"app"`
	Dir   string `json:"dir"`
	File  bool   `json:"file"`
}

func (x *Notify) GetEnabled() bool {
	if x != nil {
		return x.Enabled
	}
	return false
}

func (x *Notify) GetWebhookUrl() string {
	if x != nil {
		return x.WebhookUrl
	}
	return ""
}

func (x *Notify) GetSigningSecret() string {
	if x != nil {
		return x.SigningSecret
	}
	return ""
}

func (x *Notify) GetPrefix() string {
	if x != nil {
		return x.Prefix
	}
	return ""
}

func (x *Data) GetDatabase() *Data_Database {
	if x != nil {
		return x.Database
	}
	return nil
}

func (x *Data) GetRedis() *Data_Redis {
	if x != nil {
		return x.Redis
	}
	return nil
}

func (x *Data) GetS3() *Data_S3 {
	if x != nil {
		return x.S3
	}
	return nil
}

func (x *Server) GetHttp() *Server_HTTP {
	if x != nil {
		return x.Http
	}
	return nil
}

func (x *Server) GetGrpc() *Server_GRPC {
	if x != nil {
		return x.Grpc
	}
	return nil
}

func (x *Wheel) GetWheels() []*Wheel_Definition {
	if x != nil {
		return x.Wheels
	}
	return nil
}

func (x *Wheel) GetDefaultWheel() string {
	if x != nil {
		return x.DefaultWheel
	}
	return ""
}

// Duration 支持 "5s" 形式的字符串，也接受纳秒整数
type Duration struct {
	time.Duration
}

// NewDuration 构造
func NewDuration(d time.Duration) *Duration { return &Duration{Duration: d} }

// AsDuration nil 返回 0
func (d *Duration) AsDuration() time.Duration {
	if d == nil {
		return 0
	}
	return d.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		d.Duration = v
		return nil
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid duration %s: %w", b, err)
	}
	d.Duration = time.Duration(n)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.Duration.String())), nil
}
