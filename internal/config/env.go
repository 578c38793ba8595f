package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/kazz187/wbsgantt/internal/wbs"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"3200"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
	APIKey   string `envconfig:"API_KEY" required:"true"`
}

type StorageEnv struct {
	Type    string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:".wbs/data"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"wbs/"`
	S3Region string `envconfig:"S3_REGION" default:"ap-northeast-1"`
	// WatchStorage reloads projects edited on disk. Local storage only.
	WatchStorage bool `envconfig:"WATCH_STORAGE" default:"false"`
}

type TimelineEnv struct {
	WindowStart        string `envconfig:"WINDOW_START" default:"2025-01-01"`
	WindowSpanDays     int    `envconfig:"WINDOW_SPAN_DAYS" default:"90"`
	RowHeight          int    `envconfig:"ROW_HEIGHT" default:"48"`
	StrictDependencies bool   `envconfig:"STRICT_DEPENDENCIES" default:"false"`
	SeedSample         bool   `envconfig:"SEED_SAMPLE" default:"false"`

	// OverdueSweepInterval is how often every project is rechecked for tasks
	// whose end date has passed.
	OverdueSweepInterval time.Duration `envconfig:"OVERDUE_SWEEP_INTERVAL" default:"1h"`
}

type VAPIDEnv struct {
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	VAPIDContact    string `envconfig:"VAPID_CONTACT" default:"mailto:admin@example.com"`
}

type Env struct {
	BaseEnv
	StorageEnv
	TimelineEnv
	VAPIDEnv
}

const namespace = "WBS"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	if _, err := env.Window(); err != nil {
		return nil, err
	}
	if env.RowHeight <= 0 {
		return nil, fmt.Errorf("invalid %s_ROW_HEIGHT %d: must be positive", namespace, env.RowHeight)
	}
	if env.OverdueSweepInterval <= 0 {
		return nil, fmt.Errorf("invalid %s_OVERDUE_SWEEP_INTERVAL %s: must be positive", namespace, env.OverdueSweepInterval)
	}
	return &env, nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return level
}

// Window is the default timeline for projects that do not set their own.
func (e *TimelineEnv) Window() (wbs.Window, error) {
	start, err := time.Parse(wbs.DateLayout, e.WindowStart)
	if err != nil {
		return wbs.Window{}, fmt.Errorf("invalid %s_WINDOW_START %q: %w", namespace, e.WindowStart, err)
	}
	if e.WindowSpanDays <= 0 {
		return wbs.Window{}, fmt.Errorf("invalid %s_WINDOW_SPAN_DAYS %d: must be positive", namespace, e.WindowSpanDays)
	}
	return wbs.Window{Start: start, SpanDays: e.WindowSpanDays}, nil
}

func (e *TimelineEnv) EdgeLayout() wbs.EdgeLayout {
	return wbs.EdgeLayout{RowHeight: float64(e.RowHeight)}
}

func StorageEnvFromEnv(env *Env) *StorageEnv {
	return &env.StorageEnv
}

func TimelineEnvFromEnv(env *Env) *TimelineEnv {
	return &env.TimelineEnv
}

func VAPIDEnvFromEnv(env *Env) *VAPIDEnv {
	return &env.VAPIDEnv
}
