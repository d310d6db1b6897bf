package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Admin     AdminConfig     `mapstructure:"admin"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Graph     GraphConfig     `mapstructure:"graph"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type AdminConfig struct {
	// bcrypt hash of the admin credential used for /api/admin/login
	PasswordHash string `mapstructure:"password_hash"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// GraphConfig 概念迁移图配置。Neo4j 不可用时回退到 fallback_edges。
type GraphConfig struct {
	Enabled       bool           `mapstructure:"enabled"`
	URI           string         `mapstructure:"uri"`
	Username      string         `mapstructure:"username"`
	Password      string         `mapstructure:"password"`
	Database      string         `mapstructure:"database"`
	FallbackEdges []TransferEdge `mapstructure:"fallback_edges"`
}

type TransferEdge struct {
	From   string  `mapstructure:"from"`
	To     string  `mapstructure:"to"`
	Weight float64 `mapstructure:"weight"`
}

// EngineConfig 知识追踪引擎的可调参数，均为经验默认值，
// 支持热更新（configwatcher）。
type EngineConfig struct {
	DefaultPrior       float64 `mapstructure:"default_prior"`
	RecoveryFloor      float64 `mapstructure:"recovery_floor"`
	RecoveryStreak     int     `mapstructure:"recovery_streak"`
	TransferFactor     float64 `mapstructure:"transfer_factor"`
	StressSlipGain     float64 `mapstructure:"stress_slip_gain"`
	OverloadThreshold  float64 `mapstructure:"overload_threshold"`
	DisparityThreshold float64 `mapstructure:"disparity_threshold"`
	MinGroupSamples    int64   `mapstructure:"min_group_samples"`
	StoreTimeoutMs     int     `mapstructure:"store_timeout_ms"`
	DefaultCapMs       int     `mapstructure:"default_cap_ms"`
	ParamCacheTTLSec   int     `mapstructure:"param_cache_ttl_sec"`

	// Parameter Store 超时后的兜底概念参数
	FallbackLearnRate      float64 `mapstructure:"fallback_learn_rate"`
	FallbackSlipRate       float64 `mapstructure:"fallback_slip_rate"`
	FallbackGuessRate      float64 `mapstructure:"fallback_guess_rate"`
	FallbackForgettingRate float64 `mapstructure:"fallback_forgetting_rate"`
}

type SchedulerConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	RefitAt          string `mapstructure:"refit_at"`
	RefitWindowDays  int    `mapstructure:"refit_window_days"`
	FairnessScanMins int    `mapstructure:"fairness_scan_mins"`
	ExportWeekday    string `mapstructure:"export_weekday"`
	ExportAt         string `mapstructure:"export_at"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("EXAMPREP")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT / Admin
	viper.BindEnv("jwt.secret", "JWT_SECRET")
	viper.BindEnv("admin.password_hash", "ADMIN_PASSWORD_HASH")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Storage
	viper.BindEnv("storage.type", "STORAGE_TYPE")
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Graph
	viper.BindEnv("graph.enabled", "GRAPH_ENABLED")
	viper.BindEnv("graph.uri", "NEO4J_URI")
	viper.BindEnv("graph.username", "NEO4J_USERNAME")
	viper.BindEnv("graph.password", "NEO4J_PASSWORD")
	viper.BindEnv("graph.database", "NEO4J_DATABASE")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour
	applyEngineDefaults(&cfg.Engine)

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	return &cfg, nil
}

// applyEngineDefaults 未配置项落到经验默认值，保证引擎任何时候都有一致的参数集。
func applyEngineDefaults(e *EngineConfig) {
	if e.DefaultPrior <= 0 || e.DefaultPrior >= 1 {
		e.DefaultPrior = 0.25
	}
	if e.RecoveryFloor <= 0 || e.RecoveryFloor >= 1 {
		e.RecoveryFloor = 0.3
	}
	if e.RecoveryStreak <= 0 {
		e.RecoveryStreak = 3
	}
	if e.TransferFactor <= 0 || e.TransferFactor >= 1 {
		e.TransferFactor = 0.5
	}
	if e.StressSlipGain < 0 {
		e.StressSlipGain = 0.5
	}
	if e.OverloadThreshold <= 0 || e.OverloadThreshold > 1 {
		e.OverloadThreshold = 0.8
	}
	if e.DisparityThreshold <= 0 || e.DisparityThreshold > 1 {
		e.DisparityThreshold = 0.08
	}
	if e.MinGroupSamples <= 0 {
		e.MinGroupSamples = 30
	}
	if e.StoreTimeoutMs <= 0 {
		e.StoreTimeoutMs = 200
	}
	if e.DefaultCapMs <= 0 {
		e.DefaultCapMs = 120000
	}
	if e.ParamCacheTTLSec <= 0 {
		e.ParamCacheTTLSec = 300
	}
	if e.FallbackLearnRate <= 0 || e.FallbackLearnRate >= 1 {
		e.FallbackLearnRate = 0.2
	}
	if e.FallbackSlipRate <= 0 || e.FallbackSlipRate >= 1 {
		e.FallbackSlipRate = 0.1
	}
	if e.FallbackGuessRate <= 0 || e.FallbackGuessRate >= 1 {
		e.FallbackGuessRate = 0.2
	}
	if e.FallbackForgettingRate < 0 || e.FallbackForgettingRate >= 1 {
		e.FallbackForgettingRate = 0.02
	}
}
