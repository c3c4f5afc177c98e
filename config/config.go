package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Freya    FreyaConfig    `mapstructure:"freya"`
	Search   SearchConfig   `mapstructure:"search"`
	Stripe   StripeConfig   `mapstructure:"stripe"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Trace    TraceConfig    `mapstructure:"trace"`
}

type ServerConfig struct {
	Addr         string  `mapstructure:"addr"`
	Mode         string  `mapstructure:"mode"` // debug / release
	RateLimitQPS float64 `mapstructure:"rate_limit_qps"`
	RateBurst    int     `mapstructure:"rate_burst"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // postgres / sqlite
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	ExpireHour int    `mapstructure:"expire_hour"`
}

// FreyaConfig 自动助手配置
type FreyaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	AgentID        string `mapstructure:"agent_id"`
	AgentName      string `mapstructure:"agent_name"`
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	ModelText      string `mapstructure:"model_text"`
	ModelVision    string `mapstructure:"model_vision"`
	BrandWhitelist string `mapstructure:"brand_whitelist"` // 逗号分隔
	DailyTokenCap  int64  `mapstructure:"daily_token_cap"`
	MaxPerMinute   int    `mapstructure:"max_per_minute"`
	MaxPerHour     int    `mapstructure:"max_per_hour"`
	MaxPerDay      int    `mapstructure:"max_per_day"`
	DispatchWorkers int   `mapstructure:"dispatch_workers"`
}

type SearchConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	APIKey     string `mapstructure:"api_key"`
	MaxResults int    `mapstructure:"max_results"`
}

type StripeConfig struct {
	SecretKey string `mapstructure:"secret_key"`
	Currency  string `mapstructure:"currency"`
}

type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type SentryConfig struct {
	DSN string `mapstructure:"dsn"`
}

type TraceConfig struct {
	Endpoint string `mapstructure:"endpoint"` // OTLP http endpoint，留空则不上报
}

// Load 读取 config.yaml，环境变量可覆盖（DRIVE_ 前缀）
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("DRIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 没有配置文件时允许纯环境变量/默认值启动
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.rate_limit_qps", 50)
	v.SetDefault("server.rate_burst", 100)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "drive.db")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("jwt.secret", "dev-secret")
	v.SetDefault("jwt.expire_hour", 72)
	v.SetDefault("freya.enabled", true)
	v.SetDefault("freya.agent_name", "Freya")
	v.SetDefault("freya.model_text", "gpt-4o-mini")
	v.SetDefault("freya.model_vision", "gpt-4o")
	v.SetDefault("freya.brand_whitelist", "BYD,Jetour,Changan,Geely,Haval,MG,Exeed,Chery,Hongqi,Zeekr,Ora")
	v.SetDefault("freya.daily_token_cap", 200000)
	v.SetDefault("freya.max_per_minute", 6)
	v.SetDefault("freya.max_per_hour", 60)
	v.SetDefault("freya.max_per_day", 400)
	v.SetDefault("freya.dispatch_workers", 4)
	v.SetDefault("search.max_results", 3)
	v.SetDefault("stripe.currency", "aed")
	v.SetDefault("storage.bucket", "freya-attachments")
}
