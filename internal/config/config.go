package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
	Migrate         bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	Group    string
	Consumer string
}

type StorageConfig struct {
	Endpoint    string
	AccessKey   string
	SecretKey   string
	BucketMedia string
	UseSSL      bool
	Region      string
}

type SecurityConfig struct {
	JWTSecret    string
	BcryptCost   int
	CookieName   string
	CookieMaxAge time.Duration
	CookieSecure bool
}

// StoreConfig bounds every call into the credential store.
type StoreConfig struct {
	Timeout time.Duration
}

type FeedConfig struct {
	Limit int
}

type UploadConfig struct {
	MaxBytes int64
}

type FeaturesConfig struct {
	NotifySelfLike bool
}

type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

type ArchiveConfig struct {
	Retention     time.Duration
	ClaimInterval time.Duration
	PruneSchedule string
}

type AppConfig struct {
	Environment      string
	BaseURL          string
	LoginPath        string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	Store            StoreConfig
	Feed             FeedConfig
	Upload           UploadConfig
	Features         FeaturesConfig
	RateLimit        RateLimitConfig
	Archive          ArchiveConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("ALERTME")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	if c.Security.JWTSecret == "" {
		return errors.New("security.jwtsecret is required")
	}
	if c.Feed.Limit <= 0 {
		return fmt.Errorf("feed.limit must be positive, got %d", c.Feed.Limit)
	}
	if c.Store.Timeout <= 0 {
		return fmt.Errorf("store.timeout must be positive, got %s", c.Store.Timeout)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("baseurl", "http://localhost:3000")
	v.SetDefault("loginpath", "/login")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 3000)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")
	v.SetDefault("postgres.migrate", true)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "media:events")
	v.SetDefault("redis.group", "media-archivers")
	v.SetDefault("redis.consumer", "worker-1")

	v.SetDefault("storage.bucketmedia", "alertme-media")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("security.bcryptcost", 10)
	v.SetDefault("security.cookiename", "accessToken")
	v.SetDefault("security.cookiemaxage", "24h")
	v.SetDefault("security.cookiesecure", true)

	v.SetDefault("store.timeout", "5s")
	v.SetDefault("feed.limit", 5)
	v.SetDefault("upload.maxbytes", 32<<20)
	v.SetDefault("features.notifyselflike", true)

	v.SetDefault("ratelimit.limit", 20)
	v.SetDefault("ratelimit.window", "1m")

	v.SetDefault("archive.retention", "720h") // 30 days
	v.SetDefault("archive.claiminterval", "10s")
	v.SetDefault("archive.pruneschedule", "0 0 3 * * *")
}
