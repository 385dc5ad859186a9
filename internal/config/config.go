package config

import (
	"time"

	pkgconfig "github.com/codegram/codegram-live/pkg/config"
	"github.com/codegram/codegram-live/pkg/database"
	"github.com/codegram/codegram-live/pkg/log"
	"github.com/codegram/codegram-live/pkg/pubsub"
)

type Config struct {
	Server     ServerConfig
	Database   database.Config
	Redis      RedisConfig
	PubSub     pubsub.Config `mapstructure:"pubsub"`
	WebSocket  WebSocketConfig
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	Auth       AuthConfig
	Reconciler ReconcilerConfig
	Feed       FeedConfig
	Log        log.Config
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// RedisConfig configures the counter cache. An empty address disables it.
type RedisConfig struct {
	Address    string
	Password   string
	DB         int
	CounterTTL time.Duration `mapstructure:"counter_ttl"`
}

type WebSocketConfig struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	SendBuffer     int           `mapstructure:"send_buffer"`
}

// RateLimitConfig bounds room events per connection per window.
type RateLimitConfig struct {
	Window           time.Duration
	JoinUserRoom     int `mapstructure:"join_user_room"`
	JoinContentRoom  int `mapstructure:"join_content_room"`
	LeaveContentRoom int `mapstructure:"leave_content_room"`
}

type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	Issuer         string        `mapstructure:"issuer"`
	AccessDuration time.Duration `mapstructure:"access_duration"`
}

type ReconcilerConfig struct {
	Enabled  bool
	Interval time.Duration
	TopN     int `mapstructure:"top_n"`
}

// FeedConfig bounds fan-out concurrency and duration.
type FeedConfig struct {
	FanoutConcurrency int           `mapstructure:"fanout_concurrency"`
	FanoutTimeout     time.Duration `mapstructure:"fanout_timeout"`
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "codegram")
	v.SetDefault("database.password", "codegram")
	v.SetDefault("database.dbname", "codegram")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.file_path", "codegram.db")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 30)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.counter_ttl", "10m")
	v.SetDefault("pubsub.driver", pubsub.DriverMemory)
	v.SetDefault("pubsub.buffer_size", 256)
	v.SetDefault("pubsub.redis.address", "localhost:6379")
	v.SetDefault("pubsub.redis.pool_size", 10)
	v.SetDefault("pubsub.kafka.brokers", "localhost:9092")
	v.SetDefault("pubsub.kafka.group_id", "codegram-relay")
	v.SetDefault("pubsub.kafka.partitions", 4)
	v.SetDefault("websocket.ping_interval", "25s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("websocket.send_buffer", 256)
	v.SetDefault("rate_limit.window", "60s")
	v.SetDefault("rate_limit.join_user_room", 5)
	v.SetDefault("rate_limit.join_content_room", 10)
	v.SetDefault("rate_limit.leave_content_room", 10)
	v.SetDefault("auth.issuer", "codegram")
	v.SetDefault("auth.access_duration", "24h")
	v.SetDefault("reconciler.enabled", true)
	v.SetDefault("reconciler.interval", "60s")
	v.SetDefault("reconciler.top_n", 100)
	v.SetDefault("feed.fanout_concurrency", 32)
	v.SetDefault("feed.fanout_timeout", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.service_name", "codegram-live")

	// Override from environment
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.allowed_origins", "FRONTEND_URL")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.file_path", "DB_FILE_PATH")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("pubsub.driver", "PUBSUB_DRIVER")
	v.BindEnv("pubsub.redis.address", "REDIS_ADDRESS")
	v.BindEnv("pubsub.redis.password", "REDIS_PASSWORD")
	v.BindEnv("pubsub.kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("pubsub.kafka.instance_id", "INSTANCE_ID")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("reconciler.enabled", "IS_PRIMARY_INSTANCE")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.pretty", "LOG_PRETTY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.Server.ShutdownTimeout = pkgconfig.Duration(v, "server.shutdown_timeout", 10*time.Second)
	cfg.WebSocket.PingInterval = pkgconfig.Duration(v, "websocket.ping_interval", 25*time.Second)
	cfg.WebSocket.PongWait = pkgconfig.Duration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = pkgconfig.Duration(v, "websocket.write_wait", 10*time.Second)
	cfg.RateLimit.Window = pkgconfig.Duration(v, "rate_limit.window", time.Minute)
	cfg.Auth.AccessDuration = pkgconfig.Duration(v, "auth.access_duration", 24*time.Hour)
	cfg.Reconciler.Interval = pkgconfig.Duration(v, "reconciler.interval", 60*time.Second)

	return &cfg, nil
}
