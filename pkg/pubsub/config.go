package pubsub

import (
	"fmt"
	"time"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverKafka  = "kafka"
)

// Config holds the configuration for the pub/sub system.
type Config struct {
	Driver     string      `mapstructure:"driver"` // "memory", "redis", "kafka"
	BufferSize int         `mapstructure:"buffer_size"`
	Redis      RedisConfig `mapstructure:"redis"`
	Kafka      KafkaConfig `mapstructure:"kafka"`
}

// RedisConfig holds Redis-specific configuration.
type RedisConfig struct {
	Address      string        `mapstructure:"address"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig holds Kafka-specific configuration.
type KafkaConfig struct {
	Brokers    string `mapstructure:"brokers"`
	GroupID    string `mapstructure:"group_id"`
	Partitions int    `mapstructure:"partitions"`
	// InstanceID makes the consumer group unique per process so every
	// instance sees every room event.
	InstanceID string `mapstructure:"instance_id"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Driver:     DriverMemory,
		BufferSize: 256,
		Redis: RedisConfig{
			Address:      "localhost:6379",
			PoolSize:     10,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:    "localhost:9092",
			GroupID:    "codegram-relay",
			Partitions: 4,
		},
	}
}

// NewPubSub creates a new PubSub instance based on the configuration.
func NewPubSub(cfg Config) (PubSub, error) {
	switch cfg.Driver {
	case DriverKafka:
		return NewKafkaPubSub(cfg.Kafka, cfg.BufferSize)
	case DriverRedis:
		return NewRedisPubSub(cfg.Redis, cfg.BufferSize)
	case DriverMemory, "":
		return NewMemoryPubSub(cfg.BufferSize), nil
	default:
		return nil, fmt.Errorf("unsupported pubsub driver: %s", cfg.Driver)
	}
}

func bufferSize(n int) int {
	if n <= 0 {
		return 256
	}
	return n
}
