package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/codegram/codegram-live/pkg/log"
)

// RedisPubSub implements PubSub using Redis PUBLISH / (P)SUBSCRIBE.
type RedisPubSub struct {
	client        *redis.Client
	subscriptions map[string]*redis.PubSub
	bufferSize    int
	mu            sync.Mutex
}

// NewRedisPubSub creates a new Redis-based PubSub instance.
func NewRedisPubSub(cfg RedisConfig, buffer int) (*RedisPubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisPubSub{
		client:        client,
		subscriptions: make(map[string]*redis.PubSub),
		bufferSize:    bufferSize(buffer),
	}, nil
}

// Publish publishes an event to the specified channel.
func (r *RedisPubSub) Publish(ctx context.Context, channel string, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return r.client.Publish(ctx, channel, data).Err()
}

// Subscribe subscribes to a specific channel.
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string) (<-chan *Event, error) {
	return r.subscribe(ctx, channel, r.client.Subscribe(ctx, channel))
}

// SubscribePattern subscribes to channels matching a glob pattern.
func (r *RedisPubSub) SubscribePattern(ctx context.Context, pattern string) (<-chan *Event, error) {
	return r.subscribe(ctx, pattern, r.client.PSubscribe(ctx, pattern))
}

func (r *RedisPubSub) subscribe(ctx context.Context, key string, ps *redis.PubSub) (<-chan *Event, error) {
	// Wait for the subscription to be confirmed so nothing published
	// after this call returns is missed.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", key, err)
	}

	r.mu.Lock()
	if old, ok := r.subscriptions[key]; ok {
		old.Close()
	}
	r.subscriptions[key] = ps
	r.mu.Unlock()

	eventCh := make(chan *Event, r.bufferSize)
	go r.processMessages(ctx, ps, eventCh)
	return eventCh, nil
}

// Unsubscribe unsubscribes from a channel or pattern.
func (r *RedisPubSub) Unsubscribe(ctx context.Context, channel string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ps, ok := r.subscriptions[channel]; ok {
		delete(r.subscriptions, channel)
		return ps.Close()
	}
	return nil
}

// Close closes all subscriptions and the Redis client.
func (r *RedisPubSub) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ps := range r.subscriptions {
		ps.Close()
	}
	r.subscriptions = make(map[string]*redis.PubSub)

	return r.client.Close()
}

// processMessages decodes Redis messages into events until the
// subscription closes or ctx is done. A full event channel blocks the reader.
func (r *RedisPubSub) processMessages(ctx context.Context, ps *redis.PubSub, eventCh chan<- *Event) {
	defer close(eventCh)
	l := log.L()

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				l.Warn().Err(err).Str(log.FieldChannel, msg.Channel).Msg("redis pubsub: invalid event")
				continue
			}

			select {
			case eventCh <- &event:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Client returns the underlying Redis client.
func (r *RedisPubSub) Client() *redis.Client {
	return r.client
}
