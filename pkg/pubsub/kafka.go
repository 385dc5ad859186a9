package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/codegram/codegram-live/pkg/log"
)

// kafkaSubscription tracks a single consumer subscription.
type kafkaSubscription struct {
	consumer *kafka.Consumer
	cancel   context.CancelFunc
	done     chan struct{}
}

// KafkaPubSub implements PubSub on Kafka. Each room kind maps to a topic and
// the room id becomes the message key, so events for one room stay ordered
// within their partition.
type KafkaPubSub struct {
	producer      *kafka.Producer
	subscriptions map[string]*kafkaSubscription
	config        KafkaConfig
	bufferSize    int
	mu            sync.Mutex
	doneCh        chan struct{}
}

// NewKafkaPubSub creates a new Kafka-based PubSub instance.
func NewKafkaPubSub(cfg KafkaConfig, buffer int) (*KafkaPubSub, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": cfg.Brokers,
		"acks":              "1",
		"linger.ms":         5,
		"compression.type":  "snappy",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	kps := &KafkaPubSub{
		producer:      p,
		subscriptions: make(map[string]*kafkaSubscription),
		config:        cfg,
		bufferSize:    bufferSize(buffer),
		doneCh:        make(chan struct{}),
	}

	go kps.deliveryReportHandler()

	if err := kps.ensureTopics(); err != nil {
		l := log.L()
		l.Warn().Err(err).Msg("kafka pubsub: failed to ensure topics (may already exist)")
	}

	return kps, nil
}

// ensureTopics creates one topic per room kind if missing.
func (k *KafkaPubSub) ensureTopics() error {
	admin, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": k.config.Brokers,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer admin.Close()

	partitions := k.config.Partitions
	if partitions <= 0 {
		partitions = 4
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	specs := make([]kafka.TopicSpecification, 0, len(RoomKinds))
	for _, kind := range RoomKinds {
		specs = append(specs, kafka.TopicSpecification{
			Topic:             kindTopic(kind),
			NumPartitions:     partitions,
			ReplicationFactor: 1,
		})
	}

	results, err := admin.CreateTopics(ctx, specs)
	if err != nil {
		return fmt.Errorf("failed to create topics: %w", err)
	}

	l := log.L()
	for _, r := range results {
		if r.Error.Code() != kafka.ErrNoError && r.Error.Code() != kafka.ErrTopicAlreadyExists {
			l.Warn().Str("topic", r.Topic).Str("error", r.Error.String()).Msg("kafka pubsub: failed to create topic")
		}
	}
	return nil
}

func (k *KafkaPubSub) deliveryReportHandler() {
	l := log.L()
	for e := range k.producer.Events() {
		if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			l.Error().Err(m.TopicPartition.Error).Msg("kafka pubsub: delivery failed")
		}
	}
	close(k.doneCh)
}

// Publish produces the event to the room kind topic keyed by room id.
func (k *KafkaPubSub) Publish(ctx context.Context, channel string, event *Event) error {
	topic, key, err := channelToTopicAndKey(channel)
	if err != nil {
		return fmt.Errorf("failed to parse channel: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          data,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}
	return nil
}

// Subscribe consumes the channel's topic, keeping only messages for its room.
func (k *KafkaPubSub) Subscribe(ctx context.Context, channel string) (<-chan *Event, error) {
	topic, key, err := channelToTopicAndKey(channel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse channel: %w", err)
	}
	return k.subscribeToTopics(ctx, channel, []string{topic}, key)
}

// SubscribePattern consumes every topic the pattern covers.
func (k *KafkaPubSub) SubscribePattern(ctx context.Context, pattern string) (<-chan *Event, error) {
	topics, err := patternToTopics(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pattern: %w", err)
	}
	return k.subscribeToTopics(ctx, pattern, topics, "")
}

func (k *KafkaPubSub) groupID(subKey string) string {
	groupID := k.config.GroupID
	if groupID == "" {
		groupID = "codegram-relay"
	}
	if k.config.InstanceID != "" {
		groupID = groupID + "-" + k.config.InstanceID
	}
	return fmt.Sprintf("%s-%s", groupID, sanitizeGroupID(subKey))
}

func (k *KafkaPubSub) subscribeToTopics(ctx context.Context, subKey string, topics []string, filterKey string) (<-chan *Event, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if existing, ok := k.subscriptions[subKey]; ok {
		existing.stop()
		delete(k.subscriptions, subKey)
	}

	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":       k.config.Brokers,
		"group.id":                k.groupID(subKey),
		"auto.offset.reset":       "latest",
		"enable.auto.commit":      true,
		"auto.commit.interval.ms": 5000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	if err := c.SubscribeTopics(topics, nil); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to subscribe to topics %v: %w", topics, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	eventCh := make(chan *Event, k.bufferSize)
	sub := &kafkaSubscription{consumer: c, cancel: cancel, done: make(chan struct{})}
	k.subscriptions[subKey] = sub

	go k.consumeMessages(subCtx, sub, eventCh, filterKey)

	return eventCh, nil
}

// consumeMessages polls Kafka and forwards events to the channel. The
// consumer is closed by this goroutine once the context ends.
func (k *KafkaPubSub) consumeMessages(ctx context.Context, sub *kafkaSubscription, eventCh chan<- *Event, filterKey string) {
	defer close(sub.done)
	defer close(eventCh)
	defer sub.consumer.Close()
	l := log.L()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		ev := sub.consumer.Poll(500)
		if ev == nil {
			continue
		}

		switch e := ev.(type) {
		case *kafka.Message:
			if filterKey != "" && string(e.Key) != filterKey {
				continue
			}

			var event Event
			if err := json.Unmarshal(e.Value, &event); err != nil {
				l.Warn().Err(err).Msg("kafka pubsub: invalid event")
				continue
			}

			select {
			case eventCh <- &event:
			case <-ctx.Done():
				return
			}

		case kafka.Error:
			l.Error().Err(e).Int("code", int(e.Code())).Bool("fatal", e.IsFatal()).Msg("kafka pubsub error")
			if e.IsFatal() {
				return
			}
		}
	}
}

func (s *kafkaSubscription) stop() {
	s.cancel()
	<-s.done
}

// Unsubscribe stops the consumer registered under channel.
func (k *KafkaPubSub) Unsubscribe(_ context.Context, channel string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if sub, ok := k.subscriptions[channel]; ok {
		sub.stop()
		delete(k.subscriptions, channel)
	}
	return nil
}

// Close stops all consumers and flushes the producer.
func (k *KafkaPubSub) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	for key, sub := range k.subscriptions {
		sub.stop()
		delete(k.subscriptions, key)
	}

	k.producer.Flush(5000)
	k.producer.Close()
	<-k.doneCh
	return nil
}

var groupIDRegexp = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeGroupID replaces characters not suitable for Kafka group IDs.
func sanitizeGroupID(s string) string {
	return groupIDRegexp.ReplaceAllString(s, "-")
}
