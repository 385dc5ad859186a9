package pubsub

import (
	"context"
	"path"
	"sync"

	"github.com/codegram/codegram-live/pkg/log"
)

type memorySub struct {
	key     string
	pattern bool
	ch      chan *Event
	quit    chan struct{}
	once    sync.Once
	stopped sync.Once
}

// stop releases publishers blocked on this subscriber. It must run before
// the write lock is taken to close ch.
func (s *memorySub) stop() {
	s.stopped.Do(func() { close(s.quit) })
}

func (s *memorySub) close() {
	s.stop()
	s.once.Do(func() { close(s.ch) })
}

func (s *memorySub) matches(channel string) bool {
	if !s.pattern {
		return s.key == channel
	}
	ok, err := path.Match(s.key, channel)
	return err == nil && ok
}

// MemoryPubSub delivers events inside the current process. It is the
// single-instance driver: publishers and subscribers must share the value.
type MemoryPubSub struct {
	subs       map[*memorySub]struct{}
	bufferSize int
	closed     bool
	done       chan struct{}
	doneOnce   sync.Once
	mu         sync.RWMutex
}

// NewMemoryPubSub creates an in-process PubSub.
func NewMemoryPubSub(buffer int) *MemoryPubSub {
	return &MemoryPubSub{
		subs:       make(map[*memorySub]struct{}),
		bufferSize: bufferSize(buffer),
		done:       make(chan struct{}),
	}
}

// Publish delivers the event to every matching subscriber. A full subscriber
// blocks the publisher until it drains, ctx ends or the bus closes.
func (m *MemoryPubSub) Publish(ctx context.Context, channel string, event *Event) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}
	for sub := range m.subs {
		if !sub.matches(channel) {
			continue
		}
		select {
		case sub.ch <- event:
		case <-sub.quit:
		case <-m.done:
			return ErrClosed
		case <-ctx.Done():
			l := log.Ctx(ctx)
			l.Warn().Err(ctx.Err()).Str(log.FieldChannel, channel).Msg("memory pubsub: publish abandoned")
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe subscribes to one channel.
func (m *MemoryPubSub) Subscribe(ctx context.Context, channel string) (<-chan *Event, error) {
	return m.add(ctx, channel, false)
}

// SubscribePattern subscribes to channels matching a glob pattern.
func (m *MemoryPubSub) SubscribePattern(ctx context.Context, pattern string) (<-chan *Event, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, err
	}
	return m.add(ctx, pattern, true)
}

func (m *MemoryPubSub) add(ctx context.Context, key string, pattern bool) (<-chan *Event, error) {
	sub := &memorySub{key: key, pattern: pattern, ch: make(chan *Event, m.bufferSize), quit: make(chan struct{})}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	m.subs[sub] = struct{}{}
	m.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			m.remove(sub)
		case <-m.done:
		}
	}()
	return sub.ch, nil
}

func (m *MemoryPubSub) remove(sub *memorySub) {
	sub.stop()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[sub]; ok {
		delete(m.subs, sub)
		sub.close()
	}
}

// Unsubscribe drops every subscription registered under channel.
func (m *MemoryPubSub) Unsubscribe(_ context.Context, channel string) error {
	var matched []*memorySub
	m.mu.RLock()
	for sub := range m.subs {
		if sub.key == channel {
			matched = append(matched, sub)
		}
	}
	m.mu.RUnlock()

	for _, sub := range matched {
		m.remove(sub)
	}
	return nil
}

// Close closes every subscription. Publish fails afterwards.
func (m *MemoryPubSub) Close() error {
	m.doneOnce.Do(func() { close(m.done) })
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	for sub := range m.subs {
		sub.close()
	}
	m.subs = make(map[*memorySub]struct{})
	m.closed = true
	return nil
}
