package messaging

import (
	"context"
	"io"
	"maps"
	"strconv"
	"sync"
	"time"

	"go.uber.org/atomic"
)

const memoryBuffer = 64

// Memory is an in-process broker. Each consumer group on a topic receives every
// message once; consumers in the same group share the stream. Messages published
// while a topic has no consumer are dropped, as with core NATS.
type Memory struct {
	mu     sync.RWMutex
	groups map[string]map[string]*memoryGroup // topic -> group
	closed bool
	seq    atomic.Int64
}

type memoryGroup struct {
	stream  chan *message
	members int
}

func NewMemory() *Memory {
	return &Memory{groups: map[string]map[string]*memoryGroup{}}
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return PublishResult{}, io.ErrClosedPipe
	}
	streams := make([]chan *message, 0, len(m.groups[destination]))
	for _, g := range m.groups[destination] {
		streams = append(streams, g.stream)
	}
	m.mu.RUnlock()

	id := strconv.FormatInt(m.seq.Inc(), 10)
	now := time.Now()

	deliver := func(ctx context.Context) {
		for _, ch := range streams {
			select {
			case ch <- &message{
				body:      msg.Body,
				key:       msg.Key,
				headers:   maps.Clone(msg.Headers),
				id:        id,
				topic:     destination,
				timestamp: now,
			}:
			case <-ctx.Done():
				return
			}
		}
	}

	if msg.Delay > 0 {
		time.AfterFunc(msg.Delay, func() { deliver(context.WithoutCancel(ctx)) })
	} else {
		deliver(ctx)
	}

	return PublishResult{MessageID: id, Topic: destination, Timestamp: now}, ctx.Err()
}

// Consume joins the consumer group from the options (one of group, queue group
// or channel) and blocks until ctx is done. Without a group name the consumer
// gets its own stream.
func (m *Memory) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if handler == nil {
		return ErrHandlerRequired
	}

	co := newConsumeOptions(opts...)
	group := co.consumerGroup()
	if group == "" {
		group = "anonymous-" + strconv.FormatInt(m.seq.Inc(), 10)
	}

	stream, err := m.join(source, group)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case msg := <-stream:
					_ = dispatch(ctx, "memory", handler, msg, co.autoAck)
				}
			}
		})
	}
	wg.Wait()

	m.leave(source, group)
	return ctx.Err()
}

func (m *Memory) join(topic, group string) (chan *message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, io.ErrClosedPipe
	}
	if m.groups[topic] == nil {
		m.groups[topic] = map[string]*memoryGroup{}
	}
	g, ok := m.groups[topic][group]
	if !ok {
		g = &memoryGroup{stream: make(chan *message, memoryBuffer)}
		m.groups[topic][group] = g
	}
	g.members++
	return g.stream, nil
}

// leave drops the group once its last consumer is gone; undelivered messages go with it.
func (m *Memory) leave(topic, group string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.groups[topic][group]
	if !ok {
		return
	}
	g.members--
	if g.members <= 0 {
		delete(m.groups[topic], group)
	}
}
