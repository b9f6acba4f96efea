package mail

import (
	"context"
	"sync"
)

// Memory is a Mail that keeps sent messages in memory.
type Memory struct {
	mu          sync.Mutex
	defaultFrom string
	sent        []Message
	err         error
}

func NewMemory(defaultFrom string) *Memory {
	return &Memory{defaultFrom: defaultFrom}
}

func (m *Memory) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	msg, err := normalize(msg, m.defaultFrom)
	if err != nil {
		return err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// SetErr makes every following Send fail with err; nil restores delivery.
func (m *Memory) SetErr(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Sent returns a copy of every message accepted so far.
func (m *Memory) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

func (m *Memory) Close() error {
	return nil
}
