package store

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/gocontact/internal/otp/entity"
	"github.com/shandysiswandi/gocontact/internal/pkg/goerror"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
	"go.uber.org/atomic"
)

type gate struct {
	lastIssuedAt  time.Time
	cooldownUntil time.Time
}

// Memory keeps records in process. It suits tests and single-instance demos.
type Memory struct {
	tracer

	mu      sync.Mutex
	seq     *atomic.Int64
	records map[string][]entity.OtpRecord
	gates   map[string]gate
}

func NewMemory(ins instrument.Instrumentation) *Memory {
	return &Memory{
		tracer:  tracer{ins: ins},
		seq:     atomic.NewInt64(0),
		records: make(map[string][]entity.OtpRecord),
		gates:   make(map[string]gate),
	}
}

func (m *Memory) InsertIfNoRecentIssuance(ctx context.Context, in entity.Issuance) (bool, error) {
	_, span := m.startSpan(ctx, "Memory.InsertIfNoRecentIssuance")
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	if g, ok := m.gates[in.Email]; ok && g.lastIssuedAt.After(in.Cutoff) {
		return false, nil
	}

	m.gates[in.Email] = gate{lastIssuedAt: in.IssuedAt, cooldownUntil: in.CooldownUntil()}
	m.records[in.Email] = append(m.records[in.Email], entity.OtpRecord{
		ID:         m.seq.Inc(),
		Email:      in.Email,
		CodeDigest: in.CodeDigest,
		IssuedAt:   in.IssuedAt,
		ExpiresAt:  in.ExpiresAt,
	})

	return true, nil
}

func (m *Memory) FindAndDeleteMatching(ctx context.Context, email, digest string) (rec *entity.OtpRecord, err error) {
	_, span := m.startSpan(ctx, "Memory.FindAndDeleteMatching")
	defer func() { m.endSpan(span, err) }()

	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.records[email]
	pick := -1
	for i := range list {
		if list[i].CodeDigest != digest {
			continue
		}
		if pick < 0 || list[i].ExpiresAt.After(list[pick].ExpiresAt) ||
			(list[i].ExpiresAt.Equal(list[pick].ExpiresAt) && list[i].ID > list[pick].ID) {
			pick = i
		}
	}
	if pick < 0 {
		return nil, goerror.ErrNotFound
	}

	found := list[pick]
	list = append(list[:pick], list[pick+1:]...)
	if len(list) == 0 {
		delete(m.records, email)
	} else {
		m.records[email] = list
	}

	return &found, nil
}

func (m *Memory) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	_, span := m.startSpan(ctx, "Memory.DeleteExpired")
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for email, list := range m.records {
		kept := list[:0]
		for _, r := range list {
			if !r.ExpiresAt.After(before) {
				n++
				continue
			}
			kept = append(kept, r)
		}
		if len(kept) == 0 {
			delete(m.records, email)
		} else {
			m.records[email] = kept
		}
	}

	for email, g := range m.gates {
		if !g.cooldownUntil.After(before) {
			delete(m.gates, email)
		}
	}

	return n, nil
}
