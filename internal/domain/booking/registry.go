package booking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ScheduleRegistry owns the per-(doctor, day) token counters. ReserveNextToken
// performs the capacity check and the increment as one indivisible step per
// key: two concurrent callers can never both observe the same pre-increment
// count. A reservation is never undone; cancelled tokens are not reused.
//
// capacity applies on first touch of a key and on every reservation; zero
// means unlimited.
type ScheduleRegistry interface {
	ReserveNextToken(ctx context.Context, doctorID uuid.UUID, date time.Time, capacity int) (token int, ok bool, err error)
	IssuedCount(ctx context.Context, doctorID uuid.UUID, date time.Time) (int, error)
}

type scheduleKey struct {
	doctorID uuid.UUID
	day      string
}

func keyFor(doctorID uuid.UUID, date time.Time) scheduleKey {
	return scheduleKey{doctorID: doctorID, day: Day(date).Format(DateLayout)}
}

type counter struct {
	mu       sync.Mutex
	issued   int
	capacity int
}

// MemoryRegistry is the in-process registry used by the memory store mode and
// tests. Each key gets its own lock so unrelated doctors and dates never
// contend; the table lock is only held long enough to find or create the
// counter.
type MemoryRegistry struct {
	mu       sync.Mutex
	counters map[scheduleKey]*counter
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{counters: make(map[scheduleKey]*counter)}
}

func (r *MemoryRegistry) counterFor(key scheduleKey) *counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.counters[key]
	if !ok {
		c = &counter{}
		r.counters[key] = c
	}
	return c
}

func (r *MemoryRegistry) ReserveNextToken(_ context.Context, doctorID uuid.UUID, date time.Time, capacity int) (int, bool, error) {
	c := r.counterFor(keyFor(doctorID, date))
	c.mu.Lock()
	defer c.mu.Unlock()
	// The caller passes the doctor's current capacity on every reservation;
	// issued tokens are never clawed back when it shrinks.
	c.capacity = capacity
	if c.capacity > 0 && c.issued >= c.capacity {
		return 0, false, nil
	}
	c.issued++
	return c.issued, true, nil
}

func (r *MemoryRegistry) IssuedCount(_ context.Context, doctorID uuid.UUID, date time.Time) (int, error) {
	r.mu.Lock()
	c, ok := r.counters[keyFor(doctorID, date)]
	r.mu.Unlock()
	if !ok {
		return 0, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.issued, nil
}
