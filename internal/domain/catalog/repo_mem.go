package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// In-memory repositories back the memory store mode and tests.

type hospitalRepoMem struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Hospital
}

func NewHospitalRepoMem() HospitalRepository {
	return &hospitalRepoMem{items: make(map[uuid.UUID]*Hospital)}
}

func (r *hospitalRepoMem) Create(_ context.Context, h *Hospital) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	now := time.Now()
	h.CreatedAt = now
	h.UpdatedAt = now
	cp := *h
	r.items[h.ID] = &cp
	return nil
}

func (r *hospitalRepoMem) GetByID(_ context.Context, id uuid.UUID) (*Hospital, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.items[id]
	if !ok {
		return nil, ErrHospitalNotFound
	}
	cp := *h
	return &cp, nil
}

func (r *hospitalRepoMem) List(_ context.Context, district string, limit, offset int) ([]*Hospital, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []*Hospital
	for _, h := range r.items {
		if district != "" && h.District != district {
			continue
		}
		cp := *h
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	return page(all, limit, offset), total, nil
}

type doctorRepoMem struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Doctor
}

func NewDoctorRepoMem() DoctorRepository {
	return &doctorRepoMem{items: make(map[uuid.UUID]*Doctor)}
}

func (r *doctorRepoMem) Create(_ context.Context, d *Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	cp := *d
	r.items[d.ID] = &cp
	return nil
}

func (r *doctorRepoMem) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.items[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *doctorRepoMem) ListByHospital(_ context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Doctor, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []*Doctor
	for _, d := range r.items {
		if d.HospitalID != hospitalID {
			continue
		}
		cp := *d
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	return page(all, limit, offset), total, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
