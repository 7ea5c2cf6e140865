package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/cohorthub/internal/domain/cohort"
)

type CohortsRepo struct {
	mu    sync.RWMutex
	items map[string]cohort.Cohort
}

func NewCohortsRepo() *CohortsRepo {
	return &CohortsRepo{items: make(map[string]cohort.Cohort)}
}

func (r *CohortsRepo) GetByID(_ context.Context, id string) (cohort.Cohort, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[id]
	if !ok {
		return cohort.Cohort{}, cohort.ErrNotFound
	}

	return c, nil
}

func (r *CohortsRepo) GetByIDs(_ context.Context, ids []string) (map[string]cohort.Cohort, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]cohort.Cohort, len(ids))
	for _, id := range ids {
		if c, ok := r.items[id]; ok {
			out[id] = c
		}
	}

	return out, nil
}

func (r *CohortsRepo) Upsert(_ context.Context, c cohort.Cohort) error {
	r.mu.Lock()
	r.items[c.ID] = c
	r.mu.Unlock()

	return nil
}

// Delete removes the cohort only; students keep their now-dangling reference.
// No route calls it. Tests use it to set up dangling cohort references.
func (r *CohortsRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return cohort.ErrNotFound
	}

	delete(r.items, id)
	return nil
}
