package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/geocoder89/cohorthub/internal/domain/student"
)

type StudentsRepo struct {
	mu    sync.RWMutex
	items map[string]student.Student
}

func NewStudentsRepo() *StudentsRepo {
	return &StudentsRepo{items: make(map[string]student.Student)}
}

func (r *StudentsRepo) Create(_ context.Context, req student.CreateStudentRequest) (student.Student, error) {
	s := student.NewFromCreateRequest(req)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUniqueLocked(s); err != nil {
		return student.Student{}, err
	}

	r.items[s.ID] = s

	return s, nil
}

func (r *StudentsRepo) List(_ context.Context) ([]student.Student, error) {
	return r.filter(func(student.Student) bool { return true }), nil
}

func (r *StudentsRepo) ListByCohort(_ context.Context, cohortID string) ([]student.Student, error) {
	return r.filter(func(s student.Student) bool { return s.CohortID == cohortID }), nil
}

func (r *StudentsRepo) GetByID(_ context.Context, id string) (student.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.items[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}

	return s, nil
}

func (r *StudentsRepo) Update(_ context.Context, id string, req student.UpdateStudentRequest) (student.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}

	updated := current.Apply(req)

	if err := r.checkUniqueLocked(updated); err != nil {
		return student.Student{}, err
	}

	r.items[id] = updated

	return updated, nil
}

func (r *StudentsRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return student.ErrNotFound
	}

	delete(r.items, id)
	return nil
}

// checkUniqueLocked mirrors the email and phone unique indexes. Caller holds mu.
func (r *StudentsRepo) checkUniqueLocked(s student.Student) error {
	for id, other := range r.items {
		if id == s.ID {
			continue
		}
		if other.Email == s.Email {
			return fmt.Errorf("%w (email)", student.ErrDuplicate)
		}
		if other.Phone == s.Phone {
			return fmt.Errorf("%w (phone)", student.ErrDuplicate)
		}
	}

	return nil
}

func (r *StudentsRepo) filter(keep func(student.Student) bool) []student.Student {
	r.mu.RLock()
	out := make([]student.Student, 0, len(r.items))
	for _, s := range r.items {
		if keep(s) {
			out = append(out, s)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out
}
