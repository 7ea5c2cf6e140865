package linker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geocoder89/cohorthub/internal/domain/cohort"
	"github.com/geocoder89/cohorthub/internal/domain/student"
	"github.com/geocoder89/cohorthub/internal/observability"
)

type CohortFinder interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]cohort.Cohort, error)
}

type CohortCache interface {
	GetMany(ctx context.Context, ids []string) (map[string]cohort.Cohort, []string, error)
	SetMany(ctx context.Context, cohorts map[string]cohort.Cohort) error
}

// Linker resolves each student's cohort id into the cohort row.
type Linker struct {
	finder CohortFinder
	cache  CohortCache
	log    *slog.Logger
	prom   *observability.Prom
}

type Option func(*Linker)

func WithCache(c CohortCache) Option {
	return func(l *Linker) { l.cache = c }
}

func WithLogger(log *slog.Logger) Option {
	return func(l *Linker) { l.log = log }
}

func WithMetrics(p *observability.Prom) Option {
	return func(l *Linker) { l.prom = p }
}

func New(finder CohortFinder, opts ...Option) *Linker {
	l := &Linker{finder: finder, log: observability.NopLogger()}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

func (l *Linker) Link(ctx context.Context, s student.Student) (student.Linked, error) {
	out, err := l.LinkAll(ctx, []student.Student{s})
	if err != nil {
		return student.Linked{}, err
	}

	return out[0], nil
}

// LinkAll does one batched lookup for the distinct cohort ids in students.
// A cohort that no longer exists links as nil and is not an error.
func (l *Linker) LinkAll(ctx context.Context, students []student.Student) ([]student.Linked, error) {
	out := make([]student.Linked, len(students))
	if len(students) == 0 {
		return out, nil
	}

	ids := distinctCohortIDs(students)

	found, err := l.lookup(ctx, ids)
	if err != nil {
		return nil, err
	}

	unlinked := 0
	for i, s := range students {
		out[i] = student.Linked{Student: s}

		if c, ok := found[s.CohortID]; ok {
			out[i].Cohort = &c
			continue
		}
		unlinked++
	}

	if unlinked > 0 {
		l.prom.ObserveUnlinked(unlinked)
		l.log.DebugContext(ctx, "students reference missing cohorts", "count", unlinked)
	}

	return out, nil
}

func (l *Linker) lookup(ctx context.Context, ids []string) (map[string]cohort.Cohort, error) {
	if l.cache == nil {
		return l.fetch(ctx, ids)
	}

	cached, missing, err := l.cache.GetMany(ctx, ids)
	if err != nil {
		l.log.WarnContext(ctx, "cohort cache read failed", "err", err)
		cached, missing = map[string]cohort.Cohort{}, ids
	}

	if len(missing) == 0 {
		return cached, nil
	}

	fetched, err := l.fetch(ctx, missing)
	if err != nil {
		return nil, err
	}

	if err := l.cache.SetMany(ctx, fetched); err != nil {
		l.log.WarnContext(ctx, "cohort cache write failed", "err", err)
	}

	for id, c := range fetched {
		cached[id] = c
	}

	return cached, nil
}

func (l *Linker) fetch(ctx context.Context, ids []string) (map[string]cohort.Cohort, error) {
	found, err := l.finder.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("link cohorts: %w", err)
	}

	return found, nil
}

func distinctCohortIDs(students []student.Student) []string {
	seen := make(map[string]struct{}, len(students))
	ids := make([]string, 0, len(students))

	for _, s := range students {
		if _, ok := seen[s.CohortID]; ok {
			continue
		}
		seen[s.CohortID] = struct{}{}
		ids = append(ids, s.CohortID)
	}

	return ids
}
