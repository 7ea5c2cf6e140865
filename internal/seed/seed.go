package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/cohorthub/internal/domain/cohort"
	"github.com/geocoder89/cohorthub/internal/domain/student"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type CohortWriter interface {
	Upsert(ctx context.Context, c cohort.Cohort) error
}

type StudentWriter interface {
	Create(ctx context.Context, req student.CreateStudentRequest) (student.Student, error)
}

type CacheClearer interface {
	Clear(ctx context.Context) error
}

// CohortRecord is one entry of the cohorts fixture file.
type CohortRecord struct {
	ID        string     `json:"id"`
	Slug      string     `json:"cohortSlug"`
	Name      string     `json:"cohortName"`
	Program   string     `json:"program"`
	Campus    string     `json:"campus"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

// StudentRecord is one entry of the students fixture file. The cohort is
// named either by id or by slug.
type StudentRecord struct {
	student.CreateStudentRequest
	CohortSlug string `json:"cohortSlug"`
}

type Result struct {
	Cohorts  int
	Students int
	Skipped  int
}

type Seeder struct {
	cohorts  CohortWriter
	students StudentWriter
	cache    CacheClearer
	log      *slog.Logger
	validate *validator.Validate
}

// New builds a Seeder. cache may be nil when redis is not configured.
func New(cohorts CohortWriter, students StudentWriter, cache CacheClearer, log *slog.Logger) *Seeder {
	// fixture rows go through the same binding rules as POST /api/students
	v := validator.New()
	v.SetTagName("binding")

	return &Seeder{cohorts: cohorts, students: students, cache: cache, log: log, validate: v}
}

func DecodeCohorts(r io.Reader) ([]CohortRecord, error) {
	var out []CohortRecord
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode cohorts: %w", err)
	}
	return out, nil
}

func DecodeStudents(r io.Reader) ([]StudentRecord, error) {
	var out []StudentRecord
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode students: %w", err)
	}
	return out, nil
}

// Run upserts cohorts, then inserts students. Students that collide on email
// or phone are skipped, so the command can be re-run.
func (s *Seeder) Run(ctx context.Context, cohorts []CohortRecord, students []StudentRecord) (Result, error) {
	var res Result

	slugs := make(map[string]string, len(cohorts))

	for i, rec := range cohorts {
		c, err := rec.toCohort()
		if err != nil {
			return res, fmt.Errorf("cohort %d: %w", i, err)
		}

		if err := s.cohorts.Upsert(ctx, c); err != nil {
			return res, fmt.Errorf("upsert cohort %s: %w", c.Slug, err)
		}

		slugs[c.Slug] = c.ID
		res.Cohorts++
	}

	for i, rec := range students {
		req := rec.CreateStudentRequest

		if req.CohortID == "" && rec.CohortSlug != "" {
			id, ok := slugs[rec.CohortSlug]
			if !ok {
				id = cohort.IDFromSlug(rec.CohortSlug)
			}
			req.CohortID = id
		}

		if err := s.validate.Struct(req); err != nil {
			return res, fmt.Errorf("student %d (%s): %w", i, req.Email, err)
		}

		_, err := s.students.Create(ctx, req)
		if errors.Is(err, student.ErrDuplicate) {
			s.log.DebugContext(ctx, "seed: student exists, skipping", "email", req.Email)
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("create student %s: %w", req.Email, err)
		}

		res.Students++
	}

	if s.cache != nil {
		if err := s.cache.Clear(ctx); err != nil {
			s.log.WarnContext(ctx, "seed: could not clear cohort cache", "err", err)
		}
	}

	s.log.InfoContext(ctx, "seed complete", "cohorts", res.Cohorts, "students", res.Students, "skipped", res.Skipped)

	return res, nil
}

func (r CohortRecord) toCohort() (cohort.Cohort, error) {
	slug := strings.TrimSpace(r.Slug)
	if slug == "" {
		return cohort.Cohort{}, errors.New("cohortSlug is required")
	}

	id := strings.ToLower(strings.TrimSpace(r.ID))
	if id == "" {
		id = cohort.IDFromSlug(slug)
	} else if uuid.Validate(id) != nil {
		return cohort.Cohort{}, fmt.Errorf("invalid id %q", r.ID)
	}

	return cohort.Cohort{
		ID:        id,
		Slug:      slug,
		Name:      r.Name,
		Program:   r.Program,
		Campus:    r.Campus,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		CreatedAt: time.Now().UTC(),
	}, nil
}
