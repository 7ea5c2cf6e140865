package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/cohorthub/internal/domain/student"
	"github.com/geocoder89/cohorthub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type StudentsRepo struct {
	db   DBTX
	prom *observability.Prom
}

func NewStudentsRepo(db DBTX, prom *observability.Prom) *StudentsRepo {
	return &StudentsRepo{db: db, prom: prom}
}

const studentColumns = `id, first_name, last_name, email, phone, linkedin_url, languages, program,
	background, image, cohort_id, projects, created_at, updated_at`

func scanStudent(row pgx.Row) (student.Student, error) {
	var (
		s        student.Student
		projects []byte
	)

	err := row.Scan(
		&s.ID,
		&s.FirstName,
		&s.LastName,
		&s.Email,
		&s.Phone,
		&s.LinkedinURL,
		&s.Languages,
		&s.Program,
		&s.Background,
		&s.Image,
		&s.CohortID,
		&projects,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, err
	}

	s.Projects = []any{}
	if len(projects) > 0 {
		if err := json.Unmarshal(projects, &s.Projects); err != nil {
			return student.Student{}, fmt.Errorf("decode projects: %w", err)
		}
	}

	if s.Languages == nil {
		s.Languages = []string{}
	}

	return s, nil
}

func (r *StudentsRepo) queryStudents(ctx context.Context, op, query string, args ...any) ([]student.Student, error) {
	out := make([]student.Student, 0)

	err := r.prom.ObserveDB(op, func() error {
		rows, err := r.db.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			s, err := scanStudent(rows)
			if err != nil {
				return err
			}
			out = append(out, s)
		}

		return rows.Err()
	})

	return out, err
}

// Create stores the student. The cohort id is stored as given; it is not checked against cohorts.
func (r *StudentsRepo) Create(ctx context.Context, req student.CreateStudentRequest) (student.Student, error) {
	s := student.NewFromCreateRequest(req)

	projects, err := json.Marshal(s.Projects)
	if err != nil {
		return student.Student{}, fmt.Errorf("encode projects: %w", err)
	}

	err = r.prom.ObserveDB("students.create", func() error {
		_, err := r.db.Exec(ctx,
			`INSERT INTO students (id, first_name, last_name, email, phone, linkedin_url, languages, program,
				background, image, cohort_id, projects, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			s.ID, s.FirstName, s.LastName, s.Email, s.Phone, s.LinkedinURL, s.Languages, s.Program,
			s.Background, s.Image, s.CohortID, projects, s.CreatedAt, s.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if pgErr, ok := uniqueViolation(err); ok {
			return student.Student{}, fmt.Errorf("%w (%s)", student.ErrDuplicate, pgErr.ConstraintName)
		}
		return student.Student{}, fmt.Errorf("create student: %w", err)
	}

	return s, nil
}

func (r *StudentsRepo) List(ctx context.Context) ([]student.Student, error) {
	out, err := r.queryStudents(ctx, "students.list",
		`SELECT `+studentColumns+` FROM students ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	return out, nil
}

func (r *StudentsRepo) ListByCohort(ctx context.Context, cohortID string) ([]student.Student, error) {
	if uuid.Validate(cohortID) != nil {
		return []student.Student{}, nil
	}

	out, err := r.queryStudents(ctx, "students.list_by_cohort",
		`SELECT `+studentColumns+` FROM students WHERE cohort_id = $1 ORDER BY created_at ASC, id ASC`,
		cohortID,
	)
	if err != nil {
		return nil, fmt.Errorf("list students by cohort: %w", err)
	}

	return out, nil
}

func (r *StudentsRepo) GetByID(ctx context.Context, id string) (student.Student, error) {
	if uuid.Validate(id) != nil {
		return student.Student{}, student.ErrNotFound
	}

	var s student.Student

	err := r.prom.ObserveDB("students.get_by_id", func() (err error) {
		s, err = scanStudent(r.db.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id))
		return
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, fmt.Errorf("get student: %w", err)
	}

	return s, nil
}

// Update applies a partial update; NULL parameters leave the column unchanged.
func (r *StudentsRepo) Update(ctx context.Context, id string, req student.UpdateStudentRequest) (student.Student, error) {
	if uuid.Validate(id) != nil {
		return student.Student{}, student.ErrNotFound
	}

	var projects []byte
	if req.Projects != nil {
		b, err := json.Marshal(*req.Projects)
		if err != nil {
			return student.Student{}, fmt.Errorf("encode projects: %w", err)
		}
		projects = b
	}

	var s student.Student

	err := r.prom.ObserveDB("students.update", func() (err error) {
		s, err = scanStudent(r.db.QueryRow(ctx,
			`UPDATE students
			SET first_name = COALESCE($2, first_name),
				last_name = COALESCE($3, last_name),
				email = COALESCE($4, email),
				phone = COALESCE($5, phone),
				linkedin_url = COALESCE($6, linkedin_url),
				languages = COALESCE($7, languages),
				program = COALESCE($8, program),
				background = COALESCE($9, background),
				image = COALESCE($10, image),
				cohort_id = COALESCE($11, cohort_id),
				projects = COALESCE($12, projects),
				updated_at = NOW()
			WHERE id = $1
			RETURNING `+studentColumns,
			id,
			trimmed(req.FirstName),
			trimmed(req.LastName),
			trimmed(req.Email),
			trimmed(req.Phone),
			req.LinkedinURL,
			req.Languages,
			req.Program,
			req.Background,
			req.Image,
			req.CohortID,
			projects,
		))
		return
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return student.Student{}, student.ErrNotFound
		}
		if pgErr, ok := uniqueViolation(err); ok {
			return student.Student{}, fmt.Errorf("%w (%s)", student.ErrDuplicate, pgErr.ConstraintName)
		}
		return student.Student{}, fmt.Errorf("update student: %w", err)
	}

	return s, nil
}

func (r *StudentsRepo) Delete(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return student.ErrNotFound
	}

	var affected int64

	err := r.prom.ObserveDB("students.delete", func() error {
		tag, err := r.db.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}

	// if no rows were deleted as a result return a not found error
	if affected == 0 {
		return student.ErrNotFound
	}

	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}

	v := strings.TrimSpace(*s)
	return &v
}
