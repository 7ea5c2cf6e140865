package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/cohorthub/internal/domain/cohort"
	"github.com/geocoder89/cohorthub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CohortsRepo struct {
	db   DBTX
	prom *observability.Prom
}

func NewCohortsRepo(db DBTX, prom *observability.Prom) *CohortsRepo {
	return &CohortsRepo{db: db, prom: prom}
}

const cohortColumns = `id, slug, name, program, campus, start_date, end_date, created_at`

func scanCohort(row pgx.Row) (cohort.Cohort, error) {
	var c cohort.Cohort

	err := row.Scan(&c.ID, &c.Slug, &c.Name, &c.Program, &c.Campus, &c.StartDate, &c.EndDate, &c.CreatedAt)

	return c, err
}

func (r *CohortsRepo) GetByID(ctx context.Context, id string) (cohort.Cohort, error) {
	if uuid.Validate(id) != nil {
		return cohort.Cohort{}, cohort.ErrNotFound
	}

	var c cohort.Cohort

	err := r.prom.ObserveDB("cohorts.get_by_id", func() (err error) {
		c, err = scanCohort(r.db.QueryRow(ctx, `SELECT `+cohortColumns+` FROM cohorts WHERE id = $1`, id))
		return
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cohort.Cohort{}, cohort.ErrNotFound
		}
		return cohort.Cohort{}, fmt.Errorf("get cohort: %w", err)
	}

	return c, nil
}

// GetByIDs returns the cohorts that exist among ids, keyed by id. Missing ids are simply absent.
func (r *CohortsRepo) GetByIDs(ctx context.Context, ids []string) (map[string]cohort.Cohort, error) {
	out := make(map[string]cohort.Cohort, len(ids))

	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if uuid.Validate(id) == nil {
			valid = append(valid, id)
		}
	}

	if len(valid) == 0 {
		return out, nil
	}

	err := r.prom.ObserveDB("cohorts.get_by_ids", func() error {
		rows, err := r.db.Query(ctx, `SELECT `+cohortColumns+` FROM cohorts WHERE id = ANY($1::uuid[])`, valid)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanCohort(rows)
			if err != nil {
				return err
			}
			out[c.ID] = c
		}

		return rows.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("get cohorts by ids: %w", err)
	}

	return out, nil
}

// Upsert is used by the seed command; re-seeding refreshes the descriptive fields.
func (r *CohortsRepo) Upsert(ctx context.Context, c cohort.Cohort) error {
	err := r.prom.ObserveDB("cohorts.upsert", func() error {
		_, err := r.db.Exec(ctx,
			`INSERT INTO cohorts (id, slug, name, program, campus, start_date, end_date, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE
			SET slug = EXCLUDED.slug,
				name = EXCLUDED.name,
				program = EXCLUDED.program,
				campus = EXCLUDED.campus,
				start_date = EXCLUDED.start_date,
				end_date = EXCLUDED.end_date`,
			c.ID, c.Slug, c.Name, c.Program, c.Campus, c.StartDate, c.EndDate, c.CreatedAt,
		)
		return err
	})

	if err != nil {
		return fmt.Errorf("upsert cohort %s: %w", c.Slug, err)
	}

	return nil
}
