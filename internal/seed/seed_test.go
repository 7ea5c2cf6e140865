package seed

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/geocoder89/cohorthub/internal/domain/cohort"
	"github.com/geocoder89/cohorthub/internal/domain/student"
	"github.com/geocoder89/cohorthub/internal/observability"
	"github.com/geocoder89/cohorthub/internal/repo/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingClearer struct {
	calls int
	err   error
}

func (c *countingClearer) Clear(context.Context) error {
	c.calls++
	return c.err
}

func loadFixtures(t *testing.T) ([]CohortRecord, []StudentRecord) {
	t.Helper()

	cf, err := os.Open("testdata/cohorts.json")
	require.NoError(t, err)
	t.Cleanup(func() { _ = cf.Close() })

	sf, err := os.Open("testdata/students.json")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sf.Close() })

	cohorts, err := DecodeCohorts(cf)
	require.NoError(t, err)

	students, err := DecodeStudents(sf)
	require.NoError(t, err)

	return cohorts, students
}

func TestSeeder_Run(t *testing.T) {
	ctx := context.Background()
	cohorts, students := loadFixtures(t)

	cohortsRepo := memory.NewCohortsRepo()
	studentsRepo := memory.NewStudentsRepo()
	clearer := &countingClearer{}

	s := New(cohortsRepo, studentsRepo, clearer, observability.NopLogger())

	res, err := s.Run(ctx, cohorts, students)
	require.NoError(t, err)
	assert.Equal(t, Result{Cohorts: 2, Students: 2}, res)
	assert.Equal(t, 1, clearer.calls)

	wdID := cohort.IDFromSlug("wd-ber-ft-2024-01")
	wd, err := cohortsRepo.GetByID(ctx, wdID)
	require.NoError(t, err)
	assert.Equal(t, "Berlin", wd.Campus)
	require.NotNil(t, wd.StartDate)

	byCohort, err := studentsRepo.ListByCohort(ctx, wdID)
	require.NoError(t, err)
	require.Len(t, byCohort, 1)
	assert.Equal(t, "ada@example.com", byCohort[0].Email)
	assert.Len(t, byCohort[0].Projects, 1)

	// re-running is idempotent: cohorts upsert, students are skipped
	res, err = s.Run(ctx, cohorts, students)
	require.NoError(t, err)
	assert.Equal(t, Result{Cohorts: 2, Students: 0, Skipped: 2}, res)
}

func TestSeeder_RejectsBadRecords(t *testing.T) {
	ctx := context.Background()
	s := New(memory.NewCohortsRepo(), memory.NewStudentsRepo(), nil, observability.NopLogger())

	_, err := s.Run(ctx, []CohortRecord{{Name: "no slug"}}, nil)
	require.Error(t, err)

	_, err = s.Run(ctx, []CohortRecord{{ID: "not-a-uuid", Slug: "x"}}, nil)
	require.Error(t, err)

	_, err = s.Run(ctx, nil, []StudentRecord{{CreateStudentRequest: student.CreateStudentRequest{
		FirstName: "A", LastName: "B", Email: "a@example.com", Phone: "1", CohortID: "nope",
	}}})
	require.Error(t, err)
}

func TestSeeder_CacheClearFailureIsNotFatal(t *testing.T) {
	clearer := &countingClearer{err: errors.New("redis down")}
	s := New(memory.NewCohortsRepo(), memory.NewStudentsRepo(), clearer, observability.NopLogger())

	_, err := s.Run(context.Background(), []CohortRecord{{Slug: "a"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, clearer.calls)
}
