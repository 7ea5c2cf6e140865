package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/geocoder89/cohorthub/internal/domain/cohort"
	"github.com/geocoder89/cohorthub/internal/domain/student"
	"github.com/geocoder89/cohorthub/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersRepo_ConcurrentCreateSameEmail(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	const attempts = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := repo.Create(ctx, "a@b.com", "hash", "A")

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case assert.ErrorIs(t, err, user.ErrEmailTaken):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, conflicts)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUsersRepo_EmailIsCaseSensitive(t *testing.T) {
	repo := NewUsersRepo()
	ctx := context.Background()

	_, err := repo.Create(ctx, "a@b.com", "h", "A")
	require.NoError(t, err)

	_, err = repo.Create(ctx, "A@b.com", "h", "A")
	require.NoError(t, err)

	_, err = repo.GetByEmail(ctx, "A@B.COM")
	require.ErrorIs(t, err, user.ErrNotFound)
}

func newStudentReq(email, phone, cohortID string) student.CreateStudentRequest {
	return student.CreateStudentRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Phone:     phone,
		CohortID:  cohortID,
	}
}

func TestStudentsRepo_Uniqueness(t *testing.T) {
	repo := NewStudentsRepo()
	ctx := context.Background()
	const c = "3f2e1d0c-9b8a-4765-8432-10fedcba9876"

	first, err := repo.Create(ctx, newStudentReq("ada@example.com", "1", c))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newStudentReq("ada@example.com", "2", c))
	require.ErrorIs(t, err, student.ErrDuplicate)

	_, err = repo.Create(ctx, newStudentReq("other@example.com", "1", c))
	require.ErrorIs(t, err, student.ErrDuplicate)

	second, err := repo.Create(ctx, newStudentReq("grace@example.com", "2", c))
	require.NoError(t, err)

	// updating into another student's phone collides; updating to its own value does not
	phone := "2"
	_, err = repo.Update(ctx, first.ID, student.UpdateStudentRequest{Phone: &phone})
	require.ErrorIs(t, err, student.ErrDuplicate)

	_, err = repo.Update(ctx, second.ID, student.UpdateStudentRequest{Phone: &phone})
	require.NoError(t, err)
}

func TestStudentsRepo_ListByCohortAndDelete(t *testing.T) {
	repo := NewStudentsRepo()
	ctx := context.Background()
	const c1 = "3f2e1d0c-9b8a-4765-8432-10fedcba9876"
	const c2 = "5b0f8e4c-3b1e-4d0c-9a57-6f2d1c1f9e21"

	a, err := repo.Create(ctx, newStudentReq("a@example.com", "1", c1))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newStudentReq("b@example.com", "2", c2))
	require.NoError(t, err)

	got, err := repo.ListByCohort(ctx, c1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)

	require.NoError(t, repo.Delete(ctx, a.ID))
	require.ErrorIs(t, repo.Delete(ctx, a.ID), student.ErrNotFound)

	_, err = repo.GetByID(ctx, a.ID)
	require.ErrorIs(t, err, student.ErrNotFound)
}

func TestCohortsRepo_DeleteLeavesStudents(t *testing.T) {
	cohorts := NewCohortsRepo()
	students := NewStudentsRepo()
	ctx := context.Background()

	c := cohort.Cohort{ID: cohort.IDFromSlug("wd-ber"), Slug: "wd-ber", Name: "Web Dev Berlin"}
	require.NoError(t, cohorts.Upsert(ctx, c))

	s, err := students.Create(ctx, newStudentReq("a@example.com", "1", c.ID))
	require.NoError(t, err)

	require.NoError(t, cohorts.Delete(ctx, c.ID))

	got, err := students.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.CohortID)

	found, err := cohorts.GetByIDs(ctx, []string{c.ID})
	require.NoError(t, err)
	assert.Empty(t, found)
}
