package cache

import (
	"context"
	"testing"
	"time"

	"github.com/geocoder89/cohorthub/internal/domain/cohort"
	"github.com/geocoder89/cohorthub/internal/redisclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCohorts_RoundTripAndClear(t *testing.T) {
	ctx := context.Background()

	rc := redisclient.NewFromEnvForTest(ctx)
	if rc == nil {
		t.Skip("TEST_REDIS_ADDR not set or unreachable")
	}
	t.Cleanup(func() { _ = rc.Close() })

	c := NewCohorts(rc.Raw(), time.Minute)
	require.NoError(t, c.Clear(ctx))

	wd := cohort.Cohort{ID: cohort.IDFromSlug("wd-ber-ft-2024-01"), Slug: "wd-ber-ft-2024-01", Name: "WD BER"}
	ux := cohort.Cohort{ID: cohort.IDFromSlug("ux-par-pt-2024-02"), Slug: "ux-par-pt-2024-02", Name: "UX PAR"}

	require.NoError(t, c.SetMany(ctx, map[string]cohort.Cohort{wd.ID: wd}))

	found, missing, err := c.GetMany(ctx, []string{wd.ID, ux.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{ux.ID}, missing)
	require.Contains(t, found, wd.ID)
	assert.Equal(t, wd.Slug, found[wd.ID].Slug)

	require.NoError(t, c.Clear(ctx))

	found, missing, err = c.GetMany(ctx, []string{wd.ID})
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Equal(t, []string{wd.ID}, missing)
}
