package notify

import (
	"context"
	"testing"
	"time"

	"libraryapi/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRunLog_Claim(t *testing.T) {
	db := testutil.NewTestPool(t)
	runs := NewPostgresRunLog(db, 5*time.Second)
	ctx := context.Background()

	today := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	run := Run{Job: JobNewBooks, RunOn: today, Books: 2, Recipients: 3}

	require.NoError(t, runs.Claim(ctx, run, false))
	assert.ErrorIs(t, runs.Claim(ctx, run, false), ErrAlreadyRan)

	t.Run("other job same day", func(t *testing.T) {
		assert.NoError(t, runs.Claim(ctx, Run{Job: JobAnniversary, RunOn: today}, false))
	})

	t.Run("next day", func(t *testing.T) {
		assert.NoError(t, runs.Claim(ctx, Run{Job: JobNewBooks, RunOn: today.AddDate(0, 0, 1)}, false))
	})

	t.Run("force overwrites", func(t *testing.T) {
		forced := run
		forced.Books = 7
		require.NoError(t, runs.Claim(ctx, forced, true))

		var books int
		require.NoError(t, db.QueryRow(ctx,
			`SELECT books_count FROM notification_runs WHERE job = $1 AND run_on = $2`, JobNewBooks, today).Scan(&books))
		assert.Equal(t, 7, books)
	})
}
