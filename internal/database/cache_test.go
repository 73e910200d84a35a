package database

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// profileRow replays one stored profile through the pgx.Row interface.
type profileRow struct {
	profile ChatProfile
	err     error
}

func (r profileRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.profile.UserHandle
	*(dest[1].(*pgtype.Text)) = r.profile.DisplayName
	*(dest[2].(*pgtype.Int4)) = r.profile.Age
	*(dest[3].(*pgtype.Text)) = r.profile.Sex
	*(dest[4].(*pgtype.Numeric)) = r.profile.HeightCm
	*(dest[5].(*pgtype.Numeric)) = r.profile.WeightKg
	*(dest[6].(*pgtype.Text)) = r.profile.ActivityLevel
	*(dest[7].(*pgtype.Int4)) = r.profile.GoalKcal
	*(dest[8].(*[]string)) = r.profile.Preferences
	*(dest[9].(*[]string)) = r.profile.Allergies
	*(dest[10].(*pgtype.Text)) = r.profile.Language
	*(dest[11].(*pgtype.Timestamptz)) = r.profile.CreatedAt
	*(dest[12].(*pgtype.Timestamptz)) = r.profile.UpdatedAt
	return nil
}

// fakeDB satisfies DBTX and counts how often the store is actually hit.
type fakeDB struct {
	row           profileRow
	queryRowCalls int
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	f.queryRowCalls++
	return f.row
}

func TestCachedProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("second read is served from cache", func(t *testing.T) {
		PurgeProfileCache()
		db := &fakeDB{row: profileRow{profile: ChatProfile{
			UserHandle:  "cache-hit",
			DisplayName: pgtype.Text{String: "Maria", Valid: true},
		}}}
		q := New(db)

		first, err := CachedProfile(ctx, q, "cache-hit")
		require.NoError(t, err)
		assert.Equal(t, "Maria", first.DisplayName.String)
		assert.Equal(t, 1, db.queryRowCalls)

		second, err := CachedProfile(ctx, q, "cache-hit")
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, db.queryRowCalls, "cached read must not hit the store")
	})

	t.Run("invalidation forces a fresh read", func(t *testing.T) {
		PurgeProfileCache()
		db := &fakeDB{row: profileRow{profile: ChatProfile{UserHandle: "cache-inv"}}}
		q := New(db)

		_, err := CachedProfile(ctx, q, "cache-inv")
		require.NoError(t, err)
		require.Equal(t, 1, db.queryRowCalls)

		InvalidateProfile("cache-inv")

		_, err = CachedProfile(ctx, q, "cache-inv")
		require.NoError(t, err)
		assert.Equal(t, 2, db.queryRowCalls)
	})

	t.Run("errors pass through uncached", func(t *testing.T) {
		PurgeProfileCache()
		db := &fakeDB{row: profileRow{err: pgx.ErrNoRows}}
		q := New(db)

		_, err := CachedProfile(ctx, q, "cache-miss")
		require.ErrorIs(t, err, pgx.ErrNoRows)

		_, err = CachedProfile(ctx, q, "cache-miss")
		require.ErrorIs(t, err, pgx.ErrNoRows)
		assert.Equal(t, 2, db.queryRowCalls, "a failed read must not be cached")
	})
}
