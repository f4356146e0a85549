package repositories

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karukuresize/internal/database"
	"karukuresize/internal/models"
)

func newTestRepo(t *testing.T) HistoryRepository {
	t.Helper()
	db, err := database.Init(database.Config{Path: filepath.Join(t.TempDir(), "history.db")})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewHistoryRepository(db)
}

func seed(t *testing.T, repo HistoryRepository) time.Time {
	t.Helper()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := []models.HistoryEntry{
		{Timestamp: base, SourcePath: "/in/a.jpg", DestPath: "/out/a.jpg", SourceSize: 1000, DestSize: 400, Success: true, ProcessingTime: 1},
		{Timestamp: base.Add(time.Hour), SourcePath: "/in/b.png", DestPath: "/out/b.png", SourceSize: 500, DestSize: 300, Success: true, ProcessingTime: 3},
		{Timestamp: base.Add(2 * time.Hour), SourcePath: "/in/c.gif", SourceSize: 200, Success: false, ErrorMessage: "decode"},
	}
	for i := range rows {
		require.NoError(t, repo.Add(context.Background(), &rows[i]))
	}
	return base
}

func TestHistoryRepository_ListNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo)

	entries, err := repo.List(context.Background(), models.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "/in/c.gif", entries[0].SourcePath)
	assert.Equal(t, "/in/a.jpg", entries[2].SourcePath)
}

func TestHistoryRepository_ListFilters(t *testing.T) {
	repo := newTestRepo(t)
	base := seed(t, repo)
	ctx := context.Background()

	entries, err := repo.List(ctx, models.HistoryFilter{SuccessOnly: true})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = repo.List(ctx, models.HistoryFilter{Search: "b.png"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/in/b.png", entries[0].SourcePath)

	entries, err = repo.List(ctx, models.HistoryFilter{From: base.Add(30 * time.Minute), To: base.Add(90 * time.Minute)})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/in/b.png", entries[0].SourcePath)

	entries, err = repo.List(ctx, models.HistoryFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/in/b.png", entries[0].SourcePath)
}

func TestHistoryRepository_SearchIsLiteral(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	for _, p := range []string{"/in/50%_off.jpg", "/in/500x.jpg", "/in/a_b.jpg", "/in/axb.jpg", `/in/back\slash.jpg`} {
		require.NoError(t, repo.Add(ctx, &models.HistoryEntry{SourcePath: p, Success: true}))
	}

	cases := map[string][]string{
		"50%":     {"/in/50%_off.jpg"},
		"a_b":     {"/in/a_b.jpg"},
		`k\s`:     {`/in/back\slash.jpg`},
		"%":       {"/in/50%_off.jpg"},
		"nothing": nil,
	}
	for term, want := range cases {
		entries, err := repo.List(ctx, models.HistoryFilter{Search: term})
		require.NoError(t, err)
		var got []string
		for _, e := range entries {
			got = append(got, e.SourcePath)
		}
		assert.Equal(t, want, got, term)
	}
}

func TestHistoryRepository_Statistics(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo)

	stats, err := repo.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalFiles)
	assert.Equal(t, int64(2), stats.SuccessfulFiles)
	assert.Equal(t, int64(1), stats.FailedFiles)
	assert.Equal(t, int64(800), stats.TotalSaved)
	assert.InDelta(t, 4.0/3.0, stats.AvgProcessingTime, 0.001)
}

func TestHistoryRepository_DeleteAndClear(t *testing.T) {
	repo := newTestRepo(t)
	base := seed(t, repo)
	ctx := context.Background()

	n, err := repo.DeleteOlderThan(ctx, base.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.Clear(ctx))
	entries, err := repo.List(ctx, models.HistoryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistoryEntry_Derived(t *testing.T) {
	e := models.HistoryEntry{SourceSize: 1000, DestSize: 250}
	assert.InDelta(t, 25.0, e.CompressionRatio(), 0.001)
	assert.Equal(t, int64(750), e.SizeReduction())
	assert.Equal(t, 0.0, models.HistoryEntry{}.CompressionRatio())
}
