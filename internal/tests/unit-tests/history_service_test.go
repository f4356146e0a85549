package unit_tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karukuresize/internal/models"
	"karukuresize/internal/services"
	"karukuresize/internal/tests/mocks"
)

func TestHistoryService_List_PassesFilter(t *testing.T) {
	var got models.HistoryFilter
	repo := &mocks.HistoryRepositoryMock{
		ListFunc: func(ctx context.Context, filter models.HistoryFilter) ([]models.HistoryEntry, error) {
			got = filter
			return []models.HistoryEntry{{SourcePath: "a.jpg"}}, nil
		},
	}
	service := services.NewHistoryService(repo)
	service.Startup(context.Background())

	entries, err := service.List(models.HistoryFilter{Limit: 10, SuccessOnly: true})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 10, got.Limit)
	assert.True(t, got.SuccessOnly)
}

func TestHistoryService_List_Validation(t *testing.T) {
	service := services.NewHistoryService(&mocks.HistoryRepositoryMock{})

	_, err := service.List(models.HistoryFilter{Limit: -1})
	assert.Error(t, err)

	now := time.Now()
	_, err = service.List(models.HistoryFilter{From: now, To: now.Add(-time.Hour)})
	assert.Error(t, err)
}

func TestHistoryService_List_RepositoryError(t *testing.T) {
	repo := &mocks.HistoryRepositoryMock{
		ListFunc: func(context.Context, models.HistoryFilter) ([]models.HistoryEntry, error) {
			return nil, assert.AnError
		},
	}
	service := services.NewHistoryService(repo)

	_, err := service.List(models.HistoryFilter{})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestHistoryService_Prune(t *testing.T) {
	var cutoff time.Time
	repo := &mocks.HistoryRepositoryMock{
		DeleteOlderThanFunc: func(ctx context.Context, c time.Time) (int64, error) {
			cutoff = c
			return 3, nil
		},
	}
	service := services.NewHistoryService(repo)

	n, err := service.Prune(7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -7), cutoff, time.Minute)

	_, err = service.Prune(0)
	assert.Error(t, err)
}

func TestHistoryService_StatsAndClear(t *testing.T) {
	cleared := false
	repo := &mocks.HistoryRepositoryMock{
		StatisticsFunc: func(context.Context) (models.HistoryStats, error) {
			return models.HistoryStats{TotalFiles: 4}, nil
		},
		ClearFunc: func(context.Context) error {
			cleared = true
			return nil
		},
	}
	service := services.NewHistoryService(repo)

	stats, err := service.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalFiles)
	require.NoError(t, service.Clear())
	assert.True(t, cleared)
}
