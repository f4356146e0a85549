package mocks

import (
	"context"
	"sync"
	"time"

	"karukuresize/internal/models"
)

type HistoryRepositoryMock struct {
	AddFunc             func(ctx context.Context, entry *models.HistoryEntry) error
	ListFunc            func(ctx context.Context, filter models.HistoryFilter) ([]models.HistoryEntry, error)
	StatisticsFunc      func(ctx context.Context) (models.HistoryStats, error)
	DeleteOlderThanFunc func(ctx context.Context, cutoff time.Time) (int64, error)
	ClearFunc           func(ctx context.Context) error

	mu    sync.Mutex
	Added []models.HistoryEntry
}

func (m *HistoryRepositoryMock) Add(ctx context.Context, entry *models.HistoryEntry) error {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Added = append(m.Added, *entry)
	return nil
}

func (m *HistoryRepositoryMock) List(ctx context.Context, filter models.HistoryFilter) ([]models.HistoryEntry, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *HistoryRepositoryMock) Statistics(ctx context.Context) (models.HistoryStats, error) {
	if m.StatisticsFunc != nil {
		return m.StatisticsFunc(ctx)
	}
	return models.HistoryStats{}, nil
}

func (m *HistoryRepositoryMock) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.DeleteOlderThanFunc != nil {
		return m.DeleteOlderThanFunc(ctx, cutoff)
	}
	return 0, nil
}

func (m *HistoryRepositoryMock) Clear(ctx context.Context) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx)
	}
	return nil
}
