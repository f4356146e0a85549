package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"karukuresize/internal/models"
	"karukuresize/internal/repositories"
)

type HistoryService interface {
	List(filter models.HistoryFilter) ([]models.HistoryEntry, error)
	Stats() (models.HistoryStats, error)
	Prune(days int) (int64, error)
	Clear() error
	Startup(ctx context.Context)
}

type historyService struct {
	history repositories.HistoryRepository
	context context.Context
}

func NewHistoryService(history repositories.HistoryRepository) HistoryService {
	return &historyService{history: history, context: context.Background()}
}

func (s *historyService) Startup(ctx context.Context) {
	s.context = ctx
}

func (s *historyService) List(filter models.HistoryFilter) ([]models.HistoryEntry, error) {
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, errors.New("limit and offset must not be negative")
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return nil, errors.New("date range end is before its start")
	}
	entries, err := s.history.List(s.context, filter)
	if err != nil {
		return nil, fmt.Errorf("service: list history: %w", err)
	}
	return entries, nil
}

func (s *historyService) Stats() (models.HistoryStats, error) {
	stats, err := s.history.Statistics(s.context)
	if err != nil {
		return models.HistoryStats{}, fmt.Errorf("service: history stats: %w", err)
	}
	return stats, nil
}

// Prune deletes entries older than days.
func (s *historyService) Prune(days int) (int64, error) {
	if days <= 0 {
		return 0, errors.New("days must be positive")
	}
	n, err := s.history.DeleteOlderThan(s.context, time.Now().AddDate(0, 0, -days))
	if err != nil {
		return 0, fmt.Errorf("service: prune history: %w", err)
	}
	return n, nil
}

func (s *historyService) Clear() error {
	if err := s.history.Clear(s.context); err != nil {
		return fmt.Errorf("service: clear history: %w", err)
	}
	return nil
}
