package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"karukuresize/internal/models"
)

type HistoryRepository interface {
	Add(ctx context.Context, entry *models.HistoryEntry) error
	List(ctx context.Context, filter models.HistoryFilter) ([]models.HistoryEntry, error)
	Statistics(ctx context.Context) (models.HistoryStats, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Clear(ctx context.Context) error
}

type historyRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Add(ctx context.Context, entry *models.HistoryEntry) error {
	if entry == nil {
		return fmt.Errorf("entry is required")
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// likeEscaper makes LIKE match the search term literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// List returns entries newest first.
func (r *historyRepository) List(ctx context.Context, filter models.HistoryFilter) ([]models.HistoryEntry, error) {
	q := r.db.WithContext(ctx).Model(&models.HistoryEntry{})
	if filter.SuccessOnly {
		q = q.Where("success = ?", true)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		like := "%" + likeEscaper.Replace(term) + "%"
		q = q.Where(`source_path LIKE ? ESCAPE '\' OR dest_path LIKE ? ESCAPE '\'`, like, like)
	}
	if !filter.From.IsZero() {
		q = q.Where("timestamp >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("timestamp <= ?", filter.To)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var entries []models.HistoryEntry
	if err := q.Order("timestamp desc").Order("id desc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *historyRepository) Statistics(ctx context.Context) (models.HistoryStats, error) {
	var row struct {
		Total   int64
		Success int64
		Src     int64
		Dst     int64
		AvgTime float64
	}
	err := r.db.WithContext(ctx).Model(&models.HistoryEntry{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0) AS success,
			COALESCE(SUM(CASE WHEN success THEN source_size ELSE 0 END), 0) AS src,
			COALESCE(SUM(CASE WHEN success THEN dest_size ELSE 0 END), 0) AS dst,
			COALESCE(AVG(processing_time), 0) AS avg_time`).
		Scan(&row).Error
	if err != nil {
		return models.HistoryStats{}, err
	}
	return models.HistoryStats{
		TotalFiles:        row.Total,
		SuccessfulFiles:   row.Success,
		FailedFiles:       row.Total - row.Success,
		TotalSourceSize:   row.Src,
		TotalDestSize:     row.Dst,
		TotalSaved:        max(0, row.Src-row.Dst),
		AvgProcessingTime: row.AvgTime,
	}, nil
}

func (r *historyRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.HistoryEntry{})
	return res.RowsAffected, res.Error
}

func (r *historyRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.HistoryEntry{}).Error
}
