package models

import "time"

// HistoryEntry records one processed file.
type HistoryEntry struct {
	ID               uint      `gorm:"primaryKey"`
	RunID            string    `gorm:"size:36;index"`
	Timestamp        time.Time `gorm:"index;not null"`
	SourcePath       string    `gorm:"size:1024;not null"`
	DestPath         string    `gorm:"size:1024"`
	SourceSize       int64
	DestSize         int64
	SourceDimensions string `gorm:"size:32"`
	DestDimensions   string `gorm:"size:32"`
	SettingsJSON     string `gorm:"type:text"`
	Success          bool   `gorm:"index"`
	ErrorMessage     string `gorm:"type:text"`
	ProcessingTime   float64
}

// CompressionRatio is DestSize over SourceSize as a percentage.
func (h HistoryEntry) CompressionRatio() float64 {
	if h.SourceSize <= 0 {
		return 0
	}
	return float64(h.DestSize) / float64(h.SourceSize) * 100
}

// SizeReduction is the number of bytes saved, never negative.
func (h HistoryEntry) SizeReduction() int64 {
	return max(0, h.SourceSize-h.DestSize)
}

// HistoryFilter narrows a history listing. Zero values mean no constraint.
type HistoryFilter struct {
	Limit       int
	Offset      int
	SuccessOnly bool
	Search      string
	From        time.Time
	To          time.Time
}

// HistoryStats summarises the history table.
type HistoryStats struct {
	TotalFiles        int64   `json:"totalFiles"`
	SuccessfulFiles   int64   `json:"successfulFiles"`
	FailedFiles       int64   `json:"failedFiles"`
	TotalSourceSize   int64   `json:"totalSourceSize"`
	TotalDestSize     int64   `json:"totalDestSize"`
	TotalSaved        int64   `json:"totalSaved"`
	AvgProcessingTime float64 `json:"avgProcessingTime"`
}
