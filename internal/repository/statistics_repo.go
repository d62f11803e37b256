package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Jaime0506/app-maestro-detail/internal/model"

	"gorm.io/gorm"
)

type StatisticsRepository interface {
	SummarizeInvoices(ctx context.Context, start, end time.Time) ([]model.StatusSummary, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

// SummarizeInvoices groups facturas dated within [start, end] by status.
func (r *statisticsRepository) SummarizeInvoices(ctx context.Context, start, end time.Time) ([]model.StatusSummary, error) {
	var summaries []model.StatusSummary
	if err := GetDB(ctx, r.db).Model(&model.Invoice{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Where("fecha >= ? AND fecha <= ?", start, end).
		Group("status").
		Order("status").
		Scan(&summaries).Error; err != nil {
		return nil, fmt.Errorf("failed to summarize invoices: %w", err)
	}
	return summaries, nil
}
