package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Jaime0506/app-maestro-detail/internal/model"
	"github.com/Jaime0506/app-maestro-detail/internal/repository"

	"github.com/shopspring/decimal"
)

const topProductsLimit = 5

type StatisticsService interface {
	GetStatistics(ctx context.Context, startDate, endDate time.Time) (model.SalesStatistics, error)
}

type statisticsService struct {
	statsRepo    repository.StatisticsRepository
	movementRepo repository.MovementRepository
}

func NewStatisticsService(statsRepo repository.StatisticsRepository, movementRepo repository.MovementRepository) StatisticsService {
	return &statisticsService{statsRepo: statsRepo, movementRepo: movementRepo}
}

// GetStatistics summarizes invoices by status and ranks products by units sold
// in sale movements dated within the range. Sales of cancelled invoices are
// left out of the ranking, as they are left out of SoldAmount.
func (s *statisticsService) GetStatistics(ctx context.Context, startDate, endDate time.Time) (model.SalesStatistics, error) {
	if endDate.Before(startDate) {
		return model.SalesStatistics{}, fieldError("fechaHasta", "end date is before start date")
	}

	response := model.SalesStatistics{
		From:        startDate,
		To:          endDate,
		SoldAmount:  decimal.Zero,
		ByStatus:    []model.StatusSummary{},
		TopProducts: []model.ProductRanking{},
	}

	summaries, err := s.statsRepo.SummarizeInvoices(ctx, startDate, endDate)
	if err != nil {
		return model.SalesStatistics{}, err
	}
	for _, sum := range summaries {
		response.InvoiceCount += sum.Count
		if sum.Status != model.InvoiceStatusCanceled {
			response.SoldAmount = response.SoldAmount.Add(sum.Total)
		}
	}
	if summaries != nil {
		response.ByStatus = summaries
	}

	sales, _, err := s.movementRepo.List(ctx, repository.MovementFilter{
		Type:                 model.MovementSale,
		ExcludeInvoiceStatus: model.InvoiceStatusCanceled,
		From:                 &startDate,
		To:                   &endDate,
	})
	if err != nil {
		return model.SalesStatistics{}, fmt.Errorf("failed to query sale movements: %w", err)
	}
	response.TopProducts = rankProducts(sales, topProductsLimit)

	return response, nil
}

func rankProducts(movements []model.Movement, limit int) []model.ProductRanking {
	byID := map[string]*model.ProductRanking{}
	for _, mv := range movements {
		for _, item := range mv.Items {
			id := item.ProductID.String()
			r, ok := byID[id]
			if !ok {
				r = &model.ProductRanking{ProductID: id, ProductName: item.ProductName, TotalValue: decimal.Zero}
				byID[id] = r
			}
			r.TotalQuantity += item.Quantity
			r.TotalValue = r.TotalValue.Add(item.Subtotal)
		}
	}

	rankings := make([]model.ProductRanking, 0, len(byID))
	for _, r := range byID {
		rankings = append(rankings, *r)
	}
	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].TotalQuantity != rankings[j].TotalQuantity {
			return rankings[i].TotalQuantity > rankings[j].TotalQuantity
		}
		return rankings[i].ProductName < rankings[j].ProductName
	})
	if len(rankings) > limit {
		rankings = rankings[:limit]
	}
	return rankings
}
