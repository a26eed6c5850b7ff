package budget

import (
	"github.com/cdfund/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryStatistics aggregates the amounts of one budget category.
type CategoryStatistics struct {
	Allocated decimal.Decimal `json:"allocated" example:"1000000"`
	Utilized  decimal.Decimal `json:"utilized" example:"45000"`
	Committed decimal.Decimal `json:"committed" example:"0"`
	Available decimal.Decimal `json:"available" example:"955000"`
}

// Statistics aggregates all active allocations, optionally restricted to
// a constituency and fiscal year.
type Statistics struct {
	TotalAllocated  decimal.Decimal                              `json:"totalAllocated" example:"1000000"`
	TotalUtilized   decimal.Decimal                              `json:"totalUtilized" example:"45000"`
	TotalCommitted  decimal.Decimal                              `json:"totalCommitted" example:"0"`
	TotalAvailable  decimal.Decimal                              `json:"totalAvailable" example:"955000"`
	UtilizationRate decimal.Decimal                              `json:"utilizationRate" example:"4.5"`
	ByCategory      map[models.BudgetCategory]CategoryStatistics `json:"byCategory"`
}

// Statistics aggregates allocated/committed/utilized/available amounts
// and the utilization rate over all ALLOCATED allocations, grouped by
// category.
func (s *Service) Statistics(constituencyID *uuid.UUID, fiscalYear int) (Statistics, error) {
	q := s.db.Where("status = ?", models.BudgetStatusAllocated)

	if constituencyID != nil {
		q = q.Where("constituency_id = ?", constituencyID)
	}

	if fiscalYear != 0 {
		q = q.Where("fiscal_year = ?", fiscalYear)
	}

	var allocations []models.BudgetAllocation
	err := q.Find(&allocations).Error
	if err != nil {
		return Statistics{}, err
	}

	stats := Statistics{
		TotalAllocated:  decimal.Zero,
		TotalUtilized:   decimal.Zero,
		TotalCommitted:  decimal.Zero,
		TotalAvailable:  decimal.Zero,
		UtilizationRate: decimal.Zero,
		ByCategory:      make(map[models.BudgetCategory]CategoryStatistics),
	}

	for _, allocation := range allocations {
		stats.TotalAllocated = stats.TotalAllocated.Add(allocation.AllocatedAmount)
		stats.TotalUtilized = stats.TotalUtilized.Add(allocation.AmountUtilized)
		stats.TotalCommitted = stats.TotalCommitted.Add(allocation.AmountCommitted)
		stats.TotalAvailable = stats.TotalAvailable.Add(allocation.AmountAvailable)

		category := stats.ByCategory[allocation.Category]
		category.Allocated = category.Allocated.Add(allocation.AllocatedAmount)
		category.Utilized = category.Utilized.Add(allocation.AmountUtilized)
		category.Committed = category.Committed.Add(allocation.AmountCommitted)
		category.Available = category.Available.Add(allocation.AmountAvailable)
		stats.ByCategory[allocation.Category] = category
	}

	if stats.TotalAllocated.IsPositive() {
		stats.UtilizationRate = stats.TotalUtilized.Div(stats.TotalAllocated).Mul(decimal.NewFromInt(100))
	}

	return stats, nil
}
