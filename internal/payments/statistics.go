package payments

import (
	"github.com/cdfund/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatusStatistics aggregates vouchers in one status.
type StatusStatistics struct {
	Count  int64           `json:"count" example:"3"`
	Amount decimal.Decimal `json:"amount" example:"135000"`
}

// Statistics aggregates vouchers by outcome, optionally restricted to a
// project and fiscal year.
type Statistics struct {
	TotalCount     int64                                     `json:"totalCount" example:"10"`
	TotalAmount    decimal.Decimal                           `json:"totalAmount" example:"500000"`
	PaidCount      int64                                     `json:"paidCount" example:"4"`
	PaidAmount     decimal.Decimal                           `json:"paidAmount" example:"180000"`
	PendingCount   int64                                     `json:"pendingCount" example:"3"`
	PendingAmount  decimal.Decimal                           `json:"pendingAmount" example:"135000"`
	RejectedCount  int64                                     `json:"rejectedCount" example:"2"`
	RejectedAmount decimal.Decimal                           `json:"rejectedAmount" example:"90000"`
	ByStatus       map[models.PaymentStatus]StatusStatistics `json:"byStatus"`
}

// Statistics aggregates voucher counts and net amounts by status. Paid
// and pending totals use the net amount since that is what moves on the
// budget ledger.
func (s *Service) Statistics(projectID *uuid.UUID, fiscalYear int) (Statistics, error) {
	q := s.db.Model(&models.PaymentVoucher{})

	if projectID != nil {
		q = q.Where("project_id = ?", projectID)
	}

	if fiscalYear != 0 {
		q = q.Where("fiscal_year = ?", fiscalYear)
	}

	var vouchers []models.PaymentVoucher
	err := q.Find(&vouchers).Error
	if err != nil {
		return Statistics{}, err
	}

	stats := Statistics{
		TotalAmount:    decimal.Zero,
		PaidAmount:     decimal.Zero,
		PendingAmount:  decimal.Zero,
		RejectedAmount: decimal.Zero,
		ByStatus:       make(map[models.PaymentStatus]StatusStatistics),
	}

	for _, voucher := range vouchers {
		stats.TotalCount++
		stats.TotalAmount = stats.TotalAmount.Add(voucher.NetAmount)

		switch {
		case voucher.Status == models.PaymentStatusPaid:
			stats.PaidCount++
			stats.PaidAmount = stats.PaidAmount.Add(voucher.NetAmount)
		case voucher.Status.Pending():
			stats.PendingCount++
			stats.PendingAmount = stats.PendingAmount.Add(voucher.NetAmount)
		case voucher.Status == models.PaymentStatusPanelARejected || voucher.Status == models.PaymentStatusPanelBRejected:
			stats.RejectedCount++
			stats.RejectedAmount = stats.RejectedAmount.Add(voucher.NetAmount)
		}

		byStatus := stats.ByStatus[voucher.Status]
		byStatus.Count++
		byStatus.Amount = byStatus.Amount.Add(voucher.NetAmount)
		stats.ByStatus[voucher.Status] = byStatus
	}

	return stats, nil
}
