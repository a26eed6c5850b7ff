// Package payments implements the payment voucher state machine with
// its dual-approval workflow: Panel A has to sign off before Panel B,
// and both before a payment can be executed.
//
// Every transition that moves money calls into the budget ledger inside
// the same database transaction that persists the voucher, so a failed
// ledger call can never leave the voucher ahead of the ledger or the
// other way around. Budget is committed exactly once at submission,
// released exactly once on a terminal rejection or cancellation, and
// utilized exactly once at execution.
package payments

import (
	"fmt"
	"time"

	"github.com/cdfund/backend/internal/budget"
	"github.com/cdfund/backend/internal/events"
	"github.com/cdfund/backend/internal/models"
	"github.com/cdfund/backend/internal/projects"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is the payment voucher workflow.
type Service struct {
	db       *gorm.DB
	ledger   *budget.Service
	projects projects.Store
	events   events.Publisher
}

// NewService returns a voucher service working on the given database.
func NewService(db *gorm.DB, ledger *budget.Service, store projects.Store, publisher events.Publisher) *Service {
	return &Service{
		db:       db,
		ledger:   ledger,
		projects: store,
		events:   publisher,
	}
}

// DocumentRequest is a supporting document attached at creation. The
// upload timestamp is stamped by the service.
type DocumentRequest struct {
	URL  string `json:"url" example:"https://storage.example.com/invoice123.pdf"`
	Type string `json:"type" example:"invoice"`
	Name string `json:"name" example:"Invoice #123"`
}

// CreateRequest contains all values to create a new payment voucher.
type CreateRequest struct {
	PaymentType        models.PaymentType   `json:"paymentType" example:"CONTRACTOR_PAYMENT"`
	FiscalYear         int                  `json:"fiscalYear" example:"2024"`
	ProjectID          uuid.UUID            `json:"projectId"`
	BudgetAllocationID uuid.UUID            `json:"budgetAllocationId"`
	PayeeName          string               `json:"payeeName" example:"ABC Construction Ltd"`
	PayeeID            *uuid.UUID           `json:"payeeId"`
	PayeeAccountNumber string               `json:"payeeAccountNumber" example:"1234567890"`
	PayeeBankName      string               `json:"payeeBankName"`
	PayeeBankBranch    string               `json:"payeeBankBranch"`
	PayeePhoneNumber   string               `json:"payeePhoneNumber"`
	Amount             decimal.Decimal      `json:"amount" example:"50000"`
	RetentionPercent   decimal.Decimal      `json:"retentionPercentage" example:"10"`
	PaymentMethod      models.PaymentMethod `json:"paymentMethod" example:"BANK_TRANSFER"`
	Description        string               `json:"description"`
	InvoiceNumber      string               `json:"invoiceNumber"`
	InvoiceDate        *time.Time           `json:"invoiceDate"`
	Documents          []DocumentRequest    `json:"supportingDocuments"`
}

// Create creates a voucher in DRAFT. The retention and net amounts are
// computed here, once, and never recomputed afterwards.
func (s *Service) Create(req CreateRequest, actorID string) (models.PaymentVoucher, error) {
	if !req.PaymentType.Valid() {
		return models.PaymentVoucher{}, ErrPaymentTypeInvalid
	}

	if !req.PaymentMethod.Valid() {
		return models.PaymentVoucher{}, ErrPaymentMethodInvalid
	}

	if req.Amount.LessThan(decimal.NewFromInt(1)) {
		return models.PaymentVoucher{}, ErrAmountTooSmall
	}

	if req.RetentionPercent.IsNegative() || req.RetentionPercent.GreaterThan(decimal.NewFromInt(100)) {
		return models.PaymentVoucher{}, ErrRetentionOutOfRange
	}

	retention := req.Amount.Mul(req.RetentionPercent).Div(decimal.NewFromInt(100))

	now := time.Now().In(time.UTC)
	documents := make([]models.SupportingDocument, 0, len(req.Documents))
	for _, doc := range req.Documents {
		documents = append(documents, models.SupportingDocument{
			URL:        doc.URL,
			Type:       doc.Type,
			Name:       doc.Name,
			UploadedAt: now,
		})
	}

	var voucher models.PaymentVoucher

	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&models.BudgetAllocation{}, "id = ?", req.BudgetAllocationID).Error
		if err != nil {
			return err
		}

		_, err = s.projects.Find(tx, req.ProjectID)
		if err != nil {
			return err
		}

		number, err := generateVoucherNumber(tx, req.FiscalYear)
		if err != nil {
			return err
		}

		voucher = models.PaymentVoucher{
			VoucherNumber:      number,
			PaymentType:        req.PaymentType,
			FiscalYear:         req.FiscalYear,
			ProjectID:          req.ProjectID,
			BudgetAllocationID: req.BudgetAllocationID,
			PayeeName:          req.PayeeName,
			PayeeID:            req.PayeeID,
			PayeeAccountNumber: req.PayeeAccountNumber,
			PayeeBankName:      req.PayeeBankName,
			PayeeBankBranch:    req.PayeeBankBranch,
			PayeePhoneNumber:   req.PayeePhoneNumber,
			Amount:             req.Amount,
			RetentionPercent:   req.RetentionPercent,
			RetentionAmount:    retention,
			NetAmount:          req.Amount.Sub(retention),
			PaymentMethod:      req.PaymentMethod,
			Description:        req.Description,
			InvoiceNumber:      req.InvoiceNumber,
			InvoiceDate:        req.InvoiceDate,
			Status:             models.PaymentStatusDraft,
			Documents:          documents,
		}

		return tx.Create(&voucher).Error
	})
	if err != nil {
		return models.PaymentVoucher{}, err
	}

	log.Debug().Str("voucherNumber", voucher.VoucherNumber).Msg("payment voucher created")
	s.events.Publish(events.New("payment.created", Snapshot{Payment: voucher}))

	return voucher, nil
}

// Find returns the voucher with the given ID.
func (s *Service) Find(id uuid.UUID) (models.PaymentVoucher, error) {
	return s.find(s.db, id)
}

func (s *Service) find(db *gorm.DB, id uuid.UUID) (models.PaymentVoucher, error) {
	var voucher models.PaymentVoucher

	err := db.First(&voucher, "id = ?", id).Error
	if err != nil {
		return models.PaymentVoucher{}, err
	}

	return voucher, nil
}

// Filter restricts the vouchers returned by FindAll.
type Filter struct {
	ProjectID  *uuid.UUID
	Status     models.PaymentStatus
	FiscalYear int
	Offset     int
	Limit      int
}

// FindAll returns vouchers matching the filter, newest first, and the
// total number of matches.
func (s *Service) FindAll(filter Filter) ([]models.PaymentVoucher, int64, error) {
	q := s.db.Model(&models.PaymentVoucher{})

	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", filter.ProjectID)
	}

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	if filter.FiscalYear != 0 {
		q = q.Where("fiscal_year = ?", filter.FiscalYear)
	}

	var count int64
	err := q.Count(&count).Error
	if err != nil {
		return nil, 0, err
	}

	limit := 50
	if filter.Limit > 0 {
		limit = filter.Limit
	}

	var vouchers []models.PaymentVoucher
	err = q.Order("created_at DESC").Offset(filter.Offset).Limit(limit).Find(&vouchers).Error
	if err != nil {
		return nil, 0, err
	}

	return vouchers, count, nil
}

// Submit moves a draft voucher into the approval workflow and commits
// its net amount against the budget allocation.
func (s *Service) Submit(id uuid.UUID, actorID string) (models.PaymentVoucher, error) {
	var voucher models.PaymentVoucher
	buffer := new(events.Buffer)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		voucher, err = s.find(tx, id)
		if err != nil {
			return err
		}

		if voucher.Status != models.PaymentStatusDraft {
			return ErrOnlyDraftSubmit
		}

		if len(voucher.Documents) == 0 {
			return ErrDocumentsRequired
		}

		_, err = s.ledger.WithDB(tx).WithPublisher(buffer).Commit(voucher.BudgetAllocationID, voucher.NetAmount)
		if err != nil {
			return err
		}

		voucher.Status = models.PaymentStatusPanelAPending

		return tx.Save(&voucher).Error
	})
	if err != nil {
		return models.PaymentVoucher{}, err
	}

	buffer.Flush(s.events)

	log.Debug().
		Str("voucherNumber", voucher.VoucherNumber).
		Str("netAmount", voucher.NetAmount.String()).
		Msg("payment voucher submitted")
	s.events.Publish(events.New("payment.submitted", Snapshot{Payment: voucher}))

	return voucher, nil
}

// PanelAApprove records the first panel's decision. A rejection releases
// the budget commitment and terminates the voucher.
func (s *Service) PanelAApprove(id uuid.UUID, approved bool, notes, actorID string) (models.PaymentVoucher, error) {
	var voucher models.PaymentVoucher
	buffer := new(events.Buffer)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		voucher, err = s.find(tx, id)
		if err != nil {
			return err
		}

		if voucher.Status != models.PaymentStatusPanelAPending {
			return ErrNotPanelAPending
		}

		now := time.Now().In(time.UTC)

		if !approved {
			_, err = s.ledger.WithDB(tx).WithPublisher(buffer).ReleaseCommitment(voucher.BudgetAllocationID, voucher.NetAmount)
			if err != nil {
				return err
			}

			voucher.Status = models.PaymentStatusPanelARejected
			voucher.RejectionReason = notes
			voucher.RejectedAt = &now
			voucher.RejectedBy = actorID
		} else {
			voucher.PanelAApproved = true
			voucher.PanelAApprovedBy = actorID
			voucher.PanelAApprovedAt = &now
			voucher.PanelANotes = notes
			voucher.Status = models.PaymentStatusPanelBPending
		}

		return tx.Save(&voucher).Error
	})
	if err != nil {
		return models.PaymentVoucher{}, err
	}

	buffer.Flush(s.events)

	log.Debug().Str("voucherNumber", voucher.VoucherNumber).Bool("approved", approved).Msg("panel A decision")
	s.events.Publish(events.New("payment.panel_a_decision", Decision{Payment: voucher, Approved: approved}))

	return voucher, nil
}

// PanelBApprove records the second panel's decision. The Panel A flag is
// checked on its own, not implied from the status, so that a voucher
// with a desynchronized status can never skip the first panel.
func (s *Service) PanelBApprove(id uuid.UUID, approved bool, notes, actorID string) (models.PaymentVoucher, error) {
	var voucher models.PaymentVoucher
	buffer := new(events.Buffer)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		voucher, err = s.find(tx, id)
		if err != nil {
			return err
		}

		if !voucher.PanelAApproved {
			return ErrPanelARequired
		}

		if voucher.Status != models.PaymentStatusPanelBPending {
			return ErrNotPanelBPending
		}

		now := time.Now().In(time.UTC)

		if !approved {
			_, err = s.ledger.WithDB(tx).WithPublisher(buffer).ReleaseCommitment(voucher.BudgetAllocationID, voucher.NetAmount)
			if err != nil {
				return err
			}

			voucher.Status = models.PaymentStatusPanelBRejected
			voucher.RejectionReason = notes
			voucher.RejectedAt = &now
			voucher.RejectedBy = actorID
		} else {
			voucher.PanelBApproved = true
			voucher.PanelBApprovedBy = actorID
			voucher.PanelBApprovedAt = &now
			voucher.PanelBNotes = notes
			voucher.Status = models.PaymentStatusPaymentPending
		}

		return tx.Save(&voucher).Error
	})
	if err != nil {
		return models.PaymentVoucher{}, err
	}

	buffer.Flush(s.events)

	log.Debug().Str("voucherNumber", voucher.VoucherNumber).Bool("approved", approved).Msg("panel B decision")
	s.events.Publish(events.New("payment.panel_b_decision", Decision{Payment: voucher, Approved: approved}))

	return voucher, nil
}

// Execute disburses the payment and utilizes the committed budget. Both
// approval flags are checked on their own, independent of the status.
func (s *Service) Execute(id uuid.UUID, reference, receiptURL, actorID string) (models.PaymentVoucher, error) {
	var voucher models.PaymentVoucher
	buffer := new(events.Buffer)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		voucher, err = s.find(tx, id)
		if err != nil {
			return err
		}

		if !voucher.IsFullyApproved() {
			return ErrNotFullyApproved
		}

		if voucher.Status != models.PaymentStatusPaymentPending {
			return ErrNotPaymentPending
		}

		_, err = s.ledger.WithDB(tx).WithPublisher(buffer).Utilize(voucher.BudgetAllocationID, voucher.NetAmount)
		if err != nil {
			return err
		}

		now := time.Now().In(time.UTC)
		voucher.Paid = true
		voucher.PaymentDate = &now
		voucher.PaymentReference = reference
		voucher.PaymentReceiptURL = receiptURL
		voucher.ProcessedBy = actorID
		voucher.Status = models.PaymentStatusPaid

		return tx.Save(&voucher).Error
	})
	if err != nil {
		return models.PaymentVoucher{}, err
	}

	buffer.Flush(s.events)

	log.Debug().
		Str("voucherNumber", voucher.VoucherNumber).
		Str("netAmount", voucher.NetAmount.String()).
		Str("reference", reference).
		Msg("payment executed")
	s.events.Publish(events.New("payment.executed", Snapshot{Payment: voucher}))

	return voucher, nil
}

// Cancel terminates an unpaid voucher and releases its budget
// commitment if it held one. Paid vouchers can never be cancelled.
func (s *Service) Cancel(id uuid.UUID, reason, actorID string) (models.PaymentVoucher, error) {
	var voucher models.PaymentVoucher
	buffer := new(events.Buffer)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		voucher, err = s.find(tx, id)
		if err != nil {
			return err
		}

		if voucher.Paid {
			return ErrPaidNotCancellable
		}

		if voucher.Status.Pending() {
			_, err = s.ledger.WithDB(tx).WithPublisher(buffer).ReleaseCommitment(voucher.BudgetAllocationID, voucher.NetAmount)
			if err != nil {
				return err
			}
		}

		now := time.Now().In(time.UTC)
		voucher.Status = models.PaymentStatusCancelled
		voucher.RejectionReason = reason
		voucher.RejectedAt = &now
		voucher.RejectedBy = actorID

		return tx.Save(&voucher).Error
	})
	if err != nil {
		return models.PaymentVoucher{}, err
	}

	buffer.Flush(s.events)

	log.Debug().Str("voucherNumber", voucher.VoucherNumber).Msg("payment voucher cancelled")
	s.events.Publish(events.New("payment.cancelled", Snapshot{Payment: voucher}))

	return voucher, nil
}

// Snapshot is the payload of payment lifecycle events.
type Snapshot struct {
	Payment models.PaymentVoucher `json:"payment"`
}

// Decision is the payload of panel decision events.
type Decision struct {
	Payment  models.PaymentVoucher `json:"payment"`
	Approved bool                  `json:"approved"`
}

// generateVoucherNumber builds the human readable voucher number
// PV-<YY>-<NNNNNN> from a count-based sequence per fiscal year.
func generateVoucherNumber(db *gorm.DB, fiscalYear int) (string, error) {
	var count int64

	err := db.Model(&models.PaymentVoucher{}).
		Where("fiscal_year = ?", fiscalYear).
		Count(&count).Error
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("PV-%02d-%06d", fiscalYear%100, count+1), nil
}
