// Package budget implements the budget ledger: it owns the
// available/committed/utilized amounts of a budget allocation and its
// status lifecycle. All amount movements are executed as conditional
// updates on the database so that concurrent commits can never spend
// the same available funds twice.
package budget

import (
	"fmt"
	"strings"
	"time"

	"github.com/cdfund/backend/internal/events"
	"github.com/cdfund/backend/internal/models"
	"github.com/cdfund/backend/internal/projects"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is the budget ledger.
type Service struct {
	db       *gorm.DB
	projects projects.Store
	events   events.Publisher
}

// NewService returns a ledger service working on the given database.
func NewService(db *gorm.DB, store projects.Store, publisher events.Publisher) *Service {
	return &Service{
		db:       db,
		projects: store,
		events:   publisher,
	}
}

// WithDB returns a copy of the service bound to db, normally a
// transaction. The payment voucher workflow uses this to run ledger
// calls and voucher writes in one transaction.
func (s *Service) WithDB(db *gorm.DB) *Service {
	return &Service{
		db:       db,
		projects: s.projects,
		events:   s.events,
	}
}

// WithPublisher returns a copy of the service publishing to the given
// sink, e.g. an events.Buffer while a transaction is open.
func (s *Service) WithPublisher(publisher events.Publisher) *Service {
	return &Service{
		db:       s.db,
		projects: s.projects,
		events:   publisher,
	}
}

// CreateRequest contains all values to create a new budget allocation.
type CreateRequest struct {
	FiscalYear      int                   `json:"fiscalYear" example:"2024"`
	Category        models.BudgetCategory `json:"category" example:"CAPITAL_PROJECTS"`
	ConstituencyID  uuid.UUID             `json:"constituencyId"`
	ProjectID       *uuid.UUID            `json:"projectId"`
	AllocatedAmount decimal.Decimal       `json:"allocatedAmount" example:"1000000"`
	EffectiveDate   time.Time             `json:"effectiveDate"`
	ExpiryDate      time.Time             `json:"expiryDate"`
	Description     string                `json:"description"`
}

// Create creates a budget allocation in DRAFT with the full allocated
// amount available.
func (s *Service) Create(req CreateRequest) (models.BudgetAllocation, error) {
	if !req.Category.Valid() {
		return models.BudgetAllocation{}, ErrCategoryInvalid
	}

	if req.AllocatedAmount.LessThan(decimal.NewFromInt(1)) {
		return models.BudgetAllocation{}, models.ErrAllocatedAmountTooSmall
	}

	if !req.EffectiveDate.Before(req.ExpiryDate) {
		return models.BudgetAllocation{}, ErrDatesInvalid
	}

	var allocation models.BudgetAllocation

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.ProjectID != nil {
			_, err := s.projects.Find(tx, *req.ProjectID)
			if err != nil {
				return err
			}

			var count int64
			err = tx.Model(&models.BudgetAllocation{}).
				Where("project_id = ? AND fiscal_year = ? AND status = ?", req.ProjectID, req.FiscalYear, models.BudgetStatusAllocated).
				Count(&count).Error
			if err != nil {
				return err
			}

			if count > 0 {
				return ErrProjectAllocationExists
			}
		}

		code, err := generateBudgetCode(tx, req.ConstituencyID, req.FiscalYear)
		if err != nil {
			return err
		}

		allocation = models.BudgetAllocation{
			BudgetCode:      code,
			FiscalYear:      req.FiscalYear,
			Category:        req.Category,
			ConstituencyID:  req.ConstituencyID,
			ProjectID:       req.ProjectID,
			AllocatedAmount: req.AllocatedAmount,
			AmountUtilized:  decimal.Zero,
			AmountCommitted: decimal.Zero,
			AmountAvailable: req.AllocatedAmount,
			Status:          models.BudgetStatusDraft,
			EffectiveDate:   req.EffectiveDate,
			ExpiryDate:      req.ExpiryDate,
			Description:     req.Description,
		}

		return tx.Create(&allocation).Error
	})
	if err != nil {
		return models.BudgetAllocation{}, err
	}

	log.Debug().Str("budgetCode", allocation.BudgetCode).Msg("budget allocation created")
	s.events.Publish(events.New("budget.created", Snapshot{Budget: allocation}))

	return allocation, nil
}

// Find returns the allocation with the given ID.
func (s *Service) Find(id uuid.UUID) (models.BudgetAllocation, error) {
	return s.find(s.db, id)
}

func (s *Service) find(db *gorm.DB, id uuid.UUID) (models.BudgetAllocation, error) {
	var allocation models.BudgetAllocation

	err := db.First(&allocation, "id = ?", id).Error
	if err != nil {
		return models.BudgetAllocation{}, err
	}

	return allocation, nil
}

// Filter restricts the allocations returned by FindAll.
type Filter struct {
	ConstituencyID *uuid.UUID
	ProjectID      *uuid.UUID
	FiscalYear     int
	Status         models.BudgetStatus
	Offset         int
	Limit          int
}

// FindAll returns allocations matching the filter, newest first, and the
// total number of matches.
func (s *Service) FindAll(filter Filter) ([]models.BudgetAllocation, int64, error) {
	q := s.db.Model(&models.BudgetAllocation{})

	if filter.ConstituencyID != nil {
		q = q.Where("constituency_id = ?", filter.ConstituencyID)
	}

	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", filter.ProjectID)
	}

	if filter.FiscalYear != 0 {
		q = q.Where("fiscal_year = ?", filter.FiscalYear)
	}

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
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

	var allocations []models.BudgetAllocation
	err = q.Order("created_at DESC").Offset(filter.Offset).Limit(limit).Find(&allocations).Error
	if err != nil {
		return nil, 0, err
	}

	return allocations, count, nil
}

// Submit moves a draft allocation into the approval queue.
func (s *Service) Submit(id uuid.UUID, actorID string) (models.BudgetAllocation, error) {
	allocation, err := s.find(s.db, id)
	if err != nil {
		return models.BudgetAllocation{}, err
	}

	if allocation.Status != models.BudgetStatusDraft {
		return models.BudgetAllocation{}, ErrOnlyDraftSubmit
	}

	allocation.Status = models.BudgetStatusSubmitted

	err = s.db.Save(&allocation).Error
	if err != nil {
		return models.BudgetAllocation{}, err
	}

	s.events.Publish(events.New("budget.submitted", Snapshot{Budget: allocation}))

	return allocation, nil
}

// Approve approves a submitted allocation.
func (s *Service) Approve(id uuid.UUID, notes, approverID string) (models.BudgetAllocation, error) {
	allocation, err := s.find(s.db, id)
	if err != nil {
		return models.BudgetAllocation{}, err
	}

	if allocation.Status != models.BudgetStatusSubmitted {
		return models.BudgetAllocation{}, ErrOnlySubmittedApprove
	}

	now := time.Now().In(time.UTC)
	allocation.Status = models.BudgetStatusApproved
	allocation.Approved = true
	allocation.ApprovedBy = approverID
	allocation.ApprovedAt = &now
	allocation.ApprovalNotes = notes

	err = s.db.Save(&allocation).Error
	if err != nil {
		return models.BudgetAllocation{}, err
	}

	log.Debug().Str("budgetCode", allocation.BudgetCode).Msg("budget allocation approved")
	s.events.Publish(events.New("budget.approved", Snapshot{Budget: allocation}))

	return allocation, nil
}

// Allocate activates an approved allocation. From here on the amounts
// only move through Commit, Utilize and ReleaseCommitment. If the
// allocation is bound to a project, the project's allocated budget is
// set in the same transaction.
func (s *Service) Allocate(id uuid.UUID, actorID string) (models.BudgetAllocation, error) {
	var allocation models.BudgetAllocation

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		allocation, err = s.find(tx, id)
		if err != nil {
			return err
		}

		if allocation.Status != models.BudgetStatusApproved {
			return ErrOnlyApprovedAllocate
		}

		if allocation.ProjectID != nil {
			// The uniqueness rule binds on the transition into ALLOCATED,
			// not only on create: two approved allocations for the same
			// project must not both activate.
			var count int64
			err = tx.Model(&models.BudgetAllocation{}).
				Where("project_id = ? AND fiscal_year = ? AND status = ? AND id != ?",
					allocation.ProjectID, allocation.FiscalYear, models.BudgetStatusAllocated, allocation.ID).
				Count(&count).Error
			if err != nil {
				return err
			}

			if count > 0 {
				return ErrProjectAllocationExists
			}

			err = s.projects.SetAllocatedBudget(tx, *allocation.ProjectID, allocation.AllocatedAmount)
			if err != nil {
				return err
			}
		}

		allocation.Status = models.BudgetStatusAllocated

		return tx.Save(&allocation).Error
	})
	if err != nil {
		return models.BudgetAllocation{}, err
	}

	log.Debug().Str("budgetCode", allocation.BudgetCode).Msg("budget allocated")
	s.events.Publish(events.New("budget.allocated", Snapshot{Budget: allocation}))

	return allocation, nil
}

// Commit reserves amount for a pending payment.
//
// The reservation is a single conditional update so that two concurrent
// commits cannot both spend the same available funds: the row is only
// changed when it is still ALLOCATED and has at least amount available.
func (s *Service) Commit(id uuid.UUID, amount decimal.Decimal) (models.BudgetAllocation, error) {
	if !amount.IsPositive() {
		return models.BudgetAllocation{}, ErrAmountNotPositive
	}

	allocation, err := s.find(s.db, id)
	if err != nil {
		return models.BudgetAllocation{}, err
	}

	if allocation.Status != models.BudgetStatusAllocated {
		return models.BudgetAllocation{}, ErrOnlyAllocatedCommit
	}

	res := s.db.Model(&models.BudgetAllocation{}).
		Session(&gorm.Session{SkipHooks: true}).
		Where("id = ? AND status = ? AND amount_available >= ?", id, models.BudgetStatusAllocated, amount).
		Updates(map[string]any{
			"amount_committed": gorm.Expr("amount_committed + ?", amount),
			"amount_available": gorm.Expr("amount_available - ?", amount),
		})
	if res.Error != nil {
		return models.BudgetAllocation{}, res.Error
	}

	if res.RowsAffected == 0 {
		allocation, err = s.find(s.db, id)
		if err != nil {
			return models.BudgetAllocation{}, err
		}

		if allocation.Status != models.BudgetStatusAllocated {
			return models.BudgetAllocation{}, ErrOnlyAllocatedCommit
		}

		return models.BudgetAllocation{}, fmt.Errorf("%w: available %s, requested %s",
			models.ErrInsufficientFunds, allocation.AmountAvailable, amount)
	}

	allocation, err = s.find(s.db, id)
	if err != nil {
		return models.BudgetAllocation{}, err
	}

	err = s.syncStatus(s.db, &allocation)
	if err != nil {
		return models.BudgetAllocation{}, err
	}

	log.Debug().Str("budgetCode", allocation.BudgetCode).Str("amount", amount.String()).Msg("budget committed")
	s.events.Publish(events.New("budget.committed", Movement{Budget: allocation, Amount: amount}))

	return allocation, nil
}

// Utilize converts committed funds into utilized funds when a payment is
// executed. Amounts beyond the current commitment are taken from the
// available funds so that the ledger invariant holds in all cases.
func (s *Service) Utilize(id uuid.UUID, amount decimal.Decimal) (models.BudgetAllocation, error) {
	if !amount.IsPositive() {
		return models.BudgetAllocation{}, ErrAmountNotPositive
	}

	var allocation models.BudgetAllocation

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		allocation, err = s.find(tx, id)
		if err != nil {
			return err
		}

		if allocation.Status != models.BudgetStatusAllocated {
			return ErrOnlyAllocatedUtilize
		}

		res := tx.Model(&models.BudgetAllocation{}).
			Session(&gorm.Session{SkipHooks: true}).
			Where("id = ? AND status = ? AND amount_committed + amount_available >= ?",
				id, models.BudgetStatusAllocated, amount).
			Updates(map[string]any{
				"amount_utilized": gorm.Expr("amount_utilized + ?", amount),
				"amount_available": gorm.Expr(
					"CASE WHEN amount_committed >= ? THEN amount_available ELSE amount_available - (? - amount_committed) END",
					amount, amount),
				"amount_committed": gorm.Expr(
					"CASE WHEN amount_committed >= ? THEN amount_committed - ? ELSE 0 END",
					amount, amount),
			})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return ErrUtilizeExceedsFunds
		}

		allocation, err = s.find(tx, id)
		if err != nil {
			return err
		}

		err = s.syncStatus(tx, &allocation)
		if err != nil {
			return err
		}

		if allocation.ProjectID != nil {
			err = s.projects.IncrementDisbursed(tx, *allocation.ProjectID, amount)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return models.BudgetAllocation{}, err
	}

	log.Debug().Str("budgetCode", allocation.BudgetCode).Str("amount", amount.String()).Msg("budget utilized")
	s.events.Publish(events.New("budget.utilized", Movement{Budget: allocation, Amount: amount}))

	return allocation, nil
}

// ReleaseCommitment returns committed funds to the available amount when
// a voucher is rejected or cancelled before payment.
func (s *Service) ReleaseCommitment(id uuid.UUID, amount decimal.Decimal) (models.BudgetAllocation, error) {
	if !amount.IsPositive() {
		return models.BudgetAllocation{}, ErrAmountNotPositive
	}

	allocation, err := s.find(s.db, id)
	if err != nil {
		return models.BudgetAllocation{}, err
	}

	res := s.db.Model(&models.BudgetAllocation{}).
		Session(&gorm.Session{SkipHooks: true}).
		Where("id = ? AND amount_committed >= ?", id, amount).
		Updates(map[string]any{
			"amount_committed": gorm.Expr("amount_committed - ?", amount),
			"amount_available": gorm.Expr("amount_available + ?", amount),
		})
	if res.Error != nil {
		return models.BudgetAllocation{}, res.Error
	}

	if res.RowsAffected == 0 {
		allocation, err = s.find(s.db, id)
		if err != nil {
			return models.BudgetAllocation{}, err
		}

		return models.BudgetAllocation{}, fmt.Errorf("%w: committed %s, requested %s",
			ErrReleaseExceedsCommitment, allocation.AmountCommitted, amount)
	}

	allocation, err = s.find(s.db, id)
	if err != nil {
		return models.BudgetAllocation{}, err
	}

	err = s.syncStatus(s.db, &allocation)
	if err != nil {
		return models.BudgetAllocation{}, err
	}

	log.Debug().Str("budgetCode", allocation.BudgetCode).Str("amount", amount.String()).Msg("budget commitment released")
	s.events.Publish(events.New("budget.commitment_released", Movement{Budget: allocation, Amount: amount}))

	return allocation, nil
}

// UpdateRequest contains the fields that can be changed on an allocation
// that has not been activated yet. Nil fields stay untouched.
type UpdateRequest struct {
	Category        *models.BudgetCategory `json:"category"`
	AllocatedAmount *decimal.Decimal       `json:"allocatedAmount"`
	EffectiveDate   *time.Time             `json:"effectiveDate"`
	ExpiryDate      *time.Time             `json:"expiryDate"`
	Description     *string                `json:"description"`
}

// Update edits an allocation while it is in DRAFT, SUBMITTED or
// APPROVED. When the allocated amount changes, the available amount is
// recomputed from the unchanged utilized and committed amounts.
func (s *Service) Update(id uuid.UUID, req UpdateRequest) (models.BudgetAllocation, error) {
	allocation, err := s.find(s.db, id)
	if err != nil {
		return models.BudgetAllocation{}, err
	}

	if !allocation.Editable() {
		return models.BudgetAllocation{}, ErrNotEditable
	}

	if req.Category != nil {
		if !req.Category.Valid() {
			return models.BudgetAllocation{}, ErrCategoryInvalid
		}
		allocation.Category = *req.Category
	}

	if req.EffectiveDate != nil {
		allocation.EffectiveDate = *req.EffectiveDate
	}

	if req.ExpiryDate != nil {
		allocation.ExpiryDate = *req.ExpiryDate
	}

	if !allocation.EffectiveDate.Before(allocation.ExpiryDate) {
		return models.BudgetAllocation{}, ErrDatesInvalid
	}

	if req.Description != nil {
		allocation.Description = *req.Description
	}

	if req.AllocatedAmount != nil {
		if req.AllocatedAmount.LessThan(decimal.NewFromInt(1)) {
			return models.BudgetAllocation{}, models.ErrAllocatedAmountTooSmall
		}

		allocation.AllocatedAmount = *req.AllocatedAmount
		allocation.AmountAvailable = allocation.AllocatedAmount.
			Sub(allocation.AmountUtilized).
			Sub(allocation.AmountCommitted)
	}

	err = s.db.Save(&allocation).Error
	if err != nil {
		return models.BudgetAllocation{}, err
	}

	err = s.syncStatus(s.db, &allocation)
	if err != nil {
		return models.BudgetAllocation{}, err
	}

	s.events.Publish(events.New("budget.updated", Snapshot{Budget: allocation}))

	return allocation, nil
}

// syncStatus transitions the allocation to the status its amounts
// require. It is invoked after every mutating operation so that the
// EXHAUSTED transition does not depend on which operation drained the
// allocation.
func (s *Service) syncStatus(db *gorm.DB, allocation *models.BudgetAllocation) error {
	next := allocation.NextStatus()
	if next == allocation.Status {
		return nil
	}

	err := db.Model(&models.BudgetAllocation{}).
		Session(&gorm.Session{SkipHooks: true}).
		Where("id = ? AND status = ?", allocation.ID, allocation.Status).
		Update("status", next).Error
	if err != nil {
		return err
	}

	allocation.Status = next

	return nil
}

// Snapshot is the payload of budget lifecycle events.
type Snapshot struct {
	Budget models.BudgetAllocation `json:"budget"`
}

// Movement is the payload of events that move amounts on the ledger.
type Movement struct {
	Budget models.BudgetAllocation `json:"budget"`
	Amount decimal.Decimal         `json:"amount"`
}

// generateBudgetCode builds the human readable allocation code
// BUD-<CONST8>-<YY>-<NNNN> from a count-based sequence per constituency
// and fiscal year.
func generateBudgetCode(db *gorm.DB, constituencyID uuid.UUID, fiscalYear int) (string, error) {
	var count int64

	err := db.Model(&models.BudgetAllocation{}).
		Where("constituency_id = ? AND fiscal_year = ?", constituencyID, fiscalYear).
		Count(&count).Error
	if err != nil {
		return "", err
	}

	constCode := strings.ToUpper(constituencyID.String()[:8])

	return fmt.Sprintf("BUD-%s-%02d-%04d", constCode, fiscalYear%100, count+1), nil
}
