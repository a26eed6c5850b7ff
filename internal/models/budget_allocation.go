package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// BudgetStatus is the lifecycle status of a budget allocation.
type BudgetStatus string

const (
	BudgetStatusDraft     BudgetStatus = "DRAFT"
	BudgetStatusSubmitted BudgetStatus = "SUBMITTED"
	BudgetStatusApproved  BudgetStatus = "APPROVED"
	BudgetStatusAllocated BudgetStatus = "ALLOCATED"
	BudgetStatusExhausted BudgetStatus = "EXHAUSTED"
)

// BudgetCategory classifies what an allocation may be spent on.
type BudgetCategory string

const (
	BudgetCategoryCapitalProjects      BudgetCategory = "CAPITAL_PROJECTS"
	BudgetCategoryRecurrentExpenses    BudgetCategory = "RECURRENT_EXPENSES"
	BudgetCategoryEmergencyFund        BudgetCategory = "EMERGENCY_FUND"
	BudgetCategoryAdministrativeCosts  BudgetCategory = "ADMINISTRATIVE_COSTS"
	BudgetCategoryMonitoringEvaluation BudgetCategory = "MONITORING_EVALUATION"
)

var budgetCategories = []BudgetCategory{
	BudgetCategoryCapitalProjects,
	BudgetCategoryRecurrentExpenses,
	BudgetCategoryEmergencyFund,
	BudgetCategoryAdministrativeCosts,
	BudgetCategoryMonitoringEvaluation,
}

// Valid reports whether the category is one of the defined budget categories.
func (c BudgetCategory) Valid() bool {
	return slices.Contains(budgetCategories, c)
}

// BudgetAllocation represents a fiscal allocation to a constituency and
// optionally a specific project.
//
// The amount fields satisfy
// AmountAvailable = AllocatedAmount - AmountUtilized - AmountCommitted
// after every mutation. All movements between the amounts go through the
// budget ledger service, never through direct field writes.
type BudgetAllocation struct {
	DefaultModel
	BudgetCode      string          `json:"budgetCode" gorm:"uniqueIndex" example:"BUD-A1B2C3D4-24-0001"`
	FiscalYear      int             `json:"fiscalYear" gorm:"index:idx_budget_year_status" example:"2024"`
	Category        BudgetCategory  `json:"category" example:"CAPITAL_PROJECTS"`
	ConstituencyID  uuid.UUID       `json:"constituencyId" gorm:"index"`
	ProjectID       *uuid.UUID      `json:"projectId" gorm:"index"`
	Project         *Project        `json:"-"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount" gorm:"type:DECIMAL(20,8)" example:"1000000"`
	AmountUtilized  decimal.Decimal `json:"amountUtilized" gorm:"type:DECIMAL(20,8)" example:"45000"`
	AmountCommitted decimal.Decimal `json:"amountCommitted" gorm:"type:DECIMAL(20,8)" example:"0"`
	AmountAvailable decimal.Decimal `json:"amountAvailable" gorm:"type:DECIMAL(20,8)" example:"955000"`
	Status          BudgetStatus    `json:"status" gorm:"index:idx_budget_year_status" example:"ALLOCATED"`
	Approved        bool            `json:"approved" example:"true"`
	ApprovedBy      string          `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time      `json:"approvedAt,omitempty"`
	ApprovalNotes   string          `json:"approvalNotes,omitempty"`
	EffectiveDate   time.Time       `json:"effectiveDate"`
	ExpiryDate      time.Time       `json:"expiryDate"`
	Description     string          `json:"description,omitempty"`
}

var ErrAllocatedAmountTooSmall = fmt.Errorf("%w: the allocated amount must be at least 1", ErrValidation)

// BeforeSave trims whitespace from all user supplied strings.
func (b *BudgetAllocation) BeforeSave(_ *gorm.DB) error {
	b.ApprovalNotes = strings.TrimSpace(b.ApprovalNotes)
	b.Description = strings.TrimSpace(b.Description)

	return nil
}

func (b *BudgetAllocation) AfterSave(_ *gorm.DB) error {
	if b.AllocatedAmount.LessThan(decimal.NewFromInt(1)) {
		return ErrAllocatedAmountTooSmall
	}

	return nil
}

// Editable reports whether the allocation may still be modified directly.
// Once allocated, the amounts only move through commit, utilize and release.
func (b BudgetAllocation) Editable() bool {
	return b.Status == BudgetStatusDraft || b.Status == BudgetStatusSubmitted || b.Status == BudgetStatusApproved
}

// NextStatus returns the status the allocation has to be in after a
// mutation of its amounts. An allocated budget with nothing available
// and nothing committed is exhausted; every other combination keeps
// the current status.
func (b BudgetAllocation) NextStatus() BudgetStatus {
	if b.Status == BudgetStatusAllocated && !b.AmountAvailable.IsPositive() && !b.AmountCommitted.IsPositive() {
		return BudgetStatusExhausted
	}

	return b.Status
}

// Balanced reports whether the amount fields satisfy the ledger
// invariant AmountAvailable = AllocatedAmount - AmountUtilized - AmountCommitted.
func (b BudgetAllocation) Balanced() bool {
	return b.AmountAvailable.Equal(b.AllocatedAmount.Sub(b.AmountUtilized).Sub(b.AmountCommitted))
}

// UtilizationRate returns the utilized share of the allocation in percent.
func (b BudgetAllocation) UtilizationRate() decimal.Decimal {
	if b.AllocatedAmount.IsZero() {
		return decimal.Zero
	}

	return b.AmountUtilized.Div(b.AllocatedAmount).Mul(decimal.NewFromInt(100))
}

// CommitmentRate returns the committed share of the allocation in percent.
func (b BudgetAllocation) CommitmentRate() decimal.Decimal {
	if b.AllocatedAmount.IsZero() {
		return decimal.Zero
	}

	return b.AmountCommitted.Div(b.AllocatedAmount).Mul(decimal.NewFromInt(100))
}
