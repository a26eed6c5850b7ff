package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// PaymentStatus is the state of a payment voucher in the dual-approval
// workflow.
type PaymentStatus string

const (
	PaymentStatusDraft          PaymentStatus = "DRAFT"
	PaymentStatusPanelAPending  PaymentStatus = "PANEL_A_PENDING"
	PaymentStatusPanelARejected PaymentStatus = "PANEL_A_REJECTED"
	PaymentStatusPanelBPending  PaymentStatus = "PANEL_B_PENDING"
	PaymentStatusPanelBRejected PaymentStatus = "PANEL_B_REJECTED"
	PaymentStatusPaymentPending PaymentStatus = "PAYMENT_PENDING"
	PaymentStatusPaid           PaymentStatus = "PAID"
	PaymentStatusCancelled      PaymentStatus = "CANCELLED"
)

// Pending reports whether the voucher currently holds a budget commitment.
func (s PaymentStatus) Pending() bool {
	return s == PaymentStatusPanelAPending || s == PaymentStatusPanelBPending || s == PaymentStatusPaymentPending
}

// PaymentType classifies what a voucher pays for.
type PaymentType string

const (
	PaymentTypeContractor       PaymentType = "CONTRACTOR_PAYMENT"
	PaymentTypeSupplier         PaymentType = "SUPPLIER_PAYMENT"
	PaymentTypeService          PaymentType = "SERVICE_PAYMENT"
	PaymentTypeAdvance          PaymentType = "ADVANCE_PAYMENT"
	PaymentTypeRetentionRelease PaymentType = "RETENTION_RELEASE"
	PaymentTypeRefund           PaymentType = "REFUND"
	PaymentTypeOther            PaymentType = "OTHER"
)

var paymentTypes = []PaymentType{
	PaymentTypeContractor,
	PaymentTypeSupplier,
	PaymentTypeService,
	PaymentTypeAdvance,
	PaymentTypeRetentionRelease,
	PaymentTypeRefund,
	PaymentTypeOther,
}

// Valid reports whether the payment type is one of the defined types.
func (t PaymentType) Valid() bool {
	return slices.Contains(paymentTypes, t)
}

// PaymentMethod is the channel a payment is disbursed through.
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
	PaymentMethodCash         PaymentMethod = "CASH"
)

var paymentMethods = []PaymentMethod{
	PaymentMethodBankTransfer,
	PaymentMethodMobileMoney,
	PaymentMethodCheque,
	PaymentMethodCash,
}

// Valid reports whether the payment method is one of the defined methods.
func (m PaymentMethod) Valid() bool {
	return slices.Contains(paymentMethods, m)
}

// SupportingDocument is a document attached to a voucher, e.g. an invoice
// or a completion certificate.
type SupportingDocument struct {
	URL        string    `json:"url"`
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// PaymentVoucher is a payment request tracked through the dual-approval
// workflow. It references exactly one budget allocation by ID and never
// mutates the allocation's amounts itself.
//
// Vouchers are not physically deleted. A voucher that should not be paid
// is cancelled so that the financial record persists for audit.
type PaymentVoucher struct {
	DefaultModel
	VoucherNumber      string               `json:"voucherNumber" gorm:"uniqueIndex" example:"PV-24-000001"`
	PaymentType        PaymentType          `json:"paymentType" example:"CONTRACTOR_PAYMENT"`
	FiscalYear         int                  `json:"fiscalYear" gorm:"index" example:"2024"`
	ProjectID          uuid.UUID            `json:"projectId" gorm:"index"`
	Project            *Project             `json:"-"`
	BudgetAllocationID uuid.UUID            `json:"budgetAllocationId" gorm:"index"`
	PayeeName          string               `json:"payeeName" example:"ABC Construction Ltd"`
	PayeeID            *uuid.UUID           `json:"payeeId,omitempty"`
	PayeeAccountNumber string               `json:"payeeAccountNumber" example:"1234567890"`
	PayeeBankName      string               `json:"payeeBankName,omitempty"`
	PayeeBankBranch    string               `json:"payeeBankBranch,omitempty"`
	PayeePhoneNumber   string               `json:"payeePhoneNumber,omitempty"`
	Amount             decimal.Decimal      `json:"amount" gorm:"type:DECIMAL(20,8)" example:"50000"`
	RetentionPercent   decimal.Decimal      `json:"retentionPercentage" gorm:"type:DECIMAL(5,2)" example:"10"`
	RetentionAmount    decimal.Decimal      `json:"retentionAmount" gorm:"type:DECIMAL(20,8)" example:"5000"`
	NetAmount          decimal.Decimal      `json:"netAmount" gorm:"type:DECIMAL(20,8)" example:"45000"`
	PaymentMethod      PaymentMethod        `json:"paymentMethod" example:"BANK_TRANSFER"`
	Description        string               `json:"description"`
	InvoiceNumber      string               `json:"invoiceNumber,omitempty"`
	InvoiceDate        *time.Time           `json:"invoiceDate,omitempty"`
	Status             PaymentStatus        `json:"status" gorm:"index" example:"PANEL_A_PENDING"`
	Documents          []SupportingDocument `json:"supportingDocuments" gorm:"serializer:json"`

	// Panel A approval, the first sign-off in the dual-approval workflow
	PanelAApproved   bool       `json:"panelAApproved"`
	PanelAApprovedBy string     `json:"panelAApprovedBy,omitempty"`
	PanelAApprovedAt *time.Time `json:"panelAApprovedAt,omitempty"`
	PanelANotes      string     `json:"panelANotes,omitempty"`

	// Panel B approval, only possible after Panel A has approved
	PanelBApproved   bool       `json:"panelBApproved"`
	PanelBApprovedBy string     `json:"panelBApprovedBy,omitempty"`
	PanelBApprovedAt *time.Time `json:"panelBApprovedAt,omitempty"`
	PanelBNotes      string     `json:"panelBNotes,omitempty"`

	RejectionReason string     `json:"rejectionReason,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
	RejectedBy      string     `json:"rejectedBy,omitempty"`

	Paid              bool       `json:"paid"`
	PaymentDate       *time.Time `json:"paymentDate,omitempty"`
	PaymentReference  string     `json:"paymentReference,omitempty"`
	PaymentReceiptURL string     `json:"paymentReceiptUrl,omitempty"`
	ProcessedBy       string     `json:"processedBy,omitempty"`
}

// BeforeSave trims whitespace from all user supplied strings.
func (p *PaymentVoucher) BeforeSave(_ *gorm.DB) error {
	p.PayeeName = strings.TrimSpace(p.PayeeName)
	p.PayeeAccountNumber = strings.TrimSpace(p.PayeeAccountNumber)
	p.Description = strings.TrimSpace(p.Description)
	p.InvoiceNumber = strings.TrimSpace(p.InvoiceNumber)

	return nil
}

// IsFullyApproved reports whether both panels have signed off. This is
// checked from the approval flags, deliberately not from the status, so
// that a desynchronized status can never unlock payment execution.
func (p PaymentVoucher) IsFullyApproved() bool {
	return p.PanelAApproved && p.PanelBApproved
}

// ApprovalProgress returns how far the voucher is through the
// dual-approval workflow in percent.
func (p PaymentVoucher) ApprovalProgress() int {
	switch {
	case p.PanelAApproved && p.PanelBApproved:
		return 100
	case p.PanelAApproved || p.PanelBApproved:
		return 50
	default:
		return 0
	}
}
