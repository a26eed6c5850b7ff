package models_test

import (
	"time"

	"github.com/cdfund/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestPaymentVoucherTrimWhitespace() {
	voucher := suite.createTestVoucher(models.PaymentVoucher{
		ProjectID:          uuid.New(),
		BudgetAllocationID: uuid.New(),
		PayeeName:          " ABC Construction Ltd ",
		PayeeAccountNumber: " 1234567890 ",
		Amount:             decimal.NewFromInt(50000),
	})

	suite.Assert().Equal("ABC Construction Ltd", voucher.PayeeName)
	suite.Assert().Equal("1234567890", voucher.PayeeAccountNumber)
}

func (suite *TestSuiteStandard) TestPaymentVoucherDocumentsRoundtrip() {
	uploaded := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	voucher := suite.createTestVoucher(models.PaymentVoucher{
		ProjectID:          uuid.New(),
		BudgetAllocationID: uuid.New(),
		Amount:             decimal.NewFromInt(50000),
		Documents: []models.SupportingDocument{
			{URL: "https://storage.example.com/invoice123.pdf", Type: "invoice", Name: "Invoice #123", UploadedAt: uploaded},
		},
	})

	var reloaded models.PaymentVoucher
	suite.Require().NoError(models.DB.First(&reloaded, "id = ?", voucher.ID).Error)

	suite.Require().Len(reloaded.Documents, 1)
	suite.Assert().Equal("invoice", reloaded.Documents[0].Type)
	suite.Assert().Equal("Invoice #123", reloaded.Documents[0].Name)
}

func (suite *TestSuiteStandard) TestPaymentVoucherNumberUnique() {
	suite.createTestVoucher(models.PaymentVoucher{
		VoucherNumber: "PV-24-000001",
		Amount:        decimal.NewFromInt(100),
	})

	err := models.DB.Create(&models.PaymentVoucher{
		VoucherNumber: "PV-24-000001",
		Amount:        decimal.NewFromInt(100),
		Status:        models.PaymentStatusDraft,
	}).Error

	suite.Assert().ErrorIs(err, models.ErrVoucherNumberNotUnique)
	suite.Assert().ErrorIs(err, models.ErrConflict)
}

func (suite *TestSuiteStandard) TestPaymentStatusPending() {
	tests := []struct {
		status  models.PaymentStatus
		pending bool
	}{
		{models.PaymentStatusDraft, false},
		{models.PaymentStatusPanelAPending, true},
		{models.PaymentStatusPanelARejected, false},
		{models.PaymentStatusPanelBPending, true},
		{models.PaymentStatusPanelBRejected, false},
		{models.PaymentStatusPaymentPending, true},
		{models.PaymentStatusPaid, false},
		{models.PaymentStatusCancelled, false},
	}

	for _, tt := range tests {
		suite.Assert().Equal(tt.pending, tt.status.Pending(), "Pending() wrong for status %s", tt.status)
	}
}

func (suite *TestSuiteStandard) TestPaymentVoucherFullyApproved() {
	voucher := models.PaymentVoucher{}
	suite.Assert().False(voucher.IsFullyApproved())
	suite.Assert().Equal(0, voucher.ApprovalProgress())

	voucher.PanelAApproved = true
	suite.Assert().False(voucher.IsFullyApproved())
	suite.Assert().Equal(50, voucher.ApprovalProgress())

	voucher.PanelBApproved = true
	suite.Assert().True(voucher.IsFullyApproved())
	suite.Assert().Equal(100, voucher.ApprovalProgress())

	// The flags decide, not the status
	desynced := models.PaymentVoucher{Status: models.PaymentStatusPaymentPending}
	suite.Assert().False(desynced.IsFullyApproved())
}

func (suite *TestSuiteStandard) TestPaymentTypeValid() {
	suite.Assert().True(models.PaymentTypeContractor.Valid())
	suite.Assert().True(models.PaymentTypeOther.Valid())
	suite.Assert().False(models.PaymentType("BRIBE").Valid())
}

func (suite *TestSuiteStandard) TestPaymentMethodValid() {
	suite.Assert().True(models.PaymentMethodBankTransfer.Valid())
	suite.Assert().True(models.PaymentMethodCash.Valid())
	suite.Assert().False(models.PaymentMethod("BARTER").Valid())
}
