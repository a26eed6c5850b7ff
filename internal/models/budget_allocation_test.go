package models_test

import (
	"github.com/cdfund/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestBudgetAllocationTrimWhitespace() {
	description := " For the water project  "
	notes := "  checked "

	allocation := suite.createTestAllocation(models.BudgetAllocation{
		ConstituencyID: uuid.New(),
		Description:    description,
		ApprovalNotes:  notes,
	})

	suite.Assert().Equal("For the water project", allocation.Description)
	suite.Assert().Equal("checked", allocation.ApprovalNotes)
}

func (suite *TestSuiteStandard) TestBudgetAllocationMinimumAmount() {
	err := models.DB.Create(&models.BudgetAllocation{
		BudgetCode:      "BUD-TEST-24-0000",
		ConstituencyID:  uuid.New(),
		AllocatedAmount: decimal.NewFromFloat(0.5),
		Status:          models.BudgetStatusDraft,
	}).Error

	suite.Assert().ErrorIs(err, models.ErrValidation)
}

func (suite *TestSuiteStandard) TestBudgetAllocationEditable() {
	tests := []struct {
		status   models.BudgetStatus
		editable bool
	}{
		{models.BudgetStatusDraft, true},
		{models.BudgetStatusSubmitted, true},
		{models.BudgetStatusApproved, true},
		{models.BudgetStatusAllocated, false},
		{models.BudgetStatusExhausted, false},
	}

	for _, tt := range tests {
		allocation := models.BudgetAllocation{Status: tt.status}
		suite.Assert().Equal(tt.editable, allocation.Editable(), "Editable() wrong for status %s", tt.status)
	}
}

func (suite *TestSuiteStandard) TestBudgetAllocationNextStatus() {
	tests := []struct {
		name      string
		status    models.BudgetStatus
		available decimal.Decimal
		committed decimal.Decimal
		want      models.BudgetStatus
	}{
		{"allocated with funds", models.BudgetStatusAllocated, decimal.NewFromInt(100), decimal.Zero, models.BudgetStatusAllocated},
		{"allocated with commitment", models.BudgetStatusAllocated, decimal.Zero, decimal.NewFromInt(100), models.BudgetStatusAllocated},
		{"drained", models.BudgetStatusAllocated, decimal.Zero, decimal.Zero, models.BudgetStatusExhausted},
		{"draft never exhausts", models.BudgetStatusDraft, decimal.Zero, decimal.Zero, models.BudgetStatusDraft},
	}

	for _, tt := range tests {
		allocation := models.BudgetAllocation{
			Status:          tt.status,
			AmountAvailable: tt.available,
			AmountCommitted: tt.committed,
		}

		suite.Assert().Equal(tt.want, allocation.NextStatus(), tt.name)
	}
}

func (suite *TestSuiteStandard) TestBudgetAllocationBalanced() {
	allocation := models.BudgetAllocation{
		AllocatedAmount: decimal.NewFromInt(1000000),
		AmountUtilized:  decimal.NewFromInt(45000),
		AmountCommitted: decimal.NewFromInt(5000),
		AmountAvailable: decimal.NewFromInt(950000),
	}
	suite.Assert().True(allocation.Balanced())

	allocation.AmountAvailable = decimal.NewFromInt(955000)
	suite.Assert().False(allocation.Balanced())
}

func (suite *TestSuiteStandard) TestBudgetAllocationRates() {
	allocation := models.BudgetAllocation{
		AllocatedAmount: decimal.NewFromInt(1000000),
		AmountUtilized:  decimal.NewFromInt(45000),
		AmountCommitted: decimal.NewFromInt(100000),
	}

	suite.Assert().True(allocation.UtilizationRate().Equal(decimal.NewFromFloat(4.5)), "utilization rate is %s", allocation.UtilizationRate())
	suite.Assert().True(allocation.CommitmentRate().Equal(decimal.NewFromInt(10)), "commitment rate is %s", allocation.CommitmentRate())

	empty := models.BudgetAllocation{}
	suite.Assert().True(empty.UtilizationRate().IsZero())
	suite.Assert().True(empty.CommitmentRate().IsZero())
}

func (suite *TestSuiteStandard) TestBudgetCategoryValid() {
	suite.Assert().True(models.BudgetCategoryCapitalProjects.Valid())
	suite.Assert().True(models.BudgetCategoryMonitoringEvaluation.Valid())
	suite.Assert().False(models.BudgetCategory("SLUSH_FUND").Valid())
	suite.Assert().False(models.BudgetCategory("").Valid())
}

func (suite *TestSuiteStandard) TestBudgetCodeUnique() {
	constituency := uuid.New()
	suite.createTestAllocation(models.BudgetAllocation{
		BudgetCode:     "BUD-A1B2C3D4-24-0001",
		ConstituencyID: constituency,
	})

	err := models.DB.Create(&models.BudgetAllocation{
		BudgetCode:      "BUD-A1B2C3D4-24-0001",
		ConstituencyID:  constituency,
		AllocatedAmount: decimal.NewFromInt(5000),
		Status:          models.BudgetStatusDraft,
	}).Error

	suite.Assert().ErrorIs(err, models.ErrBudgetCodeNotUnique)
	suite.Assert().ErrorIs(err, models.ErrConflict)
}

func (suite *TestSuiteStandard) TestBudgetAllocationNotFoundMessage() {
	err := models.DB.First(&models.BudgetAllocation{}, "id = ?", uuid.New()).Error

	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
	suite.Assert().Contains(err.Error(), "budget allocation")
}
