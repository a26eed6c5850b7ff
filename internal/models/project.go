package models

import (
	"github.com/shopspring/decimal"
)

// Project is the slice of the project aggregate the finance core needs:
// when a budget is allocated the project learns its allocated budget, and
// every executed payment increments the disbursed amount.
//
// Project lifecycle management itself lives outside this service.
type Project struct {
	DefaultModel
	Name            string          `json:"name"`
	BudgetAllocated decimal.Decimal `json:"budgetAllocated" gorm:"type:DECIMAL(20,8)"`
	AmountDisbursed decimal.Decimal `json:"amountDisbursed" gorm:"type:DECIMAL(20,8)"`
}
