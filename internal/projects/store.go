// Package projects contains the project collaborator contract the
// finance core consumes. Projects are owned by another service; the
// ledger only reads them and pushes budget figures into them.
package projects

import (
	"fmt"

	"github.com/cdfund/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Store is the contract the budget ledger requires from the project
// aggregate. The db handle is passed per call so that writes can take
// part in the caller's transaction.
type Store interface {
	Find(db *gorm.DB, id uuid.UUID) (models.Project, error)
	SetAllocatedBudget(db *gorm.DB, id uuid.UUID, amount decimal.Decimal) error
	IncrementDisbursed(db *gorm.DB, id uuid.UUID, amount decimal.Decimal) error
}

// GormStore implements Store against the projects table.
type GormStore struct{}

func (GormStore) Find(db *gorm.DB, id uuid.UUID) (models.Project, error) {
	var project models.Project

	err := db.First(&project, "id = ?", id).Error
	if err != nil {
		return models.Project{}, err
	}

	return project, nil
}

func (GormStore) SetAllocatedBudget(db *gorm.DB, id uuid.UUID, amount decimal.Decimal) error {
	res := db.Model(&models.Project{}).
		Where("id = ?", id).
		Update("budget_allocated", amount)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return fmt.Errorf("%w project matching your query", models.ErrResourceNotFound)
	}

	return nil
}

func (GormStore) IncrementDisbursed(db *gorm.DB, id uuid.UUID, amount decimal.Decimal) error {
	res := db.Model(&models.Project{}).
		Where("id = ?", id).
		Update("amount_disbursed", gorm.Expr("amount_disbursed + ?", amount))
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return fmt.Errorf("%w project matching your query", models.ErrResourceNotFound)
	}

	return nil
}
