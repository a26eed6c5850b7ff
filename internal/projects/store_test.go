package projects_test

import (
	"log"
	"testing"

	"github.com/cdfund/backend/internal/models"
	"github.com/cdfund/backend/internal/projects"
	"github.com/cdfund/backend/internal/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TestSuiteStandard struct {
	suite.Suite
	store projects.GormStore
}

// Pseudo-Test run by go test that runs the test suite.
func TestSuite(t *testing.T) {
	suite.Run(t, new(TestSuiteStandard))
}

// SetupTest is called before each test in the suite.
func (suite *TestSuiteStandard) SetupTest() {
	err := models.Connect(test.TmpFile(suite.T()))
	if err != nil {
		log.Fatalf("Database connection failed with: %#v", err)
	}
}

// TearDownTest is called after each test in the suite.
func (suite *TestSuiteStandard) TearDownTest() {
	sqlDB, _ := models.DB.DB()
	sqlDB.Close()
}

func (suite *TestSuiteStandard) createTestProject() models.Project {
	project := models.Project{Name: "Kibera Water Supply"}
	suite.Require().NoError(models.DB.Create(&project).Error)
	return project
}

func (suite *TestSuiteStandard) TestFind() {
	project := suite.createTestProject()

	found, err := suite.store.Find(models.DB, project.ID)
	suite.Require().NoError(err)
	suite.Assert().Equal(project.Name, found.Name)

	_, err = suite.store.Find(models.DB, uuid.New())
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestSetAllocatedBudget() {
	project := suite.createTestProject()

	err := suite.store.SetAllocatedBudget(models.DB, project.ID, decimal.NewFromInt(1000000))
	suite.Require().NoError(err)

	found, err := suite.store.Find(models.DB, project.ID)
	suite.Require().NoError(err)
	suite.Assert().True(found.BudgetAllocated.Equal(decimal.NewFromInt(1000000)))

	err = suite.store.SetAllocatedBudget(models.DB, uuid.New(), decimal.NewFromInt(1))
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestIncrementDisbursed() {
	project := suite.createTestProject()

	for range [2]int{} {
		err := suite.store.IncrementDisbursed(models.DB, project.ID, decimal.NewFromInt(45000))
		suite.Require().NoError(err)
	}

	found, err := suite.store.Find(models.DB, project.ID)
	suite.Require().NoError(err)
	suite.Assert().True(found.AmountDisbursed.Equal(decimal.NewFromInt(90000)))

	err = suite.store.IncrementDisbursed(models.DB, uuid.New(), decimal.NewFromInt(1))
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}
