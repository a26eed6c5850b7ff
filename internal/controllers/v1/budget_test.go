package v1_test

import (
	"fmt"
	"net/http"

	v1 "github.com/cdfund/backend/internal/controllers/v1"
	"github.com/cdfund/backend/internal/models"
	"github.com/cdfund/backend/internal/test"
	"github.com/google/uuid"
)

func (suite *TestSuiteStandard) TestBudgetOptions() {
	recorder := test.Request(suite.T(), suite.router, http.MethodOptions, "/v1/budgets", "")

	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)
	suite.Assert().Equal("GET, POST", recorder.Header().Get("allow"))
}

func (suite *TestSuiteStandard) TestBudgetCreate() {
	body := fmt.Sprintf(`{
		"fiscalYear": 2024,
		"category": "CAPITAL_PROJECTS",
		"constituencyId": %q,
		"allocatedAmount": "1000000",
		"effectiveDate": "2024-07-01T00:00:00Z",
		"expiryDate": "2025-06-30T00:00:00Z"
	}`, uuid.NewString())

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/budgets", body)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var response v1.BudgetResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	suite.Assert().Equal(models.BudgetStatusDraft, response.Data.Status)
	suite.Assert().Equal("1000000", response.Data.AmountAvailable.String())
	suite.Assert().NotEmpty(response.Data.BudgetCode)
}

func (suite *TestSuiteStandard) TestBudgetCreateInvalidBody() {
	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/budgets", `{ "fiscalYear": `)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestBudgetCreateValidationError() {
	body := fmt.Sprintf(`{
		"fiscalYear": 2024,
		"category": "SLUSH_FUND",
		"constituencyId": %q,
		"allocatedAmount": "1000000",
		"effectiveDate": "2024-07-01T00:00:00Z",
		"expiryDate": "2025-06-30T00:00:00Z"
	}`, uuid.NewString())

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/budgets", body)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestBudgetGet() {
	allocation := suite.allocatedBudget(nil)

	recorder := test.Request(suite.T(), suite.router, http.MethodGet, "/v1/budgets/"+allocation.ID.String(), "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.BudgetResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Equal(allocation.BudgetCode, response.Data.BudgetCode)
}

func (suite *TestSuiteStandard) TestBudgetGetNotFound() {
	recorder := test.Request(suite.T(), suite.router, http.MethodGet, "/v1/budgets/"+uuid.NewString(), "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestBudgetGetInvalidUUID() {
	recorder := test.Request(suite.T(), suite.router, http.MethodGet, "/v1/budgets/not-a-uuid", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestBudgetList() {
	suite.allocatedBudget(nil)
	suite.allocatedBudget(nil)

	recorder := test.Request(suite.T(), suite.router, http.MethodGet, "/v1/budgets?fiscalYear=2024", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.BudgetListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Len(response.Data, 2)
	suite.Assert().Equal(int64(2), response.Pagination.Total)
}

func (suite *TestSuiteStandard) TestBudgetListFilterStatus() {
	suite.allocatedBudget(nil)

	recorder := test.Request(suite.T(), suite.router, http.MethodGet, "/v1/budgets?status=DRAFT", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.BudgetListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Empty(response.Data)
}

func (suite *TestSuiteStandard) TestBudgetLifecycleEndpoints() {
	body := fmt.Sprintf(`{
		"fiscalYear": 2024,
		"category": "CAPITAL_PROJECTS",
		"constituencyId": %q,
		"allocatedAmount": "1000000",
		"effectiveDate": "2024-07-01T00:00:00Z",
		"expiryDate": "2025-06-30T00:00:00Z"
	}`, uuid.NewString())

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/budgets", body)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var response v1.BudgetResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	id := response.Data.ID.String()

	recorder = test.Request(suite.T(), suite.router, http.MethodPost, "/v1/budgets/"+id+"/submit", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	recorder = test.Request(suite.T(), suite.router, http.MethodPost, "/v1/budgets/"+id+"/approve", `{"notes": "ok"}`,
		map[string]string{"x-user-id": "treasurer"})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Equal("treasurer", response.Data.ApprovedBy)

	recorder = test.Request(suite.T(), suite.router, http.MethodPost, "/v1/budgets/"+id+"/allocate", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Equal(models.BudgetStatusAllocated, response.Data.Status)

	// Submitting again from ALLOCATED is an invalid state
	recorder = test.Request(suite.T(), suite.router, http.MethodPost, "/v1/budgets/"+id+"/submit", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestBudgetUpdate() {
	body := fmt.Sprintf(`{
		"fiscalYear": 2024,
		"category": "CAPITAL_PROJECTS",
		"constituencyId": %q,
		"allocatedAmount": "1000000",
		"effectiveDate": "2024-07-01T00:00:00Z",
		"expiryDate": "2025-06-30T00:00:00Z"
	}`, uuid.NewString())

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/budgets", body)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var response v1.BudgetResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	recorder = test.Request(suite.T(), suite.router, http.MethodPatch, "/v1/budgets/"+response.Data.ID.String(), `{"description": "Revised"}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Equal("Revised", response.Data.Description)
}

func (suite *TestSuiteStandard) TestBudgetAllocateConflict() {
	project := suite.createTestProject()
	suite.allocatedBudget(&project.ID)

	body := fmt.Sprintf(`{
		"fiscalYear": 2024,
		"category": "CAPITAL_PROJECTS",
		"constituencyId": %q,
		"projectId": %q,
		"allocatedAmount": "500000",
		"effectiveDate": "2024-07-01T00:00:00Z",
		"expiryDate": "2025-06-30T00:00:00Z"
	}`, uuid.NewString(), project.ID.String())

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/budgets", body)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusConflict)
}

func (suite *TestSuiteStandard) TestBudgetStatistics() {
	suite.allocatedBudget(nil)

	recorder := test.Request(suite.T(), suite.router, http.MethodGet, "/v1/budgets/statistics?fiscalYear=2024", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.BudgetStatisticsResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Equal("1000000", response.Data.TotalAllocated.String())
}
