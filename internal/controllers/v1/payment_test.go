package v1_test

import (
	"fmt"
	"net/http"

	v1 "github.com/cdfund/backend/internal/controllers/v1"
	"github.com/cdfund/backend/internal/models"
	"github.com/cdfund/backend/internal/test"
	"github.com/google/uuid"
)

func (suite *TestSuiteStandard) paymentBody(projectID, allocationID uuid.UUID) string {
	return fmt.Sprintf(`{
		"paymentType": "CONTRACTOR_PAYMENT",
		"fiscalYear": 2024,
		"projectId": %q,
		"budgetAllocationId": %q,
		"payeeName": "ABC Construction Ltd",
		"payeeAccountNumber": "1234567890",
		"amount": "50000",
		"retentionPercentage": "10",
		"paymentMethod": "BANK_TRANSFER",
		"supportingDocuments": [
			{"url": "https://storage.example.com/invoice123.pdf", "type": "invoice", "name": "Invoice #123"}
		]
	}`, projectID.String(), allocationID.String())
}

// createVoucher creates a voucher over the API and returns its response.
func (suite *TestSuiteStandard) createVoucher() v1.PaymentResponse {
	project := suite.createTestProject()
	allocation := suite.allocatedBudget(&project.ID)

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/payments", suite.paymentBody(project.ID, allocation.ID))
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var response v1.PaymentResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	return response
}

func (suite *TestSuiteStandard) TestPaymentOptions() {
	recorder := test.Request(suite.T(), suite.router, http.MethodOptions, "/v1/payments", "")

	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)
	suite.Assert().Equal("GET, POST", recorder.Header().Get("allow"))
}

func (suite *TestSuiteStandard) TestPaymentCreate() {
	response := suite.createVoucher()

	suite.Assert().Equal(models.PaymentStatusDraft, response.Data.Status)
	suite.Assert().Equal("5000", response.Data.RetentionAmount.String())
	suite.Assert().Equal("45000", response.Data.NetAmount.String())
	suite.Assert().Regexp(`^PV-24-\d{6}$`, response.Data.VoucherNumber)
}

func (suite *TestSuiteStandard) TestPaymentCreateUnknownAllocation() {
	project := suite.createTestProject()

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/payments", suite.paymentBody(project.ID, uuid.New()))
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestPaymentWorkflow() {
	response := suite.createVoucher()
	id := response.Data.ID.String()

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/payments/"+id+"/submit", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Equal(models.PaymentStatusPanelAPending, response.Data.Status)

	// Panel B before Panel A has to fail
	recorder = test.Request(suite.T(), suite.router, http.MethodPost, "/v1/payments/"+id+"/panel-b/approve", `{"approved": true}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)

	recorder = test.Request(suite.T(), suite.router, http.MethodPost, "/v1/payments/"+id+"/panel-a/approve", `{"approved": true, "notes": "ok"}`,
		map[string]string{"x-user-id": "panel-a-chair"})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Equal(models.PaymentStatusPanelBPending, response.Data.Status)
	suite.Assert().Equal("panel-a-chair", response.Data.PanelAApprovedBy)

	recorder = test.Request(suite.T(), suite.router, http.MethodPost, "/v1/payments/"+id+"/panel-b/approve", `{"approved": true}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Equal(models.PaymentStatusPaymentPending, response.Data.Status)

	recorder = test.Request(suite.T(), suite.router, http.MethodPost, "/v1/payments/"+id+"/execute", `{"paymentReference": "TXN-1"}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Equal(models.PaymentStatusPaid, response.Data.Status)
	suite.Assert().True(response.Data.Paid)
}

func (suite *TestSuiteStandard) TestPaymentRejection() {
	response := suite.createVoucher()
	id := response.Data.ID.String()

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/payments/"+id+"/submit", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	recorder = test.Request(suite.T(), suite.router, http.MethodPost, "/v1/payments/"+id+"/panel-a/approve", `{"approved": false, "notes": "insufficient docs"}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Equal(models.PaymentStatusPanelARejected, response.Data.Status)
	suite.Assert().Equal("insufficient docs", response.Data.RejectionReason)
}

func (suite *TestSuiteStandard) TestPaymentExecuteWithoutApprovals() {
	response := suite.createVoucher()
	id := response.Data.ID.String()

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/payments/"+id+"/submit", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	recorder = test.Request(suite.T(), suite.router, http.MethodPost, "/v1/payments/"+id+"/execute", `{"paymentReference": "TXN-1"}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestPaymentCancel() {
	response := suite.createVoucher()
	id := response.Data.ID.String()

	recorder := test.Request(suite.T(), suite.router, http.MethodPost, "/v1/payments/"+id+"/cancel", `{"reason": "duplicate"}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Equal(models.PaymentStatusCancelled, response.Data.Status)
}

func (suite *TestSuiteStandard) TestPaymentList() {
	suite.createVoucher()

	recorder := test.Request(suite.T(), suite.router, http.MethodGet, "/v1/payments?status=DRAFT", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.PaymentListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Len(response.Data, 1)
	suite.Assert().Equal(int64(1), response.Pagination.Total)
}

func (suite *TestSuiteStandard) TestPaymentStatistics() {
	suite.createVoucher()

	recorder := test.Request(suite.T(), suite.router, http.MethodGet, "/v1/payments/statistics", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.PaymentStatisticsResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Equal(int64(1), response.Data.TotalCount)
}

func (suite *TestSuiteStandard) TestPaymentGetNotFound() {
	recorder := test.Request(suite.T(), suite.router, http.MethodGet, "/v1/payments/"+uuid.NewString(), "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}
