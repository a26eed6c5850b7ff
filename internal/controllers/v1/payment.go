package v1

import (
	"net/http"

	"github.com/cdfund/backend/internal/httputil"
	"github.com/cdfund/backend/internal/models"
	"github.com/cdfund/backend/internal/payments"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	cdf_uuid "github.com/cdfund/backend/internal/uuid"
)

// RegisterPaymentRoutes registers the routes for payment vouchers with
// the RouterGroup that is passed.
func (co Controller) RegisterPaymentRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetPayments)
		r.POST("", co.CreatePayment)
	}

	{
		r.OPTIONS("/statistics", httputil.OptionsGet)
		r.GET("/statistics", co.GetPaymentStatistics)
	}

	{
		r.OPTIONS("/:id", httputil.OptionsGet)
		r.GET("/:id", co.GetPayment)

		r.OPTIONS("/:id/submit", httputil.OptionsPost)
		r.POST("/:id/submit", co.SubmitPayment)

		r.OPTIONS("/:id/panel-a/approve", httputil.OptionsPost)
		r.POST("/:id/panel-a/approve", co.PanelADecision)

		r.OPTIONS("/:id/panel-b/approve", httputil.OptionsPost)
		r.POST("/:id/panel-b/approve", co.PanelBDecision)

		r.OPTIONS("/:id/execute", httputil.OptionsPost)
		r.POST("/:id/execute", co.ExecutePayment)

		r.OPTIONS("/:id/cancel", httputil.OptionsPost)
		r.POST("/:id/cancel", co.CancelPayment)
	}
}

// PaymentQueryFilter is the query string filter for the voucher list.
type PaymentQueryFilter struct {
	ProjectID  cdf_uuid.UUID        `form:"project"`
	Status     models.PaymentStatus `form:"status"`
	FiscalYear int                  `form:"fiscalYear"`
	Offset     int                  `form:"offset"`
	Limit      int                  `form:"limit"`
}

func (f PaymentQueryFilter) toFilter() payments.Filter {
	filter := payments.Filter{
		Status:     f.Status,
		FiscalYear: f.FiscalYear,
		Offset:     f.Offset,
		Limit:      f.Limit,
	}

	if f.ProjectID != cdf_uuid.Nil {
		id := f.ProjectID.UUID
		filter.ProjectID = &id
	}

	return filter
}

type PaymentResponse struct {
	Data models.PaymentVoucher `json:"data"`
}

type PaymentListResponse struct {
	Data       []models.PaymentVoucher `json:"data"`
	Pagination Pagination              `json:"pagination"`
}

type PaymentStatisticsResponse struct {
	Data payments.Statistics `json:"data"`
}

// DecisionRequest is the body of the panel decision endpoints.
type DecisionRequest struct {
	Approved bool   `json:"approved" example:"true"`
	Notes    string `json:"notes" example:"Completion certificate verified"`
}

// ExecuteRequest is the body of the payment execution endpoint.
type ExecuteRequest struct {
	PaymentReference  string `json:"paymentReference" example:"TXN-2024-001"`
	PaymentReceiptURL string `json:"paymentReceiptUrl" example:"https://storage.example.com/receipt123.pdf"`
}

// CancelRequest is the body of the cancel endpoint.
type CancelRequest struct {
	Reason string `json:"reason" example:"Duplicate of PV-24-000017"`
}

// @Summary		Create payment voucher
// @Description	Creates a new payment voucher in DRAFT
// @Tags			Payments
// @Accept			json
// @Produce		json
// @Param			payment	body		payments.CreateRequest	true	"Payment voucher"
// @Success		201		{object}	PaymentResponse
// @Failure		400		{object}	httperror.Error
// @Failure		404		{object}	httperror.Error
// @Failure		500		{object}	httperror.Error
// @Router			/v1/payments [post]
func (co Controller) CreatePayment(c *gin.Context) {
	var data payments.CreateRequest
	if err := httputil.BindData(c, &data); err != nil {
		return
	}

	voucher, err := co.Payments.Create(data, actor(c))
	if err != nil {
		httputil.NewError(c, err)
		return
	}

	c.JSON(http.StatusCreated, PaymentResponse{Data: voucher})
}

// @Summary		List payment vouchers
// @Description	Returns payment vouchers matching the filter, newest first
// @Tags			Payments
// @Produce		json
// @Success		200	{object}	PaymentListResponse
// @Failure		400	{object}	httperror.Error
// @Failure		500	{object}	httperror.Error
// @Param			project		query	string	false	"Filter by project ID"
// @Param			status		query	string	false	"Filter by status"
// @Param			fiscalYear	query	int		false	"Filter by fiscal year"
// @Param			offset		query	int		false	"Offset of the first voucher returned. Defaults to 0"
// @Param			limit		query	int		false	"Maximum number of vouchers to return. Defaults to 50"
// @Router			/v1/payments [get]
func (co Controller) GetPayments(c *gin.Context) {
	var filter PaymentQueryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		httputil.NewError(c, httputil.ErrInvalidQuery)
		return
	}

	vouchers, total, err := co.Payments.FindAll(filter.toFilter())
	if err != nil {
		httputil.NewError(c, err)
		return
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	c.JSON(http.StatusOK, PaymentListResponse{
		Data: vouchers,
		Pagination: Pagination{
			Count:  len(vouchers),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  total,
		},
	})
}

// @Summary		Payment statistics
// @Description	Aggregates voucher counts and net amounts by status
// @Tags			Payments
// @Produce		json
// @Success		200	{object}	PaymentStatisticsResponse
// @Failure		400	{object}	httperror.Error
// @Failure		500	{object}	httperror.Error
// @Param			project		query	string	false	"Restrict to a project ID"
// @Param			fiscalYear	query	int		false	"Restrict to a fiscal year"
// @Router			/v1/payments/statistics [get]
func (co Controller) GetPaymentStatistics(c *gin.Context) {
	var filter PaymentQueryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		httputil.NewError(c, httputil.ErrInvalidQuery)
		return
	}

	var projectID *uuid.UUID
	if filter.ProjectID != cdf_uuid.Nil {
		projectID = &filter.ProjectID.UUID
	}

	stats, err := co.Payments.Statistics(projectID, filter.FiscalYear)
	if err != nil {
		httputil.NewError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaymentStatisticsResponse{Data: stats})
}

// @Summary		Get payment voucher
// @Description	Returns a specific payment voucher
// @Tags			Payments
// @Produce		json
// @Success		200	{object}	PaymentResponse
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Failure		500	{object}	httperror.Error
// @Param			id	path	string	true	"ID formatted as string"
// @Router			/v1/payments/{id} [get]
func (co Controller) GetPayment(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		httputil.NewError(c, httputil.ErrInvalidUUID)
		return
	}

	voucher, err := co.Payments.Find(uri.ID.UUID)
	if err != nil {
		httputil.NewError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaymentResponse{Data: voucher})
}

// @Summary		Submit payment voucher
// @Description	Submits a draft voucher for Panel A approval and commits its net amount on the budget
// @Tags			Payments
// @Produce		json
// @Success		200	{object}	PaymentResponse
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Failure		500	{object}	httperror.Error
// @Param			id	path	string	true	"ID formatted as string"
// @Router			/v1/payments/{id}/submit [post]
func (co Controller) SubmitPayment(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		httputil.NewError(c, httputil.ErrInvalidUUID)
		return
	}

	voucher, err := co.Payments.Submit(uri.ID.UUID, actor(c))
	if err != nil {
		httputil.NewError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaymentResponse{Data: voucher})
}

// @Summary		Panel A decision
// @Description	Records the first panel's approval or rejection
// @Tags			Payments
// @Accept			json
// @Produce		json
// @Success		200	{object}	PaymentResponse
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Failure		500	{object}	httperror.Error
// @Param			id			path	string			true	"ID formatted as string"
// @Param			decision	body	DecisionRequest	true	"Decision"
// @Router			/v1/payments/{id}/panel-a/approve [post]
func (co Controller) PanelADecision(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		httputil.NewError(c, httputil.ErrInvalidUUID)
		return
	}

	var data DecisionRequest
	if err := httputil.BindData(c, &data); err != nil {
		return
	}

	voucher, err := co.Payments.PanelAApprove(uri.ID.UUID, data.Approved, data.Notes, actor(c))
	if err != nil {
		httputil.NewError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaymentResponse{Data: voucher})
}

// @Summary		Panel B decision
// @Description	Records the second panel's approval or rejection. Requires Panel A approval first
// @Tags			Payments
// @Accept			json
// @Produce		json
// @Success		200	{object}	PaymentResponse
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Failure		500	{object}	httperror.Error
// @Param			id			path	string			true	"ID formatted as string"
// @Param			decision	body	DecisionRequest	true	"Decision"
// @Router			/v1/payments/{id}/panel-b/approve [post]
func (co Controller) PanelBDecision(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		httputil.NewError(c, httputil.ErrInvalidUUID)
		return
	}

	var data DecisionRequest
	if err := httputil.BindData(c, &data); err != nil {
		return
	}

	voucher, err := co.Payments.PanelBApprove(uri.ID.UUID, data.Approved, data.Notes, actor(c))
	if err != nil {
		httputil.NewError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaymentResponse{Data: voucher})
}

// @Summary		Execute payment
// @Description	Disburses a fully approved payment and utilizes the committed budget
// @Tags			Payments
// @Accept			json
// @Produce		json
// @Success		200	{object}	PaymentResponse
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Failure		500	{object}	httperror.Error
// @Param			id			path	string			true	"ID formatted as string"
// @Param			execution	body	ExecuteRequest	true	"Execution details"
// @Router			/v1/payments/{id}/execute [post]
func (co Controller) ExecutePayment(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		httputil.NewError(c, httputil.ErrInvalidUUID)
		return
	}

	var data ExecuteRequest
	if err := httputil.BindData(c, &data); err != nil {
		return
	}

	voucher, err := co.Payments.Execute(uri.ID.UUID, data.PaymentReference, data.PaymentReceiptURL, actor(c))
	if err != nil {
		httputil.NewError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaymentResponse{Data: voucher})
}

// @Summary		Cancel payment voucher
// @Description	Cancels an unpaid voucher and releases its budget commitment
// @Tags			Payments
// @Accept			json
// @Produce		json
// @Success		200	{object}	PaymentResponse
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Failure		500	{object}	httperror.Error
// @Param			id		path	string			true	"ID formatted as string"
// @Param			cancel	body	CancelRequest	false	"Cancellation reason"
// @Router			/v1/payments/{id}/cancel [post]
func (co Controller) CancelPayment(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		httputil.NewError(c, httputil.ErrInvalidUUID)
		return
	}

	var data CancelRequest
	if c.Request.ContentLength > 0 {
		if err := httputil.BindData(c, &data); err != nil {
			return
		}
	}

	voucher, err := co.Payments.Cancel(uri.ID.UUID, data.Reason, actor(c))
	if err != nil {
		httputil.NewError(c, err)
		return
	}

	c.JSON(http.StatusOK, PaymentResponse{Data: voucher})
}
