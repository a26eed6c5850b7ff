package v1

import (
	"net/http"

	"github.com/cdfund/backend/internal/budget"
	"github.com/cdfund/backend/internal/httputil"
	"github.com/cdfund/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	cdf_uuid "github.com/cdfund/backend/internal/uuid"
)

// RegisterBudgetRoutes registers the routes for budget allocations with
// the RouterGroup that is passed.
func (co Controller) RegisterBudgetRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetBudgets)
		r.POST("", co.CreateBudget)
	}

	{
		r.OPTIONS("/statistics", httputil.OptionsGet)
		r.GET("/statistics", co.GetBudgetStatistics)
	}

	{
		r.OPTIONS("/:id", httputil.OptionsGetPatch)
		r.GET("/:id", co.GetBudget)
		r.PATCH("/:id", co.UpdateBudget)

		r.OPTIONS("/:id/submit", httputil.OptionsPost)
		r.POST("/:id/submit", co.SubmitBudget)

		r.OPTIONS("/:id/approve", httputil.OptionsPost)
		r.POST("/:id/approve", co.ApproveBudget)

		r.OPTIONS("/:id/allocate", httputil.OptionsPost)
		r.POST("/:id/allocate", co.AllocateBudget)
	}
}

// BudgetQueryFilter is the query string filter for the allocation list.
type BudgetQueryFilter struct {
	ConstituencyID cdf_uuid.UUID       `form:"constituency"`
	ProjectID      cdf_uuid.UUID       `form:"project"`
	FiscalYear     int                 `form:"fiscalYear"`
	Status         models.BudgetStatus `form:"status"`
	Offset         int                 `form:"offset"`
	Limit          int                 `form:"limit"`
}

func (f BudgetQueryFilter) toFilter() budget.Filter {
	filter := budget.Filter{
		FiscalYear: f.FiscalYear,
		Status:     f.Status,
		Offset:     f.Offset,
		Limit:      f.Limit,
	}

	if f.ConstituencyID != cdf_uuid.Nil {
		id := f.ConstituencyID.UUID
		filter.ConstituencyID = &id
	}

	if f.ProjectID != cdf_uuid.Nil {
		id := f.ProjectID.UUID
		filter.ProjectID = &id
	}

	return filter
}

type BudgetResponse struct {
	Data models.BudgetAllocation `json:"data"`
}

type BudgetListResponse struct {
	Data       []models.BudgetAllocation `json:"data"`
	Pagination Pagination                `json:"pagination"`
}

type BudgetStatisticsResponse struct {
	Data budget.Statistics `json:"data"`
}

// ApprovalRequest is the body of approval endpoints.
type ApprovalRequest struct {
	Notes string `json:"notes" example:"Within the constituency ceiling"`
}

// @Summary		Create budget allocation
// @Description	Creates a new budget allocation in DRAFT
// @Tags			Budgets
// @Accept			json
// @Produce		json
// @Param			budget	body		budget.CreateRequest	true	"Budget allocation"
// @Success		201		{object}	BudgetResponse
// @Failure		400		{object}	httperror.Error
// @Failure		404		{object}	httperror.Error
// @Failure		500		{object}	httperror.Error
// @Router			/v1/budgets [post]
func (co Controller) CreateBudget(c *gin.Context) {
	var data budget.CreateRequest
	if err := httputil.BindData(c, &data); err != nil {
		return
	}

	allocation, err := co.Budgets.Create(data)
	if err != nil {
		httputil.NewError(c, err)
		return
	}

	c.JSON(http.StatusCreated, BudgetResponse{Data: allocation})
}

// @Summary		List budget allocations
// @Description	Returns budget allocations matching the filter, newest first
// @Tags			Budgets
// @Produce		json
// @Success		200	{object}	BudgetListResponse
// @Failure		400	{object}	httperror.Error
// @Failure		500	{object}	httperror.Error
// @Param			constituency	query	string	false	"Filter by constituency ID"
// @Param			project			query	string	false	"Filter by project ID"
// @Param			fiscalYear		query	int		false	"Filter by fiscal year"
// @Param			status			query	string	false	"Filter by status"
// @Param			offset			query	int		false	"Offset of the first allocation returned. Defaults to 0"
// @Param			limit			query	int		false	"Maximum number of allocations to return. Defaults to 50"
// @Router			/v1/budgets [get]
func (co Controller) GetBudgets(c *gin.Context) {
	var filter BudgetQueryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		httputil.NewError(c, httputil.ErrInvalidQuery)
		return
	}

	allocations, total, err := co.Budgets.FindAll(filter.toFilter())
	if err != nil {
		httputil.NewError(c, err)
		return
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	c.JSON(http.StatusOK, BudgetListResponse{
		Data: allocations,
		Pagination: Pagination{
			Count:  len(allocations),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  total,
		},
	})
}

// @Summary		Budget statistics
// @Description	Aggregates all active allocations, optionally restricted to a constituency and fiscal year
// @Tags			Budgets
// @Produce		json
// @Success		200	{object}	BudgetStatisticsResponse
// @Failure		400	{object}	httperror.Error
// @Failure		500	{object}	httperror.Error
// @Param			constituency	query	string	false	"Restrict to a constituency ID"
// @Param			fiscalYear		query	int		false	"Restrict to a fiscal year"
// @Router			/v1/budgets/statistics [get]
func (co Controller) GetBudgetStatistics(c *gin.Context) {
	var filter BudgetQueryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		httputil.NewError(c, httputil.ErrInvalidQuery)
		return
	}

	var constituencyID *uuid.UUID
	if filter.ConstituencyID != cdf_uuid.Nil {
		constituencyID = &filter.ConstituencyID.UUID
	}

	stats, err := co.Budgets.Statistics(constituencyID, filter.FiscalYear)
	if err != nil {
		httputil.NewError(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetStatisticsResponse{Data: stats})
}

// @Summary		Get budget allocation
// @Description	Returns a specific budget allocation
// @Tags			Budgets
// @Produce		json
// @Success		200	{object}	BudgetResponse
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Failure		500	{object}	httperror.Error
// @Param			id	path	string	true	"ID formatted as string"
// @Router			/v1/budgets/{id} [get]
func (co Controller) GetBudget(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		httputil.NewError(c, httputil.ErrInvalidUUID)
		return
	}

	allocation, err := co.Budgets.Find(uri.ID.UUID)
	if err != nil {
		httputil.NewError(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetResponse{Data: allocation})
}

// @Summary		Update budget allocation
// @Description	Updates an allocation that has not been activated yet. Only values to be updated need to be specified
// @Tags			Budgets
// @Accept			json
// @Produce		json
// @Success		200	{object}	BudgetResponse
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Failure		500	{object}	httperror.Error
// @Param			id		path	string					true	"ID formatted as string"
// @Param			budget	body	budget.UpdateRequest	true	"Fields to update"
// @Router			/v1/budgets/{id} [patch]
func (co Controller) UpdateBudget(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		httputil.NewError(c, httputil.ErrInvalidUUID)
		return
	}

	var data budget.UpdateRequest
	if err := httputil.BindData(c, &data); err != nil {
		return
	}

	allocation, err := co.Budgets.Update(uri.ID.UUID, data)
	if err != nil {
		httputil.NewError(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetResponse{Data: allocation})
}

// @Summary		Submit budget allocation
// @Description	Moves a draft allocation into the approval queue
// @Tags			Budgets
// @Produce		json
// @Success		200	{object}	BudgetResponse
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Failure		500	{object}	httperror.Error
// @Param			id	path	string	true	"ID formatted as string"
// @Router			/v1/budgets/{id}/submit [post]
func (co Controller) SubmitBudget(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		httputil.NewError(c, httputil.ErrInvalidUUID)
		return
	}

	allocation, err := co.Budgets.Submit(uri.ID.UUID, actor(c))
	if err != nil {
		httputil.NewError(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetResponse{Data: allocation})
}

// @Summary		Approve budget allocation
// @Description	Approves a submitted allocation
// @Tags			Budgets
// @Accept			json
// @Produce		json
// @Success		200	{object}	BudgetResponse
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Failure		500	{object}	httperror.Error
// @Param			id			path	string			true	"ID formatted as string"
// @Param			approval	body	ApprovalRequest	false	"Approval notes"
// @Router			/v1/budgets/{id}/approve [post]
func (co Controller) ApproveBudget(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		httputil.NewError(c, httputil.ErrInvalidUUID)
		return
	}

	var data ApprovalRequest
	if c.Request.ContentLength > 0 {
		if err := httputil.BindData(c, &data); err != nil {
			return
		}
	}

	allocation, err := co.Budgets.Approve(uri.ID.UUID, data.Notes, actor(c))
	if err != nil {
		httputil.NewError(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetResponse{Data: allocation})
}

// @Summary		Activate budget allocation
// @Description	Activates an approved allocation so that funds can move
// @Tags			Budgets
// @Produce		json
// @Success		200	{object}	BudgetResponse
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Failure		409	{object}	httperror.Error
// @Failure		500	{object}	httperror.Error
// @Param			id	path	string	true	"ID formatted as string"
// @Router			/v1/budgets/{id}/allocate [post]
func (co Controller) AllocateBudget(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		httputil.NewError(c, httputil.ErrInvalidUUID)
		return
	}

	allocation, err := co.Budgets.Allocate(uri.ID.UUID, actor(c))
	if err != nil {
		httputil.NewError(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetResponse{Data: allocation})
}
