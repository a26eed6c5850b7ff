// Package v1 contains the gin handlers binding the budget ledger and
// payment voucher services to the HTTP API.
package v1

import (
	"github.com/cdfund/backend/internal/budget"
	"github.com/cdfund/backend/internal/payments"
	"github.com/gin-gonic/gin"

	cdf_uuid "github.com/cdfund/backend/internal/uuid"
)

// Controller binds the services to the API routes.
type Controller struct {
	Budgets  *budget.Service
	Payments *payments.Service
}

// RegisterRoutes registers all v1 routes with the RouterGroup that is
// passed.
func (co Controller) RegisterRoutes(r *gin.RouterGroup) {
	co.RegisterBudgetRoutes(r.Group("/budgets"))
	co.RegisterPaymentRoutes(r.Group("/payments"))
}

// URIID is the URI binding for routes that operate on one resource.
type URIID struct {
	ID cdf_uuid.UUID `uri:"id" binding:"required"`
}

// Pagination tells clients which slice of the collection they received.
type Pagination struct {
	Count  int   `json:"count" example:"25"`
	Offset int   `json:"offset" example:"0"`
	Limit  int   `json:"limit" example:"50"`
	Total  int64 `json:"total" example:"827"`
}

// actor returns who performs the request. Authentication is handled by
// the gateway in front of this service, which forwards the user in the
// x-user-id header.
func actor(c *gin.Context) string {
	if id := c.GetHeader("x-user-id"); id != "" {
		return id
	}

	return "system"
}
