package httputil

import (
	"errors"
	"net/http"

	"github.com/cdfund/backend/internal/httperror"
	"github.com/cdfund/backend/internal/models"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// NewError writes the error response for err, deriving the HTTP status
// from the error taxonomy:
//
//	not found                   404
//	conflict                    409
//	validation, invalid state,
//	insufficient funds,
//	invalid operation, binding  400
//	everything else             500
func NewError(c *gin.Context, err error) {
	c.JSON(status(c, err), httperror.New(err))
}

func status(c *gin.Context, err error) int {
	switch {
	case errors.Is(err, models.ErrResourceNotFound) || errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound

	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict

	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrInvalidState),
		errors.Is(err, models.ErrInsufficientFunds),
		errors.Is(err, models.ErrInvalidOperation),
		errors.Is(err, ErrInvalidBody),
		errors.Is(err, ErrRequestBodyEmpty),
		errors.Is(err, ErrInvalidUUID),
		errors.Is(err, ErrInvalidQuery):
		return http.StatusBadRequest

	default:
		log.Error().Str("request-id", requestid.Get(c)).Msgf("%T: %v", err, err.Error())
		return http.StatusInternalServerError
	}
}
