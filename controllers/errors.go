package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dinecommand/models"
	"github.com/yeremiapane/dinecommand/utils"
)

// statusFor maps floor errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrTableNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrOutOfRange),
		errors.Is(err, models.ErrNotDismissible),
		errors.Is(err, models.ErrAlreadyPending):
		return http.StatusConflict
	case errors.Is(err, models.ErrMissingField),
		errors.Is(err, models.ErrInvalidAlert):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondFloorError(c *gin.Context, err error) {
	utils.RespondError(c, statusFor(err), err)
}
