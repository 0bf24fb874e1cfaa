package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/canteen-app/services"
	"github.com/yeremiapane/canteen-app/utils"
)

// ErrNoPermission adalah error custom untuk akses yang ditolak
var ErrNoPermission = &CustomError{"You do not have permission"}

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

// RespondServiceError menerjemahkan error taxonomy dari services ke HTTP
// status code. Hanya boundary ini yang tahu soal HTTP.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case services.IsValidation(err):
		utils.RespondError(c, http.StatusBadRequest, err)
	case services.IsNotFound(err):
		utils.RespondError(c, http.StatusNotFound, err)
	case services.IsConflict(err):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrItemUnavailable):
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
