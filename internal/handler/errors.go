package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/attendance-backend/internal/apperror"
	"github.com/stemsi/attendance-backend/internal/response"
)

// failWith translates an engine error into the response envelope.
func failWith(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	// Checked before NotFound: an unknown student on attendance insert
	// matches both kinds.
	case errors.Is(err, apperror.ErrConstraintViolation):
		response.Fail(c, http.StatusConflict, response.ErrConstraintViolation)
	case errors.Is(err, apperror.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, apperror.ErrNoChange):
		response.Fail(c, http.StatusConflict, response.ErrNoChange)
	case errors.Is(err, apperror.ErrStoreUnavailable):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrStoreUnavailable)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// paramID parses the :id path parameter, answering 400 when it is invalid.
func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}
