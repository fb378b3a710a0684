package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/attendance-backend/internal/model"
	"github.com/stemsi/attendance-backend/internal/response"
	"github.com/stemsi/attendance-backend/internal/service"
	"github.com/stemsi/attendance-backend/internal/validator"
)

// AttendanceHandler exposes the attendance operations of the engine.
type AttendanceHandler struct {
	attendanceService *service.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(attendanceService *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

// ListAttendance godoc
// GET /api/v1/attendance
// Lists records joined with their students, newest date first.
func (h *AttendanceHandler) ListAttendance(c *gin.Context) {
	var f model.AttendanceFilter
	if fields := validator.BindQuery(c, &f); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	records, err := h.attendanceService.List(c.Request.Context(), f)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attendance": records})
}

// GetAttendance godoc
// GET /api/v1/attendance/:id
func (h *AttendanceHandler) GetAttendance(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	record, err := h.attendanceService.Get(c.Request.Context(), id)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attendance": record})
}

// RegisterAttendance godoc
// POST /api/v1/attendance
func (h *AttendanceHandler) RegisterAttendance(c *gin.Context) {
	var req model.RegisterAttendanceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	date, err := model.ParseDate(req.Date)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"date": err.Error()})
		return
	}

	record, err := h.attendanceService.Register(c.Request.Context(), req.StudentID, date, *req.Present)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"attendance": record})
}

// UpdateAttendance godoc
// PUT /api/v1/attendance/:id
// Flips the present flag. Sending the stored value answers 409 NO_CHANGE.
func (h *AttendanceHandler) UpdateAttendance(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req model.UpdatePresenceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	record, err := h.attendanceService.UpdatePresence(c.Request.Context(), id, *req.Present)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attendance": record})
}

// DeleteAttendance godoc
// DELETE /api/v1/attendance/:id
func (h *AttendanceHandler) DeleteAttendance(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.attendanceService.Remove(c.Request.Context(), id); err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "attendance deleted successfully"})
}
