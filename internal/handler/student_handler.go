package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/attendance-backend/internal/model"
	"github.com/stemsi/attendance-backend/internal/response"
	"github.com/stemsi/attendance-backend/internal/service"
	"github.com/stemsi/attendance-backend/internal/validator"
)

// StudentHandler handles roster management.
type StudentHandler struct {
	studentService *service.StudentService
	maxUploadBytes int64
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(studentService *service.StudentService, maxUploadBytes int64) *StudentHandler {
	return &StudentHandler{studentService: studentService, maxUploadBytes: maxUploadBytes}
}

// ListStudents godoc
// GET /api/v1/students
// Lists students ordered by ID, filtered by id, name, class and absence_count.
func (h *StudentHandler) ListStudents(c *gin.Context) {
	var f model.StudentFilter
	if fields := validator.BindQuery(c, &f); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	students, err := h.studentService.List(c.Request.Context(), f)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// GetStudent godoc
// GET /api/v1/students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	student, err := h.studentService.GetByID(c.Request.Context(), id)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// CreateStudent godoc
// POST /api/v1/students
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req model.CreateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), req.Name, req.Class, req.AbsenceCount)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"student": student})
}

// UpdateStudent godoc
// PUT /api/v1/students/:id
// Overwrites name, class and absence_count.
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req model.UpdateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Update(c.Request.Context(), id, req.Name, req.Class, *req.AbsenceCount)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// DeleteStudent godoc
// DELETE /api/v1/students/:id
// Deletes a student together with all of its attendance records.
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.studentService.Remove(c.Request.Context(), id); err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "student deleted successfully"})
}

// ImportStudents godoc
// POST /api/v1/students/import
// Creates students from the "file" field, an .xlsx workbook.
func (h *StudentHandler) ImportStudents(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
			return
		}
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		return
	}

	file, err := fh.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	defer file.Close()

	result, err := h.studentService.ImportRoster(c.Request.Context(), file)
	if err != nil {
		if errors.Is(err, service.ErrEmptyWorkbook) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}
