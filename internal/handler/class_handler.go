package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/diary-api/internal/service"
	appErrors "github.com/classdesk/diary-api/pkg/errors"
	"github.com/classdesk/diary-api/pkg/response"
)

// ClassHandler exposes class management endpoints.
type ClassHandler struct {
	service *service.ClassService
}

// NewClassHandler constructs a class handler.
func NewClassHandler(svc *service.ClassService) *ClassHandler {
	return &ClassHandler{service: svc}
}

// List returns the known class names. The desktop client expects a bare
// JSON array here, not the envelope.
func (h *ClassHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.List())
}

// Create provisions a new class with its timetable, homework calendar and
// roster stores.
func (h *ClassHandler) Create(c *gin.Context) {
	var req service.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.Create(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"message": fmt.Sprintf("class %s created", req.ClassName)})
}

// AssignLesson writes a timetable cell and triggers schema sync for new
// lesson names.
func (h *ClassHandler) AssignLesson(c *gin.Context) {
	var req service.AssignLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	report, err := h.service.AssignLesson(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "timetable updated", "sync": report})
}
