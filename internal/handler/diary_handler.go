package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/diary-api/internal/service"
	appErrors "github.com/classdesk/diary-api/pkg/errors"
	"github.com/classdesk/diary-api/pkg/response"
)

// DiaryHandler exposes homework and marks reads and writes.
type DiaryHandler struct {
	service *service.DiaryService
}

// NewDiaryHandler constructs a diary handler.
func NewDiaryHandler(svc *service.DiaryService) *DiaryHandler {
	return &DiaryHandler{service: svc}
}

// SetHomework writes a homework text into a date/lesson cell.
func (h *DiaryHandler) SetHomework(c *gin.Context) {
	var req service.SetHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.SetHomework(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "homework saved"})
}

// SetMark writes a grade into a student's marks store.
func (h *DiaryHandler) SetMark(c *gin.Context) {
	var req service.SetMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.SetMark(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "mark saved"})
}

// DayView returns the fifteen timetable slots of a weekday joined with the
// homework texts of a date.
func (h *DiaryHandler) DayView(c *gin.Context) {
	class := c.Query("class_name")
	date := c.Query("date")
	weekday := c.Query("weekday")
	if class == "" || date == "" || weekday == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "class_name, date and weekday query parameters are required"))
		return
	}
	slots, err := h.service.DayView(c.Request.Context(), class, date, weekday)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots)
}

// Marks returns a student's grades for one date as a lesson to value map.
func (h *DiaryHandler) Marks(c *gin.Context) {
	login := c.Query("login")
	date := c.Query("date")
	if login == "" || date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "login and date query parameters are required"))
		return
	}
	grades, err := h.service.MarksFor(c.Request.Context(), login, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades)
}
