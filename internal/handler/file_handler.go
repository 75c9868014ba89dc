package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/diary-api/internal/service"
	appErrors "github.com/classdesk/diary-api/pkg/errors"
	"github.com/classdesk/diary-api/pkg/response"
)

// FileHandler accepts whole-file pushes from the desktop client.
type FileHandler struct {
	service *service.FileService
}

// NewFileHandler constructs a file handler.
func NewFileHandler(svc *service.FileService) *FileHandler {
	return &FileHandler{service: svc}
}

// Update overwrites a file under the data directory.
func (h *FileHandler) Update(c *gin.Context) {
	var req service.UpdateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.Update(req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "file updated"})
}
