package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/diary-api/internal/service"
	appErrors "github.com/classdesk/diary-api/pkg/errors"
	"github.com/classdesk/diary-api/pkg/response"
)

// UserHandler exposes account creation.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler constructs a user handler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// Add creates an account and its role-specific store. For students the
// enrollment saga report is returned so a half-completed retry is visible
// to the operator.
func (h *UserHandler) Add(c *gin.Context) {
	var req service.AddUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	report, err := h.service.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := gin.H{"message": "user created"}
	if report != nil {
		payload["enrollment"] = report
	}
	response.Created(c, payload)
}
