package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/diary-api/internal/service"
	appErrors "github.com/classdesk/diary-api/pkg/errors"
	"github.com/classdesk/diary-api/pkg/response"
)

// ProcessRequest is the legacy login envelope: a two element message array
// holding login and password.
type ProcessRequest struct {
	Message []string `json:"message" binding:"required"`
}

// AuthHandler exposes authentication and the login bundle transfer.
type AuthHandler struct {
	auth    *service.AuthService
	bundles *service.BundleService
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(auth *service.AuthService, bundles *service.BundleService) *AuthHandler {
	return &AuthHandler{auth: auth, bundles: bundles}
}

// Login verifies credentials and returns the role, routing key and a signed
// access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.auth.Authenticate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Process is the legacy login endpoint: it verifies credentials and streams
// back a zip of the caller's store files as an attachment.
func (h *AuthHandler) Process(c *gin.Context) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Message) != 2 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "expected message array of login and password"))
		return
	}

	login, password := req.Message[0], req.Message[1]
	if _, err := h.auth.Authenticate(c.Request.Context(), service.LoginRequest{Login: login, Password: password}); err != nil {
		response.Error(c, err)
		return
	}

	bundle, err := h.bundles.Build(c.Request.Context(), login)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", bundle.Filename))
	c.Data(http.StatusOK, "application/zip", bundle.Data)
}
