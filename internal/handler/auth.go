package handler

import (
	"net/http"

	"cajapos/internal/dto"
	"cajapos/internal/middleware"
	"cajapos/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login godoc
// @Summary Login del operador
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credenciales"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Failure 429 {object} apierror.APIError
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary Revoca el token actual
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Router /v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), middleware.GetClaims(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
