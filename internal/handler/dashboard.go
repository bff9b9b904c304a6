package handler

import (
	"net/http"

	"cajapos/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct{ svc service.DashboardService }

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Resumen godoc
// @Summary Totales historicos del negocio
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.DashboardResponse
// @Router /v1/dashboard [get]
func (h *DashboardHandler) Resumen(c *gin.Context) {
	resp, err := h.svc.Resumen(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
