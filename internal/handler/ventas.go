package handler

import (
	"net/http"

	"cajapos/internal/dto"
	"cajapos/internal/service"
	"cajapos/internal/tiempo"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct {
	svc   service.VentaService
	clock *tiempo.Clock
}

func NewVentasHandler(svc service.VentaService, clock *tiempo.Clock) *VentasHandler {
	return &VentasHandler{svc: svc, clock: clock}
}

// Registrar godoc
// @Summary Registrar una venta
// @Tags ventas
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.RegistrarVentaRequest true "Venta"
// @Success 201 {object} dto.VentaRegistradaResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError "stock insuficiente"
// @Router /v1/ventas [post]
func (h *VentasHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *VentasHandler) Eliminar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Eliminar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarPorDia godoc
// @Summary Ventas de un dia
// @Tags ventas
// @Security BearerAuth
// @Produce json
// @Param fecha query string false "YYYY-MM-DD (default hoy)"
// @Success 200 {object} dto.VentasDelDiaResponse
// @Router /v1/ventas [get]
func (h *VentasHandler) ListarPorDia(c *gin.Context) {
	fecha, ok := fechaOHoy(c, h.clock, c.Query("fecha"))
	if !ok {
		return
	}
	resp, err := h.svc.ListarPorDia(c.Request.Context(), fecha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
