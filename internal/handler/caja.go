package handler

import (
	"net/http"

	"cajapos/internal/dto"
	"cajapos/internal/service"
	"cajapos/internal/tiempo"

	"github.com/gin-gonic/gin"
)

type CajaHandler struct {
	svc   service.CajaService
	clock *tiempo.Clock
}

func NewCajaHandler(svc service.CajaService, clock *tiempo.Clock) *CajaHandler {
	return &CajaHandler{svc: svc, clock: clock}
}

// Registrar godoc
// @Summary Registrar movimiento manual de caja
// @Tags caja
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.MovimientoCajaRequest true "Movimiento"
// @Success 201 {object} dto.MovimientoCajaResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/caja/movimientos [post]
func (h *CajaHandler) Registrar(c *gin.Context) {
	var req dto.MovimientoCajaRequest
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

// Eliminar godoc
// @Summary Eliminar una salida de caja
// @Tags caja
// @Security BearerAuth
// @Param id path string true "UUID del movimiento"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError "solo salidas"
// @Router /v1/caja/movimientos/{id} [delete]
func (h *CajaHandler) Eliminar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CajaHandler) ListarPorDia(c *gin.Context) {
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

func (h *CajaHandler) ListarSalidas(c *gin.Context) {
	fecha, ok := fechaOHoy(c, h.clock, c.Query("fecha"))
	if !ok {
		return
	}
	resp, err := h.svc.ListarSalidasPorDia(c.Request.Context(), fecha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
