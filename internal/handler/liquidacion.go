package handler

import (
	"fmt"
	"net/http"
	"time"

	"cajapos/internal/apierror"
	"cajapos/internal/service"
	"cajapos/internal/tiempo"

	"github.com/gin-gonic/gin"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type LiquidacionHandler struct {
	svc   service.LiquidacionService
	clock *tiempo.Clock
}

func NewLiquidacionHandler(svc service.LiquidacionService, clock *tiempo.Clock) *LiquidacionHandler {
	return &LiquidacionHandler{svc: svc, clock: clock}
}

// Ultima godoc
// @Summary Liquidacion mas reciente, recalculada
// @Tags liquidacion
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.LiquidacionResponse
// @Router /v1/liquidacion [get]
func (h *LiquidacionHandler) Ultima(c *gin.Context) {
	resp, err := h.svc.Ultima(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LiquidacionHandler) Hoy(c *gin.Context) {
	resp, err := h.svc.Hoy(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PorFecha godoc
// @Summary Liquidacion de un dia
// @Tags liquidacion
// @Security BearerAuth
// @Produce json
// @Param fecha path string true "YYYY-MM-DD"
// @Success 200 {object} dto.LiquidacionResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/liquidacion/{fecha} [get]
func (h *LiquidacionHandler) PorFecha(c *gin.Context) {
	fecha, err := h.clock.ParseFecha(c.Param("fecha"))
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.svc.Calcular(c.Request.Context(), fecha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Rango godoc
// @Summary Liquidaciones dia a dia con totales
// @Tags liquidacion
// @Security BearerAuth
// @Produce json
// @Param desde query string true "YYYY-MM-DD"
// @Param hasta query string true "YYYY-MM-DD"
// @Success 200 {object} dto.LiquidacionRangoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/liquidacion/rango [get]
func (h *LiquidacionHandler) Rango(c *gin.Context) {
	desde, hasta, ok := h.rango(c)
	if !ok {
		return
	}
	resp, err := h.svc.Rango(c.Request.Context(), desde, hasta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LiquidacionHandler) RangoXLSX(c *gin.Context) {
	desde, hasta, ok := h.rango(c)
	if !ok {
		return
	}
	data, err := h.svc.ExportarXLSX(c.Request.Context(), desde, hasta)
	if err != nil {
		respondError(c, err)
		return
	}
	name := fmt.Sprintf("liquidacion_%s_%s.xlsx", tiempo.Civil(desde), tiempo.Civil(hasta))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, mimeXLSX, data)
}

func (h *LiquidacionHandler) PDF(c *gin.Context) {
	fecha, err := h.clock.ParseFecha(c.Param("fecha"))
	if err != nil {
		respondError(c, err)
		return
	}
	data, err := h.svc.ReportePDF(c.Request.Context(), fecha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="liquidacion_`+tiempo.Civil(fecha)+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// rango reads both query bounds; they are required.
func (h *LiquidacionHandler) rango(c *gin.Context) (time.Time, time.Time, bool) {
	rawDesde, rawHasta := c.Query("desde"), c.Query("hasta")
	if rawDesde == "" || rawHasta == "" {
		c.JSON(http.StatusBadRequest, apierror.New("desde y hasta son obligatorios"))
		return time.Time{}, time.Time{}, false
	}
	desde, ok := fechaOHoy(c, h.clock, rawDesde)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	hasta, ok := fechaOHoy(c, h.clock, rawHasta)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return desde, hasta, true
}
