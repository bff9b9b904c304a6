package handler

import (
	"net/http"

	"cajapos/internal/dto"
	"cajapos/internal/service"

	"github.com/gin-gonic/gin"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// Entrada godoc
// @Summary Reponer stock de un producto
// @Tags inventario
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.EntradaInventarioRequest true "codigo o producto_id, y cantidad"
// @Success 201 {object} dto.EntradaInventarioResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/inventario/entradas [post]
func (h *InventarioHandler) Entrada(c *gin.Context) {
	var req dto.EntradaInventarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Entrada(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *InventarioHandler) Historial(c *gin.Context) {
	items, err := h.svc.Historial(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items, "total": len(items)})
}
