package handler

import (
	"net/http"
	"strconv"

	"cajapos/internal/service"

	"github.com/gin-gonic/gin"
)

// HistorialPreciosHandler serves the price-change history of a product.
type HistorialPreciosHandler struct {
	svc service.ProductoService
}

func NewHistorialPreciosHandler(svc service.ProductoService) *HistorialPreciosHandler {
	return &HistorialPreciosHandler{svc: svc}
}

// ListarPorProducto godoc
// @Summary      Historial de precios de un producto
// @Description  Cambios de precio de un producto, del mas reciente al mas antiguo.
// @Tags         productos
// @Security     BearerAuth
// @Param        id    path     string  true  "UUID del producto"
// @Param        page  query    int     false "Pagina (default 1)"
// @Param        limit query    int     false "Registros por pagina (default 20, max 100)"
// @Success      200   {object} dto.HistorialPrecioListResponse
// @Failure      400   {object} apierror.APIError
// @Failure      404   {object} apierror.APIError
// @Router       /v1/productos/{id}/historial-precios [get]
func (h *HistorialPreciosHandler) ListarPorProducto(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := h.svc.HistorialPrecios(c.Request.Context(), id, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
