package handler

import (
	"net/http"

	"cajapos/internal/dto"
	"cajapos/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductosHandler struct {
	svc    service.ProductoService
	ventas service.VentaService
}

func NewProductosHandler(svc service.ProductoService, ventas service.VentaService) *ProductosHandler {
	return &ProductosHandler{svc: svc, ventas: ventas}
}

// Crear godoc
// @Summary Crear producto
// @Tags productos
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CrearProductoRequest true "Producto"
// @Success 201 {object} dto.ProductoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/productos [post]
func (h *ProductosHandler) Crear(c *gin.Context) {
	var req dto.CrearProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Catalogo en orden de despliegue
// @Tags productos
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.ProductoListResponse
// @Router /v1/productos [get]
func (h *ProductosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductosHandler) Obtener(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reordenar godoc
// @Summary Mover un producto a otra posicion
// @Tags productos
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "UUID del producto"
// @Param body body dto.ReordenarRequest true "Posicion 1-based"
// @Success 200 {object} dto.ProductoListResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/productos/{id}/orden [patch]
func (h *ProductosHandler) Reordenar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.ReordenarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Reordenar(c.Request.Context(), id, req.Posicion)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActualizarPrecio godoc
// @Summary Fijar el precio de venta
// @Tags productos
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "UUID del producto"
// @Param body body dto.ActualizarPrecioRequest true "Precio de venta"
// @Success 200 {object} dto.ProductoResponse
// @Router /v1/productos/{id}/precio [patch]
func (h *ProductosHandler) ActualizarPrecio(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.ActualizarPrecioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarPrecio(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductosHandler) VentasHoy(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.ventas.DetalleVentasHoy(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
