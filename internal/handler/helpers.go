package handler

import (
	"errors"
	"net/http"
	"reflect"
	"time"

	"cajapos/internal/apierror"
	"cajapos/internal/service"
	"cajapos/internal/tiempo"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// decimal.Decimal validates as float64 so min=0, gt=0 and required work
	// instead of panicking with "Bad field type decimal.Decimal".
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps the service error taxonomy onto HTTP status codes.
// Unknown errors are attached to the context and rendered as a generic 500
// by middleware.ErrorHandler.
func respondError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, service.ErrValidacion), errors.Is(err, tiempo.ErrFechaInvalida):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrCredenciales):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrNoEncontrado):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrStockInsuficiente), errors.Is(err, service.ErrNoEliminable):
		status = http.StatusConflict
	case errors.Is(err, service.ErrOcupado):
		status = http.StatusServiceUnavailable
	default:
		_ = c.Error(err)
		return
	}
	c.JSON(status, apierror.New(err.Error()))
}

func paramID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// fechaOHoy parses a YYYY-MM-DD value, defaulting to today when raw is empty.
func fechaOHoy(c *gin.Context, clock *tiempo.Clock, raw string) (time.Time, bool) {
	if raw == "" {
		return clock.Hoy(), true
	}
	f, err := clock.ParseFecha(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return time.Time{}, false
	}
	return f, true
}
