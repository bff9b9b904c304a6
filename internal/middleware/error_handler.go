package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"cajapos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var errInterno = apierror.New("Error interno del servidor")

// ErrorHandler answers 500 for anything a handler attached with c.Error and
// did not write itself. The client never sees the underlying message.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}
		for _, e := range c.Errors {
			log.Error().
				Err(e.Err).
				Str("request_id", c.GetString(RequestIDKey)).
				Str("route", ruta(c)).
				Msg("error no controlado")
		}
		if !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, errInterno)
		}
	}
}

// Recovery turns a panic into a 500 and logs the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			log.Error().
				Str("request_id", c.GetString(RequestIDKey)).
				Str("route", ruta(c)).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("panic")
			if !c.Writer.Written() {
				c.AbortWithStatusJSON(http.StatusInternalServerError, errInterno)
				return
			}
			c.Abort()
		}()
		c.Next()
	}
}

// Logger writes one line per request. 4xx go out at warn, 5xx at error.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		inicio := time.Now()
		c.Next()

		status := c.Writer.Status()
		nivel := zerolog.InfoLevel
		if status >= http.StatusInternalServerError {
			nivel = zerolog.ErrorLevel
		} else if status >= http.StatusBadRequest {
			nivel = zerolog.WarnLevel
		}
		log.WithLevel(nivel).
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("route", ruta(c)).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(inicio)).
			Msg("request")
	}
}

// ruta prefers the registered pattern so ids do not explode log cardinality.
func ruta(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}
