package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Recovery answers a handler panic with the same JSON error shape as the
// timeout middleware and logs the stack. http.ErrAbortHandler is re-raised
// so net/http can drop the connection.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if e, ok := r.(error); ok && errors.Is(e, http.ErrAbortHandler) {
					panic(r)
				}

				var stack [4096]byte
				n := runtime.Stack(stack[:], false)
				committed := c.Response().Committed
				logger.Error().
					Str("request_id", requestIDOf(c)).
					Str("path", c.Request().URL.Path).
					Str("panic", fmt.Sprint(r)).
					Bool("committed", committed).
					Str("stack", string(stack[:n])).
					Msg("panic recovered")

				// A partly written asset cannot be repaired.
				if committed {
					err = nil
					return
				}
				err = c.JSON(http.StatusInternalServerError, map[string]string{
					"error":      "internal server error",
					"request_id": requestIDOf(c),
				})
			}()
			return next(c)
		}
	}
}
