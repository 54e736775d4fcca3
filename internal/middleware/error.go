package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/triage-api/pkg/errors"
	"github.com/jwalitptl/triage-api/pkg/httputil"
)

// ErrorHandler logs every error recorded on the context. Handlers that attach an error
// without writing a response get the standard envelope.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		logger := zerolog.Ctx(c.Request.Context())
		for _, e := range c.Errors {
			event := logger.Warn()
			if appErr, ok := errors.As(e.Err); !ok || appErr.Code == errors.ErrInternal {
				event = logger.Error()
			}
			event.
				Err(e.Err).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Str("client_ip", c.ClientIP()).
				Msg("Request error")
		}

		if c.Writer.Written() {
			return
		}
		httputil.RespondWithError(c, c.Errors.Last().Err)
	}
}
