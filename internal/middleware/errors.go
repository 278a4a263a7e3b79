package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/sthpulse/internal/domain/dto"
	"github.com/guttosm/sthpulse/internal/logger"
)

// ErrorHandler is a Gin middleware that converts errors attached to the
// context via c.Error() into a single standardized JSON response.
//
// Behavior:
//   - Runs the handler chain first.
//   - If the response was already written, does nothing.
//   - Otherwise logs every collected error and answers 500 with the last one.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}

	for _, e := range c.Errors {
		logger.L().Error().Err(e.Err).Str("path", c.Request.URL.Path).Msg("request error")
	}

	last := c.Errors.Last().Err
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("internal error", last))
}

// AbortWithError stops the handler chain and writes a standardized error
// body with the given status.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
