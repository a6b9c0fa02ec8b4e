package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	salesdomain "github.com/smallbiznis/retailsales/internal/sales/domain"
)

var (
	ErrRateLimited = errors.New("rate_limited")
	ErrInternal    = errors.New("internal_error")
)

type messageResponse struct {
	Message string `json:"message"`
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// mapError answers 429 for throttling and the generic internal error for
// everything else.
func mapError(err error) (int, messageResponse) {
	switch {
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, messageResponse{Message: "Too many requests"}
	default:
		return http.StatusInternalServerError, messageResponse{Message: "Internal server error"}
	}
}

func classifyErrorForLog(err error) (string, string) {
	switch {
	case err == nil:
		return "", ""
	case errors.Is(err, ErrRateLimited):
		return "rate_limited", "rate_limited"
	case errors.Is(err, salesdomain.ErrQueryTimeout):
		return "data_source", salesdomain.ErrQueryTimeout.Error()
	case errors.Is(err, salesdomain.ErrDataSource):
		return "data_source", salesdomain.ErrDataSource.Error()
	default:
		return "internal_error", ErrInternal.Error()
	}
}
