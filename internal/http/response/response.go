package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lessonplan-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondErr classifies err with apierr and writes the matching envelope.
// Context cancellations map to 499 so they are not logged as server faults.
func RespondErr(c *gin.Context, err error) {
	if errors.Is(err, context.Canceled) {
		RespondError(c, 499, "canceled", err)
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		RespondError(c, http.StatusServiceUnavailable, "busy", err)
		return
	}
	ae := apierr.From(err)
	RespondError(c, ae.Status, ae.Code, ae.Err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
