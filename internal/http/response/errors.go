package response

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pictures2pages-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError maps err through apierr so only the public message reaches
// the client. The full error is attached to the gin context for the request
// logger.
func RespondError(c *gin.Context, err error) {
	if err == nil {
		err = errUnknown
	}
	ae := apierr.From(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(ae.Status, ErrorEnvelope{
		Error: APIError{
			Message: ae.PublicMessage(),
			Code:    ae.Code,
		},
	})
}

// RespondErrorStatus is for failures detected in the handler itself, such as
// a malformed body, where the message is already safe to show.
func RespondErrorStatus(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{Message: message, Code: code},
	})
}
