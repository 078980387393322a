package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hittalaget/hittalaget-backend/internal/platform/apierr"
)

type APIError struct {
	Message  string `json:"message"`
	Code     string `json:"code,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError maps a service error onto the wire. Errors built with the
// apierr package carry their own status, code and optional redirect;
// anything else is a 500 with its detail hidden.
func RespondError(c *gin.Context, err error) {
	if ae, ok := apierr.As(err); ok {
		c.JSON(ae.Status, ErrorEnvelope{
			Error: APIError{
				Message:  ae.Error(),
				Code:     ae.Code,
				Redirect: ae.Redirect,
			},
		})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorEnvelope{
		Error: APIError{
			Message: "internal error",
			Code:    apierr.CodeInternal,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
