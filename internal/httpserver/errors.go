package httpserver

import (
	"errors"
	"net/http"

	"supermarket-inventory/internal/validation"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error string `json:"error" example:"product not found"`
}

type ValidationErrorResponse struct {
	Error  string                  `json:"error" example:"validation failed"`
	Fields []validation.FieldError `json:"fields"`
}

// RespondBindError answers a failed gin bind with either the field list or a
// generic malformed-body message.
func RespondBindError(c *gin.Context, err error) {
	if verr := validation.FromBinding(err); verr != nil {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{Error: validation.ErrInvalid.Error(), Fields: verr.Fields})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
}

// RespondError renders validation errors as 400 and anything else as 500
// with fallback as the message. The cause is attached to the context for
// the access log.
func RespondError(c *gin.Context, err error, fallback string) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{Error: validation.ErrInvalid.Error(), Fields: verr.Fields})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
}
