// Package handlers implements the HTTP endpoints of the variant service.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/minorchanges/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// DataResponse wraps successful payloads.
type DataResponse struct {
	Data interface{} `json:"data"`
}

func writeData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, DataResponse{Data: data})
}

func writeError(c *gin.Context, status int, code errors.ErrorCode, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code.String(), Message: msg})
}

// writeAppError maps application errors to HTTP status codes.  Server-side
// failures are masked.
func writeAppError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		writeError(c, status, code, errors.DefaultMessageForCode(code))
		return
	}
	resp := ErrorResponse{Code: code.String(), Message: errors.DefaultMessageForCode(code)}
	var app *errors.AppError
	if errors.As(err, &app) {
		resp.Message = app.Message
		resp.Detail = app.Detail
	}
	c.AbortWithStatusJSON(status, resp)
}

// parseLimit reads the "limit" query parameter, bounded by max.
func parseLimit(c *gin.Context, def, max int) int {
	limit := def
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > max {
		limit = max
	}
	return limit
}

//Personal.AI order the ending
