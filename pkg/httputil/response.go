package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/pdf-api/pkg/errors"
)

// Response wraps all non-document API responses
type Response struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  []errors.FieldError `json:"errors,omitempty"`
	Path    string              `json:"path,omitempty"`
}

// Page describes an offset page of results
type Page struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
	Count int `json:"count"`
}

// PaginatedResponse wraps paginated data
type PaginatedResponse struct {
	Items interface{} `json:"items"`
	Page  Page        `json:"page"`
}

func RespondWithSuccess(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondWithError renders err through the envelope. AppErrors keep their
// kind's status and message; anything else is a 500.
func RespondWithError(c *gin.Context, err error) {
	resp := Response{Path: c.Request.URL.Path}
	status := http.StatusInternalServerError

	if appErr, ok := errors.As(err); ok {
		status = appErr.StatusCode()
		resp.Message = appErr.Message
		resp.Errors = appErr.Fields
	} else {
		resp.Message = err.Error()
	}

	logger := zerolog.Ctx(c.Request.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}

	c.AbortWithStatusJSON(status, resp)
}

func RespondWithPagination(c *gin.Context, items interface{}, skip, limit, count int) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: PaginatedResponse{
			Items: items,
			Page:  Page{Skip: skip, Limit: limit, Count: count},
		},
	})
}
