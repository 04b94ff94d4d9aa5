package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/pdf-api/pkg/httputil"
)

// Info describes the running service.
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Docs    string `json:"docs,omitempty"`
}

// Handler serves the service level endpoints.
type Handler struct {
	info Info
}

func NewHandler(info Info) *Handler {
	return &Handler{info: info}
}

func (h *Handler) Root(c *gin.Context) {
	httputil.RespondWithSuccess(c, http.StatusOK, h.info.Name, h.info)
}

// NotFound answers unknown routes with the error envelope.
func (h *Handler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, httputil.Response{
		Success: false,
		Message: "not found",
		Path:    c.Request.URL.Path,
	})
}

func (h *Handler) MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, httputil.Response{
		Success: false,
		Message: "method not allowed",
		Path:    c.Request.URL.Path,
	})
}
