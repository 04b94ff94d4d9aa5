package pdf

import (
	"context"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/pdf-api/internal/handler"
	"github.com/jwalitptl/pdf-api/internal/middleware"
	"github.com/jwalitptl/pdf-api/internal/model"
	"github.com/jwalitptl/pdf-api/internal/service/pdf"
	"github.com/jwalitptl/pdf-api/pkg/httputil"
)

type documentQuery struct {
	Download bool `form:"download"`
}

type Handler struct {
	svc *pdf.Service
}

func NewHandler(svc *pdf.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the document routes. docAuth guards generation and
// is either required or optional authentication.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, docAuth gin.HandlerFunc) {
	docs := r.Group("/pdf")
	{
		docs.POST("/prescription", docAuth, middleware.NoStore(), h.GeneratePrescription)
		docs.POST("/invoice", docAuth, middleware.NoStore(), h.GenerateInvoice)
		docs.GET("/templates/info", h.TemplatesInfo)
		docs.GET("/health", h.Health)
	}
}

func (h *Handler) GeneratePrescription(c *gin.Context) {
	var query documentQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	var req model.PrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	res := h.svc.GeneratePrescription(withActor(c), &req)
	respond(c, res, query.Download)
}

func (h *Handler) GenerateInvoice(c *gin.Context) {
	var query documentQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	var req model.InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	res := h.svc.GenerateInvoice(withActor(c), &req)
	respond(c, res, query.Download)
}

func (h *Handler) TemplatesInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Templates())
}

func (h *Handler) Health(c *gin.Context) {
	health, err := h.svc.Health(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}
	c.JSON(http.StatusOK, health)
}

func respond(c *gin.Context, res pdf.Result, download bool) {
	if out := res.Output(); out != nil && download {
		c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.Filename}))
		c.Data(http.StatusOK, model.ContentTypePDF, out.Data)
		return
	}
	c.JSON(res.Status(), res.Response())
}

func withActor(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if user, ok := middleware.CurrentUser(c); ok {
		ctx = pdf.WithActor(ctx, user.Email)
	}
	return ctx
}
