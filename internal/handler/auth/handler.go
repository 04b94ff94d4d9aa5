package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/pdf-api/internal/handler"
	"github.com/jwalitptl/pdf-api/internal/model"
	"github.com/jwalitptl/pdf-api/internal/service/auth"
	"github.com/jwalitptl/pdf-api/pkg/errors"
	"github.com/jwalitptl/pdf-api/pkg/httputil"
)

type Handler struct {
	svc *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/token", h.Token)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	user, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, "user registered", user)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, "login successful", token)
}

// Token implements the OAuth2 password grant: form encoded credentials in,
// a bare token object out.
func (h *Handler) Token(c *gin.Context) {
	var form model.TokenForm
	if err := c.ShouldBind(&form); err != nil {
		httputil.RespondWithError(c, handler.BindError(err))
		return
	}

	token, err := h.svc.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, token)
}

func respondAuthError(c *gin.Context, err error) {
	if errors.KindOf(err) == errors.KindUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	httputil.RespondWithError(c, err)
}
