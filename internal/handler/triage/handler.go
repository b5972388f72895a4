package triage

import (
	"github.com/gin-gonic/gin"

	"github.com/mediseen/teleconsult-api/internal/service/triage"
	apperrors "github.com/mediseen/teleconsult-api/pkg/errors"
	"github.com/mediseen/teleconsult-api/pkg/httputil"
)

// Handler exposes the advisory triage endpoint. It is independent of the
// booking flow; clients may call it before or during doctor selection.
type Handler struct {
	client triage.Client
}

func NewHandler(client triage.Client) *Handler {
	return &Handler{client: client}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/triage", h.Suggest)
}

type suggestRequest struct {
	Symptoms string `json:"symptoms" binding:"required,max=2000"`
}

func (h *Handler) Suggest(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	suggestion, err := h.client.Suggest(c.Request.Context(), req.Symptoms)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, suggestion)
}
