package escalation

import (
	"github.com/gin-gonic/gin"
	"github.com/selam-edu/core/internal/middleware"
	"github.com/selam-edu/core/internal/models"
	"github.com/selam-edu/core/internal/pkg/pagination"
	"github.com/selam-edu/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW ...gin.HandlerFunc) {
	g := rg.Group("/escalations")
	for _, mw := range authMW {
		g.Use(mw)
	}
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PATCH("/:id/status", h.updateStatus)
}

// GET /escalations?status=pending&priority=high  [reviewer]
func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	tx := h.svc.List(c.Request.Context(), c.Query("status"), c.Query("priority"))

	var items []models.EscalationModel
	pag, err := pagination.Paginate(tx, q, &items)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, items, pag)
}

// GET /escalations/:id  [reviewer]
func (h *Handler) get(c *gin.Context) {
	row, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if row == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, row)
}

type updateStatusDTO struct {
	Status string `json:"status" binding:"required"`
}

// PATCH /escalations/:id/status  [reviewer]
func (h *Handler) updateStatus(c *gin.Context) {
	var dto updateStatusDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	status := models.EscalationStatus(dto.Status)
	switch status {
	case models.EscalationInReview, models.EscalationResolved, models.EscalationDismissed, models.EscalationPending:
	default:
		response.BadRequest(c, "unknown status")
		return
	}

	row, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), status, middleware.CurrentUserID(c))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if row == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, row)
}
