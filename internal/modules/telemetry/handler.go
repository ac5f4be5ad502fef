package telemetry

import (
	"github.com/gin-gonic/gin"
	"github.com/selam-edu/core/internal/models"
	"github.com/selam-edu/core/internal/pkg/pagination"
	"github.com/selam-edu/core/internal/pkg/response"
	"gorm.io/gorm"
)

type Handler struct {
	sink *Sink
	db   *gorm.DB
}

func NewHandler(sink *Sink, db *gorm.DB) *Handler {
	return &Handler{sink: sink, db: db}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW ...gin.HandlerFunc) {
	g := rg.Group("/telemetry")
	for _, mw := range authMW {
		g.Use(mw)
	}
	g.GET("/events", h.listEvents)
	g.POST("/sweep", h.runSweep)
}

// GET /telemetry/events?kind=...&user_id=...  [admin]
func (h *Handler) listEvents(c *gin.Context) {
	q := pagination.FromContext(c)

	tx := h.db.Model(&models.TelemetryEventModel{}).Order("timestamp DESC")
	if kind := c.Query("kind"); kind != "" {
		tx = tx.Where("kind = ?", kind)
	}
	if userID := c.Query("user_id"); userID != "" {
		tx = tx.Where("user_id = ?", userID)
	}

	var events []models.TelemetryEventModel
	pag, err := pagination.Paginate(tx, q, &events)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, events, pag)
}

// POST /telemetry/sweep  [admin]
func (h *Handler) runSweep(c *gin.Context) {
	removed, err := h.sink.Sweep(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"removed": removed})
}
