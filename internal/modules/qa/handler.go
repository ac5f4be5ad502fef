package qa

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/selam-edu/core/internal/middleware"
	"github.com/selam-edu/core/internal/models"
	"github.com/selam-edu/core/internal/modules/conversation"
	"github.com/selam-edu/core/internal/pkg/pagination"
	"github.com/selam-edu/core/internal/pkg/response"
	"go.uber.org/zap"
)

type Handler struct {
	svc  *Service
	conv *conversation.Store
	log  *zap.Logger
}

func NewHandler(svc *Service, conv *conversation.Store, log *zap.Logger) *Handler {
	return &Handler{svc: svc, conv: conv, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/qa")
	g.POST("/ask", h.ask)
	g.GET("/history", h.history)
	g.GET("/conversations", h.conversations)
	g.GET("/cache/stats", h.cacheStats)
}

type askDTO struct {
	Question  string `json:"question"  binding:"required"`
	SessionID string `json:"session_id" binding:"required"`
	Language  string `json:"language"`
	LessonID  string `json:"lesson_id"`
	CourseID  string `json:"course_id"`
	ChapterID string `json:"chapter_id"`

	LessonTitle string   `json:"lesson_title"`
	CourseTitle string   `json:"course_title"`
	ChapterName string   `json:"chapter_name"`
	FocusPoints []string `json:"focus_points"`
}

func (h *Handler) ask(c *gin.Context) {
	var dto askDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "question and session_id are required")
		return
	}

	userID := middleware.CurrentUserID(c)
	if userID == "" {
		// Anonymous learners get per-session continuity only.
		userID = "anon:" + dto.SessionID
	}

	q := Question{
		Text:      dto.Question,
		UserID:    userID,
		SessionID: dto.SessionID,
		LangHint:  dto.Language,
		ArrivalTS: time.Now(),
		Ctx: LearningContext{
			LessonID:    dto.LessonID,
			CourseID:    dto.CourseID,
			ChapterID:   dto.ChapterID,
			LessonTitle: dto.LessonTitle,
			CourseTitle: dto.CourseTitle,
			ChapterName: dto.ChapterName,
			FocusPoints: dto.FocusPoints,
		},
	}

	bundle, err := h.svc.Ask(c.Request.Context(), q)
	if err != nil {
		var qaErr *Error
		if !errors.As(err, &qaErr) {
			response.InternalError(c, err)
			return
		}
		switch qaErr.Kind {
		case KindInvalidInput:
			response.BadRequest(c, qaErr.Message)
		case KindOverloaded:
			response.TooManyRequests(c, 2, "service is at capacity, please retry shortly")
		case KindProviderUnavailable:
			// Degraded but answered: the bundle carries a localized
			// fallback text the client can show as-is.
			if bundle != nil {
				c.JSON(http.StatusOK, gin.H{"ok": 1, "data": bundle, "degraded": true})
				return
			}
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"ok": 0, "code": http.StatusServiceUnavailable, "message": "answer providers are unavailable",
			})
		default:
			response.InternalError(c, qaErr)
		}
		return
	}

	response.OK(c, bundle)
}

func (h *Handler) history(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		response.BadRequest(c, "session_id is required")
		return
	}
	userID := middleware.CurrentUserID(c)
	if userID == "" {
		userID = "anon:" + sessionID
	}

	conv, err := h.conv.Find(c.Request.Context(), userID, sessionID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if conv == nil {
		response.Paged(c, []models.MessageModel{}, pagination.Empty(c))
		return
	}

	var msgs []models.MessageModel
	pg, err := pagination.Paginate(h.conv.Messages(c.Request.Context(), conv.ID), pagination.FromContext(c), &msgs)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, msgs, pg)
}

func (h *Handler) conversations(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == "" {
		response.Unauthorized(c)
		return
	}

	var convs []models.ConversationModel
	query := h.conv.ListForUser(c.Request.Context(), userID)
	pg, err := pagination.Paginate(query, pagination.FromContext(c), &convs)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, convs, pg)
}

func (h *Handler) cacheStats(c *gin.Context) {
	hits, misses, size := h.svc.CacheStats()
	response.OK(c, gin.H{"hits": hits, "misses": misses, "size": size})
}
