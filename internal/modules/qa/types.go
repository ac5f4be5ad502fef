package qa

import (
	"time"

	"github.com/selam-edu/core/internal/modules/qa/alignment"
	"github.com/selam-edu/core/internal/modules/qa/language"
	"github.com/selam-edu/core/internal/modules/qa/moderation"
)

// maxQuestionBytes caps the accepted question size.
const maxQuestionBytes = 8 << 10

// LearningContext locates the learner in the curriculum.
type LearningContext struct {
	LessonID    string   `json:"lesson_id,omitempty"`
	CourseID    string   `json:"course_id,omitempty"`
	ChapterID   string   `json:"chapter_id,omitempty"`
	LessonTitle string   `json:"lesson_title,omitempty"`
	CourseTitle string   `json:"course_title,omitempty"`
	ChapterName string   `json:"chapter_name,omitempty"`
	FocusPoints []string `json:"focus_points,omitempty"`
}

// Question is one immutable request into the pipeline.
type Question struct {
	Text      string
	UserID    string
	SessionID string
	LangHint  string
	Ctx       LearningContext
	ArrivalTS time.Time
}

// Source is a reference backing the answer.
type Source struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	URL   string `json:"url,omitempty"`
}

// RelatedResource points the learner at adjacent curriculum material.
type RelatedResource struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	URL      string `json:"url,omitempty"`
}

// LatencyBreakdown reports where the request spent its time.
type LatencyBreakdown struct {
	AdmitMS       int64 `json:"admit_ms"`
	ModerationMS  int64 `json:"moderation_ms"`
	RetrievalMS   int64 `json:"retrieval_ms"`
	ProviderMS    int64 `json:"provider_ms"`
	PersistenceMS int64 `json:"persistence_ms"`
	TotalMS       int64 `json:"total_ms"`
}

// AnswerBundle is the single reply shape of the pipeline.
type AnswerBundle struct {
	Text              string             `json:"text"`
	Language          language.Language  `json:"language"`
	Sources           []Source           `json:"sources"`
	RelatedResources  []RelatedResource  `json:"related_resources"`
	Moderation        *moderation.Result `json:"moderation,omitempty"`
	FaithAlignment    *alignment.Result  `json:"faith_alignment,omitempty"`
	CacheHit          bool               `json:"cache_hit"`
	GuidanceOnly      bool               `json:"guidance_only,omitempty"`
	Guidance          []string           `json:"guidance,omitempty"`
	ModerationWarning string             `json:"moderation_warning,omitempty"`
	Latency           LatencyBreakdown   `json:"latency_breakdown"`
}
