package qa

import (
	"context"
	"errors"
	"time"

	appcfg "github.com/selam-edu/core/internal/config"
	"github.com/selam-edu/core/internal/models"
	"github.com/selam-edu/core/internal/modules/conversation"
	"github.com/selam-edu/core/internal/modules/escalation"
	"github.com/selam-edu/core/internal/modules/qa/alignment"
	"github.com/selam-edu/core/internal/modules/qa/language"
	"github.com/selam-edu/core/internal/modules/qa/limiter"
	"github.com/selam-edu/core/internal/modules/qa/moderation"
	"github.com/selam-edu/core/internal/modules/qa/prompt"
	"github.com/selam-edu/core/internal/modules/qa/provider"
	"github.com/selam-edu/core/internal/modules/qa/respcache"
	"github.com/selam-edu/core/internal/modules/qa/retrieval"
	"github.com/selam-edu/core/internal/modules/telemetry"
	"go.uber.org/zap"
)

// Retriever is the knowledge base dependency; nil-safe fakes implement
// it in tests.
type Retriever interface {
	Retrieve(ctx context.Context, question string, f retrieval.Filters) []retrieval.Item
}

// Service is the pipeline orchestrator and the single public entry point
// of the question-answering core. All dependencies are constructed once
// at startup and immutable afterwards.
type Service struct {
	cfg       appcfg.PipelineConfig
	mod       *moderation.Engine
	validator *alignment.Validator
	retriever Retriever
	gen       provider.Generator
	limiter   *limiter.Limiter
	cache     *respcache.Cache[AnswerBundle]
	conv      *conversation.Store
	esc       *escalation.Service
	sink      *telemetry.Sink
	log       *zap.Logger
}

func NewService(
	cfg appcfg.PipelineConfig,
	mod *moderation.Engine,
	validator *alignment.Validator,
	retriever Retriever,
	gen provider.Generator,
	conv *conversation.Store,
	esc *escalation.Service,
	sink *telemetry.Sink,
	log *zap.Logger,
) *Service {
	var cache *respcache.Cache[AnswerBundle]
	if cfg.CacheEnabled == nil || *cfg.CacheEnabled {
		cache = respcache.New[AnswerBundle](
			cfg.CacheCapacity,
			time.Duration(cfg.CacheTTLMS)*time.Millisecond,
			cfg.AlignmentOKThreshold,
		)
	}
	return &Service{
		cfg:       cfg,
		mod:       mod,
		validator: validator,
		retriever: retriever,
		gen:       gen,
		limiter:   limiter.New(cfg.ConcurrentRequests, cfg.QueueCap),
		cache:     cache,
		conv:      conv,
		esc:       esc,
		sink:      sink,
		log:       log,
	}
}

// Deadline returns the per-request wall clock budget.
func (s *Service) Deadline() time.Duration {
	return time.Duration(s.cfg.MaxResponseTimeMS) * time.Millisecond
}

// CacheStats exposes hit/miss counters for the stats job.
func (s *Service) CacheStats() (hits, misses int64, size int) {
	if s.cache == nil {
		return 0, 0, 0
	}
	h, m := s.cache.Stats()
	return h, m, s.cache.Len()
}

// SweepCache drops expired cache entries.
func (s *Service) SweepCache() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Sweep()
}

// Ask runs the full pipeline for one question. On ProviderUnavailable
// the returned bundle still carries a localized fallback text alongside
// the error.
func (s *Service) Ask(ctx context.Context, q Question) (*AnswerBundle, error) {
	start := time.Now()

	if len(q.Text) == 0 || trimmedEmpty(q.Text) {
		s.emit(ctx, telemetry.Event{
			Kind: telemetry.KindBadRequest, UserID: q.UserID, SessionID: q.SessionID,
			Fields: map[string]interface{}{"reason": "empty question"},
		})
		return nil, invalidInput("question text is empty")
	}
	if len(q.Text) > maxQuestionBytes {
		s.emit(ctx, telemetry.Event{
			Kind: telemetry.KindBadRequest, UserID: q.UserID, SessionID: q.SessionID,
			Fields: map[string]interface{}{"reason": "question too long", "question_len": len(q.Text)},
		})
		return nil, invalidInput("question text exceeds 8 KiB")
	}

	ctx, cancel := context.WithTimeout(ctx, s.Deadline())
	defer cancel()

	admitStart := time.Now()
	if err := s.limiter.Admit(ctx); err != nil {
		if errors.Is(err, limiter.ErrQueueFull) {
			s.emit(ctx, telemetry.Event{
				Kind: telemetry.KindAdmission, UserID: q.UserID, SessionID: q.SessionID,
				Fields: map[string]interface{}{"admitted": false, "queue_len": s.limiter.QueueLen()},
			})
			return nil, overloaded()
		}
		return nil, providerUnavailable(err)
	}
	defer s.limiter.Release()

	var lat LatencyBreakdown
	lat.AdmitMS = time.Since(admitStart).Milliseconds()
	s.emit(ctx, telemetry.Event{
		Kind: telemetry.KindAdmission, UserID: q.UserID, SessionID: q.SessionID,
		Fields: map[string]interface{}{"admitted": true, "admit_ms": lat.AdmitMS},
	})

	lang := language.DetectWithHint(q.Text, q.LangHint)
	if lang == language.Unsupported {
		s.emit(ctx, telemetry.Event{
			Kind: telemetry.KindUnsupportedLanguage, UserID: q.UserID, SessionID: q.SessionID,
			Fields: map[string]interface{}{"question": q.Text},
		})
		lat.TotalMS = time.Since(start).Milliseconds()
		return &AnswerBundle{
			Text:         unsupportedLanguageGuidance()[0],
			Language:     language.Unsupported,
			GuidanceOnly: true,
			Guidance:     unsupportedLanguageGuidance(),
			Latency:      lat,
		}, nil
	}

	modStart := time.Now()
	modResult := s.mod.Screen(ctx, q.Text, q.UserID, lang)
	lat.ModerationMS = time.Since(modStart).Milliseconds()
	s.emit(ctx, telemetry.Event{
		Kind: telemetry.KindModeration, UserID: q.UserID, SessionID: q.SessionID, Language: string(lang),
		Fields: map[string]interface{}{
			"action":     string(modResult.RecommendedAction),
			"severity":   string(modResult.Severity),
			"flags":      modResult.Flags,
			"confidence": modResult.Confidence,
		},
	})

	switch modResult.RecommendedAction {
	case moderation.ActionBlock, moderation.ActionEscalate:
		return s.blockAndEscalate(ctx, q, lang, &modResult, lat, start)
	}

	if len(modResult.Guidance) > 0 && !modResult.NeedsReview {
		lat.TotalMS = time.Since(start).Milliseconds()
		return &AnswerBundle{
			Text:         modResult.Guidance[0],
			Language:     lang,
			Moderation:   &modResult,
			GuidanceOnly: true,
			Guidance:     modResult.Guidance,
			Latency:      lat,
		}, nil
	}

	history, err := s.conv.History(ctx, q.UserID, q.SessionID, s.cfg.HistoryExchanges*2)
	if err != nil {
		s.log.Warn("history read failed", zap.Error(err))
	}

	cacheKey := retrieval.CacheKey(q.Text, string(lang), q.Ctx.LessonID, q.Ctx.CourseID, q.Ctx.ChapterID)
	if s.cache != nil {
		if cached, ok := s.cache.Get(cacheKey); ok {
			cached.CacheHit = true
			cached.Latency = lat
			cached.Latency.TotalMS = time.Since(start).Milliseconds()
			return &cached, nil
		}
	}

	retrievalStart := time.Now()
	var items []retrieval.Item
	if s.retriever != nil {
		items = s.retriever.Retrieve(ctx, q.Text, retrieval.Filters{
			ChapterID: q.Ctx.ChapterID,
			CourseID:  q.Ctx.CourseID,
		})
	}
	lat.RetrievalMS = time.Since(retrievalStart).Milliseconds()

	promptInput := prompt.Input{
		Question:  q.Text,
		Language:  lang,
		History:   historyMessages(history),
		Retrieved: items,
		Lesson:    q.Ctx.LessonTitle,
		Course:    q.Ctx.CourseTitle,
		Chapter:   q.Ctx.ChapterName,
		Strict:    modResult.RecommendedAction == moderation.ActionRegenerate,
	}

	providerStart := time.Now()
	best, alignResult, genErr := s.generateAligned(ctx, promptInput, q)
	lat.ProviderMS = time.Since(providerStart).Milliseconds()

	if genErr != nil {
		s.emit(ctx, telemetry.Event{
			Kind: telemetry.KindAIError, UserID: q.UserID, SessionID: q.SessionID, Language: string(lang),
			Fields: map[string]interface{}{"error": genErr.Error(), "provider_ms": lat.ProviderMS},
		})
		lat.TotalMS = time.Since(start).Milliseconds()
		return &AnswerBundle{
			Text:         providerFallbackText(lang),
			Language:     lang,
			Moderation:   &modResult,
			GuidanceOnly: true,
			Latency:      lat,
		}, providerUnavailable(genErr)
	}

	s.emit(ctx, telemetry.Event{
		Kind: telemetry.KindProviderLatency, UserID: q.UserID, SessionID: q.SessionID, Language: string(lang),
		Fields: map[string]interface{}{"provider_ms": lat.ProviderMS, "model_id": best.ModelID},
	})
	s.emit(ctx, telemetry.Event{
		Kind: telemetry.KindAlignment, UserID: q.UserID, SessionID: q.SessionID, Language: string(lang),
		Fields: map[string]interface{}{
			"score":      alignResult.Score,
			"is_aligned": alignResult.IsAligned,
			"compliant":  alignResult.Score >= s.cfg.AccuracyThreshold,
		},
	})

	bundle := &AnswerBundle{
		Text:             best.Text,
		Language:         lang,
		Sources:          sourcesFromItems(items),
		RelatedResources: relatedFromContext(q.Ctx),
		Moderation:       &modResult,
		FaithAlignment:   alignResult,
	}

	if alignResult.Score < s.cfg.AlignmentEscalateThreshold {
		modResult.RecommendedAction = moderation.ActionEscalate
		bundle.ModerationWarning = lowAlignmentWarning(lang)
		s.createEscalation(ctx, q, "low alignment score after regeneration", models.PriorityHigh, modResult.Flags, alignResult.Score)
	}

	persistStart := time.Now()
	s.persistExchange(ctx, q, lang, bundle, alignResult, best)
	lat.PersistenceMS = time.Since(persistStart).Milliseconds()

	lat.TotalMS = time.Since(start).Milliseconds()
	bundle.Latency = lat

	if s.cache != nil {
		s.cache.Put(cacheKey, *bundle, alignResult.Score)
	}

	return bundle, nil
}

// generateAligned calls the provider, validates the answer and retries
// once under strict constraints when the score falls below the
// regeneration threshold. The higher scoring attempt wins.
func (s *Service) generateAligned(ctx context.Context, in prompt.Input, q Question) (provider.Response, *alignment.Result, error) {
	sys, user := prompt.Build(in)
	first, err := s.gen.Generate(ctx, sys, user)
	if err != nil {
		return provider.Response{}, nil, err
	}

	alignInput := alignment.Input{Question: q.Text, FocusPoints: q.Ctx.FocusPoints}
	firstScore := s.validator.Validate(first.Text, alignInput)
	if firstScore.Score >= s.cfg.AlignmentRegenerateThreshold {
		return first, &firstScore, nil
	}

	in.Strict = true
	sys, user = prompt.Build(in)
	second, err := s.gen.Generate(ctx, sys, user)
	if err != nil {
		// Keep the first answer; regeneration is best effort.
		return first, &firstScore, nil
	}
	secondScore := s.validator.Validate(second.Text, alignInput)
	if secondScore.Score > firstScore.Score {
		return second, &secondScore, nil
	}
	return first, &firstScore, nil
}

// blockAndEscalate handles moderation decisions that stop the pipeline
// before any provider call.
func (s *Service) blockAndEscalate(ctx context.Context, q Question, lang language.Language, modResult *moderation.Result, lat LatencyBreakdown, start time.Time) (*AnswerBundle, error) {
	priority := models.EscalationPriority(modResult.Priority())
	if modResult.RecommendedAction == moderation.ActionBlock {
		priority = models.PriorityHigh
	}
	s.createEscalation(ctx, q, "moderation "+string(modResult.RecommendedAction), priority, modResult.Flags, modResult.FaithAlignmentScore)

	guidanceText := moderationWarningText(lang)
	if len(modResult.Guidance) > 0 {
		guidanceText = modResult.Guidance[0]
	}

	persistStart := time.Now()
	if conv, err := s.conv.Upsert(ctx, q.UserID, q.SessionID); err == nil {
		meta := models.MessageMeta{Language: string(lang), Flags: modResult.Flags}
		if err := s.conv.AppendExchange(ctx, conv.ID, q.Text, guidanceText, meta, true); err != nil {
			s.emitPersistenceFailure(ctx, q, err)
		}
	} else {
		s.emitPersistenceFailure(ctx, q, err)
	}
	lat.PersistenceMS = time.Since(persistStart).Milliseconds()
	lat.TotalMS = time.Since(start).Milliseconds()

	return &AnswerBundle{
		Text:              guidanceText,
		Language:          lang,
		Moderation:        modResult,
		GuidanceOnly:      true,
		Guidance:          modResult.Guidance,
		ModerationWarning: moderationWarningText(lang),
		Latency:           lat,
	}, nil
}

func (s *Service) persistExchange(ctx context.Context, q Question, lang language.Language, bundle *AnswerBundle, alignResult *alignment.Result, resp provider.Response) {
	conv, err := s.conv.Upsert(ctx, q.UserID, q.SessionID)
	if err != nil {
		s.emitPersistenceFailure(ctx, q, err)
		return
	}
	meta := models.MessageMeta{
		Language:       string(lang),
		AlignmentScore: alignResult.Score,
		Flags:          bundle.Moderation.Flags,
		ModelID:        resp.ModelID,
		LatencyMS:      resp.LatencyMS,
	}
	if err := s.conv.AppendExchange(ctx, conv.ID, q.Text, bundle.Text, meta, false); err != nil {
		s.emitPersistenceFailure(ctx, q, err)
	}
}

func (s *Service) createEscalation(ctx context.Context, q Question, reason string, priority models.EscalationPriority, flags []string, score float64) {
	if s.esc == nil {
		return
	}
	_, err := s.esc.Create(ctx, escalation.CreateInput{
		UserID:         q.UserID,
		Content:        q.Text,
		Reason:         reason,
		Priority:       priority,
		Flags:          flags,
		AlignmentScore: score,
	})
	if err != nil {
		s.log.Error("escalation create failed", zap.Error(err))
		return
	}
	s.emit(ctx, telemetry.Event{
		Kind: telemetry.KindEscalationCreated, UserID: q.UserID, SessionID: q.SessionID,
		Fields: map[string]interface{}{"priority": string(priority), "reason": reason},
	})
}

func (s *Service) emitPersistenceFailure(ctx context.Context, q Question, err error) {
	s.emit(ctx, telemetry.Event{
		Kind: telemetry.KindPersistenceFailure, UserID: q.UserID, SessionID: q.SessionID,
		Fields: map[string]interface{}{"error": err.Error()},
	})
}

// emit writes telemetry detached from the request deadline so a timed
// out request still records its outcome.
func (s *Service) emit(ctx context.Context, ev telemetry.Event) {
	if s.sink == nil {
		return
	}
	_ = s.sink.Emit(context.WithoutCancel(ctx), ev)
}

func historyMessages(msgs []models.MessageModel) []prompt.HistoryMessage {
	out := make([]prompt.HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, prompt.HistoryMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}

func sourcesFromItems(items []retrieval.Item) []Source {
	out := make([]Source, 0, len(items))
	for _, item := range items {
		out = append(out, Source{Title: item.Title, Type: item.Category})
	}
	return out
}

func relatedFromContext(ctx LearningContext) []RelatedResource {
	var out []RelatedResource
	if ctx.LessonID != "" {
		out = append(out, RelatedResource{ID: ctx.LessonID, Title: ctx.LessonTitle, Category: "lesson"})
	}
	if ctx.ChapterID != "" {
		out = append(out, RelatedResource{ID: ctx.ChapterID, Title: ctx.ChapterName, Category: "chapter"})
	}
	if ctx.CourseID != "" {
		out = append(out, RelatedResource{ID: ctx.CourseID, Title: ctx.CourseTitle, Category: "course"})
	}
	return out
}

func trimmedEmpty(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
