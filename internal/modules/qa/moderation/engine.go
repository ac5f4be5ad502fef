// Package moderation screens user questions before any provider call.
// It combines topic lexicons, phrase heuristics, a pre-answer alignment
// estimate and the user's recent escalation history into a single
// recommendation.
package moderation

import (
	"context"
	"strings"
	"unicode"

	"github.com/selam-edu/core/internal/modules/qa/language"
	"gorm.io/gorm"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Action string

const (
	ActionApprove    Action = "approve"
	ActionRegenerate Action = "regenerate"
	ActionEscalate   Action = "escalate"
	ActionBlock      Action = "block"
)

// Result is the outcome of screening one question.
type Result struct {
	NeedsReview         bool     `json:"needs_review"`
	Flags               []string `json:"flags"`
	Severity            Severity `json:"severity"`
	FaithAlignmentScore float64  `json:"faith_alignment_score"`
	Confidence          float64  `json:"confidence"`
	RecommendedAction   Action   `json:"recommended_action"`
	Guidance            []string `json:"guidance,omitempty"`
}

const (
	minTokens            = 3
	escalateFaithFloor   = 0.60
	escalateConfFloor    = 0.80
	autoApproveConfFloor = 0.80
	autoApproveFaith     = 0.40
	blockHighTopicCount  = 2
)

var confidenceFactor = map[Severity]float64{
	SeverityHigh:   0.90,
	SeverityMedium: 0.92,
	SeverityLow:    0.95,
}

// Engine screens question text. The database handle is used only to read
// the user's escalation history and may be nil in tests.
type Engine struct {
	db *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// Screen evaluates the question and returns a moderation decision.
// First matching decision rule wins.
func (e *Engine) Screen(ctx context.Context, text, userID string, lang language.Language) Result {
	normalized := strings.ToLower(text)
	tokens := strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	res := Result{
		Severity:   SeverityLow,
		Confidence: 1.0,
	}

	highTopics := scanTopics(normalized, sensitiveTopicsHigh)
	mediumTopics := scanTopics(normalized, sensitiveTopicsMedium)
	lowTopics := scanTopics(normalized, sensitiveTopicsLow)

	sensitiveCount := 0
	for _, group := range []struct {
		sev    Severity
		topics []string
	}{
		{SeverityHigh, highTopics},
		{SeverityMedium, mediumTopics},
		{SeverityLow, lowTopics},
	} {
		for _, topic := range group.topics {
			res.Flags = append(res.Flags, topic)
			res.Confidence *= confidenceFactor[group.sev]
			sensitiveCount++
			res.Severity = maxSeverity(res.Severity, group.sev)
		}
	}

	for category, phrases := range problematicPhrases {
		if containsAny(normalized, phrases) {
			res.Flags = append(res.Flags, category)
			res.Confidence *= 0.92
		}
	}

	weightSum := domainWeight(tokens)
	res.FaithAlignmentScore = clamp01(0.2 + 0.2*float64(weightSum))

	res.Flags = append(res.Flags, userHistorySignals(ctx, e.db, userID, res.Flags)...)

	switch {
	case len(highTopics) >= blockHighTopicCount:
		res.NeedsReview = true
		res.RecommendedAction = ActionBlock
		res.Guidance = guidanceBlocked(lang)
	case res.Severity == SeverityHigh:
		res.NeedsReview = true
		res.RecommendedAction = ActionEscalate
		res.Guidance = guidanceBlocked(lang)
	case res.FaithAlignmentScore < escalateFaithFloor && res.Confidence >= escalateConfFloor:
		res.NeedsReview = true
		res.RecommendedAction = ActionEscalate
		res.Guidance = guidanceOffTopic(lang)
	case sensitiveCount >= 2:
		res.NeedsReview = true
		res.RecommendedAction = ActionEscalate
		res.Guidance = guidanceBlocked(lang)
	case len(tokens) < minTokens:
		res.RecommendedAction = ActionApprove
		res.Guidance = guidanceTooShort(lang)
	case hasGenericPrefix(normalized) && weightSum < 2:
		res.RecommendedAction = ActionApprove
		res.Guidance = guidanceRefine(lang)
	default:
		if res.Severity != SeverityHigh &&
			res.Confidence >= autoApproveConfFloor &&
			res.FaithAlignmentScore >= autoApproveFaith {
			res.RecommendedAction = ActionApprove
		} else {
			res.RecommendedAction = ActionRegenerate
		}
	}

	return res
}

func scanTopics(normalized string, topics map[string][]string) []string {
	var hits []string
	for topic, phrases := range topics {
		if containsAny(normalized, phrases) {
			hits = append(hits, topic)
		}
	}
	return hits
}

func containsAny(normalized string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(normalized, p) {
			return true
		}
	}
	return false
}

func domainWeight(tokens []string) int {
	sum := 0
	for _, tok := range tokens {
		sum += domainTermWeights[tok]
	}
	return sum
}

func hasGenericPrefix(normalized string) bool {
	trimmed := strings.TrimSpace(normalized)
	for _, prefix := range genericQuestionPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

func maxSeverity(a, b Severity) Severity {
	rank := map[Severity]int{SeverityLow: 0, SeverityMedium: 1, SeverityHigh: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Priority maps a screening severity to an escalation priority.
func (r Result) Priority() string {
	switch r.Severity {
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	}
	return "low"
}

func guidanceBlocked(lang language.Language) []string {
	switch lang {
	case language.Amharic:
		return []string{
			"ይህ ጥያቄ የእምነት ንጽጽር ወይም አከራካሪ ርዕስ ይዟል። እባክዎ ስለ ተዋሕዶ እምነት ትምህርት ጥያቄዎን እንደገና ያቅርቡ።",
			"ለጥልቅ መንፈሳዊ ጥያቄዎች የቤተ ክርስቲያን አባትዎን ያማክሩ።",
		}
	case language.Tigrigna:
		return []string{
			"እዚ ሕቶ ናይ እምነት ንጽጽር ወይ ኣከራኻሪ ኣርእስቲ ሒዙ ኣሎ። በጃኹም ብዛዕባ ትምህርቲ ተዋሕዶ ሕቶኹም መሊስኩም ኣቕርቡ።",
			"ንዓሚቝ መንፈሳዊ ሕቶታት ንኣቦ ንስሓኹም ተወከሱ።",
		}
	case language.Oromo:
		return []string{
			"Gaaffiin kun wal bira qabbiinsa amantii yookiin mata duree falmisiisaa of keessaa qaba. Maaloo gaaffii kee barnoota amantii Tawaahidoo irratti irra deebi'ii dhiyeessi.",
			"Gaaffilee hafuuraa gadi fagoo irratti abbaa amantaa kee mariisisi.",
		}
	}
	return []string{
		"This question touches on faith comparisons or contested topics that are better discussed with a spiritual guide.",
		"Please rephrase your question to focus on Orthodox Tewahedo teaching, or consult your father confessor.",
	}
}

func guidanceOffTopic(lang language.Language) []string {
	switch lang {
	case language.Amharic:
		return []string{"ጥያቄዎ ከመንፈሳዊ ትምህርታችን ጋር የተያያዘ አይመስልም። እባክዎ ስለ እምነት፣ ጾም፣ በዓላት ወይም የቤተ ክርስቲያን ትምህርት ይጠይቁ።"}
	case language.Tigrigna:
		return []string{"ሕቶኹም ምስ መንፈሳዊ ትምህርትና ዝተኣሳሰረ ኣይመስልን። በጃኹም ብዛዕባ እምነት፣ ጾም፣ በዓላት ወይ ትምህርቲ ቤተ ክርስቲያን ሕተቱ።"}
	case language.Oromo:
		return []string{"Gaaffiin kee barnoota hafuuraa keenya wajjin kan wal qabatu hin fakkaatu. Maaloo waa'ee amantii, soomaa, ayyaanota yookiin barnoota waldaa gaafadhu."}
	}
	return []string{"Your question does not appear to relate to the faith curriculum. Please ask about belief, fasting, feasts or church teaching."}
}

func guidanceTooShort(lang language.Language) []string {
	switch lang {
	case language.Amharic:
		return []string{"ጥያቄዎ በጣም አጭር ነው። እባክዎ ተጨማሪ ዝርዝር ይስጡ።"}
	case language.Tigrigna:
		return []string{"ሕቶኹም ኣዝዩ ሓጺር እዩ። በጃኹም ተወሳኺ ዝርዝር ሃቡ።"}
	case language.Oromo:
		return []string{"Gaaffiin kee baay'ee gabaabaa dha. Maaloo ibsa dabalataa kenni."}
	}
	return []string{"Your question is very short. Please add more detail so we can answer well."}
}

func guidanceRefine(lang language.Language) []string {
	switch lang {
	case language.Amharic:
		return []string{"እባክዎ ጥያቄዎን ይበልጥ ግልጽ ያድርጉ። ለምሳሌ ስለ የትኛው በዓል፣ ጾም ወይም ትምህርት መጠየቅ ይፈልጋሉ?"}
	case language.Tigrigna:
		return []string{"በጃኹም ሕቶኹም ዝያዳ ንጹር ግበርዎ። ንኣብነት ብዛዕባ ኣየናይ በዓል፣ ጾም ወይ ትምህርቲ ክትሓቱ ትደልዩ?"}
	case language.Oromo:
		return []string{"Maaloo gaaffii kee caalaatti ifa godhi. Fakkeenyaaf waa'ee ayyaana kamii, soomaa yookiin barnoota kamii gaafachuu barbaadda?"}
	}
	return []string{"Please make your question more specific. For example, which feast, fast or teaching would you like to learn about?"}
}
