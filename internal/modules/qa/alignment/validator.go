// Package alignment scores generated answers against the doctrinal
// rubric of the Ethiopian Orthodox Tewahedo curriculum.
package alignment

import (
	"fmt"
	"strings"
)

// Result is the outcome of validating one answer.
type Result struct {
	Score       float64  `json:"score"`
	IsAligned   bool     `json:"is_aligned"`
	Issues      []string `json:"issues,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Input carries the question context the rubric can reward.
type Input struct {
	Question    string
	FocusPoints []string
}

// Validator applies the rubric. The ok threshold is configuration; the
// per-signal weights are the constants in this package.
type Validator struct {
	okThreshold float64
}

func NewValidator(okThreshold float64) *Validator {
	return &Validator{okThreshold: okThreshold}
}

// Validate scores a response. Scores start at 1.0 and are clamped to [0,1].
func (v *Validator) Validate(responseText string, in Input) Result {
	text := strings.ToLower(responseText)
	res := Result{}
	score := 1.0

	for _, sig := range doctrineSignals {
		if !containsAny(text, sig.triggers) {
			continue
		}
		if !containsAny(text, sig.emphasis) {
			score -= missingDoctrinePenalty
			res.Issues = append(res.Issues, fmt.Sprintf("missing doctrinal emphasis: %s", sig.name))
		}
	}

	relevant, used := 0, 0
	for _, term := range preferredTerms {
		hasPreferred := strings.Contains(text, term.preferred)
		if hasPreferred || containsAny(text, term.variants) {
			relevant++
			if hasPreferred {
				used++
			}
		}
	}
	if relevant > 0 {
		score += preferredTermBonusMax * float64(used) / float64(relevant)
		if used < relevant {
			res.Suggestions = append(res.Suggestions, "prefer Tewahedo terminology over generic equivalents")
		}
	}

	sources := 0
	for _, marker := range sourceMarkers {
		if strings.Contains(text, marker) {
			sources++
		}
	}
	ratio := float64(sources) / float64(sourceReferenceTarget)
	if ratio > 1 {
		ratio = 1
	}
	score += sourceBonusMax * ratio
	if sources == 0 {
		res.Suggestions = append(res.Suggestions, "reference scripture or patristic sources")
	}

	for _, doctrine := range counterDoctrines {
		idx := strings.Index(text, doctrine)
		if idx < 0 {
			continue
		}
		if !condemnedNearby(text, idx, len(doctrine)) {
			score -= counterDoctrinePenalty
			res.Warnings = append(res.Warnings, fmt.Sprintf("unsanctioned mention of %s", doctrine))
		}
	}

	for _, phrase := range ecumenicalCompromisePhrases {
		if strings.Contains(text, phrase) {
			score -= ecumenicalPenalty
			res.Issues = append(res.Issues, "ecumenical compromise phrasing")
		}
	}

	regionBonus := 0.0
	for _, term := range regionTerms {
		if strings.Contains(text, term) {
			regionBonus += regionTermBonus
		}
	}
	if regionBonus > regionTermBonusCap {
		regionBonus = regionTermBonusCap
	}
	score += regionBonus

	focusBonus := 0.0
	for _, point := range in.FocusPoints {
		p := strings.ToLower(strings.TrimSpace(point))
		if p != "" && strings.Contains(text, p) {
			focusBonus += focusPointBonus
		}
	}
	if focusBonus > focusPointBonusCap {
		focusBonus = focusPointBonusCap
	}
	score += focusBonus

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	res.Score = score
	res.IsAligned = score >= v.okThreshold
	return res
}

// condemnedNearby reports whether a condemnation marker occurs within the
// window around a counter-doctrine mention.
func condemnedNearby(text string, idx, length int) bool {
	start := idx - condemnationWindow
	if start < 0 {
		start = 0
	}
	end := idx + length + condemnationWindow
	if end > len(text) {
		end = len(text)
	}
	return containsAny(text[start:end], condemnationMarkers)
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
