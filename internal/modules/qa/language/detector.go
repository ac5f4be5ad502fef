// Package language classifies user questions into the platform's
// supported language set: English, Amharic, Tigrigna and Oromo.
package language

import (
	"strings"
	"unicode"
)

// Language is a BCP 47 style language tag.
type Language string

const (
	English     Language = "en"
	Amharic     Language = "am"
	Tigrigna    Language = "ti"
	Oromo       Language = "om"
	Unsupported Language = "unsupported"
)

// Supported reports whether lang is one of the platform languages.
func Supported(lang Language) bool {
	switch lang {
	case English, Amharic, Tigrigna, Oromo:
		return true
	}
	return false
}

// Name returns the display name of a language for user-facing guidance.
func Name(lang Language) string {
	switch lang {
	case English:
		return "English"
	case Amharic:
		return "Amharic"
	case Tigrigna:
		return "Tigrigna"
	case Oromo:
		return "Oromo"
	}
	return "Unsupported"
}

// Detect classifies text into one of the supported languages or Unsupported.
// The result is deterministic for a given input.
func Detect(text string) Language {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return Unsupported
	}

	if countEthiopicRunes(text) >= 1 {
		amHits := lexiconHits(tokens, amharicLexicon)
		tiHits := lexiconHits(tokens, tigrignaLexicon)
		if tiHits > amHits {
			return Tigrigna
		}
		// Ties resolve to Amharic, the larger speaker base.
		return Amharic
	}

	if lexiconHits(tokens, oromoLexicon) > 0 && latinRatio(text) > 0.7 {
		return Oromo
	}

	if lexiconHits(tokens, englishLexicon) >= 2 {
		return English
	}

	return Unsupported
}

// DetectWithHint prefers a caller-provided hint when it names a supported
// language, falling back to content detection otherwise.
func DetectWithHint(text, hint string) Language {
	if hint != "" {
		tag := Language(strings.ToLower(strings.TrimSpace(hint)))
		if idx := strings.Index(string(tag), "-"); idx > 0 {
			tag = tag[:idx]
		}
		if Supported(tag) {
			return tag
		}
	}
	return Detect(text)
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func lexiconHits(tokens []string, lexicon map[string]struct{}) int {
	hits := 0
	for _, tok := range tokens {
		if _, ok := lexicon[tok]; ok {
			hits++
		}
	}
	return hits
}

func countEthiopicRunes(text string) int {
	n := 0
	for _, r := range text {
		if unicode.Is(unicode.Ethiopic, r) {
			n++
		}
	}
	return n
}

func latinRatio(text string) float64 {
	letters, latin := 0, 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Latin, r) {
			latin++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(latin) / float64(letters)
}
