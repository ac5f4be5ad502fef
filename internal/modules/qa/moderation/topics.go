package moderation

// Screening lexicons. Matching is case-insensitive substring over the
// normalized question text. Topic and phrase lists are policy and are
// expected to be tuned by reviewers over time.

var sensitiveTopicsHigh = map[string][]string{
	"doctrine_comparison":   {"better than protestant", "better than catholic", "better than islam", "superior to other religions", "wrong religion"},
	"denomination_conflict": {"protestants are wrong", "catholics are wrong", "muslims are wrong", "heretic church"},
	"conversion_pressure":   {"convert to", "leave the church", "abandon orthodoxy", "change my religion"},
}

var sensitiveTopicsMedium = map[string][]string{
	"interfaith_marriage": {"marry a protestant", "marry a muslim", "marry outside the church", "interfaith marriage"},
	"church_politics":     {"synod dispute", "patriarch controversy", "church split", "church politics"},
	"fasting_exemption":   {"skip fasting", "avoid fasting", "fasting is unnecessary"},
}

var sensitiveTopicsLow = map[string][]string{
	"calendar_difference": {"why different calendar", "calendar is wrong"},
	"practice_question":   {"why do priests", "why do we kiss", "why do women cover"},
}

// Problematic phrase categories contribute flags and erode confidence
// without by themselves forcing review.
var problematicPhrases = map[string][]string{
	"comparative":             {"better than", "worse than", "superior to", "inferior to", "compared to other religions", "which religion is right"},
	"challenging":             {"prove that", "why should i believe", "is it really true", "there is no evidence", "how do you know"},
	"speculative":             {"what if god", "could god be", "maybe the bible", "what would happen if"},
	"personal_interpretation": {"i think the church is wrong", "my own interpretation", "in my opinion the bible", "i believe differently"},
}

// Domain-term weights. Strong terms name feasts, saints, doctrines or
// liturgical specifics; weak terms are generic religious vocabulary.
var domainTermWeights = map[string]int{
	// strong
	"timkat":      2,
	"meskel":      2,
	"fasika":      2,
	"tewahedo":    2,
	"tabot":       2,
	"kidase":      2,
	"eucharist":   2,
	"liturgy":     2,
	"trinity":     2,
	"incarnation": 2,
	"theotokos":   2,
	"nativity":    2,
	"epiphany":    2,
	"lent":        2,
	"abune":       2,
	"geez":        2,
	"ጥምቀት":        2,
	"መስቀል":        2,
	"ፋሲካ":         2,
	"ተዋሕዶ":        2,
	"ቅዳሴ":         2,
	"ሥላሴ":         2,
	// weak
	"church":    1,
	"god":       1,
	"christ":    1,
	"jesus":     1,
	"bible":     1,
	"prayer":    1,
	"pray":      1,
	"fasting":   1,
	"fast":      1,
	"saint":     1,
	"priest":    1,
	"orthodox":  1,
	"faith":     1,
	"holy":      1,
	"scripture": 1,
	"mary":      1,
	"baptism":   1,
	"cross":     1,
	"እግዚአብሔር":   1,
	"ቤተክርስቲያን":  1,
	"ጸሎት":       1,
	"ጾም":        1,
	"waaqayyo":  1,
	"amantii":   1,
	"kadhannaa": 1,
}

// Generic openers that, without domain vocabulary, indicate the question
// needs refinement before it is worth a provider call.
var genericQuestionPrefixes = []string{
	"what is",
	"tell me",
	"explain",
	"ምንድን ነው",
	"maal",
}
