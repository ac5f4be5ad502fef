package qa

import "github.com/selam-edu/core/internal/modules/qa/language"

// Pre-authored localized texts returned when the pipeline declines to
// call the provider or the provider is unavailable.

func unsupportedLanguageGuidance() []string {
	return []string{
		"We currently support questions in English, Amharic (አማርኛ), Tigrigna (ትግርኛ) and Oromo (Afaan Oromoo).",
		"እባክዎ ጥያቄዎን በአማርኛ፣ በትግርኛ፣ በኦሮምኛ ወይም በእንግሊዝኛ ይጻፉ።",
		"በጃኹም ሕቶኹም ብኣምሓርኛ፣ ብትግርኛ፣ ብኦሮምኛ ወይ ብእንግሊዝኛ ጽሓፉ።",
		"Maaloo gaaffii kee Afaan Oromoo, Amaariffa, Tigriffa yookiin Ingiliffaan barreessi.",
	}
}

func providerFallbackText(lang language.Language) string {
	switch lang {
	case language.Amharic:
		return "ይቅርታ፣ አሁን መልስ መስጠት አልቻልንም። እባክዎ ከጥቂት ጊዜ በኋላ እንደገና ይሞክሩ። ለአስቸኳይ መንፈሳዊ ጥያቄዎች የቤተ ክርስቲያን አባትዎን ያማክሩ።"
	case language.Tigrigna:
		return "ይቕሬታ፣ ሕጂ መልሲ ክንህብ ኣይከኣልናን። በጃኹም ድሕሪ ቁሩብ ግዜ መሊስኩም ፈትኑ። ንህጹጽ መንፈሳዊ ሕቶታት ንኣቦ ንስሓኹም ተወከሱ።"
	case language.Oromo:
		return "Dhiifama, amma deebii kennuu hin dandeenye. Maaloo yeroo muraasa booda irra deebi'ii yaali. Gaaffilee hafuuraa ariifachiisaa irratti abbaa amantaa kee mariisisi."
	}
	return "We are sorry, we could not answer right now. Please try again shortly. For pressing spiritual questions, consult your father confessor."
}

func internalApologyText(lang language.Language) string {
	switch lang {
	case language.Amharic:
		return "ይቅርታ፣ ያልተጠበቀ ስህተት ተከስቷል። እባክዎ እንደገና ይሞክሩ።"
	case language.Tigrigna:
		return "ይቕሬታ፣ ዘይተጸበናዮ ጌጋ ኣጋጢሙ። በጃኹም መሊስኩም ፈትኑ።"
	case language.Oromo:
		return "Dhiifama, dogoggorri hin eegamne uumame. Maaloo irra deebi'ii yaali."
	}
	return "We are sorry, something unexpected went wrong. Please try again."
}

func lowAlignmentWarning(lang language.Language) string {
	switch lang {
	case language.Amharic:
		return "ይህ መልስ ሙሉ በሙሉ ከቤተ ክርስቲያን ትምህርት ጋር የተጣጣመ ላይሆን ይችላል። እባክዎ ከካህን ጋር ያረጋግጡ።"
	case language.Tigrigna:
		return "እዚ መልሲ ምሉእ ብምሉእ ምስ ትምህርቲ ቤተ ክርስቲያን ዝተሰማምዐ ኣይከውንን ይኽእል። በጃኹም ምስ ካህን ኣረጋግጹ።"
	case language.Oromo:
		return "Deebiin kun guutummaatti barnoota waldaa wajjin kan wal simu ta'uu dhiisuu danda'a. Maaloo luba wajjin mirkaneeffadhu."
	}
	return "This answer may not fully align with church teaching. Please verify with a priest."
}

func moderationWarningText(lang language.Language) string {
	switch lang {
	case language.Amharic:
		return "ጥያቄዎ ለግምገማ ተልኳል። ከታች ያለውን መመሪያ ይመልከቱ።"
	case language.Tigrigna:
		return "ሕቶኹም ንግምገማ ተላኢኹ ኣሎ። ኣብ ታሕቲ ዘሎ መምርሒ ርኣዩ።"
	case language.Oromo:
		return "Gaaffiin kee gamaaggamaaf ergameera. Qajeelfama armaan gadii ilaali."
	}
	return "Your question has been sent for review. Please see the guidance below."
}
