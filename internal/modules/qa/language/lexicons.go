package language

// Function-word lexicons used for token-set scoring. These are short,
// high-frequency closed-class words; content vocabulary is deliberately
// excluded so detection stays topic-independent.

var amharicLexicon = map[string]struct{}{
	"ነው":    {},
	"ናቸው":   {},
	"ምንድን":  {},
	"ምንድነው": {},
	"ምን":    {},
	"እንዴት":  {},
	"ለምን":   {},
	"የት":    {},
	"መቼ":    {},
	"ማን":    {},
	"እና":    {},
	"ግን":    {},
	"ስለ":    {},
	"እባክዎ":  {},
	"እባክህ":  {},
	"አለ":    {},
	"ይህ":    {},
	"ያ":     {},
	"እኔ":    {},
	"አንተ":   {},
	"እግዚአብሔር": {},
}

var tigrignaLexicon = map[string]struct{}{
	"እዩ":    {},
	"እያ":    {},
	"እዮም":   {},
	"እንታይ":  {},
	"ከመይ":   {},
	"ስለምንታይ": {},
	"ኣበይ":   {},
	"መዓስ":   {},
	"መን":    {},
	"ከምኡ":   {},
	"ግና":    {},
	"ብዛዕባ":  {},
	"በጃኹም":  {},
	"በጃኻ":   {},
	"ኣሎ":    {},
	"እዚ":    {},
	"እቲ":    {},
	"ኣነ":    {},
	"ንስኻ":   {},
	"እግዚኣብሄር": {},
}

var oromoLexicon = map[string]struct{}{
	"maal":     {},
	"maali":    {},
	"maaliif":  {},
	"akkam":    {},
	"akkamitti": {},
	"eessa":    {},
	"yoom":     {},
	"eenyu":    {},
	"kan":      {},
	"fi":       {},
	"garuu":    {},
	"waan":     {},
	"dha":      {},
	"jira":     {},
	"kun":      {},
	"sun":      {},
	"ani":      {},
	"ati":      {},
	"waaqayyo": {},
	"maaloo":   {},
}

var englishLexicon = map[string]struct{}{
	"the":   {},
	"is":    {},
	"are":   {},
	"what":  {},
	"why":   {},
	"how":   {},
	"where": {},
	"when":  {},
	"who":   {},
	"a":     {},
	"an":    {},
	"of":    {},
	"in":    {},
	"on":    {},
	"to":    {},
	"and":   {},
	"but":   {},
	"about": {},
	"do":    {},
	"does":  {},
	"can":   {},
	"please": {},
	"meaning": {},
}
