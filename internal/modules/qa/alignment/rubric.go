package alignment

// Rubric weights are policy constants, reviewed by the doctrine board.
// Thresholds for regeneration and escalation live in configuration; only
// the per-signal weights are fixed here.
const (
	missingDoctrinePenalty = 0.10
	preferredTermBonusMax  = 0.20
	sourceBonusMax         = 0.30
	sourceReferenceTarget  = 5
	counterDoctrinePenalty = 0.15
	ecumenicalPenalty      = 0.10
	regionTermBonus        = 0.03
	regionTermBonusCap     = 0.09
	focusPointBonus        = 0.05
	focusPointBonusCap     = 0.15
	condemnationWindow     = 120
)

// doctrineSignal flags a discussion that must carry a specific emphasis.
type doctrineSignal struct {
	name     string
	triggers []string
	emphasis []string
}

var doctrineSignals = []doctrineSignal{
	{
		name:     "christology_unity",
		triggers: []string{"nature of christ", "natures of christ", "christology", "divine and human"},
		emphasis: []string{"one united nature", "united nature", "tewahedo", "without separation", "perfect union"},
	},
	{
		name:     "theotokos_honor",
		triggers: []string{"virgin mary", "saint mary", "st. mary", "mother of god"},
		emphasis: []string{"theotokos", "ever-virgin", "honored", "veneration", "kidist maryam"},
	},
	{
		name:     "eucharist_real_presence",
		triggers: []string{"eucharist", "holy communion", "qurban"},
		emphasis: []string{"true body", "true blood", "real presence", "mystery"},
	},
	{
		name:     "tradition_with_scripture",
		triggers: []string{"sola scriptura", "bible alone", "only the bible"},
		emphasis: []string{"holy tradition", "apostolic tradition", "church fathers"},
	},
}

// preferredTerm maps the terminology the curriculum prefers to the
// variants a generic model tends to produce.
type preferredTerm struct {
	preferred string
	variants  []string
}

var preferredTerms = []preferredTerm{
	{preferred: "tewahedo", variants: []string{"miaphysite", "non-chalcedonian", "oriental orthodox"}},
	{preferred: "theotokos", variants: []string{"mother of jesus", "mary the mother"}},
	{preferred: "timkat", variants: []string{"epiphany", "theophany"}},
	{preferred: "meskel", variants: []string{"feast of the cross", "exaltation of the cross"}},
	{preferred: "holy tradition", variants: []string{"church tradition", "oral tradition"}},
	{preferred: "father confessor", variants: []string{"spiritual advisor", "spiritual director"}},
}

// Counter-doctrines may be named only in a condemnatory register.
var counterDoctrines = []string{
	"arianism",
	"nestorianism",
	"eutychianism",
	"monophysitism",
	"gnosticism",
	"pelagianism",
}

var condemnationMarkers = []string{
	"heresy",
	"heretical",
	"condemned",
	"rejected",
	"refuted",
	"anathema",
	"error",
	"false teaching",
}

var ecumenicalCompromisePhrases = []string{
	"all religions are equally true",
	"all churches teach the same",
	"it does not matter which church",
	"any denomination is fine",
	"all paths lead to god",
	"doctrine is not important",
}

var regionTerms = []string{
	"ethiopia",
	"ethiopian",
	"eritrea",
	"axum",
	"lalibela",
	"gondar",
	"ge'ez",
	"geez",
	"tabot",
	"debre",
	"abune",
	"synaxarium",
}

// sourceMarkers approximate a citation count: scripture books, councils
// and patristic references.
var sourceMarkers = []string{
	"genesis", "exodus", "psalm", "isaiah", "matthew", "mark", "luke", "john",
	"acts", "romans", "corinthians", "hebrews", "revelation",
	"council of nicaea", "council of ephesus", "nicene creed",
	"st. athanasius", "st. cyril", "saint athanasius", "saint cyril",
	"church fathers", "haymanote abew", "fetha negest", "synaxarium",
}
