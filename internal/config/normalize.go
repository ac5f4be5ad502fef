package config

// Defaults for the pipeline knobs. Thresholds are policy; change with care.
const (
	DefaultMaxResponseTimeMS         = 3000
	DefaultMaxRetries                = 2
	DefaultConcurrentRequests        = 5
	DefaultQueueCap                  = 20
	DefaultCacheTTLMS                = 300_000
	DefaultCacheCapacity             = 100
	DefaultAccuracyThreshold         = 0.90
	DefaultRegenerateThreshold       = 0.70
	DefaultEscalateThreshold         = 0.60
	DefaultAlignmentOKThreshold      = 0.85
	DefaultConversationRetentionDays = 30
	DefaultHistoryExchanges          = 3
)

// DefaultSupportedLanguages is the configured language set.
var DefaultSupportedLanguages = []string{"en", "am", "ti", "om"}

// Normalize fills zero values with defaults. Called once after Load;
// the config is immutable afterwards.
func (c *AppConfig) Normalize() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Env == "" {
		c.Env = defaultEnv
	}

	p := &c.Pipeline
	if p.MaxResponseTimeMS <= 0 {
		p.MaxResponseTimeMS = DefaultMaxResponseTimeMS
	}
	if p.MaxRetries <= 0 {
		p.MaxRetries = DefaultMaxRetries
	}
	if p.ConcurrentRequests <= 0 {
		p.ConcurrentRequests = DefaultConcurrentRequests
	}
	if p.QueueCap <= 0 {
		p.QueueCap = DefaultQueueCap
	}
	if p.CacheTTLMS <= 0 {
		p.CacheTTLMS = DefaultCacheTTLMS
	}
	if p.CacheCapacity <= 0 {
		p.CacheCapacity = DefaultCacheCapacity
	}
	if p.CacheEnabled == nil {
		enabled := true
		p.CacheEnabled = &enabled
	}
	if p.AccuracyThreshold <= 0 {
		p.AccuracyThreshold = DefaultAccuracyThreshold
	}
	if p.AlignmentRegenerateThreshold <= 0 {
		p.AlignmentRegenerateThreshold = DefaultRegenerateThreshold
	}
	if p.AlignmentEscalateThreshold <= 0 {
		p.AlignmentEscalateThreshold = DefaultEscalateThreshold
	}
	if p.AlignmentOKThreshold <= 0 {
		p.AlignmentOKThreshold = DefaultAlignmentOKThreshold
	}
	// Negative retention disables the sweep; only the zero value defaults.
	if p.ConversationRetentionDays == 0 {
		p.ConversationRetentionDays = DefaultConversationRetentionDays
	}
	if p.AnonymizeUserData == nil {
		anonymize := true
		p.AnonymizeUserData = &anonymize
	}
	if p.HistoryExchanges <= 0 {
		p.HistoryExchanges = DefaultHistoryExchanges
	}
	if len(p.SupportedLanguages) == 0 {
		p.SupportedLanguages = append([]string(nil), DefaultSupportedLanguages...)
	}

	kb := &c.KnowledgeBase
	if kb.Scheme == "" {
		kb.Scheme = "http"
	}
	if kb.ClassName == "" {
		kb.ClassName = "DoctrineChunk"
	}
	if kb.TopK <= 0 {
		kb.TopK = 3
	}
	if kb.MinScore <= 0 {
		kb.MinScore = 0.60
	}
}
