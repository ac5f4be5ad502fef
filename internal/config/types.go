package config

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int                 `yaml:"port"`
	DSN            string              `yaml:"dsn"` // MySQL DSN
	RedisURL       string              `yaml:"redis_url"`
	Env            string              `yaml:"env"` // "development" | "production"
	AllowedOrigins []string            `yaml:"allowed_origins"`
	JWTSecret      string              `yaml:"jwt_secret"`
	AI             AIConfig            `yaml:"ai"`
	Pipeline       PipelineConfig      `yaml:"pipeline"`
	KnowledgeBase  KnowledgeBaseConfig `yaml:"knowledge_base"`
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env != "production" }

// AIProvider describes one configured LLM provider endpoint.
type AIProvider struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Type         string `yaml:"type"` // OpenAI | OpenAI-Compatible | Anthropic
	APIKey       string `yaml:"api_key"`
	Endpoint     string `yaml:"endpoint"`
	DefaultModel string `yaml:"default_model"`
	Enabled      bool   `yaml:"enabled"`
}

// ModelAssignment binds a provider to a concrete model ID.
type ModelAssignment struct {
	ProviderID string `yaml:"provider_id"`
	Model      string `yaml:"model"`
}

// AIConfig lists providers plus the ordered chat candidates and the
// embedding model used for knowledge-base retrieval.
type AIConfig struct {
	Providers           []AIProvider      `yaml:"providers"`
	ChatModelCandidates []ModelAssignment `yaml:"chat_model_candidates"`
	EmbeddingModel      ModelAssignment   `yaml:"embedding_model"`
}

// ProviderByID returns the enabled provider with the given ID, or nil.
func (c AIConfig) ProviderByID(id string) *AIProvider {
	for i := range c.Providers {
		p := &c.Providers[i]
		if p.Enabled && p.ID == id {
			return p
		}
	}
	return nil
}

// PipelineConfig carries the knobs of the question-answering pipeline.
// Zero values are replaced with defaults by Normalize.
type PipelineConfig struct {
	MaxResponseTimeMS            int      `yaml:"max_response_time_ms"`
	MaxRetries                   int      `yaml:"max_retries"`
	ConcurrentRequests           int      `yaml:"concurrent_requests"`
	QueueCap                     int      `yaml:"queue_cap"`
	CacheTTLMS                   int      `yaml:"cache_ttl_ms"`
	CacheCapacity                int      `yaml:"cache_capacity"`
	CacheEnabled                 *bool    `yaml:"cache_enabled"`
	AccuracyThreshold            float64  `yaml:"accuracy_threshold"`
	AlignmentRegenerateThreshold float64  `yaml:"alignment_regenerate_threshold"`
	AlignmentEscalateThreshold   float64  `yaml:"alignment_escalate_threshold"`
	AlignmentOKThreshold         float64  `yaml:"alignment_ok_threshold"`
	RetainConversationData       bool     `yaml:"retain_conversation_data"`
	ConversationRetentionDays    int      `yaml:"conversation_retention_days"`
	AnonymizeUserData            *bool    `yaml:"anonymize_user_data"`
	HistoryExchanges             int      `yaml:"history_exchanges"`
	SupportedLanguages           []string `yaml:"supported_languages"`
}

// KnowledgeBaseConfig points at the Weaviate collaborator that serves
// doctrinal corpus retrieval. Disabled or unreachable means retrieval
// degrades to an empty context, never an error.
type KnowledgeBaseConfig struct {
	Enable    bool    `yaml:"enable"`
	Host      string  `yaml:"host"`
	Scheme    string  `yaml:"scheme"`
	ClassName string  `yaml:"class_name"`
	TopK      int     `yaml:"top_k"`
	MinScore  float64 `yaml:"min_score"`
}
