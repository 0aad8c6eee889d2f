package model

import "time"

// ================ Config ================
type CacheConfig struct {
	// AnswerTTL bounds how long a generated answer is served from cache.
	AnswerTTL time.Duration `envconfig:"CACHE_ANSWER_TTL" default:"1h"`
	// DegradedTTL is deliberately short: a cached degraded answer absorbs
	// retry storms without pinning the failure for long.
	DegradedTTL time.Duration `envconfig:"CACHE_DEGRADED_TTL" default:"30s"`
	Timeout     time.Duration `envconfig:"CACHE_TIMEOUT" default:"2s"`
}

type ConversationConfig struct {
	TTL      time.Duration `envconfig:"CONVERSATION_TTL" default:"24h"`
	MaxTurns int           `envconfig:"CONVERSATION_MAX_TURNS" default:"10"`
	Timeout  time.Duration `envconfig:"CONVERSATION_TIMEOUT" default:"2s"`
}

type ToolboxConfig struct {
	BaseURL string        `envconfig:"TOOLBOX_BASE_URL" default:"http://127.0.0.1:5000"`
	Timeout time.Duration `envconfig:"TOOLBOX_TIMEOUT" default:"5s"`
}

type GenerationConfig struct {
	Model       string        `envconfig:"RESPONSE_MODEL" default:"gemini-2.0-flash"`
	MaxTokens   int           `envconfig:"RESPONSE_MAX_TOKENS" default:"2000"`
	Temperature float32       `envconfig:"RESPONSE_TEMPERATURE" default:"0.4"`
	Timeout     time.Duration `envconfig:"RESPONSE_TIMEOUT" default:"30s"`
}

type PromptConfig struct {
	BusinessType string `envconfig:"PROMPT_BUSINESS_TYPE" default:"online store"`
	BusinessName string `envconfig:"PROMPT_BUSINESS_NAME" default:"HelpDesk"`
}
