package config

// LLMConfig configures the enrichment gateway. An empty APIKey means
// enrichment is disabled and every stage runs its deterministic fallback.
type LLMConfig struct {
	Provider        string `yaml:"provider"` // gemini is the only provider today
	APIKey          string `yaml:"api_key"`
	Model           string `yaml:"model"`
	Timeout         string `yaml:"timeout"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
}

// Enabled reports whether an enrichment service is configured.
func (l LLMConfig) Enabled() bool {
	return l.APIKey != ""
}
