// Package llm provides the language model client used to run content tasks.
package llm

// ModelTier represents the capability level of a model.
type ModelTier string

const (
	// TierLite is for cheap per-chunk work such as quote extraction.
	TierLite ModelTier = "lite"
	// TierStandard is the default for content tasks.
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long-form writing.
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider.
type Provider string

// ProviderGemini is the Google Gemini provider.
const ProviderGemini Provider = "gemini"

// DefaultSystemInstruction frames every request.
const DefaultSystemInstruction = "You are a highly skilled AI content analyst."

// Defaults for generation parameters.
const (
	DefaultMaxTokens   = 15000
	DefaultTemperature = 0.7
)

// Config holds the model configuration.
type Config struct {
	Provider          Provider
	Models            map[ModelTier]string
	SystemInstruction string
	MaxTokens         int
	Temperature       float64
}

// DefaultConfig returns the default configuration (currently Gemini).
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		SystemInstruction: DefaultSystemInstruction,
		MaxTokens:         DefaultMaxTokens,
		Temperature:       DefaultTemperature,
	}
}

// GetModel returns the model name for a given tier.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// ResolveModel maps a requested model to a concrete model name. A tier name
// resolves through Models, an empty name picks the standard tier, and
// anything else is taken as a literal model name.
func (c *Config) ResolveModel(name string) string {
	switch ModelTier(name) {
	case "":
		return c.GetModel(TierStandard)
	case TierLite, TierStandard, TierAdvanced:
		return c.GetModel(ModelTier(name))
	}
	return name
}

// WithModel returns a new Config with a specific model for a tier.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}
