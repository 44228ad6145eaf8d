// Package llm provides the generative model configuration and client abstraction
// used for drafting resume content and scoring documents.
package llm

// ModelTier names the kind of task a model is used for
type ModelTier string

const (
	// TierDraft is for free-form writing: section drafts, skill lists
	TierDraft ModelTier = "draft"
	// TierAnalysis is for structured scoring with JSON output
	TierAnalysis ModelTier = "analysis"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// DefaultModel is used for every tier unless overridden.
const DefaultModel = "gemini-2.5-flash"

// Config holds the model configuration for the application
type Config struct {
	Provider     Provider
	Models       map[ModelTier]string
	Temperatures map[ModelTier]float32
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierDraft:    DefaultModel,
			TierAnalysis: DefaultModel,
		},
		Temperatures: map[ModelTier]float32{
			TierDraft:    0.7,
			TierAnalysis: 0.1,
		},
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: analysis, then draft
	if model, ok := c.Models[TierAnalysis]; ok {
		return model
	}
	if model, ok := c.Models[TierDraft]; ok {
		return model
	}
	return ""
}

// GetTemperature returns the sampling temperature for a tier, 0.1 when unset.
func (c *Config) GetTemperature(tier ModelTier) float32 {
	if t, ok := c.Temperatures[tier]; ok {
		return t
	}
	return 0.1
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider:     c.Provider,
		Models:       make(map[ModelTier]string, len(c.Models)+1),
		Temperatures: make(map[ModelTier]float32, len(c.Temperatures)),
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	for k, v := range c.Temperatures {
		newConfig.Temperatures[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}

// WithAllModels returns a new Config using model for every configured tier.
func (c *Config) WithAllModels(model string) *Config {
	out := c
	for tier := range c.Models {
		out = out.WithModel(tier, model)
	}
	return out
}
