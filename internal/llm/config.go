// Package llm provides the model boundary: a structured prompt goes in, text
// or constrained JSON comes out. The rest of the system treats it as opaque.
package llm

// ModelTier selects the capability level for a call.
type ModelTier string

const (
	// TierAnalysis is for structured fraud/resume/interview analyses.
	TierAnalysis ModelTier = "analysis"
	// TierChat is for conversational safety-assistant replies.
	TierChat ModelTier = "chat"
)

// Provider represents an LLM provider.
type Provider string

// Supported providers.
const (
	ProviderGemini Provider = "gemini"
)

// Config holds the model configuration.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// DefaultConfig returns the default Gemini configuration: the heavier model
// for analyses, the fast one for chat.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierAnalysis: "gemini-2.5-pro",
			TierChat:     "gemini-2.5-flash",
		},
	}
}

// GetModel returns the model name for a tier, falling back to the analysis
// model when the tier is unknown.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	return c.Models[TierAnalysis]
}
