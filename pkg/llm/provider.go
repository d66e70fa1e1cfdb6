package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn in the shape every backend here accepts.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options are per-call overrides. Zero values leave the provider default in place.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

type Option func(*Options)

func WithModel(model string) Option { return func(o *Options) { o.Model = model } }
func WithMaxTokens(n int) Option { return func(o *Options) { o.MaxTokens = n } }
func WithTemperature(t float64) Option { return func(o *Options) { o.Temperature = t } }

// Apply folds options over defaults.
func Apply(defaults Options, options ...Option) Options {
	for _, o := range options {
		o(&defaults)
	}
	return defaults
}

// LLMProvider is a text generation backend. Generate takes a fully rendered
// prompt; Chat lets the backend apply its own chat template.
type LLMProvider interface {
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// UserPrompt wraps a single prompt as a one-turn history.
func UserPrompt(prompt string) []Message {
	return []Message{{Role: RoleUser, Content: prompt}}
}
