package response

import (
	"context"
	"time"

	"insightrag-be/internal/pkg/logger"
	"insightrag-be/pkg/llm"
)

// UnavailableMessage replaces any failed or empty completion so an answer is never blank.
const UnavailableMessage = "Model is currently unavailable. Please try again."

// Answer is a cleaned completion. Degraded means the backend failed or returned
// nothing usable and Text holds UnavailableMessage.
type Answer struct {
	Text     string
	Degraded bool
}

// Generator invokes the generation backend and cleans its raw output.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
	maxTokens   int
	temperature float64
}

func NewGenerator(llmProvider llm.LLMProvider, logger logger.ILogger, maxTokens int, temperature float64) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      logger,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Generate returns the cleaned answer text. It never returns an empty string.
func (g *Generator) Generate(ctx context.Context, prompt string) string {
	return g.Answer(ctx, prompt).Text
}

// Answer is Generate with the degraded flag. Backend errors are logged, not returned:
// the caller always gets a usable answer.
func (g *Generator) Answer(ctx context.Context, prompt string) Answer {
	start := time.Now()

	raw, err := g.llmProvider.Generate(ctx, prompt,
		llm.WithMaxTokens(g.maxTokens),
		llm.WithTemperature(g.temperature),
	)
	if err != nil {
		g.logger.Error("AnswerGenerator", "Generation failed", map[string]interface{}{
			"error":   err.Error(),
			"took_ms": time.Since(start).Milliseconds(),
		})
		return Answer{Text: UnavailableMessage, Degraded: true}
	}

	text := Clean(raw, prompt)

	g.logger.Debug("AnswerGenerator", "Completion received", map[string]interface{}{
		"prompt":  prompt,
		"raw":     raw,
		"cleaned": text,
		"took_ms": time.Since(start).Milliseconds(),
	})

	if text == "" {
		g.logger.Warn("AnswerGenerator", "Empty completion", map[string]interface{}{"raw_length": len(raw)})
		return Answer{Text: UnavailableMessage, Degraded: true}
	}

	return Answer{Text: text}
}
