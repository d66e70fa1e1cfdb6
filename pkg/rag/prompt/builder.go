package prompt

import (
	"strings"

	"insightrag-be/pkg/rag/history"
)

// NotFoundReply is the exact sentence the model is told to use when the context lacks the answer.
const NotFoundReply = "I could not find the answer in the document."

// Builder assembles the single prompt sent to the generation backend. Sections are
// written in a fixed order: instruction, prior turns, retrieved context, question.
// Context comes after the history so the newest evidence sits closest to the question.
type Builder struct {
	question string
	chunks   []string
	history  []history.Turn
}

func NewBuilder(question string, chunks []string, turns []history.Turn) *Builder {
	return &Builder{
		question: question,
		chunks:   chunks,
		history:  turns,
	}
}

// Assemble is shorthand for NewBuilder(...).Build().
func Assemble(question string, chunks []string, turns []history.Turn) string {
	return NewBuilder(question, chunks, turns).Build()
}

func (b *Builder) Build() string {
	var prompt strings.Builder

	b.writeInstruction(&prompt)
	b.writeHistory(&prompt)
	b.writeContext(&prompt)
	b.writeQuestion(&prompt)

	return prompt.String()
}

func (b *Builder) writeInstruction(prompt *strings.Builder) {
	prompt.WriteString("Answer the question based only on the context below. ")
	prompt.WriteString("Do not use outside knowledge. ")
	prompt.WriteString("If the context does not contain the answer, reply exactly: \"")
	prompt.WriteString(NotFoundReply)
	prompt.WriteString("\"\n\n")
}

func (b *Builder) writeHistory(prompt *strings.Builder) {
	if len(b.history) == 0 {
		return
	}

	prompt.WriteString("Conversation so far:\n")
	for _, turn := range b.history {
		prompt.WriteString("User: ")
		prompt.WriteString(turn.Question)
		prompt.WriteString("\n")
		prompt.WriteString("Assistant: ")
		prompt.WriteString(turn.Answer)
		prompt.WriteString("\n")
	}
	prompt.WriteString("\n")
}

func (b *Builder) writeContext(prompt *strings.Builder) {
	prompt.WriteString("Context:\n")
	prompt.WriteString(strings.Join(b.chunks, "\n\n"))
	prompt.WriteString("\n\n")
}

func (b *Builder) writeQuestion(prompt *strings.Builder) {
	prompt.WriteString("Question:\n")
	prompt.WriteString(b.question)
	prompt.WriteString("\n\nAnswer:")
}
