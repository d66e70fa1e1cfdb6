package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranscript_AppendOnly(t *testing.T) {
	var tr Transcript
	tr.Append(Turn{Question: "q1", Answer: "a1"})
	tr.Append(Turn{Question: "q2", Answer: "a2"})

	assert.Equal(t, 2, tr.Len())

	turns := tr.Turns()
	turns[0].Answer = "tampered"

	assert.Equal(t, "a1", tr.Turns()[0].Answer)
	assert.Equal(t, "q2", tr.Turns()[1].Question)
}
