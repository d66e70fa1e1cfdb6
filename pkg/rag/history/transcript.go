package history

import "time"

// Source is a retrieved passage shown next to an answer.
type Source struct {
	ChunkID  int     `json:"chunk_id"`
	Offset   int     `json:"offset"`
	Distance float32 `json:"distance"`
	Text     string  `json:"text"`
	Preview  string  `json:"preview"`
}

// Turn is one answered question. Turns are never edited after they are appended.
type Turn struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Sources  []Source  `json:"sources"`
	Degraded bool      `json:"degraded"` // generation failed and Answer holds the fallback text
	AskedAt  time.Time `json:"asked_at"`
}

// Transcript is an append-only list of turns, oldest first. Callers serialize access.
type Transcript struct {
	turns []Turn
}

func (t *Transcript) Append(turn Turn) {
	t.turns = append(t.turns, turn)
}

func (t *Transcript) Len() int {
	return len(t.turns)
}

// Turns returns a copy so callers cannot mutate recorded history.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}
