package events

import "time"

const (
	SessionCreated          = "session.created"
	SessionSelected         = "session.selected"
	SessionDeleted          = "session.deleted"
	SessionQuestionAnswered = "session.question_answered"
	StorePurged             = "store.purged"
)

func NewSessionCreated(sessionID, title string, chunks int) BaseEvent {
	return BaseEvent{
		Type: SessionCreated,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"title":      title,
			"chunks":     chunks,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionSelected(sessionID string) BaseEvent {
	return BaseEvent{
		Type:       SessionSelected,
		Data:       map[string]interface{}{"session_id": sessionID},
		OccurredAt: time.Now(),
	}
}

func NewSessionDeleted(sessionID string, wasActive bool) BaseEvent {
	return BaseEvent{
		Type: SessionDeleted,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"was_active": wasActive,
		},
		OccurredAt: time.Now(),
	}
}

// NewQuestionAnswered carries counters only. Question and answer text stay in the session.
func NewQuestionAnswered(sessionID string, questionCount, limit int, degraded bool) BaseEvent {
	return BaseEvent{
		Type: SessionQuestionAnswered,
		Data: map[string]interface{}{
			"session_id":     sessionID,
			"question_count": questionCount,
			"limit":          limit,
			"degraded":       degraded,
		},
		OccurredAt: time.Now(),
	}
}

func NewStorePurged(dropped int, epochStart time.Time) BaseEvent {
	return BaseEvent{
		Type: StorePurged,
		Data: map[string]interface{}{
			"dropped":     dropped,
			"epoch_start": epochStart.Format(time.RFC3339),
		},
		OccurredAt: time.Now(),
	}
}
