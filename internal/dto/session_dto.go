package dto

import (
	"time"

	"insightrag-be/pkg/rag/history"
	"insightrag-be/pkg/rag/session"
)

type AskRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
}

type SessionSummaryResponse struct {
	Id            string        `json:"id"`
	Title         string        `json:"title"`
	State         session.State `json:"state"`
	QuestionCount int           `json:"question_count"`
	Remaining     int           `json:"remaining"`
	Limit         int           `json:"limit"`
	Chunks        int           `json:"chunks"`
	Active        bool          `json:"active"`
	CreatedAt     time.Time     `json:"created_at"`
}

type ListSessionsResponse struct {
	Sessions  []*SessionSummaryResponse `json:"sessions"`
	ActiveId  string                    `json:"active_id,omitempty"`
	ExpiresAt time.Time                 `json:"expires_at"`
}

type SessionDetailResponse struct {
	SessionSummaryResponse
	Transcript []history.Turn `json:"transcript"`
	ExpiresAt  time.Time      `json:"expires_at"`
}

type AskResponse struct {
	SessionId     string           `json:"session_id"`
	Question      string           `json:"question"`
	Answer        string           `json:"answer"`
	Sources       []history.Source `json:"sources"`
	Degraded      bool             `json:"degraded"`
	QuestionCount int              `json:"question_count"`
	Remaining     int              `json:"remaining"`
	State         session.State    `json:"state"`
}

// --- Limit Exceeded Error Types ---

// LimitExceededError is returned when a session has used all of its questions.
type LimitExceededError struct {
	SessionId string `json:"session_id"`
	Limit     int    `json:"limit"`
	Used      int    `json:"used"`
}

func (e *LimitExceededError) Error() string {
	return "question limit reached for this document"
}

func (e *LimitExceededError) Unwrap() error {
	return session.ErrLimitReached
}

// LimitExceededData is the data payload for 429 responses
type LimitExceededData struct {
	SessionId string `json:"session_id"`
	Limit     int    `json:"limit"`
	Used      int    `json:"used"`
}

// LimitExceededResponse is the full 429 response structure
type LimitExceededResponse struct {
	Success   bool              `json:"success"`
	Code      int               `json:"code"`
	Message   string            `json:"message"`
	ErrorType string            `json:"error_type"`
	Data      LimitExceededData `json:"data"`
}

func NewSessionSummaryResponse(s *session.Session, activeId string) *SessionSummaryResponse {
	sum := s.Summary()
	return &SessionSummaryResponse{
		Id:            sum.ID,
		Title:         sum.Title,
		State:         sum.State,
		QuestionCount: sum.QuestionCount,
		Remaining:     sum.Remaining,
		Limit:         sum.Limit,
		Chunks:        sum.Chunks,
		Active:        sum.ID == activeId,
		CreatedAt:     sum.CreatedAt,
	}
}
