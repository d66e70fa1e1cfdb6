package service

import (
	"context"
	"errors"
	"time"

	"insightrag-be/internal/dto"
	"insightrag-be/internal/pkg/logger"
	"insightrag-be/pkg/events"
	"insightrag-be/pkg/rag/history"
	"insightrag-be/pkg/rag/session"
	"insightrag-be/pkg/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ISessionService interface {
	CreateSession(ctx context.Context, fileName string, data []byte) (*dto.SessionDetailResponse, error)
	ListSessions(ctx context.Context) *dto.ListSessionsResponse
	ShowSession(ctx context.Context, id string) (*dto.SessionDetailResponse, error)
	SelectSession(ctx context.Context, id string) (*dto.SessionDetailResponse, error)
	DeleteSession(ctx context.Context, id string) error
	Ask(ctx context.Context, id string, request *dto.AskRequest) (*dto.AskResponse, error)
	AskActive(ctx context.Context, request *dto.AskRequest) (*dto.AskResponse, error)
	PurgeExpired(ctx context.Context) bool
}

type sessionService struct {
	store     *store.Store
	publisher IPublisherService
	logger    logger.ILogger
	tracer    trace.Tracer
}

func NewSessionService(st *store.Store, publisher IPublisherService, logger logger.ILogger) ISessionService {
	return &sessionService{
		store:     st,
		publisher: publisher,
		logger:    logger,
		tracer:    otel.Tracer("insightrag-be/session"),
	}
}

// StorePurgedHook builds the store hook that reports TTL purges on the event bus.
func StorePurgedHook(publisher IPublisherService, logger logger.ILogger) store.PurgeFunc {
	return func(dropped int, epochStart time.Time) {
		logger.Info("SESSION", "Session store expired and was cleared", map[string]interface{}{
			"dropped":     dropped,
			"epoch_start": epochStart,
		})
		if publisher == nil {
			return
		}
		if err := publisher.Publish(context.Background(), events.NewStorePurged(dropped, epochStart)); err != nil {
			logger.Warn("SESSION", "Failed to publish store.purged event", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (s *sessionService) CreateSession(ctx context.Context, fileName string, data []byte) (*dto.SessionDetailResponse, error) {
	ctx, span := s.tracer.Start(ctx, "session.create", trace.WithAttributes(
		attribute.String("document.name", fileName),
		attribute.Int("document.bytes", len(data)),
	))
	defer span.End()

	sess, err := s.store.CreateSession(ctx, fileName, data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warn("SESSION", "Document ingestion failed", map[string]interface{}{
			"file":  fileName,
			"error": err.Error(),
		})
		return nil, err
	}
	span.SetAttributes(attribute.String("session.id", sess.ID), attribute.Int("session.chunks", sess.ChunkCount()))

	s.publish(ctx, events.NewSessionCreated(sess.ID, sess.Title, sess.ChunkCount()))

	return s.detail(sess), nil
}

func (s *sessionService) ListSessions(ctx context.Context) *dto.ListSessionsResponse {
	snap := s.store.Snapshot()

	res := &dto.ListSessionsResponse{
		Sessions:  make([]*dto.SessionSummaryResponse, 0, len(snap.Sessions)),
		ActiveId:  snap.ActiveID,
		ExpiresAt: snap.ExpiresAt,
	}
	for _, sess := range snap.Sessions {
		res.Sessions = append(res.Sessions, dto.NewSessionSummaryResponse(sess, snap.ActiveID))
	}
	return res
}

func (s *sessionService) ShowSession(ctx context.Context, id string) (*dto.SessionDetailResponse, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return s.detail(sess), nil
}

func (s *sessionService) SelectSession(ctx context.Context, id string) (*dto.SessionDetailResponse, error) {
	sess, err := s.store.SelectSession(id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewSessionSelected(sess.ID))
	return s.detail(sess), nil
}

func (s *sessionService) DeleteSession(ctx context.Context, id string) error {
	wasActive, err := s.store.DeleteSession(id)
	if err != nil {
		return err
	}
	s.publish(ctx, events.NewSessionDeleted(id, wasActive))
	return nil
}

func (s *sessionService) Ask(ctx context.Context, id string, request *dto.AskRequest) (*dto.AskResponse, error) {
	ctx, span := s.tracer.Start(ctx, "session.ask", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	sess, turn, err := s.store.Ask(ctx, id, request.Question)
	return s.finishAsk(ctx, span, sess, turn, err)
}

func (s *sessionService) AskActive(ctx context.Context, request *dto.AskRequest) (*dto.AskResponse, error) {
	ctx, span := s.tracer.Start(ctx, "session.ask_active")
	defer span.End()

	sess, turn, err := s.store.AskActive(ctx, request.Question)
	return s.finishAsk(ctx, span, sess, turn, err)
}

func (s *sessionService) PurgeExpired(ctx context.Context) bool {
	return s.store.PurgeIfExpired()
}

func (s *sessionService) finishAsk(ctx context.Context, span trace.Span, sess *session.Session, turn history.Turn, err error) (*dto.AskResponse, error) {
	if err != nil {
		if errors.Is(err, session.ErrLimitReached) && sess != nil {
			span.SetAttributes(attribute.Bool("session.limit_reached", true))
			return nil, &dto.LimitExceededError{
				SessionId: sess.ID,
				Limit:     sess.Limit(),
				Used:      sess.QuestionCount(),
			}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	count := sess.QuestionCount()
	span.SetAttributes(
		attribute.String("session.id", sess.ID),
		attribute.Int("session.question_count", count),
		attribute.Bool("answer.degraded", turn.Degraded),
	)
	if turn.Degraded {
		s.logger.Warn("SESSION", "Answer degraded to fallback message", map[string]interface{}{"session_id": sess.ID})
	}

	s.publish(ctx, events.NewQuestionAnswered(sess.ID, count, sess.Limit(), turn.Degraded))

	return &dto.AskResponse{
		SessionId:     sess.ID,
		Question:      turn.Question,
		Answer:        turn.Answer,
		Sources:       turn.Sources,
		Degraded:      turn.Degraded,
		QuestionCount: count,
		Remaining:     sess.Remaining(),
		State:         sess.State(),
	}, nil
}

func (s *sessionService) detail(sess *session.Session) *dto.SessionDetailResponse {
	snap := s.store.Snapshot()
	return &dto.SessionDetailResponse{
		SessionSummaryResponse: *dto.NewSessionSummaryResponse(sess, snap.ActiveID),
		Transcript:             sess.Transcript(),
		ExpiresAt:              snap.ExpiresAt,
	}
}

// publish never fails the request; events are auxiliary.
func (s *sessionService) publish(ctx context.Context, evt events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("SESSION", "Failed to publish event", map[string]interface{}{
			"type":  evt.EventType(),
			"error": err.Error(),
		})
	}
}
