package main

import (
	"context"
	"errors"
	"io"
	"testing"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/anvitsharma/trendora-backend/pkg/config"
	"github.com/anvitsharma/trendora-backend/pkg/db/models"
	"github.com/anvitsharma/trendora-backend/pkg/enums"
	"github.com/anvitsharma/trendora-backend/pkg/logger"
)

func TestServiceProcessBatchContinuesAfterFailure(t *testing.T) {
	repo := &fakeRepo{
		events: []models.OutboxEvent{
			{
				ID:            uuid.New(),
				EventType:     enums.EventRefundInitiated,
				AggregateType: enums.AggregateRefund,
				AggregateID:   uuid.New(),
				Payload:       []byte(`{"event_id":"one"}`),
			},
			{
				ID:            uuid.New(),
				EventType:     enums.EventItemStatusChanged,
				AggregateType: enums.AggregateOrderItem,
				AggregateID:   uuid.New(),
				Payload:       []byte(`{"event_id":"two"}`),
			},
		},
	}
	pub := &fakePublisher{
		results: []publishResult{
			fakePublishResult{err: errors.New("transient")},
			fakePublishResult{},
		},
	}
	service := newTestService(t, repo, pub)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if got := len(repo.failed); got != 1 {
		t.Fatalf("unexpected number of failed rows: %d", got)
	}
	if got := len(repo.published); got != 1 {
		t.Fatalf("unexpected number of published rows: %d", got)
	}
	if repo.failed[0] != repo.events[0].ID {
		t.Fatalf("failed row recorded wrong ID")
	}
	if repo.published[0] != repo.events[1].ID {
		t.Fatalf("published row recorded wrong ID")
	}
}

func TestServiceRoutesEventsByType(t *testing.T) {
	repo := &fakeRepo{
		events: []models.OutboxEvent{
			{
				ID:            uuid.New(),
				EventType:     enums.EventRefundInitiated,
				AggregateType: enums.AggregateRefund,
				AggregateID:   uuid.New(),
				Payload:       []byte(`{}`),
			},
			{
				ID:            uuid.New(),
				EventType:     enums.EventItemStatusChanged,
				AggregateType: enums.AggregateOrderItem,
				AggregateID:   uuid.New(),
				Payload:       []byte(`{}`),
			},
		},
	}
	pub := &fakePublisher{
		results: []publishResult{fakePublishResult{}, fakePublishResult{}},
	}
	service := newTestService(t, repo, pub)

	var topics []string
	service.publisherFactory = func(topic string) publisher {
		topics = append(topics, topic)
		return pub
	}

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if len(topics) != 2 {
		t.Fatalf("expected two topic lookups, got %d", len(topics))
	}
	if topics[0] != "refund-topic" {
		t.Fatalf("refund event routed to %q", topics[0])
	}
	if topics[1] != "lifecycle-topic" {
		t.Fatalf("lifecycle event routed to %q", topics[1])
	}
}

func TestServiceUnknownEventTypeMarkedFailed(t *testing.T) {
	repo := &fakeRepo{
		events: []models.OutboxEvent{
			{
				ID:            uuid.New(),
				EventType:     enums.OutboxEventType("order.unknown"),
				AggregateType: enums.AggregateOrderItem,
				AggregateID:   uuid.New(),
				Payload:       []byte(`{}`),
			},
		},
	}
	pub := &fakePublisher{}
	service := newTestService(t, repo, pub)

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if len(repo.failed) != 1 {
		t.Fatalf("expected unknown event to be marked failed, got %d", len(repo.failed))
	}
	if len(repo.published) != 0 {
		t.Fatalf("unknown event must not be marked published")
	}
}

func TestServiceCollectsMarkErrorsAcrossBatch(t *testing.T) {
	repo := &fakeRepo{
		events: []models.OutboxEvent{
			{
				ID:            uuid.New(),
				EventType:     enums.EventItemStatusChanged,
				AggregateType: enums.AggregateOrderItem,
				AggregateID:   uuid.New(),
				Payload:       []byte(`{}`),
			},
			{
				ID:            uuid.New(),
				EventType:     enums.EventItemStatusChanged,
				AggregateType: enums.AggregateOrderItem,
				AggregateID:   uuid.New(),
				Payload:       []byte(`{}`),
			},
		},
		markPublishedErr: errors.New("row locked"),
	}
	pub := &fakePublisher{
		results: []publishResult{fakePublishResult{}, fakePublishResult{}},
	}
	service := newTestService(t, repo, pub)

	processed, err := service.processBatch(context.Background())
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if err == nil {
		t.Fatalf("expected combined mark errors")
	}
	// Both events must have been attempted despite the first mark failure.
	if pub.calls != 2 {
		t.Fatalf("expected both publishes attempted, got %d", pub.calls)
	}
}

func TestServiceEmptyBatchReportsIdle(t *testing.T) {
	repo := &fakeRepo{}
	service := newTestService(t, repo, &fakePublisher{})

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if processed {
		t.Fatalf("empty batch must report idle")
	}
}

func newTestService(t *testing.T, repo *fakeRepo, pub *fakePublisher) *Service {
	t.Helper()
	cfg := &config.Config{}
	cfg.Outbox.BatchSize = 10
	cfg.Outbox.MaxAttempts = 5
	cfg.PubSub.RefundTopic = "refund-topic"
	cfg.PubSub.LifecycleTopic = "lifecycle-topic"

	service, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		DB:         fakeDB{},
		Repository: repo,
		PublisherFactory: func(topic string) publisher {
			return pub
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service
}

type fakeDB struct{}

func (fakeDB) Ping(context.Context) error { return nil }

type fakeRepo struct {
	events           []models.OutboxEvent
	published        []uuid.UUID
	failed           []uuid.UUID
	markPublishedErr error
}

func (r *fakeRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if limit < len(r.events) {
		return r.events[:limit], nil
	}
	return r.events, nil
}

func (r *fakeRepo) MarkPublished(id uuid.UUID) error {
	if r.markPublishedErr != nil {
		return r.markPublishedErr
	}
	r.published = append(r.published, id)
	return nil
}

func (r *fakeRepo) MarkFailed(id uuid.UUID, err error) error {
	r.failed = append(r.failed, id)
	return nil
}

type fakePublisher struct {
	results []publishResult
	calls   int
}

func (p *fakePublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p.calls >= len(p.results) {
		p.calls++
		return fakePublishResult{}
	}
	result := p.results[p.calls]
	p.calls++
	return result
}

type fakePublishResult struct {
	err error
}

func (r fakePublishResult) Get(ctx context.Context) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "server-id", nil
}
