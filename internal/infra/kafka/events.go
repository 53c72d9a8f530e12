package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wayfare-dev/wayfare/internal/core/domain"
	"github.com/wayfare-dev/wayfare/internal/core/port"
	"github.com/wayfare-dev/wayfare/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	AccountID string            `json:"account_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, accountID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		AccountID: accountID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: map[string]string{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Key:   sarama.StringEncoder(accountID),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishAccountRegistered publishes wayfare.account.registered events.
func (p *EventPublisher) PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error {
	payload := struct {
		AccountID    string         `json:"account_id"`
		Handle       string         `json:"handle"`
		Email        string         `json:"email,omitempty"`
		RegisteredAt time.Time      `json:"registered_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		AccountID:    event.AccountID,
		Handle:       event.Handle,
		Email:        event.Email,
		RegisteredAt: event.RegisteredAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "wayfare.account.registered", event.AccountID, event.RegisteredAt, payload)
}

// PublishSessionStarted publishes wayfare.session.started events.
func (p *EventPublisher) PublishSessionStarted(ctx context.Context, event domain.SessionStartedEvent) error {
	payload := struct {
		AccountID string         `json:"account_id"`
		Handle    string         `json:"handle"`
		StartedAt time.Time      `json:"started_at"`
		IP        string         `json:"ip,omitempty"`
		UserAgent string         `json:"user_agent,omitempty"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		AccountID: event.AccountID,
		Handle:    event.Handle,
		StartedAt: event.StartedAt.UTC(),
		IP:        event.IP,
		UserAgent: event.UserAgent,
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "wayfare.session.started", event.AccountID, event.StartedAt, payload)
}

// PublishSessionClosed publishes wayfare.session.closed events.
func (p *EventPublisher) PublishSessionClosed(ctx context.Context, event domain.SessionClosedEvent) error {
	payload := struct {
		AccountID string         `json:"account_id"`
		Handle    string         `json:"handle"`
		ClosedAt  time.Time      `json:"closed_at"`
		Reason    string         `json:"reason,omitempty"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		AccountID: event.AccountID,
		Handle:    event.Handle,
		ClosedAt:  event.ClosedAt.UTC(),
		Reason:    event.Reason,
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "wayfare.session.closed", event.AccountID, event.ClosedAt, payload)
}

// PublishAccountDeactivated publishes wayfare.account.deactivated events.
func (p *EventPublisher) PublishAccountDeactivated(ctx context.Context, event domain.AccountDeactivatedEvent) error {
	payload := struct {
		AccountID     string         `json:"account_id"`
		Handle        string         `json:"handle"`
		DeactivatedAt time.Time      `json:"deactivated_at"`
		Metadata      map[string]any `json:"metadata,omitempty"`
	}{
		AccountID:     event.AccountID,
		Handle:        event.Handle,
		DeactivatedAt: event.DeactivatedAt.UTC(),
		Metadata:      event.Metadata,
	}

	return p.publish(ctx, event.EventID, "wayfare.account.deactivated", event.AccountID, event.DeactivatedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
