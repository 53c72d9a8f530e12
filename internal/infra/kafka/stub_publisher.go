package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wayfare-dev/wayfare/internal/core/domain"
	"github.com/wayfare-dev/wayfare/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without a broker.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, accountID string, at time.Time) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("account_id", accountID),
		zap.Time("timestamp", at.UTC()),
	)
}

func (p *StubPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	p.logEvent("wayfare.account.registered", event.AccountID, event.RegisteredAt)
	return nil
}

func (p *StubPublisher) PublishSessionStarted(_ context.Context, event domain.SessionStartedEvent) error {
	p.logEvent("wayfare.session.started", event.AccountID, event.StartedAt)
	return nil
}

func (p *StubPublisher) PublishSessionClosed(_ context.Context, event domain.SessionClosedEvent) error {
	p.logEvent("wayfare.session.closed", event.AccountID, event.ClosedAt)
	return nil
}

func (p *StubPublisher) PublishAccountDeactivated(_ context.Context, event domain.AccountDeactivatedEvent) error {
	p.logEvent("wayfare.account.deactivated", event.AccountID, event.DeactivatedAt)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
