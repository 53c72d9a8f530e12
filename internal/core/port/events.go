package port

import (
	"context"

	"github.com/wayfare-dev/wayfare/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error
	PublishSessionStarted(ctx context.Context, event domain.SessionStartedEvent) error
	PublishSessionClosed(ctx context.Context, event domain.SessionClosedEvent) error
	PublishAccountDeactivated(ctx context.Context, event domain.AccountDeactivatedEvent) error
}
