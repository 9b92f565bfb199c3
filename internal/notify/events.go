package notify

import (
	"context"

	"github.com/covenantconf/registration-api/internal/domain"
	"github.com/covenantconf/registration-api/pkg/events"
	"github.com/covenantconf/registration-api/pkg/logger"
)

// EventPublisher mirrors registrations onto the event bus so other
// processes can react without the service waiting on them.
type EventPublisher struct {
	bus events.Publisher
}

func NewEventPublisher(bus events.Publisher) *EventPublisher {
	return &EventPublisher{bus: bus}
}

func (p *EventPublisher) RegistrationCreated(ctx context.Context, reg domain.Registration) {
	event := events.RegistrationCreatedEvent{
		RegistrationID: reg.ID,
		FullName:       reg.FullName,
		ContactNumber:  reg.ContactNumber,
		Church:         reg.Church,
		HasVehicle:     reg.HasVehicle,
		CreatedAt:      reg.CreatedAt,
	}

	if err := p.bus.Publish(ctx, events.RegistrationCreated, event); err != nil {
		logger.WarnContext(ctx, "Failed to publish registration created event", "registration_id", reg.ID, "error", err)
	}
}
