package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wolfman30/clinic-secretary/pkg/logging"
)

// AppointmentNotifier reacts to appointment events. notify.Notifier
// implements it.
type AppointmentNotifier interface {
	AppointmentCreated(ctx context.Context, evt AppointmentCreatedV1) error
	AppointmentCancelled(ctx context.Context, evt AppointmentCancelledV1) error
}

// Deduper remembers handled events per consumer.
type Deduper interface {
	AlreadyProcessed(ctx context.Context, consumer, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, consumer, eventID string) (bool, error)
}

// Dispatcher routes outbox entries to the notifier, at most once per event.
type Dispatcher struct {
	consumer  string
	notifier  AppointmentNotifier
	processed Deduper
	logger    *logging.Logger
}

// NewDispatcher creates a dispatcher; processed may be nil to disable dedupe.
func NewDispatcher(consumer string, notifier AppointmentNotifier, processed Deduper, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	if consumer == "" {
		consumer = "notify"
	}
	return &Dispatcher{consumer: consumer, notifier: notifier, processed: processed, logger: logger}
}

// Handle implements DeliveryHandler.
func (d *Dispatcher) Handle(ctx context.Context, entry OutboxEntry) error {
	eventID := entry.ID.String()
	if d.processed != nil {
		done, err := d.processed.AlreadyProcessed(ctx, d.consumer, eventID)
		if err != nil {
			return err
		}
		if done {
			d.logger.Debug("event already processed", "event_id", eventID, "consumer", d.consumer)
			return nil
		}
	}

	switch entry.Type {
	case TypeAppointmentCreated:
		var evt AppointmentCreatedV1
		if err := json.Unmarshal(entry.Payload, &evt); err != nil {
			return fmt.Errorf("events: decode %s: %w", entry.Type, err)
		}
		if err := d.notifier.AppointmentCreated(ctx, evt); err != nil {
			return err
		}
	case TypeAppointmentCancelled:
		var evt AppointmentCancelledV1
		if err := json.Unmarshal(entry.Payload, &evt); err != nil {
			return fmt.Errorf("events: decode %s: %w", entry.Type, err)
		}
		if err := d.notifier.AppointmentCancelled(ctx, evt); err != nil {
			return err
		}
	default:
		d.logger.Debug("ignoring event type", "type", entry.Type, "event_id", eventID)
	}

	if d.processed != nil {
		if _, err := d.processed.MarkProcessed(ctx, d.consumer, eventID); err != nil {
			return err
		}
	}
	return nil
}

// Fanout delivers an entry to every handler. The entry counts as delivered
// only when all handlers succeed.
type Fanout []DeliveryHandler

func (f Fanout) Handle(ctx context.Context, entry OutboxEntry) error {
	var errs []error
	for _, h := range f {
		if h == nil {
			continue
		}
		if err := h.Handle(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
