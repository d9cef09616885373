package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/icu-risk/pkg/common/logger"
	"github.com/synaptica-ai/icu-risk/pkg/common/models"
	"github.com/synaptica-ai/icu-risk/pkg/features"
	"github.com/synaptica-ai/icu-risk/pkg/observability/metrics"
)

// EventHandler consumes measurement-batch events. Events that can never
// succeed go to the dead-letter publisher and are acknowledged; storage
// failures are returned so the message is redelivered.
type EventHandler struct {
	service *Service
	dlq     Publisher
}

func NewEventHandler(service *Service, dlq Publisher) *EventHandler {
	return &EventHandler{service: service, dlq: dlq}
}

func (h *EventHandler) Handle(ctx context.Context, event models.Event) error {
	if event.Type != models.EventMeasurements {
		logger.Get().WithFields(logrus.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
		}).Debug("ignoring event")
		return nil
	}

	encounterID := encounterOf(event)
	if encounterID == "" {
		return h.deadLetter(ctx, event, "", &features.Error{
			Kind:    features.KindInput,
			Message: "Invalid input",
			Details: "event carries no encounter_id",
		})
	}

	payload, err := json.Marshal(event.Data)
	if err != nil {
		return h.deadLetter(ctx, event, encounterID, &features.Error{
			Kind:    features.KindInput,
			Message: "Invalid input",
			Details: err.Error(),
		})
	}
	patient, err := features.DecodePatientData(payload)
	if err != nil {
		return h.deadLetter(ctx, event, encounterID, err)
	}

	res, set, err := h.service.Engineer(ctx, encounterID, patient, true)
	var ferr *features.Error
	if errors.As(err, &ferr) {
		return h.deadLetter(ctx, event, encounterID, ferr)
	}
	if err != nil {
		return fmt.Errorf("store observation set for %s: %w", encounterID, err)
	}

	logger.WithFields(logrus.Fields{
		"event_id":           event.ID,
		"encounter_id":       encounterID,
		"observation_set_id": set.ID,
		"missing":            len(res.MissingFeatures),
	}).Info("measurement batch processed")
	return nil
}

func (h *EventHandler) deadLetter(ctx context.Context, event models.Event, encounterID string, cause error) error {
	metrics.ObserveDeadLetter()
	data := map[string]interface{}{
		"original_event_id": event.ID,
		"encounter_id":      encounterID,
		"error":             cause.Error(),
	}
	var ferr *features.Error
	if errors.As(cause, &ferr) {
		data["kind"] = string(ferr.Kind)
		data["details"] = ferr.Details
	}

	logger.WithFields(logrus.Fields{
		"event_id":     event.ID,
		"encounter_id": encounterID,
		"error":        cause.Error(),
	}).Warn("measurement batch rejected")

	if h.dlq == nil {
		return nil
	}
	if err := h.dlq.PublishEvent(ctx, encounterID, models.EventAssemblyFailed, eventSource, data); err != nil {
		return fmt.Errorf("publish to dlq: %w", err)
	}
	return nil
}

func encounterOf(event models.Event) string {
	if v, ok := event.Data["encounter_id"]; ok && v != nil {
		if s := fmt.Sprint(v); s != "" {
			return s
		}
	}
	return event.Metadata["encounter_id"]
}
