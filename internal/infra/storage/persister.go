package storage

import (
	"context"
	"encoding/json"

	"github.com/mvillareal/metrosim/internal/events"
)

// EventPersisterAdapter translates engine events to storage records, tagging
// them with the run they belong to. It satisfies events.EventPersister.
type EventPersisterAdapter struct {
	repo  *SQLiteEventRepository
	runID string
}

// NewEventPersisterAdapter wires an event repository to a specific run.
func NewEventPersisterAdapter(repo *SQLiteEventRepository, runID string) *EventPersisterAdapter {
	return &EventPersisterAdapter{repo: repo, runID: runID}
}

func (a *EventPersisterAdapter) Append(event events.SimEvent) error {
	payloadBytes, _ := json.Marshal(event.Payload)
	var payloadMap map[string]interface{}
	json.Unmarshal(payloadBytes, &payloadMap)

	record := SimEventRecord{
		ID:        event.ID,
		RunID:     a.runID,
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		Tick:      event.Tick,
		Payload:   payloadMap,
	}
	return a.repo.Append(context.Background(), record)
}
