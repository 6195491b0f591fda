package observability

import (
	"fmt"
	"time"
)

// Metrics holds counters derived from the event log.
type Metrics struct {
	Sessions             int            `json:"sessions"`
	PeopleAdded          int            `json:"people_added"`
	PeopleDeleted        int            `json:"people_deleted"`
	RelationshipsAdded   int            `json:"relationships_added"`
	RelationshipsDeleted int            `json:"relationships_deleted"`
	RelationshipsByType  map[string]int `json:"relationships_by_type"`
	HistoryPurged        int            `json:"history_purged"`
	DeletionsCancelled   int            `json:"deletions_cancelled"`
	EventCount           int            `json:"event_count"`
	OldestEvent          *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent          *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into metrics.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		RelationshipsByType: make(map[string]int),
	}
	m.EventCount = len(events)

	sessions := make(map[string]struct{})
	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		if event.Session != "" {
			sessions[event.Session] = struct{}{}
		}

		switch event.Type {
		case "person.added":
			m.PeopleAdded++
		case "person.deleted":
			m.PeopleDeleted++
			m.HistoryPurged += intField(event.Data, "history_purged")
		case "relationship.added":
			m.RelationshipsAdded++
			if relType, ok := event.Data["type"].(string); ok {
				m.RelationshipsByType[relType]++
			}
		case "relationship.deleted":
			m.RelationshipsDeleted++
		case "deletion.cancelled":
			m.DeletionsCancelled++
		}
	}
	m.Sessions = len(sessions)

	return m, nil
}

// intField reads a numeric field from decoded event data. JSON numbers decode
// as float64; values written in-process may still be int.
func intField(data map[string]any, key string) int {
	switch v := data[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
