package core

// EventLogger receives one event per completed network action. It is the
// subset of the observability event log the controller needs, declared here
// so core does not import observability.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// Event types emitted by the network controller.
const (
	EventPersonAdded         = "person.added"
	EventRelationshipAdded   = "relationship.added"
	EventRelationshipDeleted = "relationship.deleted"
	EventPersonDeleted       = "person.deleted"
	EventDeletionCancelled   = "deletion.cancelled"
)
