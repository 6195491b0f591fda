package core

import (
	"fmt"
	"iter"
	"strings"

	"github.com/valter-silva-au/reseau/pkg/models"
	"go.uber.org/zap"
)

// Network is the state of one session: the graph and the history of
// relationship-creation events. It lives only as long as its owner.
type Network struct {
	Graph   *RelationshipGraph
	History *RelationHistory
}

// NewNetwork returns an empty network.
func NewNetwork() *Network {
	return &Network{
		Graph:   NewRelationshipGraph(),
		History: NewRelationHistory(),
	}
}

// AddPersonResult reports the outcome of AddPerson.
type AddPersonResult struct {
	Name    string
	Created bool // false when the person already existed
}

// BatchResult reports the outcome of AddRelationships.
type BatchResult struct {
	Source      string
	Type        models.RelationshipType
	Added       int
	SkippedSelf int
}

// DeleteEntryResult reports the outcome of ConfirmDeleteHistoryEntry.
type DeleteEntryResult struct {
	Entry models.HistoryEntry
	// EdgeRemoved is false when the edge was already gone, e.g. removed by an
	// earlier deletion.
	EdgeRemoved bool
}

// DeletePersonResult reports the outcome of ConfirmDeletePerson.
type DeletePersonResult struct {
	Name          string
	EdgesRemoved  int
	HistoryPurged int
}

// NetworkController exposes the user operations over one session's network.
// Destructive operations go through a request/confirm/cancel cycle.
type NetworkController interface {
	AddPerson(name string) (AddPersonResult, error)
	AddRelationships(source string, relType models.RelationshipType, targets []string) (BatchResult, error)

	RequestDeleteHistoryEntry(displayIndex int) error
	ConfirmDeleteHistoryEntry() (DeleteEntryResult, error)
	CancelDeleteHistoryEntry() bool

	RequestDeletePerson(name string) error
	ConfirmDeletePerson() (DeletePersonResult, error)
	CancelDeletePerson() bool

	People() []string
	Edges() iter.Seq[models.Relationship]
	History() []models.DisplayEntry
	Neighbors(name string) []string
	PendingHistoryDeletion() (int, bool)
	PendingPersonDeletion() (string, bool)
	Snapshot() models.NetworkSnapshot
}

// ControllerOption configures a controller built by NewNetworkController.
type ControllerOption func(*networkController)

// WithLogger sets the diagnostic logger. The default discards everything.
func WithLogger(logger *zap.Logger) ControllerOption {
	return func(c *networkController) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEventLogger sets the sink for action events. nil disables events.
func WithEventLogger(events EventLogger) ControllerOption {
	return func(c *networkController) {
		c.events = events
	}
}

// WithNetwork makes the controller operate on an existing network instead of
// a fresh one.
func WithNetwork(n *Network) ControllerOption {
	return func(c *networkController) {
		if n != nil {
			c.net = n
		}
	}
}

// networkController is not safe for concurrent use. Each session owns its
// own controller and network.
type networkController struct {
	net    *Network
	logger *zap.Logger
	events EventLogger

	entryDeletion  Confirmation[int]
	personDeletion Confirmation[string]
}

// NewNetworkController creates a controller over an empty network unless
// WithNetwork is given.
func NewNetworkController(opts ...ControllerOption) NetworkController {
	c := &networkController{
		net:    NewNetwork(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *networkController) AddPerson(name string) (AddPersonResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return AddPersonResult{}, fmt.Errorf("adding person: name must not be empty: %w", ErrValidation)
	}

	created := c.net.Graph.AddPerson(name)
	if created {
		c.emit(EventPersonAdded, map[string]any{"name": name})
	}
	c.logger.Debug("add person", zap.String("name", name), zap.Bool("created", created))
	return AddPersonResult{Name: name, Created: created}, nil
}

func (c *networkController) AddRelationships(source string, relType models.RelationshipType, targets []string) (BatchResult, error) {
	source = strings.TrimSpace(source)
	result := BatchResult{Source: source, Type: relType}

	if source == "" {
		return result, fmt.Errorf("adding relationships: source person must not be empty: %w", ErrValidation)
	}
	if len(targets) == 0 {
		return result, fmt.Errorf("adding relationships for %q: select at least one person: %w", source, ErrValidation)
	}
	if !relType.IsValid() {
		return result, fmt.Errorf("adding relationships for %q: unknown relationship type %q: %w", source, relType, ErrValidation)
	}
	if !c.net.Graph.HasPerson(source) {
		return result, fmt.Errorf("adding relationships: %q: %w", source, ErrUnknownPerson)
	}

	// Check every target before mutating so a failed batch changes nothing.
	cleaned := make([]string, len(targets))
	for i, target := range targets {
		target = strings.TrimSpace(target)
		if target != source && !c.net.Graph.HasPerson(target) {
			return result, fmt.Errorf("adding relationships for %q: %q: %w", source, target, ErrUnknownPerson)
		}
		cleaned[i] = target
	}

	for _, target := range cleaned {
		if target == source {
			result.SkippedSelf++
			continue
		}
		if err := c.net.Graph.AddRelationship(source, target, relType); err != nil {
			// Unreachable after the checks above.
			return result, fmt.Errorf("adding relationships for %q: %w", source, err)
		}
		c.net.History.Append(source, relType, target)
		result.Added++
		c.emit(EventRelationshipAdded, map[string]any{
			"person_a": source,
			"type":     string(relType),
			"person_b": target,
		})
	}

	c.logger.Debug("add relationships",
		zap.String("source", source),
		zap.String("type", string(relType)),
		zap.Int("added", result.Added),
		zap.Int("skipped_self", result.SkippedSelf),
	)
	return result, nil
}

func (c *networkController) RequestDeleteHistoryEntry(displayIndex int) error {
	if displayIndex < 0 {
		return fmt.Errorf("requesting relationship deletion: display index %d: %w", displayIndex, ErrIndexOutOfRange)
	}
	c.entryDeletion.Request(displayIndex)
	c.logger.Debug("relationship deletion requested", zap.Int("index", displayIndex))
	return nil
}

func (c *networkController) ConfirmDeleteHistoryEntry() (DeleteEntryResult, error) {
	idx, ok := c.entryDeletion.Take()
	if !ok {
		return DeleteEntryResult{}, fmt.Errorf("confirming relationship deletion: %w", ErrNothingPending)
	}

	entry, err := c.net.History.At(idx)
	if err != nil {
		return DeleteEntryResult{}, fmt.Errorf("confirming relationship deletion: %w", err)
	}

	// The edge may already be gone; history and graph are allowed to diverge.
	edgeRemoved := c.net.Graph.RemoveRelationship(entry.PersonA, entry.PersonB)
	if _, err := c.net.History.RemoveAt(idx); err != nil {
		return DeleteEntryResult{}, fmt.Errorf("confirming relationship deletion: %w", err)
	}

	c.emit(EventRelationshipDeleted, map[string]any{
		"person_a":     entry.PersonA,
		"type":         string(entry.Type),
		"person_b":     entry.PersonB,
		"edge_removed": edgeRemoved,
	})
	c.logger.Debug("relationship deleted",
		zap.String("person_a", entry.PersonA),
		zap.String("person_b", entry.PersonB),
		zap.Bool("edge_removed", edgeRemoved),
	)
	return DeleteEntryResult{Entry: entry, EdgeRemoved: edgeRemoved}, nil
}

func (c *networkController) CancelDeleteHistoryEntry() bool {
	idx, _ := c.entryDeletion.Pending()
	if !c.entryDeletion.Cancel() {
		return false
	}
	c.emit(EventDeletionCancelled, map[string]any{"target": "relationship", "index": idx})
	return true
}

func (c *networkController) RequestDeletePerson(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("requesting person deletion: name must not be empty: %w", ErrValidation)
	}
	c.personDeletion.Request(name)
	c.logger.Debug("person deletion requested", zap.String("name", name))
	return nil
}

func (c *networkController) ConfirmDeletePerson() (DeletePersonResult, error) {
	name, ok := c.personDeletion.Take()
	if !ok {
		return DeletePersonResult{}, fmt.Errorf("confirming person deletion: %w", ErrNothingPending)
	}

	edges, err := c.net.Graph.RemovePerson(name)
	if err != nil {
		c.logger.Warn("person deletion failed", zap.String("name", name), zap.Error(err))
		return DeletePersonResult{}, fmt.Errorf("confirming person deletion: %w", err)
	}
	purged := c.net.History.PurgePerson(name)

	c.emit(EventPersonDeleted, map[string]any{
		"name":           name,
		"edges_removed":  edges,
		"history_purged": purged,
	})
	c.logger.Debug("person deleted",
		zap.String("name", name),
		zap.Int("edges_removed", edges),
		zap.Int("history_purged", purged),
	)
	return DeletePersonResult{Name: name, EdgesRemoved: edges, HistoryPurged: purged}, nil
}

func (c *networkController) CancelDeletePerson() bool {
	name, _ := c.personDeletion.Pending()
	if !c.personDeletion.Cancel() {
		return false
	}
	c.emit(EventDeletionCancelled, map[string]any{"target": "person", "name": name})
	return true
}

func (c *networkController) People() []string {
	return c.net.Graph.People()
}

func (c *networkController) Edges() iter.Seq[models.Relationship] {
	return c.net.Graph.Edges()
}

func (c *networkController) History() []models.DisplayEntry {
	return c.net.History.Display()
}

func (c *networkController) Neighbors(name string) []string {
	return c.net.Graph.Neighbors(name)
}

func (c *networkController) PendingHistoryDeletion() (int, bool) {
	return c.entryDeletion.Pending()
}

func (c *networkController) PendingPersonDeletion() (string, bool) {
	return c.personDeletion.Pending()
}

func (c *networkController) Snapshot() models.NetworkSnapshot {
	snap := models.NetworkSnapshot{
		People:        c.People(),
		Relationships: []models.Relationship{},
		History:       c.History(),
	}
	for r := range c.Edges() {
		snap.Relationships = append(snap.Relationships, r)
	}
	return snap
}

// emit forwards an event to the event sink. A failing sink never fails the
// action; the error is only logged.
func (c *networkController) emit(eventType string, data map[string]any) {
	if c.events == nil {
		return
	}
	if err := c.events.LogEvent(eventType, data); err != nil {
		c.logger.Warn("recording event", zap.String("type", eventType), zap.Error(err))
	}
}
