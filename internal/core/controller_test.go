package core

import (
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/valter-silva-au/reseau/pkg/models"
)

// recordingEvents captures events emitted by the controller.
type recordingEvents struct {
	types []string
	data  []map[string]any
	err   error
}

func (r *recordingEvents) LogEvent(eventType string, data map[string]any) error {
	r.types = append(r.types, eventType)
	r.data = append(r.data, data)
	return r.err
}

func newTestController(t *testing.T, people ...string) (NetworkController, *recordingEvents) {
	t.Helper()
	events := &recordingEvents{}
	c := NewNetworkController(WithEventLogger(events))
	for _, p := range people {
		if _, err := c.AddPerson(p); err != nil {
			t.Fatalf("AddPerson(%q): %v", p, err)
		}
	}
	events.types, events.data = nil, nil
	return c, events
}

func TestController_AddPerson(t *testing.T) {
	c, events := newTestController(t)

	res, err := c.AddPerson("  Alice ")
	if err != nil {
		t.Fatalf("AddPerson: %v", err)
	}
	if !res.Created || res.Name != "Alice" {
		t.Errorf("unexpected result %+v", res)
	}

	res, err = c.AddPerson("Alice")
	if err != nil {
		t.Fatalf("AddPerson duplicate: %v", err)
	}
	if res.Created {
		t.Error("expected duplicate add to report already-exists")
	}

	if got := c.People(); !slices.Equal(got, []string{"Alice"}) {
		t.Errorf("People() = %v", got)
	}
	if !slices.Equal(events.types, []string{EventPersonAdded}) {
		t.Errorf("expected one person.added event, got %v", events.types)
	}
}

func TestController_AddPersonBlank(t *testing.T) {
	c, _ := newTestController(t)

	for _, name := range []string{"", "   ", "\t"} {
		if _, err := c.AddPerson(name); !errors.Is(err, ErrValidation) {
			t.Errorf("AddPerson(%q): expected ErrValidation, got %v", name, err)
		}
	}
	if len(c.People()) != 0 {
		t.Errorf("expected no people, got %v", c.People())
	}
}

func TestController_AddRelationshipsScenario(t *testing.T) {
	c, events := newTestController(t, "Alice", "Bob", "Carol")

	if got, want := c.People(), []string{"Alice", "Bob", "Carol"}; !slices.Equal(got, want) {
		t.Fatalf("People() = %v, want %v", got, want)
	}

	res, err := c.AddRelationships("Alice", models.RelFriendly, []string{"Bob", "Carol"})
	if err != nil {
		t.Fatalf("AddRelationships: %v", err)
	}
	if res.Added != 2 || res.SkippedSelf != 0 {
		t.Errorf("expected added=2 skipped=0, got %+v", res)
	}
	if n := len(c.Snapshot().Relationships); n != 2 {
		t.Errorf("expected 2 edges, got %d", n)
	}
	if n := len(c.History()); n != 2 {
		t.Errorf("expected 2 history entries, got %d", n)
	}
	if len(events.types) != 2 {
		t.Errorf("expected 2 relationship.added events, got %v", events.types)
	}

	before := c.Snapshot()
	res, err = c.AddRelationships("Alice", models.RelRomantic, []string{"Alice"})
	if err != nil {
		t.Fatalf("AddRelationships self: %v", err)
	}
	if res.Added != 0 || res.SkippedSelf != 1 {
		t.Errorf("expected added=0 skipped=1, got %+v", res)
	}
	if !reflect.DeepEqual(before, c.Snapshot()) {
		t.Error("expected self-only batch to leave the network unchanged")
	}
}

func TestController_AddRelationshipsValidation(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		relType models.RelationshipType
		targets []string
		wantErr error
	}{
		{"empty targets", "Alice", models.RelFriendly, nil, ErrValidation},
		{"blank source", " ", models.RelFriendly, []string{"Bob"}, ErrValidation},
		{"unknown type", "Alice", "rival", []string{"Bob"}, ErrValidation},
		{"unknown source", "Zed", models.RelFriendly, []string{"Bob"}, ErrUnknownPerson},
		{"unknown target", "Alice", models.RelFriendly, []string{"Bob", "Zed"}, ErrUnknownPerson},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, events := newTestController(t, "Alice", "Bob")
			before := c.Snapshot()

			_, err := c.AddRelationships(tt.source, tt.relType, tt.targets)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if !reflect.DeepEqual(before, c.Snapshot()) {
				t.Error("expected failed batch to leave the network unchanged")
			}
			if len(events.types) != 0 {
				t.Errorf("expected no events, got %v", events.types)
			}
		})
	}
}

func TestController_OverwriteKeepsBothHistoryEntries(t *testing.T) {
	c, _ := newTestController(t, "P", "Q")

	if _, err := c.AddRelationships("P", models.RelFriendly, []string{"Q"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.AddRelationships("P", models.RelProfessional, []string{"Q"}); err != nil {
		t.Fatal(err)
	}

	snap := c.Snapshot()
	if len(snap.Relationships) != 1 || snap.Relationships[0].Type != models.RelProfessional {
		t.Errorf("expected a single professional edge, got %+v", snap.Relationships)
	}
	if len(snap.History) != 2 {
		t.Errorf("expected 2 history entries, got %d", len(snap.History))
	}
}

func TestController_DeleteHistoryEntryScenario(t *testing.T) {
	c, events := newTestController(t, "A", "B", "C")
	_, _ = c.AddRelationships("A", models.RelFriendly, []string{"B"})
	_, _ = c.AddRelationships("A", models.RelProfessional, []string{"C"})
	events.types = nil

	display := c.History()
	if display[0].Entry.PersonB != "C" || display[1].Entry.PersonB != "B" {
		t.Fatalf("unexpected display order %+v", display)
	}

	if err := c.RequestDeleteHistoryEntry(0); err != nil {
		t.Fatalf("RequestDeleteHistoryEntry: %v", err)
	}
	if idx, ok := c.PendingHistoryDeletion(); !ok || idx != 0 {
		t.Fatalf("PendingHistoryDeletion() = %d, %v", idx, ok)
	}

	res, err := c.ConfirmDeleteHistoryEntry()
	if err != nil {
		t.Fatalf("ConfirmDeleteHistoryEntry: %v", err)
	}
	if !res.EdgeRemoved || res.Entry.PersonB != "C" {
		t.Errorf("unexpected result %+v", res)
	}
	if _, ok := c.PendingHistoryDeletion(); ok {
		t.Error("expected idle after confirm")
	}

	want := []models.DisplayEntry{{Index: 0, Entry: models.HistoryEntry{PersonA: "A", Type: models.RelFriendly, PersonB: "B"}}}
	if got := c.History(); !reflect.DeepEqual(got, want) {
		t.Errorf("History() = %+v, want %+v", got, want)
	}
	snap := c.Snapshot()
	if len(snap.Relationships) != 1 || snap.Relationships[0].PersonB != "B" {
		t.Errorf("expected only A-B edge, got %+v", snap.Relationships)
	}
	if !slices.Equal(events.types, []string{EventRelationshipDeleted}) {
		t.Errorf("expected relationship.deleted event, got %v", events.types)
	}
}

func TestController_DeleteHistoryEntryToleratesMissingEdge(t *testing.T) {
	c, _ := newTestController(t, "P", "Q")
	_, _ = c.AddRelationships("P", models.RelFriendly, []string{"Q"})
	_, _ = c.AddRelationships("P", models.RelRomantic, []string{"Q"})

	// Deleting the newest entry removes the shared edge.
	_ = c.RequestDeleteHistoryEntry(0)
	if _, err := c.ConfirmDeleteHistoryEntry(); err != nil {
		t.Fatalf("first confirm: %v", err)
	}

	// The older entry now has no edge behind it.
	_ = c.RequestDeleteHistoryEntry(0)
	res, err := c.ConfirmDeleteHistoryEntry()
	if err != nil {
		t.Fatalf("second confirm: %v", err)
	}
	if res.EdgeRemoved {
		t.Error("expected EdgeRemoved=false for an already removed edge")
	}
	if len(c.History()) != 0 {
		t.Errorf("expected empty history, got %+v", c.History())
	}
}

func TestController_DeleteHistoryEntryStaleIndex(t *testing.T) {
	c, _ := newTestController(t, "A", "B")
	_, _ = c.AddRelationships("A", models.RelFriendly, []string{"B"})

	if err := c.RequestDeleteHistoryEntry(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange for negative index, got %v", err)
	}
	if _, ok := c.PendingHistoryDeletion(); ok {
		t.Fatal("expected rejected request to leave the machine idle")
	}

	_ = c.RequestDeleteHistoryEntry(3)
	before := c.Snapshot()
	if _, err := c.ConfirmDeleteHistoryEntry(); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if _, ok := c.PendingHistoryDeletion(); ok {
		t.Error("expected idle after failed confirm")
	}
	if !reflect.DeepEqual(before, c.Snapshot()) {
		t.Error("expected failed confirm to leave the network unchanged")
	}
}

func TestController_ConfirmWithoutRequest(t *testing.T) {
	c, _ := newTestController(t, "A")

	if _, err := c.ConfirmDeleteHistoryEntry(); !errors.Is(err, ErrNothingPending) {
		t.Errorf("expected ErrNothingPending, got %v", err)
	}
	if _, err := c.ConfirmDeletePerson(); !errors.Is(err, ErrNothingPending) {
		t.Errorf("expected ErrNothingPending, got %v", err)
	}
	if c.CancelDeleteHistoryEntry() || c.CancelDeletePerson() {
		t.Error("expected cancel on idle machines to return false")
	}
}

func TestController_DeletePersonScenario(t *testing.T) {
	c, events := newTestController(t, "A", "B", "C")
	_, _ = c.AddRelationships("A", models.RelFriendly, []string{"B", "C"})
	_, _ = c.AddRelationships("B", models.RelFamilial, []string{"C"})
	events.types = nil

	before := c.Snapshot()
	if err := c.RequestDeletePerson("B"); err != nil {
		t.Fatalf("RequestDeletePerson: %v", err)
	}
	if name, ok := c.PendingPersonDeletion(); !ok || name != "B" {
		t.Fatalf("PendingPersonDeletion() = %q, %v", name, ok)
	}
	if !c.CancelDeletePerson() {
		t.Fatal("expected cancel to report a pending deletion")
	}
	if !reflect.DeepEqual(before, c.Snapshot()) {
		t.Fatal("expected cancel to leave the network unchanged")
	}

	_ = c.RequestDeletePerson("B")
	res, err := c.ConfirmDeletePerson()
	if err != nil {
		t.Fatalf("ConfirmDeletePerson: %v", err)
	}
	if res.Name != "B" || res.EdgesRemoved != 2 || res.HistoryPurged != 2 {
		t.Errorf("unexpected result %+v", res)
	}

	snap := c.Snapshot()
	if slices.Contains(snap.People, "B") {
		t.Error("expected B to be removed")
	}
	for _, r := range snap.Relationships {
		if r.PersonA == "B" || r.PersonB == "B" {
			t.Errorf("edge %+v still references B", r)
		}
	}
	for _, d := range snap.History {
		if d.Entry.Mentions("B") {
			t.Errorf("history entry %+v still references B", d.Entry)
		}
	}
	if len(snap.Relationships) != 1 || len(snap.History) != 1 {
		t.Errorf("expected A-C to survive in graph and history, got %+v", snap)
	}
	if !slices.Equal(events.types, []string{EventDeletionCancelled, EventPersonDeleted}) {
		t.Errorf("unexpected events %v", events.types)
	}
}

func TestController_DeletePersonUnknown(t *testing.T) {
	c, _ := newTestController(t, "A")

	if err := c.RequestDeletePerson(""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank name, got %v", err)
	}

	_ = c.RequestDeletePerson("Zed")
	if _, err := c.ConfirmDeletePerson(); !errors.Is(err, ErrUnknownPerson) {
		t.Fatalf("expected ErrUnknownPerson, got %v", err)
	}
	if _, ok := c.PendingPersonDeletion(); ok {
		t.Error("expected machine reset to idle after failed confirm")
	}
}

func TestController_ReRequestOverwritesPendingTarget(t *testing.T) {
	c, _ := newTestController(t, "A", "B")

	_ = c.RequestDeletePerson("A")
	_ = c.RequestDeletePerson("B")
	res, err := c.ConfirmDeletePerson()
	if err != nil {
		t.Fatal(err)
	}
	if res.Name != "B" {
		t.Errorf("expected latest request to win, deleted %q", res.Name)
	}
	if !slices.Equal(c.People(), []string{"A"}) {
		t.Errorf("People() = %v", c.People())
	}
}

func TestController_FlowsAreIndependent(t *testing.T) {
	c, _ := newTestController(t, "A", "B")
	_, _ = c.AddRelationships("A", models.RelFriendly, []string{"B"})

	_ = c.RequestDeleteHistoryEntry(0)
	_ = c.RequestDeletePerson("A")
	c.CancelDeletePerson()

	if _, ok := c.PendingHistoryDeletion(); !ok {
		t.Error("cancelling person deletion must not touch the history flow")
	}
}

func TestController_EventSinkFailureDoesNotFailAction(t *testing.T) {
	events := &recordingEvents{err: errors.New("disk full")}
	c := NewNetworkController(WithEventLogger(events))

	if _, err := c.AddPerson("Alice"); err != nil {
		t.Fatalf("expected action to succeed despite event sink error, got %v", err)
	}
	if len(events.types) != 1 {
		t.Errorf("expected the event to be attempted once, got %d", len(events.types))
	}
}

func TestController_WithNetworkSharesState(t *testing.T) {
	n := NewNetwork()
	c := NewNetworkController(WithNetwork(n))
	_, _ = c.AddPerson("Alice")

	if !n.Graph.HasPerson("Alice") {
		t.Error("expected controller to mutate the supplied network")
	}
}
