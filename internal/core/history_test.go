package core

import (
	"errors"
	"testing"

	"github.com/valter-silva-au/reseau/pkg/models"
)

func TestRelationHistory_DisplayIsMostRecentFirst(t *testing.T) {
	h := NewRelationHistory()
	h.Append("A", models.RelFriendly, "B")
	h.Append("A", models.RelProfessional, "C")

	got := h.Display()
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	want := []models.DisplayEntry{
		{Index: 0, Entry: models.HistoryEntry{PersonA: "A", Type: models.RelProfessional, PersonB: "C"}},
		{Index: 1, Entry: models.HistoryEntry{PersonA: "A", Type: models.RelFriendly, PersonB: "B"}},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Display()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRelationHistory_RemoveAt(t *testing.T) {
	h := NewRelationHistory()
	h.Append("A", models.RelFriendly, "B")
	h.Append("A", models.RelProfessional, "C")
	h.Append("B", models.RelFamilial, "C")

	removed, err := h.RemoveAt(1)
	if err != nil {
		t.Fatalf("RemoveAt: %v", err)
	}
	if removed.Type != models.RelProfessional {
		t.Errorf("expected to remove the professional entry, got %+v", removed)
	}

	display := h.Display()
	if len(display) != 2 {
		t.Fatalf("expected 2 entries left, got %d", len(display))
	}
	if display[0].Entry.Type != models.RelFamilial || display[1].Entry.Type != models.RelFriendly {
		t.Errorf("unexpected remaining order: %+v", display)
	}
}

func TestRelationHistory_RemoveAtOutOfRange(t *testing.T) {
	h := NewRelationHistory()
	h.Append("A", models.RelFriendly, "B")

	for _, idx := range []int{-1, 1, 5} {
		if _, err := h.RemoveAt(idx); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("RemoveAt(%d): expected ErrIndexOutOfRange, got %v", idx, err)
		}
	}
	if h.Len() != 1 {
		t.Errorf("expected history unchanged, got %d entries", h.Len())
	}
}

func TestRelationHistory_PurgePerson(t *testing.T) {
	h := NewRelationHistory()
	h.Append("A", models.RelFriendly, "B")
	h.Append("C", models.RelRomantic, "B")
	h.Append("A", models.RelProfessional, "C")
	h.Append("A", models.RelAcquaintance, "B")

	if n := h.PurgePerson("B"); n != 3 {
		t.Errorf("expected 3 entries purged, got %d", n)
	}
	display := h.Display()
	if len(display) != 1 || display[0].Entry.PersonB != "C" {
		t.Errorf("expected only A-C to remain, got %+v", display)
	}
	if n := h.PurgePerson("Zed"); n != 0 {
		t.Errorf("expected nothing purged for unknown name, got %d", n)
	}
}

func TestRelationHistory_At(t *testing.T) {
	h := NewRelationHistory()
	if _, err := h.At(0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange on empty history, got %v", err)
	}
	h.Append("A", models.RelFriendly, "B")
	e, err := h.At(0)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if e.PersonA != "A" || e.PersonB != "B" {
		t.Errorf("unexpected entry %+v", e)
	}
}
