package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/valter-silva-au/reseau/internal/core"
	"github.com/valter-silva-au/reseau/internal/render"
	"github.com/valter-silva-au/reseau/pkg/models"
)

// --- splitCommandLine unit tests ---

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"plain words", "person Alice", []string{"person", "Alice"}, false},
		{"extra spaces", "  relate  Alice\tfriendly Bob ", []string{"relate", "Alice", "friendly", "Bob"}, false},
		{"double quotes", `person "Mary Ann"`, []string{"person", "Mary Ann"}, false},
		{"single quotes", `person 'O"Neil'`, []string{"person", `O"Neil`}, false},
		{"escaped quote", `person "Jo \"JJ\" Smith"`, []string{"person", `Jo "JJ" Smith`}, false},
		{"empty quoted word", `person ""`, []string{"person", ""}, false},
		{"unterminated", `person "Mary`, nil, true},
		{"trailing backslash", `person Mary\`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := splitCommandLine(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("splitCommandLine(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !slices.Equal(got, tt.want) {
				t.Errorf("splitCommandLine(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// --- scriptSession tests ---

func runTestScript(t *testing.T, script string, keepGoing bool) (core.NetworkController, string, string, error) {
	t.Helper()
	ctrl := core.NewNetworkController()
	var out, errOut bytes.Buffer
	s := newScriptSession(ctrl, &out, models.DefaultTypeColors())
	err := s.run(strings.NewReader(script), &errOut, keepGoing)
	return ctrl, out.String(), errOut.String(), err
}

func TestScript_BuildNetwork(t *testing.T) {
	script := `
# the usual suspects
person Alice
person Bob
person "Carol Ann"
relate Alice friendly Bob, "Carol Ann", Alice
relate Bob familial "Carol Ann"
`
	ctrl, out, _, err := runTestScript(t, script, false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := ctrl.People(); !slices.Equal(got, []string{"Alice", "Bob", "Carol Ann"}) {
		t.Errorf("People() = %v", got)
	}
	if n := len(ctrl.History()); n != 3 {
		t.Errorf("expected 3 history entries, got %d", n)
	}
	if !strings.Contains(out, "Alice: 2 friendly relationship added (1 self reference skipped).") {
		t.Errorf("missing batch summary in output:\n%s", out)
	}
}

func TestScript_DuplicatePerson(t *testing.T) {
	_, out, _, err := runTestScript(t, "person Alice\nperson Alice\n", false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "Alice is already in the network.") {
		t.Errorf("expected duplicate notice, got:\n%s", out)
	}
}

func TestScript_DeleteEntryConfirm(t *testing.T) {
	script := `person Alice
person Bob
person Carol
relate Alice friendly Bob
relate Alice professional Carol
delete-entry 0
confirm
`
	ctrl, out, _, err := runTestScript(t, script, false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, ok := ctrl.PendingHistoryDeletion(); ok {
		t.Error("expected no pending deletion after confirm")
	}
	hist := ctrl.History()
	if len(hist) != 1 || hist[0].Entry.PersonB != "Bob" {
		t.Errorf("expected only Alice-Bob to remain, got %+v", hist)
	}
	if !strings.Contains(out, "Deleted: Alice is in a professional relationship with Carol.") {
		t.Errorf("expected deletion message, got:\n%s", out)
	}
}

func TestScript_DeletePersonCancelThenConfirm(t *testing.T) {
	script := `person Alice
person Bob
relate Alice romantic Bob
delete-person Bob
cancel
delete-person Bob
confirm person
`
	ctrl, out, _, err := runTestScript(t, script, false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := ctrl.People(); !slices.Equal(got, []string{"Alice"}) {
		t.Errorf("People() = %v, want [Alice]", got)
	}
	if len(ctrl.History()) != 0 {
		t.Error("expected history to be purged")
	}
	if !strings.Contains(out, "Deletion cancelled.") {
		t.Errorf("expected cancel message, got:\n%s", out)
	}
}

func TestScript_ConfirmNothingPending(t *testing.T) {
	_, _, _, err := runTestScript(t, "confirm\n", false)
	if !errors.Is(err, core.ErrNothingPending) {
		t.Fatalf("expected ErrNothingPending, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 1") {
		t.Errorf("expected line number in error, got %v", err)
	}
}

func TestScript_CancelNothingPending(t *testing.T) {
	_, out, _, err := runTestScript(t, "cancel\n", false)
	if err != nil {
		t.Fatalf("cancel with nothing pending should not fail: %v", err)
	}
	if !strings.Contains(out, "Nothing to cancel.") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestScript_StopsAtFirstError(t *testing.T) {
	ctrl, _, _, err := runTestScript(t, "person Alice\nrelate Alice friendly Zed\nperson Bob\n", false)
	if !errors.Is(err, core.ErrUnknownPerson) {
		t.Fatalf("expected ErrUnknownPerson, got %v", err)
	}
	if slices.Contains(ctrl.People(), "Bob") {
		t.Error("lines after a failure must not run")
	}
}

func TestScript_KeepGoing(t *testing.T) {
	script := "person Alice\nfrobnicate\nrelate Alice rival Alice\nperson Bob\n"
	ctrl, _, errOut, err := runTestScript(t, script, true)
	if err == nil || !strings.Contains(err.Error(), "2 line(s) failed") {
		t.Fatalf("expected 2 failures, got %v", err)
	}
	if !strings.Contains(errOut, "line 2: unknown command") {
		t.Errorf("expected unknown command report, got:\n%s", errOut)
	}
	if !strings.Contains(errOut, "line 3:") {
		t.Errorf("expected bad type report, got:\n%s", errOut)
	}
	if !slices.Contains(ctrl.People(), "Bob") {
		t.Error("expected later lines to run with keep-going")
	}
}

func TestScript_InvalidIndex(t *testing.T) {
	_, _, _, err := runTestScript(t, "delete-entry two\n", false)
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	_, _, _, err = runTestScript(t, "delete-entry -1\n", false)
	if !errors.Is(err, core.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestScript_PrintCommands(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = orig }()

	script := `history
person Alice
person Bob
relate Alice acquaintance Bob
people
edges
history
render dot
`
	_, out, _, err := runTestScript(t, script, false)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{
		"No relationship has been added yet.",
		"Alice -- acquaintance -- Bob",
		"[0] Alice is in a acquaintanceship with Bob.",
		"graph reseau {",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// --- scriptCmd tests ---

func TestScriptCmd_NilController(t *testing.T) {
	orig := Controller
	defer func() { Controller = orig }()
	Controller = nil

	err := scriptCmd.RunE(scriptCmd, []string{})
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("expected not initialized error, got %v", err)
	}
}

func TestScriptCmd_FromFile(t *testing.T) {
	origCtrl, origFormat := Controller, scriptFormat
	defer func() {
		Controller = origCtrl
		scriptFormat = origFormat
		scriptCmd.SetOut(nil)
	}()
	Controller = core.NewNetworkController()
	scriptFormat = render.FormatYAML

	path := filepath.Join(t.TempDir(), "network.txt")
	content := "person Alice\nperson Bob\nrelate Alice familial Bob\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	scriptCmd.SetOut(&out)
	if err := scriptCmd.RunE(scriptCmd, []string{path}); err != nil {
		t.Fatalf("RunE: %v", err)
	}
	if !strings.Contains(out.String(), "type: familial") {
		t.Errorf("expected YAML render at the end, got:\n%s", out.String())
	}
}

func TestScriptCmd_InvalidFormat(t *testing.T) {
	origCtrl, origFormat := Controller, scriptFormat
	defer func() {
		Controller = origCtrl
		scriptFormat = origFormat
	}()
	Controller = core.NewNetworkController()
	scriptFormat = "svg"

	err := scriptCmd.RunE(scriptCmd, []string{})
	if err == nil || !strings.Contains(err.Error(), "invalid --format") {
		t.Fatalf("expected invalid format error, got %v", err)
	}
}

func TestScriptCmd_MissingFile(t *testing.T) {
	orig := Controller
	defer func() { Controller = orig }()
	Controller = core.NewNetworkController()

	err := scriptCmd.RunE(scriptCmd, []string{filepath.Join(t.TempDir(), "missing.txt")})
	if err == nil || !strings.Contains(err.Error(), "opening script") {
		t.Fatalf("expected open error, got %v", err)
	}
}
