package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/reseau/internal/core"
	"github.com/valter-silva-au/reseau/internal/render"
	"github.com/valter-silva-au/reseau/pkg/models"
)

var (
	scriptFormat    string
	scriptNoRender  bool
	scriptKeepGoing bool
)

var scriptCmd = &cobra.Command{
	Use:   "script [file]",
	Short: "Run a file of network commands and render the result",
	Long: `Read commands line by line from a file (or stdin when no file is given),
apply them to a fresh network and render the network at the end.

Commands:
  person <name>                      add a person
  relate <a> <type> <b>[, <c>...]    relate a to one or more people
  delete-entry <index>               request deletion of a history entry (0 = most recent)
  delete-person <name>               request deletion of a person
  confirm [entry|person]             confirm the last (or named) pending deletion
  cancel [entry|person]              cancel the last (or named) pending deletion
  people | edges | history           print part of the network
  render [text|dot|yaml]             print the whole network

Names containing spaces can be quoted: person "Mary Ann". Blank lines and
lines starting with # are ignored.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Controller == nil {
			return fmt.Errorf("network controller not initialized")
		}

		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening script: %w", err)
			}
			defer f.Close()
			in = f
		}

		format := scriptFormat
		if format == "" {
			format = DefaultFormat
		}
		if !slices.Contains(render.Formats(), format) {
			return fmt.Errorf("invalid --format %q (want text, dot or yaml)", format)
		}

		s := newScriptSession(Controller, cmd.OutOrStdout(), TypeColors)
		if err := s.run(in, cmd.ErrOrStderr(), scriptKeepGoing); err != nil {
			return err
		}
		if scriptNoRender {
			return nil
		}
		return render.Render(cmd.OutOrStdout(), format, Controller.Snapshot(), TypeColors)
	},
}

func init() {
	scriptCmd.Flags().StringVarP(&scriptFormat, "format", "f", "", "Final render format: text, dot or yaml (default from config)")
	scriptCmd.Flags().BoolVar(&scriptNoRender, "no-render", false, "Do not render the network after the last command")
	scriptCmd.Flags().BoolVarP(&scriptKeepGoing, "keep-going", "k", false, "Report failing lines and continue instead of stopping")
	rootCmd.AddCommand(scriptCmd)
}

// Deletion flows a bare confirm or cancel can refer to.
const (
	flowEntry  = "entry"
	flowPerson = "person"
)

// scriptSession interprets script commands against one controller.
type scriptSession struct {
	ctrl   core.NetworkController
	out    io.Writer
	colors map[models.RelationshipType]string

	// lastFlow is the deletion flow most recently requested.
	lastFlow string
}

func newScriptSession(ctrl core.NetworkController, out io.Writer, colors map[models.RelationshipType]string) *scriptSession {
	return &scriptSession{ctrl: ctrl, out: out, colors: colors}
}

// run executes every line of r. It stops at the first failing line unless
// keepGoing is set, in which case failures are reported on errOut and
// counted.
func (s *scriptSession) run(r io.Reader, errOut io.Writer, keepGoing bool) error {
	scanner := bufio.NewScanner(r)
	lineNo, failed := 0, 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		args, err := splitCommandLine(line)
		if err == nil {
			err = s.exec(args)
		}
		if err != nil {
			if !keepGoing {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			fmt.Fprintf(errOut, "line %d: %s\n", lineNo, err)
			failed++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d line(s) failed", failed)
	}
	return nil
}

// exec runs a single tokenised command.
func (s *scriptSession) exec(args []string) error {
	if len(args) == 0 {
		return nil
	}
	cmd, rest := strings.ToLower(args[0]), args[1:]

	switch cmd {
	case "person", "add-person":
		return s.addPerson(strings.Join(rest, " "))
	case "relate":
		return s.relate(rest)
	case "delete-entry":
		return s.requestEntryDeletion(rest)
	case "delete-person":
		return s.requestPersonDeletion(strings.Join(rest, " "))
	case "confirm":
		return s.confirm(rest)
	case "cancel":
		return s.cancel(rest)
	case "people":
		return s.printPeople()
	case "edges":
		return s.printEdges()
	case "history":
		return s.printHistory()
	case "render":
		format := DefaultFormat
		if len(rest) > 0 {
			format = strings.ToLower(rest[0])
		}
		return render.Render(s.out, format, s.ctrl.Snapshot(), s.colors)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (s *scriptSession) addPerson(name string) error {
	res, err := s.ctrl.AddPerson(name)
	if err != nil {
		return err
	}
	if res.Created {
		fmt.Fprintf(s.out, "Added %s.\n", res.Name)
	} else {
		fmt.Fprintf(s.out, "%s is already in the network.\n", res.Name)
	}
	return nil
}

func (s *scriptSession) relate(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: relate <a> <type> <b>[, <c>...]: %w", core.ErrValidation)
	}
	relType, ok := models.ParseRelationshipType(args[1])
	if !ok {
		return fmt.Errorf("unknown relationship type %q: %w", args[1], core.ErrValidation)
	}

	var targets []string
	for _, part := range strings.Split(strings.Join(args[2:], " "), ",") {
		if t := strings.TrimSpace(part); t != "" {
			targets = append(targets, t)
		}
	}

	res, err := s.ctrl.AddRelationships(args[0], relType, targets)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s: %d %s added", res.Source, res.Added, res.Type.Label())
	if res.SkippedSelf > 0 {
		fmt.Fprintf(s.out, " (%d self reference skipped)", res.SkippedSelf)
	}
	fmt.Fprintln(s.out, ".")
	return nil
}

func (s *scriptSession) requestEntryDeletion(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete-entry <index>: %w", core.ErrValidation)
	}
	idx, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid index %q: %w", args[0], core.ErrValidation)
	}
	if err := s.ctrl.RequestDeleteHistoryEntry(idx); err != nil {
		return err
	}
	s.lastFlow = flowEntry
	fmt.Fprintf(s.out, "History entry %d marked for deletion. Confirm or cancel.\n", idx)
	return nil
}

func (s *scriptSession) requestPersonDeletion(name string) error {
	if err := s.ctrl.RequestDeletePerson(name); err != nil {
		return err
	}
	s.lastFlow = flowPerson
	pending, _ := s.ctrl.PendingPersonDeletion()
	fmt.Fprintf(s.out, "Are you sure you want to delete %s? Confirm or cancel.\n", pending)
	return nil
}

// flowFor picks the deletion flow a confirm or cancel applies to.
func (s *scriptSession) flowFor(args []string) (string, error) {
	if len(args) == 0 {
		if s.lastFlow == "" {
			return "", core.ErrNothingPending
		}
		return s.lastFlow, nil
	}
	switch strings.ToLower(args[0]) {
	case flowEntry, "entry-deletion", "history":
		return flowEntry, nil
	case flowPerson:
		return flowPerson, nil
	default:
		return "", fmt.Errorf("unknown deletion %q (want entry or person): %w", args[0], core.ErrValidation)
	}
}

func (s *scriptSession) confirm(args []string) error {
	flow, err := s.flowFor(args)
	if err != nil {
		return err
	}
	if flow == s.lastFlow {
		s.lastFlow = ""
	}

	if flow == flowEntry {
		res, err := s.ctrl.ConfirmDeleteHistoryEntry()
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Deleted: %s\n", render.HistoryLine(res.Entry))
		return nil
	}

	res, err := s.ctrl.ConfirmDeletePerson()
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Deleted %s (%d relationship(s), %d history entr(ies)).\n",
		res.Name, res.EdgesRemoved, res.HistoryPurged)
	return nil
}

func (s *scriptSession) cancel(args []string) error {
	flow, err := s.flowFor(args)
	if err != nil {
		if errors.Is(err, core.ErrNothingPending) {
			fmt.Fprintln(s.out, "Nothing to cancel.")
			return nil
		}
		return err
	}
	if flow == s.lastFlow {
		s.lastFlow = ""
	}

	var cancelled bool
	if flow == flowEntry {
		cancelled = s.ctrl.CancelDeleteHistoryEntry()
	} else {
		cancelled = s.ctrl.CancelDeletePerson()
	}
	if cancelled {
		fmt.Fprintln(s.out, "Deletion cancelled.")
	} else {
		fmt.Fprintln(s.out, "Nothing to cancel.")
	}
	return nil
}

func (s *scriptSession) printPeople() error {
	for _, p := range s.ctrl.People() {
		fmt.Fprintln(s.out, p)
	}
	return nil
}

func (s *scriptSession) printEdges() error {
	for r := range s.ctrl.Edges() {
		fmt.Fprintf(s.out, "%s -- %s -- %s\n", r.PersonA, r.Type, r.PersonB)
	}
	return nil
}

func (s *scriptSession) printHistory() error {
	entries := s.ctrl.History()
	if len(entries) == 0 {
		fmt.Fprintln(s.out, "No relationship has been added yet.")
		return nil
	}
	for _, d := range entries {
		fmt.Fprintf(s.out, "[%d] %s\n", d.Index, render.HistoryLine(d.Entry))
	}
	return nil
}

// splitCommandLine splits a line into words. Single or double quotes group
// words containing spaces, and a backslash escapes the next character inside
// double quotes or bare words.
func splitCommandLine(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote: %w", quote, core.ErrValidation)
	}
	if escaped {
		return nil, fmt.Errorf("trailing backslash: %w", core.ErrValidation)
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args, nil
}
