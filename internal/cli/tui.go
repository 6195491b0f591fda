package cli

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/reseau/internal/core"
	"github.com/valter-silva-au/reseau/internal/render"
	"github.com/valter-silva-au/reseau/pkg/models"
)

// Browse panels.
const (
	panelGraph = iota
	panelHistory
	panelCount
)

// tuiMode is what the keyboard is currently driving.
type tuiMode int

const (
	modeBrowse tuiMode = iota
	modeAddPerson
	modeRelSource
	modeRelType
	modeRelTargets
	modeDeletePerson
	modeConfirmEntry
	modeConfirmPerson
)

type tuiModel struct {
	ctrl   core.NetworkController
	colors map[models.RelationshipType]string

	width  int
	height int

	mode        tuiMode
	activePanel int

	peopleCursor  int
	historyCursor int

	// Form state.
	input        string
	relSource    string
	relType      models.RelationshipType
	typeCursor   int
	targets      []string
	targetCursor int
	selected     map[string]bool

	status string
	err    error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	nodeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("0")).
			Padding(0, 1)

	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Strikethrough(true)
)

func newTUIModel(ctrl core.NetworkController, colors map[models.RelationshipType]string) tuiModel {
	if colors == nil {
		colors = models.DefaultTypeColors()
	}
	return tuiModel{
		ctrl:        ctrl,
		colors:      colors,
		activePanel: panelGraph,
		selected:    make(map[string]bool),
	}
}

func (m tuiModel) Init() tea.Cmd {
	return nil
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case modeBrowse:
			return m.updateBrowse(msg)
		case modeAddPerson:
			return m.updateAddPerson(msg), nil
		case modeRelSource, modeDeletePerson:
			return m.updatePersonPicker(msg), nil
		case modeRelType:
			return m.updateTypePicker(msg), nil
		case modeRelTargets:
			return m.updateTargetPicker(msg), nil
		case modeConfirmEntry, modeConfirmPerson:
			return m.updateConfirm(msg), nil
		}
	}

	return m, nil
}

func (m tuiModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "tab":
		m.activePanel = (m.activePanel + 1) % panelCount
	case "shift+tab":
		m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
	case "up", "k":
		if m.activePanel == panelHistory {
			m.historyCursor = max(m.historyCursor-1, 0)
		} else {
			m.peopleCursor = max(m.peopleCursor-1, 0)
		}
	case "down", "j":
		if m.activePanel == panelHistory {
			m.historyCursor = min(m.historyCursor+1, max(len(m.ctrl.History())-1, 0))
		} else {
			m.peopleCursor = min(m.peopleCursor+1, max(len(m.ctrl.People())-1, 0))
		}
	case "a":
		m.mode = modeAddPerson
		m.input = ""
		m.clearMessages()
	case "r":
		if len(m.ctrl.People()) < 2 {
			m.setError(errors.New("add at least two people before relating them"))
			break
		}
		m.mode = modeRelSource
		m.peopleCursor = 0
		m.clearMessages()
	case "x":
		if len(m.ctrl.People()) == 0 {
			m.setError(errors.New("there is nobody to delete"))
			break
		}
		m.mode = modeDeletePerson
		m.clearMessages()
	case "d":
		if m.activePanel != panelHistory {
			break
		}
		m.clearMessages()
		if len(m.ctrl.History()) == 0 {
			m.setError(errors.New("no relationship has been added yet"))
			break
		}
		if err := m.ctrl.RequestDeleteHistoryEntry(m.historyCursor); err != nil {
			m.setError(err)
			break
		}
		m.mode = modeConfirmEntry
	}
	return m, nil
}

func (m tuiModel) updateAddPerson(msg tea.KeyMsg) tuiModel {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input = ""
	case tea.KeyEnter:
		res, err := m.ctrl.AddPerson(m.input)
		if err != nil {
			m.setError(err)
			return m
		}
		if res.Created {
			m.setStatus(fmt.Sprintf("Added %s.", res.Name))
		} else {
			m.setStatus(fmt.Sprintf("%s is already in the network.", res.Name))
		}
		m.mode = modeBrowse
		m.input = ""
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m
}

// updatePersonPicker drives both the relationship source picker and the
// delete-person picker.
func (m tuiModel) updatePersonPicker(msg tea.KeyMsg) tuiModel {
	people := m.ctrl.People()
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
	case "up", "k":
		m.peopleCursor = max(m.peopleCursor-1, 0)
	case "down", "j":
		m.peopleCursor = min(m.peopleCursor+1, max(len(people)-1, 0))
	case "enter":
		if m.peopleCursor >= len(people) {
			m.mode = modeBrowse
			return m
		}
		name := people[m.peopleCursor]
		if m.mode == modeDeletePerson {
			if err := m.ctrl.RequestDeletePerson(name); err != nil {
				m.setError(err)
				m.mode = modeBrowse
				return m
			}
			m.mode = modeConfirmPerson
			return m
		}
		m.relSource = name
		m.typeCursor = 0
		m.mode = modeRelType
	}
	return m
}

func (m tuiModel) updateTypePicker(msg tea.KeyMsg) tuiModel {
	types := models.AllRelationshipTypes()
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
	case "up", "k":
		m.typeCursor = max(m.typeCursor-1, 0)
	case "down", "j":
		m.typeCursor = min(m.typeCursor+1, len(types)-1)
	case "enter":
		m.relType = types[m.typeCursor]
		m.targets = nil
		for _, p := range m.ctrl.People() {
			if p != m.relSource {
				m.targets = append(m.targets, p)
			}
		}
		m.targetCursor = 0
		m.selected = make(map[string]bool)
		m.mode = modeRelTargets
	}
	return m
}

func (m tuiModel) updateTargetPicker(msg tea.KeyMsg) tuiModel {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
	case "up", "k":
		m.targetCursor = max(m.targetCursor-1, 0)
	case "down", "j":
		m.targetCursor = min(m.targetCursor+1, max(len(m.targets)-1, 0))
	case " ", "space":
		if m.targetCursor < len(m.targets) {
			name := m.targets[m.targetCursor]
			m.selected[name] = !m.selected[name]
		}
	case "enter":
		var chosen []string
		for _, t := range m.targets {
			if m.selected[t] {
				chosen = append(chosen, t)
			}
		}
		res, err := m.ctrl.AddRelationships(m.relSource, m.relType, chosen)
		if err != nil {
			m.setError(err)
			if len(chosen) == 0 {
				// Stay in the picker so the user can select someone.
				return m
			}
			m.mode = modeBrowse
			return m
		}
		m.setStatus(fmt.Sprintf("%s: %d %s added.", res.Source, res.Added, res.Type.Label()))
		m.mode = modeBrowse
		m.historyCursor = 0
	}
	return m
}

func (m tuiModel) updateConfirm(msg tea.KeyMsg) tuiModel {
	switch msg.String() {
	case "y", "Y":
		if m.mode == modeConfirmEntry {
			res, err := m.ctrl.ConfirmDeleteHistoryEntry()
			if err != nil {
				m.setError(err)
			} else {
				m.setStatus("Deleted: " + render.HistoryLine(res.Entry))
			}
		} else {
			res, err := m.ctrl.ConfirmDeletePerson()
			if err != nil {
				m.setError(err)
			} else {
				m.setStatus(fmt.Sprintf("Deleted %s and %d relationship(s).", res.Name, res.EdgesRemoved))
			}
		}
		m.mode = modeBrowse
		m.clampCursors()
	case "n", "N", "esc":
		if m.mode == modeConfirmEntry {
			m.ctrl.CancelDeleteHistoryEntry()
		} else {
			m.ctrl.CancelDeletePerson()
		}
		m.setStatus("Deletion cancelled.")
		m.mode = modeBrowse
	}
	return m
}

func (m *tuiModel) clampCursors() {
	m.historyCursor = min(m.historyCursor, max(len(m.ctrl.History())-1, 0))
	m.peopleCursor = min(m.peopleCursor, max(len(m.ctrl.People())-1, 0))
}

func (m *tuiModel) setStatus(s string) {
	m.status = s
	m.err = nil
}

func (m *tuiModel) setError(err error) {
	m.err = err
	m.status = ""
}

func (m *tuiModel) clearMessages() {
	m.status = ""
	m.err = nil
}

func (m tuiModel) View() string {
	title := titleStyle.Render(" Reseau ")

	graphPanel := m.renderGraphPanel()
	historyPanel := m.renderHistoryPanel()

	width := m.width
	if width == 0 {
		width = 100
	}
	availableWidth := width - 2

	var body string
	if availableWidth > 90 {
		colWidth := availableWidth / 2
		graphPanel = m.applyPanelStyle(panelGraph, graphPanel, colWidth-4)
		historyPanel = m.applyPanelStyle(panelHistory, historyPanel, colWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, graphPanel, historyPanel)
	} else {
		panelWidth := max(availableWidth-4, 20)
		graphPanel = m.applyPanelStyle(panelGraph, graphPanel, panelWidth)
		historyPanel = m.applyPanelStyle(panelHistory, historyPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, graphPanel, historyPanel)
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	b.WriteString(body)
	b.WriteString("\n\n")
	if form := m.renderForm(); form != "" {
		b.WriteString(form)
		b.WriteString("\n\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.helpLine()))
	return b.String()
}

func (m tuiModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel && m.mode == modeBrowse {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m tuiModel) typeStyle(t models.RelationshipType) lipgloss.Style {
	c := render.TerminalColor(render.ColorFor(m.colors, t))
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Bold(true)
}

func (m tuiModel) renderGraphPanel() string {
	var b strings.Builder
	people := m.ctrl.People()
	b.WriteString(headerStyle.Render(fmt.Sprintf("Network (%d people)", len(people))))
	b.WriteString("\n")

	if len(people) == 0 {
		b.WriteString(dimStyle.Render("  Press a to add someone."))
		return b.String()
	}

	pendingPerson, personPending := m.ctrl.PendingPersonDeletion()
	for i, p := range people {
		cursor := "  "
		if m.activePanel == panelGraph && m.mode == modeBrowse && i == m.peopleCursor {
			cursor = cursorStyle.Render("> ")
		}
		node := nodeStyle.Render(p)
		if personPending && p == pendingPerson {
			node = pendingStyle.Render(p)
		}
		b.WriteString(fmt.Sprintf("%s%s", cursor, node))

		var links []string
		for _, n := range m.ctrl.Neighbors(p) {
			if rel, ok := m.relationship(p, n); ok {
				links = append(links, m.typeStyle(rel).Render("--")+" "+n)
			}
		}
		if len(links) > 0 {
			b.WriteString(" " + strings.Join(links, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	var legend []string
	for _, t := range models.AllRelationshipTypes() {
		legend = append(legend, m.typeStyle(t).Render(string(t)))
	}
	b.WriteString("  " + strings.Join(legend, " "))

	return b.String()
}

// relationship looks up the type of the edge between a and b.
func (m tuiModel) relationship(a, b string) (models.RelationshipType, bool) {
	for r := range m.ctrl.Edges() {
		if (r.PersonA == a && r.PersonB == b) || (r.PersonA == b && r.PersonB == a) {
			return r.Type, true
		}
	}
	return "", false
}

func (m tuiModel) renderHistoryPanel() string {
	var b strings.Builder
	entries := m.ctrl.History()
	b.WriteString(headerStyle.Render(fmt.Sprintf("History (%d)", len(entries))))
	b.WriteString("\n")

	if len(entries) == 0 {
		b.WriteString(dimStyle.Render("  No relationship has been added yet."))
		return b.String()
	}

	pendingIdx, entryPending := m.ctrl.PendingHistoryDeletion()
	for _, d := range entries {
		cursor := "  "
		if m.activePanel == panelHistory && d.Index == m.historyCursor {
			cursor = cursorStyle.Render("> ")
		}
		line := fmt.Sprintf("%s is in a %s with %s.",
			d.Entry.PersonA, m.typeStyle(d.Entry.Type).Render(d.Entry.Type.Label()), d.Entry.PersonB)
		if entryPending && d.Index == pendingIdx {
			line = pendingStyle.Render(render.HistoryLine(d.Entry))
		}
		b.WriteString(cursor + line + "\n")
	}

	return b.String()
}

func (m tuiModel) renderForm() string {
	var b strings.Builder
	switch m.mode {
	case modeAddPerson:
		b.WriteString(promptStyle.Render("Name: "))
		b.WriteString(m.input + "_")
	case modeRelSource, modeDeletePerson:
		prompt := "Relate who?"
		if m.mode == modeDeletePerson {
			prompt = "Delete who?"
		}
		b.WriteString(promptStyle.Render(prompt) + "\n")
		for i, p := range m.ctrl.People() {
			b.WriteString(pickerLine(i == m.peopleCursor, p) + "\n")
		}
	case modeRelType:
		b.WriteString(promptStyle.Render(fmt.Sprintf("%s is in a...", m.relSource)) + "\n")
		for i, t := range models.AllRelationshipTypes() {
			b.WriteString(pickerLine(i == m.typeCursor, m.typeStyle(t).Render(t.Label())) + "\n")
		}
	case modeRelTargets:
		b.WriteString(promptStyle.Render(fmt.Sprintf("%s is in a %s with...", m.relSource, m.relType.Label())) + "\n")
		for i, p := range m.targets {
			box := "[ ]"
			if m.selected[p] {
				box = "[x]"
			}
			b.WriteString(pickerLine(i == m.targetCursor, box+" "+p) + "\n")
		}
	case modeConfirmEntry:
		idx, _ := m.ctrl.PendingHistoryDeletion()
		line := fmt.Sprintf("entry %d", idx)
		if e, ok := m.historyAt(idx); ok {
			line = render.HistoryLine(e)
		}
		b.WriteString(promptStyle.Render("Delete this relationship? ") + line + " (y/n)")
	case modeConfirmPerson:
		name, _ := m.ctrl.PendingPersonDeletion()
		b.WriteString(promptStyle.Render(fmt.Sprintf("Are you sure you want to delete %s?", name)) + " (y/n)")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m tuiModel) historyAt(idx int) (models.HistoryEntry, bool) {
	for _, d := range m.ctrl.History() {
		if d.Index == idx {
			return d.Entry, true
		}
	}
	return models.HistoryEntry{}, false
}

func pickerLine(active bool, text string) string {
	if active {
		return cursorStyle.Render("> ") + text
	}
	return "  " + text
}

func (m tuiModel) helpLine() string {
	switch m.mode {
	case modeAddPerson:
		return "enter: add | esc: back"
	case modeRelSource, modeRelType, modeDeletePerson:
		return "up/down: move | enter: choose | esc: back"
	case modeRelTargets:
		return "up/down: move | space: toggle | enter: add | esc: back"
	case modeConfirmEntry, modeConfirmPerson:
		return "y: confirm | n: cancel"
	default:
		return "a: add person | r: relate | x: delete person | d: delete history entry | tab: switch panel | q: quit"
	}
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Edit a relationship network interactively",
	Long: `Launch an interactive terminal editor for a fresh network.

The left panel shows everyone in the network with their relationships,
coloured by type. The right panel lists the history of relationships added,
most recent first. Select an entry and press d to delete it; deletions always
ask for confirmation. The network is discarded on exit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Controller == nil {
			return fmt.Errorf("network controller not initialized")
		}
		p := tea.NewProgram(newTUIModel(Controller, TypeColors), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
