// Package mcp provides an MCP (Model Context Protocol) server that exposes a
// reseau session as MCP tools, so an assistant can build and edit the
// relationship network on a user's behalf.
package mcp

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/reseau/internal/core"
	"github.com/valter-silva-au/reseau/internal/observability"
	"github.com/valter-silva-au/reseau/internal/render"
	"github.com/valter-silva-au/reseau/pkg/models"
)

// Server wraps one network session and exposes it as MCP tools.
type Server struct {
	server      *gomcp.Server
	metricsCalc observability.MetricsCalculator
	colors      map[models.RelationshipType]string

	// mu serialises tool calls; the controller has a single owner.
	mu   sync.Mutex
	ctrl core.NetworkController
}

// NewServer creates a new MCP server over ctrl. metricsCalc may be nil if the
// event log is disabled; colors may be nil to use the default table.
func NewServer(ctrl core.NetworkController, metricsCalc observability.MetricsCalculator, colors map[models.RelationshipType]string, version string) *Server {
	if version == "" {
		version = "dev"
	}
	if colors == nil {
		colors = models.DefaultTypeColors()
	}

	s := &Server{
		ctrl:        ctrl,
		metricsCalc: metricsCalc,
		colors:      colors,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "reseau", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type addPersonInput struct {
	Name string `json:"name" jsonschema:"required,the person's name; surrounding whitespace is ignored"`
}

type addPersonOutput struct {
	Name    string `json:"name"`
	Created bool   `json:"created"`
	Message string `json:"message"`
}

type addRelationshipsInput struct {
	Source  string   `json:"source" jsonschema:"required,the person the relationships start from"`
	Type    string   `json:"type" jsonschema:"required,relationship type (friendly, professional, familial, romantic, acquaintance)"`
	Targets []string `json:"targets" jsonschema:"required,the people to relate to the source"`
}

type addRelationshipsOutput struct {
	Source      string `json:"source"`
	Type        string `json:"type"`
	Added       int    `json:"added"`
	SkippedSelf int    `json:"skipped_self"`
}

type requestDeleteHistoryEntryInput struct {
	Index int `json:"index" jsonschema:"required,display index of the history entry, 0 being the most recent"`
}

type requestDeletePersonInput struct {
	Name string `json:"name" jsonschema:"required,the person to delete together with their relationships"`
}

type emptyInput struct{}

type messageOutput struct {
	Message string `json:"message"`
}

type deleteEntryOutput struct {
	Entry       historyEntryOutput `json:"entry"`
	EdgeRemoved bool               `json:"edge_removed"`
}

type deletePersonOutput struct {
	Name          string `json:"name"`
	EdgesRemoved  int    `json:"edges_removed"`
	HistoryPurged int    `json:"history_purged"`
}

type historyEntryOutput struct {
	Index   int    `json:"index"`
	PersonA string `json:"person_a"`
	Type    string `json:"type"`
	PersonB string `json:"person_b"`
	Line    string `json:"line"`
}

type relationshipOutput struct {
	PersonA string `json:"person_a"`
	PersonB string `json:"person_b"`
	Type    string `json:"type"`
	Color   string `json:"color"`
}

type networkOutput struct {
	People                 []string             `json:"people"`
	Relationships          []relationshipOutput `json:"relationships"`
	History                []historyEntryOutput `json:"history"`
	PendingHistoryDeletion *int                 `json:"pending_history_deletion,omitempty"`
	PendingPersonDeletion  string               `json:"pending_person_deletion,omitempty"`
}

type renderNetworkInput struct {
	Format string `json:"format,omitempty" jsonschema:"output format (dot, yaml or text). Defaults to dot."`
}

type renderNetworkOutput struct {
	Format   string `json:"format"`
	Document string `json:"document"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	Sessions             int            `json:"sessions"`
	PeopleAdded          int            `json:"people_added"`
	PeopleDeleted        int            `json:"people_deleted"`
	RelationshipsAdded   int            `json:"relationships_added"`
	RelationshipsDeleted int            `json:"relationships_deleted"`
	RelationshipsByType  map[string]int `json:"relationships_by_type"`
	DeletionsCancelled   int            `json:"deletions_cancelled"`
	EventCount           int            `json:"event_count"`
	OldestEvent          string         `json:"oldest_event,omitempty"`
	NewestEvent          string         `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_person",
		Description: "Add a person to the network. Adding an existing name is not an error; created is false in that case.",
	}, s.handleAddPerson)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_relationships",
		Description: "Relate a source person to one or more targets with a single relationship type. An existing relationship between the same pair is overwritten. Targets equal to the source are skipped.",
	}, s.handleAddRelationships)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "request_delete_history_entry",
		Description: "Mark a history entry for deletion by display index (0 = most recent). Nothing changes until confirm_delete_history_entry is called.",
	}, s.handleRequestDeleteHistoryEntry)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "confirm_delete_history_entry",
		Description: "Delete the pending history entry and the relationship it created.",
	}, s.handleConfirmDeleteHistoryEntry)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "cancel_delete_history_entry",
		Description: "Discard a pending history entry deletion.",
	}, s.handleCancelDeleteHistoryEntry)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "request_delete_person",
		Description: "Mark a person for deletion. Nothing changes until confirm_delete_person is called.",
	}, s.handleRequestDeletePerson)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "confirm_delete_person",
		Description: "Delete the pending person, every relationship they take part in and every history entry mentioning them.",
	}, s.handleConfirmDeletePerson)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "cancel_delete_person",
		Description: "Discard a pending person deletion.",
	}, s.handleCancelDeletePerson)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_network",
		Description: "Return the people, relationships (with colours) and history (most recent first) of the network, plus any pending deletions.",
	}, s.handleGetNetwork)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "render_network",
		Description: "Render the network as a Graphviz DOT document, a YAML document or plain text.",
	}, s.handleRenderNetwork)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated counters from the event log: people and relationships added or deleted, relationships by type, cancelled deletions.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleAddPerson(_ context.Context, _ *gomcp.CallToolRequest, input addPersonInput) (*gomcp.CallToolResult, addPersonOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.ctrl.AddPerson(input.Name)
	if err != nil {
		return errorResult(fmt.Sprintf("adding person: %s", err)), addPersonOutput{}, nil
	}

	msg := fmt.Sprintf("%s added", res.Name)
	if !res.Created {
		msg = fmt.Sprintf("%s already exists", res.Name)
	}
	return nil, addPersonOutput{Name: res.Name, Created: res.Created, Message: msg}, nil
}

func (s *Server) handleAddRelationships(_ context.Context, _ *gomcp.CallToolRequest, input addRelationshipsInput) (*gomcp.CallToolResult, addRelationshipsOutput, error) {
	relType, ok := models.ParseRelationshipType(input.Type)
	if !ok {
		return errorResult(fmt.Sprintf("invalid type %q: must be one of %s", input.Type, typeList())), addRelationshipsOutput{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.ctrl.AddRelationships(input.Source, relType, input.Targets)
	if err != nil {
		return errorResult(fmt.Sprintf("adding relationships: %s", err)), addRelationshipsOutput{}, nil
	}

	return nil, addRelationshipsOutput{
		Source:      res.Source,
		Type:        string(res.Type),
		Added:       res.Added,
		SkippedSelf: res.SkippedSelf,
	}, nil
}

func (s *Server) handleRequestDeleteHistoryEntry(_ context.Context, _ *gomcp.CallToolRequest, input requestDeleteHistoryEntryInput) (*gomcp.CallToolResult, messageOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ctrl.RequestDeleteHistoryEntry(input.Index); err != nil {
		return errorResult(fmt.Sprintf("requesting deletion of entry %d: %s", input.Index, err)), messageOutput{}, nil
	}
	return nil, messageOutput{
		Message: fmt.Sprintf("history entry %d marked for deletion; call confirm_delete_history_entry to delete it", input.Index),
	}, nil
}

func (s *Server) handleConfirmDeleteHistoryEntry(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, deleteEntryOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, _ := s.ctrl.PendingHistoryDeletion()
	res, err := s.ctrl.ConfirmDeleteHistoryEntry()
	if err != nil {
		return errorResult(fmt.Sprintf("deleting history entry: %s", err)), deleteEntryOutput{}, nil
	}
	return nil, deleteEntryOutput{
		Entry:       entryToOutput(models.DisplayEntry{Index: idx, Entry: res.Entry}),
		EdgeRemoved: res.EdgeRemoved,
	}, nil
}

func (s *Server) handleCancelDeleteHistoryEntry(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, messageOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ctrl.CancelDeleteHistoryEntry() {
		return nil, messageOutput{Message: "no history entry deletion was pending"}, nil
	}
	return nil, messageOutput{Message: "history entry deletion cancelled"}, nil
}

func (s *Server) handleRequestDeletePerson(_ context.Context, _ *gomcp.CallToolRequest, input requestDeletePersonInput) (*gomcp.CallToolResult, messageOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ctrl.RequestDeletePerson(input.Name); err != nil {
		return errorResult(fmt.Sprintf("requesting deletion of %q: %s", input.Name, err)), messageOutput{}, nil
	}
	name, _ := s.ctrl.PendingPersonDeletion()
	return nil, messageOutput{
		Message: fmt.Sprintf("%s marked for deletion; call confirm_delete_person to delete them", name),
	}, nil
}

func (s *Server) handleConfirmDeletePerson(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, deletePersonOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.ctrl.ConfirmDeletePerson()
	if err != nil {
		return errorResult(fmt.Sprintf("deleting person: %s", err)), deletePersonOutput{}, nil
	}
	return nil, deletePersonOutput{
		Name:          res.Name,
		EdgesRemoved:  res.EdgesRemoved,
		HistoryPurged: res.HistoryPurged,
	}, nil
}

func (s *Server) handleCancelDeletePerson(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, messageOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ctrl.CancelDeletePerson() {
		return nil, messageOutput{Message: "no person deletion was pending"}, nil
	}
	return nil, messageOutput{Message: "person deletion cancelled"}, nil
}

func (s *Server) handleGetNetwork(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, networkOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.ctrl.Snapshot()
	out := networkOutput{
		People:        snap.People,
		Relationships: make([]relationshipOutput, len(snap.Relationships)),
		History:       make([]historyEntryOutput, len(snap.History)),
	}
	if out.People == nil {
		out.People = []string{}
	}
	for i, r := range snap.Relationships {
		out.Relationships[i] = relationshipOutput{
			PersonA: r.PersonA,
			PersonB: r.PersonB,
			Type:    string(r.Type),
			Color:   render.ColorFor(s.colors, r.Type),
		}
	}
	for i, d := range snap.History {
		out.History[i] = entryToOutput(d)
	}
	if idx, ok := s.ctrl.PendingHistoryDeletion(); ok {
		out.PendingHistoryDeletion = &idx
	}
	if name, ok := s.ctrl.PendingPersonDeletion(); ok {
		out.PendingPersonDeletion = name
	}

	return nil, out, nil
}

func (s *Server) handleRenderNetwork(_ context.Context, _ *gomcp.CallToolRequest, input renderNetworkInput) (*gomcp.CallToolResult, renderNetworkOutput, error) {
	format := strings.ToLower(strings.TrimSpace(input.Format))
	if format == "" {
		format = render.FormatDOT
	}

	s.mu.Lock()
	snap := s.ctrl.Snapshot()
	s.mu.Unlock()

	var buf bytes.Buffer
	if err := render.Render(&buf, format, snap, s.colors); err != nil {
		return errorResult(fmt.Sprintf("rendering network: %s", err)), renderNetworkOutput{}, nil
	}
	return nil, renderNetworkOutput{Format: format, Document: buf.String()}, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (the event log may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := observability.ParseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		Sessions:             metrics.Sessions,
		PeopleAdded:          metrics.PeopleAdded,
		PeopleDeleted:        metrics.PeopleDeleted,
		RelationshipsAdded:   metrics.RelationshipsAdded,
		RelationshipsDeleted: metrics.RelationshipsDeleted,
		RelationshipsByType:  metrics.RelationshipsByType,
		DeletionsCancelled:   metrics.DeletionsCancelled,
		EventCount:           metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

// --- Helpers ---

func entryToOutput(d models.DisplayEntry) historyEntryOutput {
	return historyEntryOutput{
		Index:   d.Index,
		PersonA: d.Entry.PersonA,
		Type:    string(d.Entry.Type),
		PersonB: d.Entry.PersonB,
		Line:    render.HistoryLine(d.Entry),
	}
}

func typeList() string {
	types := models.AllRelationshipTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{RelationshipsByType: make(map[string]int)}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
