package concierge

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ShayCichocki/embassy/internal/archivist"
	"github.com/ShayCichocki/embassy/internal/catalog"
	"github.com/ShayCichocki/embassy/internal/navigator"
	"github.com/ShayCichocki/embassy/internal/orchestrator"
	"github.com/ShayCichocki/embassy/internal/state"
	"github.com/ShayCichocki/embassy/pkg/models"
)

const financeDemo = "Azure chat demo for a finance client. They want a chatbot answering questions about account statements."

type failingWorkflow struct{ err error }

func (f failingWorkflow) RunWorkflow(context.Context, string) (*orchestrator.WorkflowResult, error) {
	return nil, f.err
}

// setupConcierge wires a concierge to a real orchestrator over a memory store.
func setupConcierge(t *testing.T) (*Concierge, state.Store) {
	t.Helper()
	store := state.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	arch := archivist.New(store)
	orch := orchestrator.New(store, navigator.New(store, catalog.Mock()), arch)
	return New(store, orch, arch), store
}

// drive feeds inputs in order and returns the last reply.
func drive(t *testing.T, c *Concierge, in TurnInput, inputs ...string) Reply {
	t.Helper()
	var r Reply
	for _, input := range inputs {
		in.Input = input
		r = c.Turn(context.Background(), in)
		in.Awaiting = r.Awaiting
		in.Data = r.Data
	}
	return r
}

func TestGreeting(t *testing.T) {
	c, _ := setupConcierge(t)
	r := c.Greeting("")
	if r.Awaiting != AwaitProjectChoice || !r.Success {
		t.Fatalf("Greeting awaits %v, want project_choice", r.Awaiting)
	}
	if !strings.Contains(r.Message, "Hello there!") {
		t.Errorf("anonymous greeting = %q", r.Message)
	}
}

func TestParseAwaitedAction(t *testing.T) {
	for a, label := range awaitedLabels {
		if a == AwaitUnrecognized {
			continue
		}
		if got := ParseAwaitedAction(label); got != a {
			t.Errorf("ParseAwaitedAction(%q) = %v, want %v", label, got, a)
		}
	}
	if got := ParseAwaitedAction("process_everything"); got != AwaitUnrecognized {
		t.Errorf("unknown label parsed as %v", got)
	}
}

func TestTurn_SelfLoops(t *testing.T) {
	c, _ := setupConcierge(t)
	data := Data{Collected: map[string]string{FieldTitle: "Keep me"}}

	tests := []struct {
		name     string
		awaiting AwaitedAction
		input    string
	}{
		{"unrecognized label", AwaitUnrecognized, "hello"},
		{"bad project choice", AwaitProjectChoice, "maybe"},
		{"bad intake mode", AwaitIntakeMode, "4"},
		{"short description", AwaitComprehensive, "a chatbot"},
		{"ended", AwaitEnded, "yes"},
		{"bad orchestration answer", AwaitOrchestration, "later"},
		{"bad result action", AwaitResultAction, "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := c.Turn(context.Background(), TurnInput{Awaiting: tt.awaiting, Input: tt.input, Data: data})
			if r.Awaiting != tt.awaiting {
				t.Errorf("Awaiting = %v, want %v", r.Awaiting, tt.awaiting)
			}
			if r.Success {
				t.Error("self-loop reported success")
			}
			if r.Data.Collected[FieldTitle] != "Keep me" {
				t.Errorf("data changed: %+v", r.Data)
			}
			if r.Message == "" {
				t.Error("self-loop without a clarifying message")
			}
		})
	}
}

func TestTurn_Restart(t *testing.T) {
	c, _ := setupConcierge(t)
	for _, a := range []AwaitedAction{AwaitUnrecognized, AwaitEnded} {
		r := c.Turn(context.Background(), TurnInput{Awaiting: a, Input: "RESTART"})
		if r.Awaiting != AwaitProjectChoice {
			t.Errorf("restart from %v awaits %v", a, r.Awaiting)
		}
	}
}

func TestTurn_GuidedIntake(t *testing.T) {
	c, store := setupConcierge(t)
	in := TurnInput{SessionID: "s-1", UserID: "alice", Awaiting: AwaitProjectChoice}

	r := drive(t, c, in, "new", "1")
	if r.Awaiting != AwaitGuidedField || r.Data.FieldIndex != 0 {
		t.Fatalf("after choosing guided: %v index %d", r.Awaiting, r.Data.FieldIndex)
	}
	if !strings.Contains(r.Message, "Field 1 of 14: Title") {
		t.Errorf("first prompt = %q", r.Message)
	}

	answers := []string{
		"Statement assistant",
		"Chat assistant for account statements",
		"Finance",
		"skip",
		"skip",
		"Bob, Carol",
		"Azure",
		"skip",
		"skip",
		"skip",
		"SOX",
		"skip",
		"skip",
		"Demo",
	}
	in.Awaiting, in.Data = r.Awaiting, r.Data
	for i, a := range answers[:len(answers)-1] {
		in.Input = a
		r = c.Turn(context.Background(), in)
		if r.Awaiting != AwaitGuidedField || r.Data.FieldIndex != i+1 {
			t.Fatalf("answer %d: awaiting %v index %d", i, r.Awaiting, r.Data.FieldIndex)
		}
		in.Awaiting, in.Data = r.Awaiting, r.Data
	}
	if _, ok := r.Data.Collected[FieldClientName]; ok {
		t.Error("skipped field was recorded")
	}

	in.Input = answers[len(answers)-1]
	r = c.Turn(context.Background(), in)
	if r.Awaiting != AwaitConfirmation {
		t.Fatalf("after the last field: %v", r.Awaiting)
	}
	if !strings.Contains(r.Message, "Internal Contacts: Bob, Carol") {
		t.Errorf("summary = %q", r.Message)
	}

	r = drive(t, c, TurnInput{SessionID: "s-1", UserID: "alice", Awaiting: r.Awaiting, Data: r.Data}, "YES")
	if r.Awaiting != AwaitResultAction || !r.Success {
		t.Fatalf("after YES: %v %q", r.Awaiting, r.Message)
	}
	uc, err := state.Get[models.UseCase](context.Background(), store, state.CollectionUseCases, r.Data.UseCaseID)
	if err != nil || uc == nil {
		t.Fatalf("use case not stored: %v", err)
	}
	if uc.CreatedBy != "alice" || len(uc.InternalContacts) != 2 || uc.Constraints.ComplianceRequirements[0] != "SOX" {
		t.Errorf("stored use case = %+v", uc)
	}
	if r.Data.ProjectID == "" {
		t.Error("no project id after the workflow")
	}
}

func TestTurn_GuidedFieldNeedsAnswer(t *testing.T) {
	c, _ := setupConcierge(t)
	data := Data{Collected: map[string]string{}, FieldIndex: 3}
	r := c.Turn(context.Background(), TurnInput{Awaiting: AwaitGuidedField, Input: "  ", Data: data})
	if r.Awaiting != AwaitGuidedField || r.Data.FieldIndex != 3 || r.Success {
		t.Errorf("empty answer: %v index %d success %v", r.Awaiting, r.Data.FieldIndex, r.Success)
	}
}

func TestTurn_GuidedExitNeedsConfirmation(t *testing.T) {
	c, _ := setupConcierge(t)
	in := TurnInput{Awaiting: AwaitGuidedField, Data: Data{Collected: map[string]string{}, FieldIndex: 3}}

	r := drive(t, c, in, "bye")
	if r.Done || r.Awaiting != AwaitGuidedField || r.Data.FieldIndex != 3 || !r.Data.ExitPending {
		t.Fatalf("first exit word: done %v awaiting %v index %d pending %v",
			r.Done, r.Awaiting, r.Data.FieldIndex, r.Data.ExitPending)
	}

	r = drive(t, c, in, "bye", "Contoso")
	if r.Done || r.Data.FieldIndex != 4 || r.Data.ExitPending {
		t.Fatalf("answer after exit word: done %v index %d pending %v", r.Done, r.Data.FieldIndex, r.Data.ExitPending)
	}
	if got := r.Data.Collected[IntakeFields[3].Key]; got != "Contoso" {
		t.Errorf("field %s = %q, want Contoso", IntakeFields[3].Key, got)
	}

	r = drive(t, c, in, "bye", "exit")
	if !r.Done || r.Awaiting != AwaitEnded {
		t.Errorf("confirmed exit: done %v awaiting %v", r.Done, r.Awaiting)
	}
}

func TestTurn_ExitOutsideGuidedForm(t *testing.T) {
	c, _ := setupConcierge(t)
	for _, a := range []AwaitedAction{AwaitProjectChoice, AwaitIntakeMode, AwaitComprehensive, AwaitConfirmation} {
		r := c.Turn(context.Background(), TurnInput{Awaiting: a, Input: "quit"})
		if !r.Done || r.Awaiting != AwaitEnded {
			t.Errorf("quit from %v: done %v awaiting %v", a, r.Done, r.Awaiting)
		}
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]string
	}{
		{
			name: "finance azure demo",
			in:   financeDemo,
			want: map[string]string{
				FieldTitle:           "Azure chat demo for a finance client",
				FieldIndustry:        "Finance",
				FieldCloudPreference: "Azure",
				FieldResourceTypes:   "Demo",
			},
		},
		{
			name: "google cloud with urgency",
			in:   "We need solutions and components on Google Cloud asap for a retail chain",
			want: map[string]string{
				FieldIndustry:        "Retail",
				FieldCloudPreference: "GCP",
				FieldResourceTypes:   "Solution, Component",
				FieldTimeline:        "Contains timeline reference: asap",
			},
		},
		{
			name: "words inside other words do not count",
			in:   "Refinance the awsome dashboard",
			want: map[string]string{
				FieldIndustry:        "",
				FieldCloudPreference: "",
			},
		},
		{
			name: "long first sentence",
			in:   strings.Repeat("word ", 30),
			want: map[string]string{FieldTitle: defaultTitle},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.in)
			if got[FieldDescription] != strings.TrimSpace(tt.in) {
				t.Errorf("description = %q", got[FieldDescription])
			}
			for k, want := range tt.want {
				if got[k] != want {
					t.Errorf("%s = %q, want %q", k, got[k], want)
				}
			}
		})
	}
}

func TestTurn_ComprehensiveEditAndSubmit(t *testing.T) {
	c, store := setupConcierge(t)
	in := TurnInput{SessionID: "s-2", UserID: "alice", Awaiting: AwaitProjectChoice}

	r := drive(t, c, in, "NEW", "2", financeDemo)
	if r.Awaiting != AwaitConfirmation {
		t.Fatalf("after description: %v", r.Awaiting)
	}
	if r.Data.Collected[FieldIndustry] != "Finance" {
		t.Errorf("industry = %q", r.Data.Collected[FieldIndustry])
	}

	in.Awaiting, in.Data = r.Awaiting, r.Data
	r = drive(t, c, in, "EDIT budget $50k", "ADD compliance requirements SOX", "ADD compliance_requirements PCI", "EDIT nonsense 3")
	if r.Awaiting != AwaitConfirmation || r.Success {
		t.Errorf("unknown field should self-loop, got %v success %v", r.Awaiting, r.Success)
	}
	if got := r.Data.Collected[FieldBudget]; got != "$50k" {
		t.Errorf("budget = %q", got)
	}
	if got := r.Data.Collected[FieldCompliance]; got != "SOX, PCI" {
		t.Errorf("compliance = %q", got)
	}

	in.Awaiting, in.Data = r.Awaiting, r.Data
	r = drive(t, c, in, "It is urgent, the pilot starts next week.")
	if got := r.Data.Collected[FieldTimeline]; got != "Contains timeline reference: urgent" {
		t.Errorf("timeline after more details = %q", got)
	}
	if got := r.Data.Collected[FieldBudget]; got != "$50k" {
		t.Errorf("edit lost after more details: budget = %q", got)
	}

	in.Awaiting, in.Data = r.Awaiting, r.Data
	r = drive(t, c, in, "yes")
	if r.Awaiting != AwaitResultAction {
		t.Fatalf("after YES: %v %q", r.Awaiting, r.Message)
	}
	if r.Match == nil || len(r.Match.Resources) == 0 {
		t.Fatal("no matches presented")
	}
	if !strings.Contains(r.Message, "Project ID: "+r.Data.ProjectID) {
		t.Errorf("results do not name the project: %q", r.Message)
	}

	uc, _ := state.Get[models.UseCase](context.Background(), store, state.CollectionUseCases, r.Data.UseCaseID)
	if uc == nil || uc.Status != models.UseCaseMatched {
		t.Errorf("use case after workflow = %+v", uc)
	}

	in.Awaiting, in.Data = r.Awaiting, r.Data
	tests := []struct {
		input string
		want  string
	}{
		{"1", "1. "},
		{"all", "Relevance:"},
		{"bom", "Required"},
		{"report", "Project Summary Report"},
	}
	for _, tt := range tests {
		in.Input = tt.input
		got := c.Turn(context.Background(), in)
		if got.Awaiting != AwaitResultAction || !got.Success {
			t.Errorf("%s: awaiting %v success %v", tt.input, got.Awaiting, got.Success)
		}
		if !strings.Contains(got.Message, tt.want) {
			t.Errorf("%s: message %q lacks %q", tt.input, got.Message, tt.want)
		}
	}

	in.Input = "99"
	if got := c.Turn(context.Background(), in); got.Success || got.Awaiting != AwaitResultAction {
		t.Errorf("out of range resource: %+v", got)
	}
	in.Input = "new"
	if got := c.Turn(context.Background(), in); got.Awaiting != AwaitProjectChoice {
		t.Errorf("NEW from results awaits %v", got.Awaiting)
	}
}

func TestTurn_WorkflowFailure(t *testing.T) {
	store := state.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	c := New(store, failingWorkflow{err: errors.New("catalog offline")}, archivist.New(store))

	data := Data{Collected: Extract(financeDemo)}
	r := c.Turn(context.Background(), TurnInput{Awaiting: AwaitConfirmation, Input: "YES", Data: data})
	if r.Awaiting != AwaitOrchestration || r.Success {
		t.Fatalf("failed workflow: %v success %v", r.Awaiting, r.Success)
	}
	if r.Data.UseCaseID == "" {
		t.Error("use case id not kept for retry")
	}

	r = c.Turn(context.Background(), TurnInput{Awaiting: r.Awaiting, Input: "new", Data: r.Data})
	if r.Awaiting != AwaitIntakeMode {
		t.Errorf("NEW after failure awaits %v", r.Awaiting)
	}
}

func TestTurn_ExistingProjects(t *testing.T) {
	c, store := setupConcierge(t)
	ctx := context.Background()

	r := drive(t, c, TurnInput{UserID: "bob", Awaiting: AwaitProjectChoice}, "existing")
	if r.Awaiting != AwaitNoProjects {
		t.Fatalf("no projects: %v", r.Awaiting)
	}
	if got := drive(t, c, TurnInput{UserID: "bob", Awaiting: r.Awaiting, Data: r.Data}, "1"); got.Awaiting != AwaitIntakeMode {
		t.Errorf("option 1 awaits %v", got.Awaiting)
	}
	if got := drive(t, c, TurnInput{UserID: "bob", Awaiting: r.Awaiting, Data: r.Data}, "7"); got.Awaiting != AwaitNoProjects || got.Success {
		t.Errorf("bad option: %v success %v", got.Awaiting, got.Success)
	}

	for i, title := range []string{"Older", "Newer"} {
		uc := models.NewUseCase(title, "demo", "bob")
		p := models.NewProject(uc)
		p.UpdatedAt = time.Now().UTC().Add(time.Duration(i) * time.Hour)
		if _, err := store.Create(ctx, state.CollectionUseCases, uc); err != nil {
			t.Fatal(err)
		}
		if _, err := store.Create(ctx, state.CollectionProjects, p); err != nil {
			t.Fatal(err)
		}
	}

	r = drive(t, c, TurnInput{UserID: "bob", Awaiting: AwaitProjectChoice}, "EXISTING")
	if r.Awaiting != AwaitProjectSelect || len(r.Data.Choices) != 2 {
		t.Fatalf("listing: %v choices %v", r.Awaiting, r.Data.Choices)
	}
	if strings.Index(r.Message, "Newer") > strings.Index(r.Message, "Older") {
		t.Errorf("projects not sorted by last update: %q", r.Message)
	}

	in := TurnInput{UserID: "bob", Awaiting: r.Awaiting, Data: r.Data}
	if got := drive(t, c, in, "3"); got.Awaiting != AwaitProjectSelect || got.Success {
		t.Errorf("out of range selection: %v", got.Awaiting)
	}
	got := drive(t, c, in, "1")
	if got.Awaiting != AwaitResultAction || got.Data.ProjectID != r.Data.Choices[0] {
		t.Errorf("selection: %v project %q", got.Awaiting, got.Data.ProjectID)
	}
	if !strings.Contains(got.Message, "Project: Newer") {
		t.Errorf("selection message = %q", got.Message)
	}
}

func TestBuildUseCase(t *testing.T) {
	uc := BuildUseCase(map[string]string{
		FieldDescription:   "x",
		FieldResourceTypes: "Demos, widget, Solution, demo",
		FieldDependencies:  "a, , b",
	}, "alice")
	if uc.Title != defaultTitle {
		t.Errorf("Title = %q", uc.Title)
	}
	want := []models.ResourceType{models.ResourceDemo, models.ResourceSolution}
	if len(uc.ResourceTypePreference) != len(want) {
		t.Fatalf("types = %v, want %v", uc.ResourceTypePreference, want)
	}
	for i := range want {
		if uc.ResourceTypePreference[i] != want[i] {
			t.Errorf("types = %v, want %v", uc.ResourceTypePreference, want)
		}
	}
	if len(uc.Constraints.KnownDependencies) != 2 {
		t.Errorf("dependencies = %v", uc.Constraints.KnownDependencies)
	}
}

func TestSession_ExitArchives(t *testing.T) {
	c, store := setupConcierge(t)
	ctx := context.Background()

	s, greeting, err := c.Start(ctx, "alice", "Alice")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !strings.Contains(greeting.Message, "Hello Alice!") {
		t.Errorf("greeting = %q", greeting.Message)
	}

	for _, input := range []string{"new", "2", financeDemo, "yes"} {
		s.Turn(ctx, input)
	}
	if s.Awaiting() != AwaitResultAction {
		t.Fatalf("before exit: %v", s.Awaiting())
	}

	r := s.Turn(ctx, "bye")
	if !r.Done || !s.Done() || r.Awaiting != AwaitEnded {
		t.Fatalf("exit: %+v", r)
	}
	if !strings.Contains(r.Message, "Resources Found:") {
		t.Errorf("exit summary = %q", r.Message)
	}

	stored, err := state.Get[models.ChatSession](ctx, store, state.CollectionChatSessions, s.ID())
	if err != nil || stored == nil {
		t.Fatalf("session not stored: %v", err)
	}
	if stored.Status != models.SessionArchived {
		t.Errorf("status = %s", stored.Status)
	}
	if stored.CurrentProjectID == "" {
		t.Error("session does not reference the project")
	}
	// greeting, then a user entry and a reply per turn
	if want := 1 + 2*5; len(stored.History) != want {
		t.Errorf("history has %d entries, want %d", len(stored.History), want)
	}

	archives, err := state.Query[models.ArchiveRecord](ctx, store, state.CollectionArchives, nil)
	if err != nil || len(archives) != 1 {
		t.Errorf("archives = %d, err %v", len(archives), err)
	}

	if _, _, err := c.Resume(ctx, s.ID(), "Alice"); err == nil {
		t.Error("resuming an archived session succeeded")
	}
}

func TestSession_Resume(t *testing.T) {
	c, _ := setupConcierge(t)
	ctx := context.Background()

	s, _, err := c.Start(ctx, "alice", "Alice")
	if err != nil {
		t.Fatal(err)
	}
	s.Turn(ctx, "new")
	s.Turn(ctx, "1")
	s.Turn(ctx, "Statement assistant")

	resumed, r, err := c.Resume(ctx, s.ID(), "Alice")
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if r.Awaiting != AwaitGuidedField || !strings.Contains(r.Message, "Field 2 of 14") {
		t.Errorf("resume prompt: %v %q", r.Awaiting, r.Message)
	}
	if got := resumed.Data().Collected[FieldTitle]; got != "Statement assistant" {
		t.Errorf("restored title = %q", got)
	}

	resumed.Turn(ctx, "Chat assistant for statements")
	if got := resumed.Data().FieldIndex; got != 2 {
		t.Errorf("FieldIndex after resumed turn = %d", got)
	}

	if _, _, err := c.Resume(ctx, "missing", ""); !errors.Is(err, state.ErrNotFound) {
		t.Errorf("Resume(missing) error = %v", err)
	}
}
