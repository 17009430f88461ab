package concierge

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ShayCichocki/embassy/internal/archivist"
	"github.com/ShayCichocki/embassy/internal/logging"
	"github.com/ShayCichocki/embassy/internal/orchestrator"
	"github.com/ShayCichocki/embassy/internal/state"
	"github.com/ShayCichocki/embassy/pkg/models"
)

// AgentName identifies the concierge in session history.
const AgentName = "ConciergeAgent"

const (
	maxListedProjects = 10
	resultsShown      = 5
	bomShown          = 10
)

// Workflow runs the orchestration for a confirmed use case.
type Workflow interface {
	RunWorkflow(ctx context.Context, useCaseID string) (*orchestrator.WorkflowResult, error)
}

// Archive is the durable-history capability the concierge needs.
type Archive interface {
	LogInteraction(ctx context.Context, in archivist.InteractionLog) (*models.ChatSession, error)
	ArchiveSession(ctx context.Context, sessionID string) (*models.ArchiveRecord, error)
	GenerateReport(ctx context.Context, q archivist.ReportQuery) (*archivist.Report, error)
}

// Data is everything a conversation has accumulated.
type Data struct {
	Collected  map[string]string
	FieldIndex int
	// Choices are the project ids offered in the last listing, in order.
	Choices   []string
	UseCaseID string
	ProjectID string
	// ExitPending is set after an exit word was typed as a guided answer.
	ExitPending bool
}

// withCollected returns a copy of d whose Collected map is safe to modify.
func (d Data) withCollected() Data {
	c := make(map[string]string, len(d.Collected))
	for k, v := range d.Collected {
		c[k] = v
	}
	d.Collected = c
	return d
}

// TurnInput is one user turn.
type TurnInput struct {
	SessionID string
	UserID    string
	UserName  string
	Awaiting  AwaitedAction
	Input     string
	Data      Data
}

// Reply is the concierge's answer to one turn.
type Reply struct {
	// Awaiting is the input expected next. A re-prompt keeps the input's value.
	Awaiting AwaitedAction
	Message  string
	Data     Data
	// Success is false when the input was not understood or an operation failed.
	Success bool
	// Match is set when the reply presents resource matches.
	Match *models.ResourceMatch
	// Done is set once the session is archived.
	Done bool
}

// Option configures a Concierge.
type Option func(*Concierge)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Concierge) { c.log = logging.OrNop(l).Named("concierge") }
}

// Concierge drives intake conversations.
type Concierge struct {
	store    state.Store
	workflow Workflow
	archive  Archive
	log      *logging.Logger
}

// New creates a Concierge.
func New(store state.Store, workflow Workflow, archive Archive, opts ...Option) *Concierge {
	c := &Concierge{
		store:    store,
		workflow: workflow,
		archive:  archive,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Greeting is the opening reply of every conversation.
func (c *Concierge) Greeting(userName string) Reply {
	if userName == "" {
		userName = "there"
	}
	return Reply{
		Awaiting: AwaitProjectChoice,
		Success:  true,
		Data:     Data{},
		Message: fmt.Sprintf(`Hello %s!

Welcome to the TechHub Embassy. I'm your Concierge, here to help you navigate our resources and turn your ideas into reality.

Is this a NEW project or an EXISTING project we'll discuss today?

  NEW       start a brand new project or use case
  EXISTING  continue work on an existing project`, userName),
	}
}

var exitWords = map[string]bool{"exit": true, "quit": true, "bye": true}

// Turn computes the reply to one input. It never fails: input that does not
// fit the current state re-prompts with the same awaited action.
func (c *Concierge) Turn(ctx context.Context, in TurnInput) Reply {
	text := strings.TrimSpace(in.Input)
	word := strings.ToLower(text)

	if exitWords[word] {
		switch {
		case in.Awaiting == AwaitEnded:
		case in.Awaiting == AwaitGuidedField && !in.Data.ExitPending:
			return confirmExit(in)
		default:
			return c.exit(ctx, in)
		}
	}
	in.Data.ExitPending = false

	switch in.Awaiting {
	case AwaitProjectChoice:
		return c.projectChoice(ctx, in, word)
	case AwaitIntakeMode:
		return c.intakeMode(in, text, word)
	case AwaitGuidedField:
		return c.guidedField(in, text, word)
	case AwaitComprehensive:
		return c.comprehensive(in, text)
	case AwaitConfirmation:
		return c.confirmation(ctx, in, text, word)
	case AwaitOrchestration:
		return c.orchestration(ctx, in, word)
	case AwaitProjectSelect:
		return c.projectSelect(ctx, in, word)
	case AwaitNoProjects:
		return c.noProjects(ctx, in, word)
	case AwaitResultAction:
		return c.resultAction(ctx, in, word)
	case AwaitEnded:
		if word == "restart" {
			return c.Greeting(in.UserName)
		}
		return reprompt(in, "This conversation has ended. Type RESTART to begin a new one.")
	}

	if word == "restart" {
		return c.Greeting(in.UserName)
	}
	return reprompt(in, "I lost track of where we were in the conversation. Type RESTART to start over.")
}

// reprompt is the self-loop: same state, same data, a clarifying message.
func reprompt(in TurnInput, msg string) Reply {
	return Reply{Awaiting: in.Awaiting, Message: msg, Data: in.Data}
}

func (c *Concierge) projectChoice(ctx context.Context, in TurnInput, word string) Reply {
	switch word {
	case "new":
		return intakeModePrompt(Data{})
	case "existing":
		return c.listProjects(ctx, in)
	}
	return reprompt(in, "I didn't understand that choice. Please respond with NEW for a new project or EXISTING for an existing project.")
}

func intakeModePrompt(data Data) Reply {
	return Reply{
		Awaiting: AwaitIntakeMode,
		Success:  true,
		Data:     data,
		Message: `Let's capture the details for your new project. Don't worry about having every detail right now; we can refine as we go.

We'll cover the project title and description, industry and client context, cloud and resource type preferences, budget, timeline and compliance constraints, and your success criteria.

How would you like to proceed?
  1  Fill out fields one by one (guided)
  2  Provide a comprehensive description and let me structure it
  3  Paste existing project details for me to process`,
	}
}

func (c *Concierge) intakeMode(in TurnInput, text, word string) Reply {
	switch word {
	case "1", "guided", "guide", "one by one":
		data := in.Data
		data.Collected = map[string]string{}
		data.FieldIndex = 0
		return fieldPrompt(data, "Great! Let's go through this step by step.")
	case "2", "comprehensive", "description", "describe":
		return Reply{
			Awaiting: AwaitComprehensive,
			Success:  true,
			Data:     in.Data,
			Message: `Please describe your project. Include as much as you can about:
  - what you're trying to build or solve
  - who the client is and their industry
  - technical requirements or preferences
  - timeline and constraints
  - success criteria`,
		}
	case "3", "upload", "paste", "existing":
		return Reply{
			Awaiting: AwaitComprehensive,
			Success:  true,
			Data:     in.Data,
			Message:  "Paste your existing project details below and I'll structure them into the intake form.",
		}
	}
	if len(text) >= MinDescriptionLength {
		return c.comprehensive(in, text)
	}
	return reprompt(in, "Please choose 1, 2 or 3, or describe your project in a sentence or two.")
}

// fieldPrompt asks for the field at data.FieldIndex.
func fieldPrompt(data Data, lead string) Reply {
	f := IntakeFields[data.FieldIndex]
	msg := fmt.Sprintf("Field %d of %d: %s\n\n%s\n\nPlease provide your answer, or type 'skip' if you don't have this information yet.",
		data.FieldIndex+1, len(IntakeFields), f.Label(), f.Prompt)
	if lead != "" {
		msg = lead + "\n\n" + msg
	}
	return Reply{Awaiting: AwaitGuidedField, Success: true, Data: data, Message: msg}
}

func (c *Concierge) guidedField(in TurnInput, text, word string) Reply {
	if in.Data.FieldIndex < 0 || in.Data.FieldIndex >= len(IntakeFields) {
		return reprompt(in, "I lost my place in the form. Type RESTART to start over.")
	}
	if text == "" {
		r := fieldPrompt(in.Data, "I didn't catch an answer.")
		r.Success = false
		return r
	}

	data := in.Data.withCollected()
	if word != "skip" {
		data.Collected[IntakeFields[data.FieldIndex].Key] = text
	}
	data.FieldIndex++
	if data.FieldIndex < len(IntakeFields) {
		return fieldPrompt(data, "")
	}
	return confirmationPrompt(data, "That's every field. Here's what I captured:")
}

func (c *Concierge) comprehensive(in TurnInput, text string) Reply {
	if len(text) < MinDescriptionLength {
		return reprompt(in, "That description seems quite brief. Could you provide more details about your project? The more you share, the better I can match you with relevant resources.")
	}
	data := in.Data
	data.Collected = Extract(text)
	data.FieldIndex = 0
	return confirmationPrompt(data, "I've analyzed your description and extracted the following:")
}

func confirmationPrompt(data Data, lead string) Reply {
	return Reply{
		Awaiting: AwaitConfirmation,
		Success:  true,
		Data:     data,
		Message: fmt.Sprintf(`%s

%s

Does this look accurate?
  YES                    proceed with this information
  EDIT <field> <value>   change a field (e.g. EDIT budget $50k)
  ADD <field> <value>    add to a field (e.g. ADD compliance_requirements HIPAA)
  or type more details and I'll incorporate them`, lead, formatCollected(data.Collected)),
	}
}

func (c *Concierge) confirmation(ctx context.Context, in TurnInput, text, word string) Reply {
	switch {
	case word == "yes" || word == "y":
		return c.submit(ctx, in)
	case text == "":
		return reprompt(in, "Type YES to proceed, EDIT or ADD to change a field, or add more details.")
	}

	verb, rest, _ := strings.Cut(text, " ")
	switch strings.ToUpper(verb) {
	case "EDIT", "ADD":
		return c.edit(in, strings.ToUpper(verb) == "ADD", rest)
	}

	data := in.Data.withCollected()
	description := strings.TrimSpace(data.Collected[FieldDescription] + " " + text)
	data.Collected = mergeExtraction(data.Collected, Extract(description))
	return confirmationPrompt(data, "Thanks, I've added that. Here's the updated summary:")
}

// edit applies "EDIT <field> <value>" or "ADD <field> <value>". Field names
// may be keys or labels; the longest matching name wins.
func (c *Concierge) edit(in TurnInput, add bool, rest string) Reply {
	words := strings.Fields(rest)
	var (
		field IntakeField
		value string
		found bool
	)
	for n := min(len(words), 3); n >= 1 && !found; n-- {
		if f, ok := lookupField(strings.Join(words[:n], " ")); ok {
			field, value, found = f, strings.Join(words[n:], " "), true
		}
	}
	if !found {
		keys := make([]string, len(IntakeFields))
		for i, f := range IntakeFields {
			keys[i] = f.Key
		}
		return reprompt(in, "I don't know that field. Fields are: "+strings.Join(keys, ", "))
	}
	if value == "" {
		return reprompt(in, fmt.Sprintf("Please include a value, e.g. EDIT %s <value>.", field.Key))
	}

	data := in.Data.withCollected()
	current := data.Collected[field.Key]
	if add && field.List && current != "" {
		data.Collected[field.Key] = current + ", " + value
	} else {
		data.Collected[field.Key] = value
	}
	return confirmationPrompt(data, fmt.Sprintf("Updated %s. Here's the summary:", field.Label()))
}

// submit stores the confirmed use case and runs the workflow.
func (c *Concierge) submit(ctx context.Context, in TurnInput) Reply {
	uc := BuildUseCase(in.Data.Collected, userOrAnonymous(in.UserID))
	if _, err := c.store.Create(ctx, state.CollectionUseCases, uc); err != nil {
		c.log.Error("storing use case failed", "session_id", in.SessionID, "error", err)
		return reprompt(in, "I couldn't save your project details just now. Type YES to try again.")
	}
	c.log.Info("intake completed", "session_id", in.SessionID, "use_case_id", uc.ID)

	data := in.Data
	data.UseCaseID = uc.ID
	data.ProjectID = ""
	lead := "Intake complete! I've handed your project to the orchestrator, which analyzed your requirements, searched our resources, generated a bill of materials and created a tracked project."
	return c.runWorkflow(ctx, in, data, lead)
}

func (c *Concierge) runWorkflow(ctx context.Context, in TurnInput, data Data, lead string) Reply {
	result, err := c.workflow.RunWorkflow(ctx, data.UseCaseID)
	if err != nil {
		c.log.Warn("workflow failed", "use_case_id", data.UseCaseID, "error", err)
		msg := "Resource matching didn't complete. Type RETRY to try again or NEW to start a different project."
		if errors.Is(err, state.ErrNotFound) {
			msg = "I couldn't find that use case any more. Type NEW to start a new project."
		}
		return Reply{Awaiting: AwaitOrchestration, Data: data, Message: msg}
	}
	data.ProjectID = result.ProjectID()
	return resultsReply(data, lead, result.Match)
}

func (c *Concierge) orchestration(ctx context.Context, in TurnInput, word string) Reply {
	switch word {
	case "retry", "yes", "y":
		if in.Data.UseCaseID == "" {
			return intakeModePrompt(Data{})
		}
		return c.runWorkflow(ctx, in, in.Data, "Here are the results:")
	case "new":
		return intakeModePrompt(Data{})
	}
	return reprompt(in, "Type RETRY to run resource matching again or NEW to start a different project.")
}

func (c *Concierge) listProjects(ctx context.Context, in TurnInput) Reply {
	projects, err := state.UserProjects(ctx, c.store, userOrAnonymous(in.UserID))
	if err != nil {
		c.log.Error("listing projects failed", "user_id", in.UserID, "error", err)
		return reprompt(in, "I couldn't load your projects just now. Please try again.")
	}
	if len(projects) == 0 {
		return Reply{
			Awaiting: AwaitNoProjects,
			Success:  true,
			Data:     in.Data,
			Message: `I don't see any existing projects for your account yet.

Would you like to:
  1  Start a NEW project instead
  2  Search again for projects you collaborate on
  3  Contact support if you think this is an error`,
		}
	}

	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].UpdatedAt.After(projects[j].UpdatedAt)
	})
	if len(projects) > maxListedProjects {
		projects = projects[:maxListedProjects]
	}

	data := in.Data
	data.Choices = make([]string, len(projects))
	var b strings.Builder
	b.WriteString("Here are your existing projects:\n\n")
	for i, p := range projects {
		data.Choices[i] = p.ID
		fmt.Fprintf(&b, "%d. %s (Stage: %s) - Last updated: %s\n", i+1, p.Title, p.CurrentPhase, p.UpdatedAt.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "\nSelect a project by number (1-%d), or type NEW to start a new project.", len(projects))
	return Reply{Awaiting: AwaitProjectSelect, Success: true, Data: data, Message: b.String()}
}

func (c *Concierge) noProjects(ctx context.Context, in TurnInput, word string) Reply {
	switch word {
	case "1", "new":
		return intakeModePrompt(Data{})
	case "2", "search":
		return c.listProjects(ctx, in)
	case "3", "support":
		r := reprompt(in, "Please reach out to the TechHub team and mention your user id "+userOrAnonymous(in.UserID)+". Meanwhile, type NEW to start a project.")
		r.Success = true
		return r
	}
	return reprompt(in, "Please choose 1, 2 or 3.")
}

func (c *Concierge) projectSelect(ctx context.Context, in TurnInput, word string) Reply {
	if word == "new" {
		return intakeModePrompt(Data{})
	}
	n, err := strconv.Atoi(word)
	if err != nil || n < 1 || n > len(in.Data.Choices) {
		return reprompt(in, fmt.Sprintf("Please select a project by number (1-%d), or type NEW.", len(in.Data.Choices)))
	}

	project, err := state.Get[models.Project](ctx, c.store, state.CollectionProjects, in.Data.Choices[n-1])
	if err != nil || project == nil {
		c.log.Warn("loading selected project failed", "error", err)
		return reprompt(in, "I couldn't open that project. Please pick another number or type NEW.")
	}

	data := in.Data
	data.ProjectID = project.ID
	data.UseCaseID = project.UseCaseID
	match, err := state.ActiveMatch(ctx, c.store, project.UseCaseID)
	if err != nil {
		c.log.Warn("loading project match failed", "project_id", project.ID, "error", err)
	}
	lead := fmt.Sprintf("Project: %s\nStage: %s\n%s", project.Title, project.CurrentPhase, project.StatusNotes)
	return resultsReply(data, lead, match)
}

func (c *Concierge) resultAction(ctx context.Context, in TurnInput, word string) Reply {
	match, err := state.ActiveMatch(ctx, c.store, in.Data.UseCaseID)
	if err != nil {
		c.log.Warn("loading match failed", "use_case_id", in.Data.UseCaseID, "error", err)
	}

	stay := func(msg string) Reply {
		return Reply{Awaiting: AwaitResultAction, Success: true, Data: in.Data, Message: msg, Match: match}
	}

	switch word {
	case "report":
		if in.Data.ProjectID == "" {
			return reprompt(in, "There is no tracked project to report on yet.")
		}
		report, err := c.archive.GenerateReport(ctx, archivist.ReportQuery{
			Type:     archivist.ReportProjectSummary,
			EntityID: in.Data.ProjectID,
		})
		if err != nil {
			c.log.Warn("report failed", "project_id", in.Data.ProjectID, "error", err)
			return reprompt(in, "I couldn't generate the report just now. Please try again.")
		}
		return stay(FormatProjectReport(report.Project))
	case "new":
		r := c.Greeting(in.UserName)
		r.Message = "Starting a new project...\n\n" + r.Message
		return r
	case "bom":
		if match == nil {
			return reprompt(in, "There's no bill of materials for this project yet.")
		}
		return stay(FormatBOM(match.BOM, 0))
	case "all":
		if match == nil || len(match.Resources) == 0 {
			return reprompt(in, "There are no matched resources to show.")
		}
		var b strings.Builder
		for i, r := range match.Resources {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(FormatResource(i+1, r))
		}
		return stay(b.String())
	}

	if n, err := strconv.Atoi(word); err == nil {
		if match == nil || n < 1 || n > len(match.Resources) {
			count := 0
			if match != nil {
				count = len(match.Resources)
			}
			return reprompt(in, fmt.Sprintf("Please pick a resource between 1 and %d.", count))
		}
		return stay(FormatResource(n, match.Resources[n-1]))
	}

	return reprompt(in, "Type a resource number, ALL, BOM, REPORT, NEW or EXIT.")
}

// exit archives the session and closes the conversation.
// confirmExit asks before ending a session from inside the guided form, where
// "bye" may just as well be an answer.
func confirmExit(in TurnInput) Reply {
	data := in.Data
	data.ExitPending = true
	msg := "Do you want to end this session? Type EXIT again to leave, or give your answer to keep going."
	if data.FieldIndex >= 0 && data.FieldIndex < len(IntakeFields) {
		msg = fmt.Sprintf("Do you want to end this session? Type EXIT again to leave, or give your answer for %s to keep going.",
			IntakeFields[data.FieldIndex].Label())
	}
	return Reply{Awaiting: AwaitGuidedField, Data: data, Message: msg}
}

func (c *Concierge) exit(ctx context.Context, in TurnInput) Reply {
	var b strings.Builder
	if in.SessionID != "" {
		if _, err := c.archive.ArchiveSession(ctx, in.SessionID); err != nil {
			c.log.Warn("archiving session failed", "session_id", in.SessionID, "error", err)
		}
	}
	if in.Data.ProjectID != "" {
		report, err := c.archive.GenerateReport(ctx, archivist.ReportQuery{
			Type:     archivist.ReportProjectSummary,
			EntityID: in.Data.ProjectID,
		})
		if err == nil {
			p := report.Project
			fmt.Fprintf(&b, "Project: %s\nPhase: %s\nActivities: %d\nResources Found: %d\n\n",
				p.Project.Title, p.Project.CurrentPhase, p.Activity.Total, p.Resources.TotalMatches)
		}
	}
	b.WriteString("Thank you for visiting the TechHub Embassy! Your session has been archived for future reference.")
	return Reply{Awaiting: AwaitEnded, Success: true, Data: in.Data, Message: b.String(), Done: true}
}

func resultsReply(data Data, lead string, match *models.ResourceMatch) Reply {
	return Reply{
		Awaiting: AwaitResultAction,
		Success:  true,
		Data:     data,
		Match:    match,
		Message:  lead + "\n\n" + FormatResults(match, data.ProjectID),
	}
}

func userOrAnonymous(id string) string {
	if id == "" {
		return "anonymous"
	}
	return id
}
