package archivist

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ShayCichocki/embassy/internal/logging"
	"github.com/ShayCichocki/embassy/internal/state"
	"github.com/ShayCichocki/embassy/pkg/models"
)

// AgentName identifies the archivist in logs and activity entries.
const AgentName = "ArchivistAgent"

const (
	defaultMaxHistory   = 100
	defaultHistoryLimit = 50
	userSessionLimit    = 10
	reportSessionLimit  = 20
	reportTopResources  = 3
	reportRecentProject = 5
)

// Option configures an Archivist.
type Option func(*Archivist)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *Archivist) { a.log = logging.OrNop(l).Named("archivist") }
}

// WithMaxHistory caps the number of interactions kept per session.
func WithMaxHistory(n int) Option {
	return func(a *Archivist) { a.maxHistory = n }
}

// Archivist is the only writer of durable history.
type Archivist struct {
	store      state.Store
	log        *logging.Logger
	maxHistory int
}

// New creates an Archivist over store.
func New(store state.Store, opts ...Option) *Archivist {
	a := &Archivist{
		store:      store,
		log:        logging.Nop(),
		maxHistory: defaultMaxHistory,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func missing(collection, what string) error {
	return &state.ValidationError{Collection: collection, Reason: what + " is required"}
}

// InteractionLog is one interaction plus the session it belongs to.
type InteractionLog struct {
	SessionID string
	UserID    string
	// UseCaseID and ProjectID, when set, update the session's current references.
	UseCaseID string
	ProjectID string
	Entry     models.Interaction
	// State, when set, replaces the session's conversation state.
	State *models.ConversationState
}

// LogInteraction appends an interaction to the session, creating the session if needed.
func (a *Archivist) LogInteraction(ctx context.Context, in InteractionLog) (*models.ChatSession, error) {
	if in.SessionID == "" {
		return nil, missing(state.CollectionChatSessions, "session id")
	}

	session, err := state.Get[models.ChatSession](ctx, a.store, state.CollectionChatSessions, in.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	isNew := session == nil
	if isNew {
		userID := in.UserID
		if userID == "" {
			userID = "anonymous"
		}
		session = models.NewChatSession(userID)
		session.ID = in.SessionID
	}

	entry := in.Entry
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.Agent == "" {
		entry.Agent = "unknown"
	}
	if entry.Action == "" {
		entry.Action = "unknown"
	}
	session.Append(entry, a.maxHistory)

	if in.UseCaseID != "" {
		session.CurrentUseCaseID = in.UseCaseID
	}
	if in.ProjectID != "" {
		session.CurrentProjectID = in.ProjectID
	}
	if in.State != nil {
		session.State = *in.State
	}

	if isNew {
		_, err = a.store.Create(ctx, state.CollectionChatSessions, session)
	} else {
		_, err = a.store.Update(ctx, state.CollectionChatSessions, session.ID, session)
	}
	if err != nil {
		a.log.Error("logging interaction failed", "session_id", in.SessionID, "error", err)
		return nil, fmt.Errorf("store session: %w", err)
	}
	return session, nil
}

// WorkflowRun describes one finished orchestration run.
type WorkflowRun struct {
	UseCaseID string
	ProjectID string
	Steps     []models.WorkflowStep
	Duration  time.Duration
}

// LogWorkflow stores a workflow log and appends an activity entry to the project.
// Overall success requires every step to have succeeded.
func (a *Archivist) LogWorkflow(ctx context.Context, run WorkflowRun) (*models.WorkflowLog, error) {
	if run.UseCaseID == "" {
		return nil, missing(state.CollectionWorkflowLogs, "use case id")
	}

	wl := models.NewWorkflowLog(run.UseCaseID, run.ProjectID, run.Steps)
	wl.Success = wl.Succeeded() == len(wl.Steps)
	wl.Summary = fmt.Sprintf("Workflow completed with overall success: %t (%d/%d steps, %s)",
		wl.Success, wl.Succeeded(), len(wl.Steps), run.Duration.Round(time.Millisecond))

	if run.ProjectID != "" {
		project, err := state.Get[models.Project](ctx, a.store, state.CollectionProjects, run.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("load project: %w", err)
		}
		if project != nil {
			project.Log(models.NewActivity(AgentName, "workflow_completed", wl.Summary))
			if _, err := a.store.Update(ctx, state.CollectionProjects, project.ID, project); err != nil {
				return nil, fmt.Errorf("update project: %w", err)
			}
		}
	}

	if _, err := a.store.Create(ctx, state.CollectionWorkflowLogs, wl); err != nil {
		a.log.Error("logging workflow failed", "use_case_id", run.UseCaseID, "error", err)
		return nil, fmt.Errorf("store workflow log: %w", err)
	}
	return wl, nil
}

// UpdateProjectStatus moves a project to phase and returns the previous phase.
// The archived and promoted phases also set the matching flags and advance
// the use case; a use case that cannot move forward rejects the update.
func (a *Archivist) UpdateProjectStatus(ctx context.Context, projectID, phase, notes string) (string, error) {
	if projectID == "" || phase == "" {
		return "", missing(state.CollectionProjects, "project id and status")
	}

	project, err := state.Get[models.Project](ctx, a.store, state.CollectionProjects, projectID)
	if err != nil {
		return "", fmt.Errorf("load project: %w", err)
	}
	if project == nil {
		return "", fmt.Errorf("project %s: %w", projectID, state.ErrNotFound)
	}

	var next models.UseCaseStatus
	switch phase {
	case models.PhaseArchived:
		project.Archived = true
		next = models.UseCaseArchived
	case models.PhasePromoted:
		project.Promoted = true
		next = models.UseCasePromoted
	}

	if next != "" {
		uc, err := state.Get[models.UseCase](ctx, a.store, state.CollectionUseCases, project.UseCaseID)
		if err != nil {
			return "", fmt.Errorf("load use case: %w", err)
		}
		if uc != nil && uc.Status != next {
			if err := uc.Advance(next); err != nil {
				return "", &state.ValidationError{Collection: state.CollectionUseCases, Reason: err.Error()}
			}
			if _, err := a.store.Update(ctx, state.CollectionUseCases, uc.ID, uc); err != nil {
				return "", fmt.Errorf("update use case: %w", err)
			}
		}
	}

	old := project.CurrentPhase
	project.CurrentPhase = phase
	if notes != "" {
		project.StatusNotes = notes
	}
	project.Log(models.NewActivity(AgentName, "status_updated",
		fmt.Sprintf("Project phase changed from '%s' to '%s'", old, phase)))

	if _, err := a.store.Update(ctx, state.CollectionProjects, project.ID, project); err != nil {
		a.log.Error("updating project status failed", "project_id", projectID, "error", err)
		return "", fmt.Errorf("update project: %w", err)
	}
	return old, nil
}

// HistoryQuery selects a history view. EntityID names the session or project;
// UserID is used for the user view.
type HistoryQuery struct {
	Type     HistoryType
	EntityID string
	UserID   string
	Limit    int
}

// RetrieveHistory returns the requested history view.
func (a *Archivist) RetrieveHistory(ctx context.Context, q HistoryQuery) (*History, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	switch {
	case q.Type == HistorySession && q.EntityID != "":
		session, err := state.Get[models.ChatSession](ctx, a.store, state.CollectionChatSessions, q.EntityID)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		if session == nil {
			return nil, fmt.Errorf("session %s: %w", q.EntityID, state.ErrNotFound)
		}
		return &History{Type: HistorySession, Session: &SessionHistory{
			SessionID:         session.ID,
			ConversationCount: len(session.History),
			LastActivity:      session.LastActivity,
			Status:            session.Status,
			Recent:            tail(session.History, limit),
		}}, nil

	case q.Type == HistoryProject && q.EntityID != "":
		project, err := state.Get[models.Project](ctx, a.store, state.CollectionProjects, q.EntityID)
		if err != nil {
			return nil, fmt.Errorf("load project: %w", err)
		}
		if project == nil {
			return nil, fmt.Errorf("project %s: %w", q.EntityID, state.ErrNotFound)
		}
		return &History{Type: HistoryProject, Project: &ProjectHistory{
			ProjectID:     project.ID,
			ActivityCount: len(project.Activity),
			CurrentPhase:  project.CurrentPhase,
			Recent:        tail(project.Activity, limit),
		}}, nil

	case q.Type == HistoryUser && q.UserID != "":
		sessions, err := state.RecentSessions(ctx, a.store, q.UserID, userSessionLimit)
		if err != nil {
			return nil, err
		}
		projects, err := state.UserProjects(ctx, a.store, q.UserID)
		if err != nil {
			return nil, err
		}
		uh := &UserHistory{
			UserID:        q.UserID,
			TotalSessions: len(sessions),
			TotalProjects: len(projects),
		}
		for _, s := range sessions {
			uh.RecentSessions = append(uh.RecentSessions, SessionSummary{
				SessionID:         s.ID,
				LastActivity:      s.LastActivity,
				ConversationCount: len(s.History),
			})
		}
		for _, p := range projects {
			uh.Projects = append(uh.Projects, summarizeProject(p))
		}
		return &History{Type: HistoryUser, User: uh}, nil
	}

	return nil, &state.ValidationError{Collection: "history", Reason: "invalid history retrieval parameters"}
}

// ArchiveSession marks a session archived and stores an archive summary.
func (a *Archivist) ArchiveSession(ctx context.Context, sessionID string) (*models.ArchiveRecord, error) {
	if sessionID == "" {
		return nil, missing(state.CollectionChatSessions, "session id")
	}

	session, err := state.Get[models.ChatSession](ctx, a.store, state.CollectionChatSessions, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, state.ErrNotFound)
	}

	session.Status = models.SessionArchived
	session.LastActivity = time.Now().UTC()

	rec := models.NewArchiveRecord(session, "")
	rec.Summary = fmt.Sprintf("%d interactions over %s", rec.InteractionCount,
		rec.EndedAt.Sub(rec.StartedAt).Round(time.Second))

	if _, err := a.store.Create(ctx, state.CollectionArchives, rec); err != nil {
		a.log.Error("storing archive failed", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("store archive: %w", err)
	}
	if _, err := a.store.Update(ctx, state.CollectionChatSessions, session.ID, session); err != nil {
		a.log.Error("archiving session failed", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("update session: %w", err)
	}
	return rec, nil
}

// ReportQuery selects a report. EntityID names the project for a project summary.
type ReportQuery struct {
	Type     ReportType
	EntityID string
	UserID   string
}

// GenerateReport builds the requested report.
func (a *Archivist) GenerateReport(ctx context.Context, q ReportQuery) (*Report, error) {
	switch q.Type {
	case ReportProjectSummary:
		if q.EntityID == "" {
			return nil, missing(state.CollectionProjects, "project id")
		}
		r, err := a.projectReport(ctx, q.EntityID)
		if err != nil {
			return nil, err
		}
		return &Report{Type: ReportProjectSummary, Project: r}, nil

	case ReportUserActivity:
		if q.UserID == "" {
			return nil, missing("reports", "user id")
		}
		r, err := a.userActivityReport(ctx, q.UserID)
		if err != nil {
			return nil, err
		}
		return &Report{Type: ReportUserActivity, UserActivity: r}, nil
	}
	return nil, &state.ValidationError{Collection: "reports", Reason: fmt.Sprintf("unknown report type %q", q.Type)}
}

func (a *Archivist) projectReport(ctx context.Context, projectID string) (*ProjectReport, error) {
	project, err := state.Get[models.Project](ctx, a.store, state.CollectionProjects, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, state.ErrNotFound)
	}

	uc, err := state.Get[models.UseCase](ctx, a.store, state.CollectionUseCases, project.UseCaseID)
	if err != nil {
		return nil, fmt.Errorf("load use case: %w", err)
	}
	match, err := state.ActiveMatch(ctx, a.store, project.UseCaseID)
	if err != nil {
		return nil, err
	}

	r := &ProjectReport{GeneratedAt: time.Now().UTC()}
	r.Project.ID = project.ID
	r.Project.Title = project.Title
	r.Project.CurrentPhase = project.CurrentPhase
	r.Project.CreatedBy = project.CreatedBy
	r.Project.Collaborators = project.Collaborators
	r.Project.Archived = project.Archived
	r.Project.Promoted = project.Promoted

	if uc != nil {
		r.UseCase.Title = uc.Title
		r.UseCase.Description = uc.Description
		r.UseCase.Industry = uc.Industry
		r.UseCase.Cloud = uc.CloudPreference
	} else {
		r.UseCase.Title = "Unknown"
		r.UseCase.Description = "N/A"
		r.UseCase.Industry = "N/A"
		r.UseCase.Cloud = "N/A"
	}

	r.Activity.Total = len(project.Activity)
	seen := make(map[string]bool)
	for _, act := range project.Activity {
		if !seen[act.Agent] {
			seen[act.Agent] = true
			r.Activity.AgentsInvolved = append(r.Activity.AgentsInvolved, act.Agent)
		}
	}
	if n := len(project.Activity); n > 0 {
		last := project.Activity[n-1]
		r.Activity.Last = &last
	}

	if match != nil {
		r.Resources.TotalMatches = len(match.Resources)
		top := match.Resources
		if len(top) > reportTopResources {
			top = top[:reportTopResources]
		}
		r.Resources.Top = top
		r.Resources.BOM = match.BOM
	}
	return r, nil
}

func (a *Archivist) userActivityReport(ctx context.Context, userID string) (*UserActivityReport, error) {
	projects, err := state.UserProjects(ctx, a.store, userID)
	if err != nil {
		return nil, err
	}
	sessions, err := state.RecentSessions(ctx, a.store, userID, reportSessionLimit)
	if err != nil {
		return nil, err
	}

	r := &UserActivityReport{
		GeneratedAt:   time.Now().UTC(),
		UserID:        userID,
		TotalProjects: len(projects),
		TotalSessions: len(sessions),
	}
	for _, p := range projects {
		if !p.Archived {
			r.ActiveProjects++
		}
		if p.Promoted {
			r.PromotedProjects++
		}
	}
	if len(sessions) > 0 {
		last := sessions[0].LastActivity
		r.LastSession = &last
	}

	sorted := append([]*models.Project(nil), projects...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})
	for i, p := range sorted {
		if i >= reportRecentProject {
			break
		}
		r.RecentProjects = append(r.RecentProjects, summarizeProject(p))
	}
	return r, nil
}

func summarizeProject(p *models.Project) ProjectSummary {
	return ProjectSummary{
		ProjectID:   p.ID,
		Title:       p.Title,
		Phase:       p.CurrentPhase,
		LastUpdated: p.UpdatedAt,
	}
}

func tail[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}
