package archivist

import (
	"time"

	"github.com/ShayCichocki/embassy/pkg/models"
)

// SessionHistory is the session view returned by RetrieveHistory.
type SessionHistory struct {
	SessionID         string               `json:"session_id"`
	ConversationCount int                  `json:"conversation_count"`
	LastActivity      time.Time            `json:"last_activity"`
	Status            models.SessionStatus `json:"status"`
	Recent            []models.Interaction `json:"recent_history"`
}

// ProjectHistory is the project view returned by RetrieveHistory.
type ProjectHistory struct {
	ProjectID     string               `json:"project_id"`
	ActivityCount int                  `json:"activity_count"`
	CurrentPhase  string               `json:"current_phase"`
	Recent        []models.ActivityLog `json:"recent_activities"`
}

// SessionSummary is a one-line session entry in a user view.
type SessionSummary struct {
	SessionID         string    `json:"session_id"`
	LastActivity      time.Time `json:"last_activity"`
	ConversationCount int       `json:"conversation_count"`
}

// ProjectSummary is a one-line project entry in a user view.
type ProjectSummary struct {
	ProjectID   string    `json:"project_id"`
	Title       string    `json:"title"`
	Phase       string    `json:"phase"`
	LastUpdated time.Time `json:"last_updated"`
}

// UserHistory is the user view returned by RetrieveHistory.
type UserHistory struct {
	UserID         string           `json:"user_id"`
	TotalSessions  int              `json:"total_sessions"`
	TotalProjects  int              `json:"total_projects"`
	RecentSessions []SessionSummary `json:"recent_sessions"`
	Projects       []ProjectSummary `json:"projects"`
}

// History holds exactly one of the views, selected by Type.
type History struct {
	Type    HistoryType     `json:"type"`
	Session *SessionHistory `json:"session,omitempty"`
	Project *ProjectHistory `json:"project,omitempty"`
	User    *UserHistory    `json:"user,omitempty"`
}

// ProjectReport summarises one project, its use case and its latest match.
type ProjectReport struct {
	GeneratedAt time.Time `json:"generated_at"`
	Project     struct {
		ID            string   `json:"id"`
		Title         string   `json:"title"`
		CurrentPhase  string   `json:"current_phase"`
		CreatedBy     string   `json:"created_by"`
		Collaborators []string `json:"collaborators"`
		Archived      bool     `json:"is_archived"`
		Promoted      bool     `json:"is_promoted"`
	} `json:"project"`
	UseCase struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Industry    string `json:"industry"`
		Cloud       string `json:"cloud"`
	} `json:"use_case"`
	Activity struct {
		Total          int                 `json:"total_activities"`
		AgentsInvolved []string            `json:"agents_involved"`
		Last           *models.ActivityLog `json:"last_activity,omitempty"`
	} `json:"activity_summary"`
	Resources struct {
		TotalMatches int                          `json:"total_matches"`
		Top          []models.RecommendedResource `json:"top_resources"`
		BOM          []models.BOMItem             `json:"bom,omitempty"`
	} `json:"resources"`
}

// UserActivityReport summarises a user's projects and sessions.
type UserActivityReport struct {
	GeneratedAt      time.Time        `json:"generated_at"`
	UserID           string           `json:"user_id"`
	TotalProjects    int              `json:"total_projects"`
	ActiveProjects   int              `json:"active_projects"`
	PromotedProjects int              `json:"promoted_projects"`
	TotalSessions    int              `json:"total_sessions"`
	LastSession      *time.Time       `json:"last_session,omitempty"`
	RecentProjects   []ProjectSummary `json:"recent_projects"`
}

// Report holds exactly one report, selected by Type.
type Report struct {
	Type         ReportType          `json:"report_type"`
	Project      *ProjectReport      `json:"project_summary,omitempty"`
	UserActivity *UserActivityReport `json:"user_activity,omitempty"`
}
