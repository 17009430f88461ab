package state

import (
	"context"
	"fmt"
	"sort"

	"github.com/ShayCichocki/embassy/pkg/models"
)

// UserProjects returns the projects user created or collaborates on.
func UserProjects(ctx context.Context, s DocumentReader, user string) ([]*models.Project, error) {
	projects, err := Query(ctx, s, CollectionProjects, func(p *models.Project) bool {
		return p.InvolvesUser(user)
	})
	if err != nil {
		return nil, fmt.Errorf("list projects for %s: %w", user, err)
	}
	return projects, nil
}

// RecentSessions returns up to limit of user's sessions, most recent activity first.
// A limit <= 0 returns all of them.
func RecentSessions(ctx context.Context, s DocumentReader, user string, limit int) ([]*models.ChatSession, error) {
	sessions, err := Query(ctx, s, CollectionChatSessions, func(cs *models.ChatSession) bool {
		return cs.UserID == user
	})
	if err != nil {
		return nil, fmt.Errorf("list sessions for %s: %w", user, err)
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LastActivity.After(sessions[j].LastActivity)
	})
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

// UseCaseMatches returns every match recorded for a use case, oldest first.
func UseCaseMatches(ctx context.Context, s DocumentReader, useCaseID string) ([]*models.ResourceMatch, error) {
	matches, err := Query(ctx, s, CollectionResourceMatches, func(m *models.ResourceMatch) bool {
		return m.UseCaseID == useCaseID
	})
	if err != nil {
		return nil, fmt.Errorf("list matches for use case %s: %w", useCaseID, err)
	}
	return matches, nil
}

// ProjectMatches returns the matches of the use case behind a project.
// It returns ErrNotFound if the project does not exist.
func ProjectMatches(ctx context.Context, s DocumentReader, projectID string) ([]*models.ResourceMatch, error) {
	project, err := Get[models.Project](ctx, s, CollectionProjects, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	return UseCaseMatches(ctx, s, project.UseCaseID)
}

// ActiveMatch returns the active match for a use case, or nil if there is none.
func ActiveMatch(ctx context.Context, s DocumentReader, useCaseID string) (*models.ResourceMatch, error) {
	matches, err := UseCaseMatches(ctx, s, useCaseID)
	if err != nil {
		return nil, err
	}
	for i := len(matches) - 1; i >= 0; i-- {
		if matches[i].Status == models.MatchActive {
			return matches[i], nil
		}
	}
	return nil, nil
}

// ProjectForUseCase returns the project tracking useCaseID, or nil.
func ProjectForUseCase(ctx context.Context, s DocumentReader, useCaseID string) (*models.Project, error) {
	projects, err := Query(ctx, s, CollectionProjects, func(p *models.Project) bool {
		return p.UseCaseID == useCaseID
	})
	if err != nil {
		return nil, fmt.Errorf("find project for use case %s: %w", useCaseID, err)
	}
	if len(projects) == 0 {
		return nil, nil
	}
	return projects[len(projects)-1], nil
}
