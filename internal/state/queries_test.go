package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ShayCichocki/embassy/pkg/models"
)

func TestUserProjects(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	own := models.NewProject(models.NewUseCase("own", "d", "alice"))
	shared := models.NewProject(models.NewUseCase("shared", "d", "bob"))
	shared.Collaborators = []string{"alice"}
	other := models.NewProject(models.NewUseCase("other", "d", "bob"))

	for _, p := range []*models.Project{own, shared, other} {
		if _, err := s.Create(ctx, CollectionProjects, p); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	got, err := UserProjects(ctx, s, "alice")
	if err != nil {
		t.Fatalf("UserProjects failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != own.ID || got[1].ID != shared.ID {
		t.Errorf("UserProjects() = %v, want [own shared]", got)
	}
}

func TestRecentSessions(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 4; i++ {
		cs := models.NewChatSession("alice")
		cs.LastActivity = base.Add(time.Duration(i) * time.Hour)
		ids = append(ids, cs.ID)
		if _, err := s.Create(ctx, CollectionChatSessions, cs); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if _, err := s.Create(ctx, CollectionChatSessions, models.NewChatSession("bob")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := RecentSessions(ctx, s, "alice", 2)
	if err != nil {
		t.Fatalf("RecentSessions failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("RecentSessions() returned %d, want 2", len(got))
	}
	if got[0].ID != ids[3] || got[1].ID != ids[2] {
		t.Errorf("RecentSessions() not sorted by last activity desc")
	}
}

func TestProjectMatches(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	uc := models.NewUseCase("t", "d", "alice")
	project := models.NewProject(uc)
	if _, err := s.Create(ctx, CollectionProjects, project); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	old := models.NewResourceMatch(uc.ID, "navigator")
	old.Status = models.MatchSuperseded
	current := models.NewResourceMatch(uc.ID, "navigator")
	unrelated := models.NewResourceMatch("other", "navigator")
	for _, m := range []*models.ResourceMatch{old, current, unrelated} {
		if _, err := s.Create(ctx, CollectionResourceMatches, m); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	matches, err := ProjectMatches(ctx, s, project.ID)
	if err != nil {
		t.Fatalf("ProjectMatches failed: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("ProjectMatches() returned %d, want 2", len(matches))
	}

	active, err := ActiveMatch(ctx, s, uc.ID)
	if err != nil {
		t.Fatalf("ActiveMatch failed: %v", err)
	}
	if active == nil || active.ID != current.ID {
		t.Errorf("ActiveMatch() = %v, want %s", active, current.ID)
	}

	if _, err := ProjectMatches(ctx, s, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ProjectMatches(missing) error = %v, want ErrNotFound", err)
	}

	p, err := ProjectForUseCase(ctx, s, uc.ID)
	if err != nil || p == nil || p.ID != project.ID {
		t.Errorf("ProjectForUseCase() = %v, %v", p, err)
	}
}
