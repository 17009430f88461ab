package models

import (
	"testing"
	"time"
)

func TestParseResourceType(t *testing.T) {
	tests := []struct {
		in     string
		want   ResourceType
		wantOK bool
	}{
		{"Demo", ResourceDemo, true},
		{"demo", ResourceDemo, true},
		{" SOLUTION ", ResourceSolution, true},
		{"component", ResourceComponent, true},
		{"widget", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseResourceType(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseResourceType(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCatalogResource_HasIndustry(t *testing.T) {
	r := CatalogResource{Industry: []string{"finance", "Legal"}}

	if !r.HasIndustry("Finance") {
		t.Error("expected case-insensitive match on Finance")
	}
	if !r.HasIndustry("legal") {
		t.Error("expected case-insensitive match on legal")
	}
	if r.HasIndustry("retail") {
		t.Error("did not expect retail to match")
	}
}

func TestNewResourceMatch(t *testing.T) {
	m := NewResourceMatch("uc-1", "NavigatorAgent")

	if m.ID == "" || m.RecordID() != m.ID {
		t.Errorf("unexpected match ID %q", m.ID)
	}
	if m.Status != MatchActive {
		t.Errorf("Status = %q, want %q", m.Status, MatchActive)
	}
	if m.UseCaseID != "uc-1" || m.MatchedBy != "NavigatorAgent" {
		t.Errorf("unexpected match fields: %+v", m)
	}
}

func TestChatSession_Append(t *testing.T) {
	s := NewChatSession("alice")
	base := time.Now().UTC()

	for i := 0; i < 5; i++ {
		s.Append(Interaction{Timestamp: base.Add(time.Duration(i) * time.Second), Action: string(rune('a' + i))}, 3)
	}

	if len(s.History) != 3 {
		t.Fatalf("len(History) = %d, want 3", len(s.History))
	}
	if s.History[0].Action != "c" || s.History[2].Action != "e" {
		t.Errorf("history not trimmed from the front: %+v", s.History)
	}
	if !s.LastActivity.Equal(base.Add(4 * time.Second)) {
		t.Errorf("LastActivity = %v, want last entry timestamp", s.LastActivity)
	}
}

func TestProject_InvolvesUser(t *testing.T) {
	p := NewProject(NewUseCase("t", "d", "alice"))
	p.Collaborators = []string{"bob"}

	for _, tt := range []struct {
		user string
		want bool
	}{{"alice", true}, {"bob", true}, {"carol", false}} {
		if got := p.InvolvesUser(tt.user); got != tt.want {
			t.Errorf("InvolvesUser(%q) = %v, want %v", tt.user, got, tt.want)
		}
	}

	if p.CurrentPhase != PhaseIntake {
		t.Errorf("CurrentPhase = %q, want %q", p.CurrentPhase, PhaseIntake)
	}
}
