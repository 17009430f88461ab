package navigator

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/ShayCichocki/embassy/internal/catalog"
	"github.com/ShayCichocki/embassy/internal/state"
	"github.com/ShayCichocki/embassy/pkg/models"
)

func chatDemoUseCase() *models.UseCase {
	uc := models.NewUseCase("Chat demo", "azure demo for chat", "tester")
	uc.ResourceTypePreference = []models.ResourceType{models.ResourceDemo}
	return uc
}

func setupNavigator(t *testing.T, ucs ...*models.UseCase) (*Navigator, state.Store) {
	t.Helper()
	store := state.NewMemoryStore()
	for _, uc := range ucs {
		if _, err := store.Create(context.Background(), state.CollectionUseCases, uc); err != nil {
			t.Fatalf("seed use case: %v", err)
		}
	}
	return New(store, catalog.Mock()), store
}

func TestExtractTerms(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		want        []string
	}{
		{"chat and azure", "Chat demo", "azure demo for chat", []string{"chat", "cloud", "azure"}},
		{"phrase variation", "Predictor", "Use machine learning on telemetry", []string{"ai", "machine learning", "iot", "telemetry"}},
		{"tech keywords from title", "Mobile API", "nothing else", []string{"mobile", "api"}},
		{"no substring false positives", "Maintenance", "email the chain", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := models.NewUseCase(tt.title, tt.description, "tester")
			got := ExtractTerms(uc).Keywords
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTerms().Keywords = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRank_ChatDemoScenario(t *testing.T) {
	nv, _ := setupNavigator(t)
	uc := chatDemoUseCase()

	_, ranked := nv.Rank(uc)
	if len(ranked) == 0 {
		t.Fatal("no candidates")
	}

	top := ranked[0]
	if top.Resource.Title != "Azure OpenAI Chat Demo" {
		t.Fatalf("top candidate = %q, want Azure OpenAI Chat Demo", top.Resource.Title)
	}
	if top.Signals.Type != TypeMatchScore {
		t.Errorf("type signal = %v, want %v", top.Signals.Type, TypeMatchScore)
	}
	if top.Signals.Description+top.Signals.Tags+top.Signals.Title <= 0 {
		t.Error("expected a keyword overlap contribution")
	}
	if top.Score <= TypeMatchScore+IndustryMatchScore {
		t.Errorf("score %v does not beat an industry-only match", top.Score)
	}
}

func TestRank_Deduplicates(t *testing.T) {
	nv, _ := setupNavigator(t)
	// demo-001 is found by "chat", "azure" and the Demo type search.
	_, ranked := nv.Rank(chatDemoUseCase())

	seen := map[string]int{}
	for _, c := range ranked {
		seen[c.Resource.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("resource %s appears %d times", id, n)
		}
	}
}

func TestScorer_Clamped(t *testing.T) {
	uc := models.NewUseCase(
		"Azure OpenAI Chat Demo",
		"interactive chat demo showcasing azure openai integration ai analytics iot auth document",
		"tester",
	)
	uc.Industry = "general"
	uc.ResourceTypePreference = []models.ResourceType{models.ResourceDemo}

	terms := ExtractTerms(uc)
	for _, r := range catalog.MockResources {
		c := NewScorer(uc, terms).Score(r)
		if c.Score < 0 || c.Score > 1 {
			t.Errorf("score for %s = %v, outside [0,1]", r.ID, c.Score)
		}
	}

	sig := Signals{Title: 0.3, Description: 0.3, Type: 0.2, Industry: 0.15, Tags: 0.25}
	if sig.Total() != 1 {
		t.Errorf("Total() = %v, want 1", sig.Total())
	}
}

func TestScorer_Caps(t *testing.T) {
	uc := models.NewUseCase("x", "a b c d e f g h i j k l m n o p q r s t", "tester")
	r := models.CatalogResource{
		ID:          "r",
		Description: "a b c d e f g h i j k l m n o p q r s t",
		Tags:        []string{"ai", "chat", "cloud", "iot", "auth", "document", "analytics"},
	}
	terms := SearchTerms{Keywords: []string{"ai", "chat", "cloud", "iot", "auth", "document", "analytics"}}

	c := NewScorer(uc, terms).Score(r)
	if c.Signals.Description != DescriptionCap {
		t.Errorf("description signal = %v, want cap %v", c.Signals.Description, DescriptionCap)
	}
	if c.Signals.Tags != TagCap {
		t.Errorf("tag signal = %v, want cap %v", c.Signals.Tags, TagCap)
	}
}

func TestScorer_StableTies(t *testing.T) {
	uc := models.NewUseCase("zzz", "zzz", "tester")
	resources := []models.CatalogResource{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}

	ranked := NewScorer(uc, SearchTerms{}).Rank(resources)
	for i, c := range ranked {
		if c.Resource.ID != resources[i].ID {
			t.Fatalf("tie order changed: got %s at %d", c.Resource.ID, i)
		}
	}
}

func TestRank_TiesKeepCatalogOrder(t *testing.T) {
	cat := catalog.New([]models.CatalogResource{
		{ID: "a", Title: "Sign-in kit", Type: models.ResourceComponent, Tags: []string{"auth"}},
		{ID: "b", Title: "Sensor hub", Type: models.ResourceComponent, Tags: []string{"iot"}},
	})
	nv := New(state.NewMemoryStore(), cat)
	// "iot" is searched before "auth", so b is discovered first.
	uc := models.NewUseCase("zzz", "iot auth", "tester")

	_, ranked := nv.Rank(uc)
	if len(ranked) != 2 {
		t.Fatalf("got %d candidates, want 2", len(ranked))
	}
	if ranked[0].Score != ranked[1].Score {
		t.Fatalf("scores differ: %v vs %v", ranked[0].Score, ranked[1].Score)
	}
	if ranked[0].Resource.ID != "a" || ranked[1].Resource.ID != "b" {
		t.Errorf("tie order = [%s %s], want [a b]", ranked[0].Resource.ID, ranked[1].Resource.ID)
	}
}

func TestSignals_Explain(t *testing.T) {
	got := Signals{Title: 0.3, Tags: 0.1}.Explain()
	want := []string{"title +0.30", "tags +0.10"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Explain() = %v, want %v", got, want)
	}
}

func TestSearchResources(t *testing.T) {
	ctx := context.Background()
	uc := chatDemoUseCase()
	uc.CloudPreference = "Azure"
	nv, store := setupNavigator(t, uc)

	res, err := nv.SearchResources(ctx, uc.ID)
	if err != nil {
		t.Fatalf("SearchResources failed: %v", err)
	}

	m := res.Match
	if m.UseCaseID != uc.ID || m.MatchedBy != AgentName || m.Status != models.MatchActive {
		t.Errorf("unexpected match header: %+v", m)
	}
	if len(m.Resources) != len(res.Candidates) {
		t.Errorf("kept %d resources of %d candidates", len(m.Resources), len(res.Candidates))
	}
	for i := 1; i < len(m.Resources); i++ {
		if m.Resources[i].RelevanceScore > m.Resources[i-1].RelevanceScore {
			t.Errorf("resources not sorted at %d", i)
		}
	}
	if m.Notes == "" {
		t.Error("expected notes")
	}

	stored, err := state.Get[models.ResourceMatch](ctx, store, state.CollectionResourceMatches, m.ID)
	if err != nil || stored == nil {
		t.Fatalf("match not stored: %v", err)
	}

	// A second search supersedes the first.
	res2, err := nv.SearchResources(ctx, uc.ID)
	if err != nil {
		t.Fatalf("second SearchResources failed: %v", err)
	}
	active, _ := state.ActiveMatch(ctx, store, uc.ID)
	if active == nil || active.ID != res2.Match.ID {
		t.Errorf("active match = %v, want %s", active, res2.Match.ID)
	}
	first, _ := state.Get[models.ResourceMatch](ctx, store, state.CollectionResourceMatches, m.ID)
	if first.Status != models.MatchSuperseded {
		t.Errorf("first match status = %q, want superseded", first.Status)
	}
}

func TestSearchResources_MaxResults(t *testing.T) {
	uc := models.NewUseCase("anything", "azure ai iot analytics document auth", "tester")
	store := state.NewMemoryStore()
	store.Create(context.Background(), state.CollectionUseCases, uc)
	nv := New(store, catalog.Mock(), WithMaxResults(2))

	res, err := nv.SearchResources(context.Background(), uc.ID)
	if err != nil {
		t.Fatalf("SearchResources failed: %v", err)
	}
	if len(res.Match.Resources) != 2 {
		t.Errorf("kept %d resources, want 2", len(res.Match.Resources))
	}
}

func TestSearchResources_Errors(t *testing.T) {
	nv, _ := setupNavigator(t)

	_, err := nv.SearchResources(context.Background(), "missing")
	if !errors.Is(err, state.ErrNotFound) {
		t.Errorf("missing use case error = %v, want ErrNotFound", err)
	}

	_, err = nv.SearchResources(context.Background(), "")
	var verr *state.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("empty id error = %v, want ValidationError", err)
	}
}

func TestGenerateBOM_Standalone(t *testing.T) {
	uc := models.NewUseCase("t", "d", "tester")
	uc.CloudPreference = "aws"
	uc.Constraints.ComplianceRequirements = []string{"HIPAA"}
	uc.Constraints.Timeline = "urgent"
	nv, _ := setupNavigator(t, uc)

	items, err := nv.GenerateBOM(context.Background(), uc.ID)
	if err != nil {
		t.Fatalf("GenerateBOM failed: %v", err)
	}
	names := itemNames(items)
	want := []string{"AWS Account", "CodePipeline", "CloudWatch", "HIPAA Compliance Tools",
		"Project Management", "Technical Documentation", "Rapid Deployment Framework"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("GenerateBOM() = %v, want %v", names, want)
	}
}

func TestScore_Precision(t *testing.T) {
	nv, _ := setupNavigator(t)
	_, ranked := nv.Rank(chatDemoUseCase())
	// title 0.3 + description 3*0.02 + type 0.2 + tags 2*0.05
	if math.Abs(ranked[0].Score-0.66) > 1e-9 {
		t.Errorf("top score = %v, want 0.66", ranked[0].Score)
	}
}
