package navigator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ShayCichocki/embassy/pkg/models"
)

// Scoring constants.
const (
	TitleOverlapScore    = 0.3
	DescriptionWordScore = 0.02
	DescriptionCap       = 0.3
	TypeMatchScore       = 0.2
	IndustryMatchScore   = 0.15
	TagMatchScore        = 0.05
	TagCap               = 0.25
)

// Signals breaks a relevance score into its contributions.
type Signals struct {
	Title       float64 `json:"title"`
	Description float64 `json:"description"`
	Type        float64 `json:"type"`
	Industry    float64 `json:"industry"`
	Tags        float64 `json:"tags"`
}

// Total sums the contributions and clamps the result to [0,1].
func (s Signals) Total() float64 {
	return clamp(s.Title + s.Description + s.Type + s.Industry + s.Tags)
}

// Explain lists the non-zero contributions in a fixed order.
func (s Signals) Explain() []string {
	var out []string
	add := func(name string, v float64) {
		if v > 0 {
			out = append(out, fmt.Sprintf("%s +%.2f", name, v))
		}
	}
	add("title", s.Title)
	add("description", s.Description)
	add("type", s.Type)
	add("industry", s.Industry)
	add("tags", s.Tags)
	return out
}

// ScoredCandidate pairs a catalog resource with its relevance.
type ScoredCandidate struct {
	Resource models.CatalogResource
	Score    float64
	Signals  Signals
}

// Recommended projects the candidate into its persisted form.
func (c ScoredCandidate) Recommended() models.RecommendedResource {
	return models.RecommendedResource{
		ResourceID:     c.Resource.ID,
		Title:          c.Resource.Title,
		Type:           c.Resource.Type,
		RelevanceScore: c.Score,
		Description:    c.Resource.Description,
		Link:           c.Resource.Link,
	}
}

// Scorer computes relevance of resources against one use case.
// Token sets are computed once per use case.
type Scorer struct {
	useCase     *models.UseCase
	titleTokens map[string]struct{}
	descTokens  map[string]struct{}
	keywords    map[string]struct{}
}

// NewScorer prepares a scorer for uc using the derived keyword set.
func NewScorer(uc *models.UseCase, terms SearchTerms) *Scorer {
	kw := make(map[string]struct{}, len(terms.Keywords))
	for _, k := range terms.Keywords {
		kw[strings.ToLower(k)] = struct{}{}
	}
	return &Scorer{
		useCase:     uc,
		titleTokens: tokenSet(uc.Title),
		descTokens:  tokenSet(uc.Description),
		keywords:    kw,
	}
}

// Score rates r against the use case.
func (s *Scorer) Score(r models.CatalogResource) ScoredCandidate {
	var sig Signals

	for w := range tokenSet(r.Title) {
		if _, ok := s.titleTokens[w]; ok {
			sig.Title = TitleOverlapScore
			break
		}
	}

	overlap := 0
	for w := range tokenSet(r.Description) {
		if _, ok := s.descTokens[w]; ok {
			overlap++
		}
	}
	sig.Description = min(DescriptionCap, float64(overlap)*DescriptionWordScore)

	if s.useCase.PrefersType(r.Type) {
		sig.Type = TypeMatchScore
	}

	if ind := strings.TrimSpace(s.useCase.Industry); ind != "" && r.HasIndustry(ind) {
		sig.Industry = IndustryMatchScore
	}

	tagHits := 0
	for _, tag := range r.Tags {
		if _, ok := s.keywords[strings.ToLower(tag)]; ok {
			tagHits++
		}
	}
	sig.Tags = min(TagCap, float64(tagHits)*TagMatchScore)

	return ScoredCandidate{Resource: r, Score: sig.Total(), Signals: sig}
}

// Rank scores every resource and sorts by score descending.
// Equal scores keep their input order.
func (s *Scorer) Rank(resources []models.CatalogResource) []ScoredCandidate {
	out := make([]ScoredCandidate, len(resources))
	for i, r := range resources {
		out[i] = s.Score(r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func clamp(v float64) float64 {
	return max(0, min(1, v))
}
