package navigator

import (
	"context"
	"fmt"
	"sort"

	"github.com/ShayCichocki/embassy/internal/catalog"
	"github.com/ShayCichocki/embassy/internal/logging"
	"github.com/ShayCichocki/embassy/internal/state"
	"github.com/ShayCichocki/embassy/pkg/models"
)

// AgentName identifies the navigator in logs, matches and activity entries.
const AgentName = "NavigatorAgent"

// Searcher is the catalog capability the navigator needs.
type Searcher interface {
	Search(f catalog.Filter) []models.CatalogResource
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithMaxResults sets how many ranked resources are kept in a match.
func WithMaxResults(n int) Option {
	return func(nv *Navigator) {
		if n > 0 {
			nv.maxResults = n
		}
	}
}

// WithBOMTopN sets how many top candidates become BOM lines.
func WithBOMTopN(n int) Option {
	return func(nv *Navigator) { nv.bom = NewBOMDeriver(n, nv.log) }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(nv *Navigator) {
		nv.log = logging.OrNop(l).Named("navigator")
		nv.bom.log = nv.log
	}
}

// Navigator composes catalog search, relevance scoring and BOM derivation.
type Navigator struct {
	store      state.Store
	catalog    Searcher
	bom        *BOMDeriver
	log        *logging.Logger
	maxResults int
}

// New creates a Navigator over store and catalog.
func New(store state.Store, cat Searcher, opts ...Option) *Navigator {
	nv := &Navigator{
		store:      store,
		catalog:    cat,
		log:        logging.Nop(),
		maxResults: 10,
	}
	nv.bom = NewBOMDeriver(5, nv.log)
	for _, opt := range opts {
		opt(nv)
	}
	return nv
}

// MatchResult is the outcome of SearchResources.
type MatchResult struct {
	Match      *models.ResourceMatch
	Terms      SearchTerms
	Candidates []ScoredCandidate
}

// Candidates runs every search strategy for terms, deduplicating by resource id.
// Strategies run keyword first, then preferred type, then industry. The result
// is in catalog order regardless of which strategy surfaced a resource.
func (n *Navigator) Candidates(terms SearchTerms) []models.CatalogResource {
	seen := make(map[string]bool)
	var out []models.CatalogResource
	collect := func(rs []models.CatalogResource) {
		for _, r := range rs {
			if !seen[r.ID] {
				seen[r.ID] = true
				out = append(out, r)
			}
		}
	}

	for _, kw := range terms.Keywords {
		collect(n.catalog.Search(catalog.Filter{Query: kw}))
	}
	for _, t := range terms.ResourceTypes {
		collect(n.catalog.Search(catalog.Filter{Type: string(t)}))
	}
	if terms.Industry != "" {
		collect(n.catalog.Search(catalog.Filter{Industry: terms.Industry}))
	}

	// An empty filter lists the whole catalog in insertion order.
	position := make(map[string]int)
	for i, r := range n.catalog.Search(catalog.Filter{}) {
		position[r.ID] = i
	}
	sort.SliceStable(out, func(i, j int) bool {
		return position[out[i].ID] < position[out[j].ID]
	})
	return out
}

// Rank derives terms for uc, searches the catalog and ranks the candidates.
// It does not touch the store.
func (n *Navigator) Rank(uc *models.UseCase) (SearchTerms, []ScoredCandidate) {
	terms := ExtractTerms(uc)
	candidates := n.Candidates(terms)
	return terms, NewScorer(uc, terms).Rank(candidates)
}

// SearchResources matches a stored use case against the catalog, stores the
// resulting ResourceMatch and marks earlier matches superseded.
func (n *Navigator) SearchResources(ctx context.Context, useCaseID string) (*MatchResult, error) {
	uc, err := n.loadUseCase(ctx, useCaseID)
	if err != nil {
		return nil, err
	}

	terms, ranked := n.Rank(uc)

	match := models.NewResourceMatch(uc.ID, AgentName)
	top := ranked
	if len(top) > n.maxResults {
		top = top[:n.maxResults]
	}
	for _, c := range top {
		match.Resources = append(match.Resources, c.Recommended())
	}
	match.BOM = n.bom.Derive(uc, ranked)
	match.Notes = fmt.Sprintf("Found %d potential matches, returning top %d", len(ranked), len(top))

	previous, err := state.UseCaseMatches(ctx, n.store, uc.ID)
	if err != nil {
		return nil, fmt.Errorf("load previous matches: %w", err)
	}

	if _, err := n.store.Create(ctx, state.CollectionResourceMatches, match); err != nil {
		n.log.Error("storing resource match failed", "use_case_id", uc.ID, "error", err)
		return nil, fmt.Errorf("store resource match: %w", err)
	}

	for _, old := range previous {
		if old.Status != models.MatchActive {
			continue
		}
		old.Status = models.MatchSuperseded
		if _, err := n.store.Update(ctx, state.CollectionResourceMatches, old.ID, old); err != nil {
			n.log.Warn("superseding old match failed", "match_id", old.ID, "error", err)
		}
	}

	n.log.Info("resource search completed",
		"use_case_id", uc.ID,
		"keywords", terms.Keywords,
		"candidates", len(ranked),
		"returned", len(top),
		"bom_items", len(match.BOM),
	)

	return &MatchResult{Match: match, Terms: terms, Candidates: ranked}, nil
}

// GenerateBOM derives a standalone BOM for a stored use case, without catalog matches.
func (n *Navigator) GenerateBOM(ctx context.Context, useCaseID string) ([]models.BOMItem, error) {
	uc, err := n.loadUseCase(ctx, useCaseID)
	if err != nil {
		return nil, err
	}
	items := n.bom.Derive(uc, nil)
	n.log.Info("standalone BOM generated", "use_case_id", uc.ID, "items", len(items))
	return items, nil
}

// Search queries the catalog directly.
func (n *Navigator) Search(f catalog.Filter) []models.CatalogResource {
	return n.catalog.Search(f)
}

func (n *Navigator) loadUseCase(ctx context.Context, id string) (*models.UseCase, error) {
	if id == "" {
		return nil, &state.ValidationError{Collection: state.CollectionUseCases, Reason: "no use case id provided"}
	}
	uc, err := state.Get[models.UseCase](ctx, n.store, state.CollectionUseCases, id)
	if err != nil {
		n.log.Error("loading use case failed", "use_case_id", id, "error", err)
		return nil, fmt.Errorf("load use case: %w", err)
	}
	if uc == nil {
		return nil, fmt.Errorf("use case %s: %w", id, state.ErrNotFound)
	}
	return uc, nil
}
