// Package navigator finds catalog resources for a use case, ranks them,
// and derives a bill of materials.
package navigator

import (
	"regexp"
	"strings"

	"github.com/ShayCichocki/embassy/pkg/models"
)

// KeywordGroup maps a base keyword to phrases that imply it.
type KeywordGroup struct {
	Base       string
	Variations []string
}

// KeywordMapping is the fixed vocabulary used to derive keywords from a description.
// Order is significant: derived keywords follow it.
var KeywordMapping = []KeywordGroup{
	{"ai", []string{"artificial intelligence", "machine learning", "ml", "openai", "cognitive"}},
	{"chat", []string{"chatbot", "conversation", "dialogue", "messaging"}},
	{"document", []string{"doc", "pdf", "file", "paper", "text"}},
	{"analytics", []string{"analysis", "reporting", "insights", "metrics", "dashboard"}},
	{"iot", []string{"internet of things", "sensors", "devices", "telemetry"}},
	{"auth", []string{"authentication", "authorization", "security", "login"}},
	{"cloud", []string{"azure", "aws", "gcp", "infrastructure"}},
}

// TechKeywords are picked up verbatim from the title and description.
var TechKeywords = []string{
	"api", "database", "web", "mobile", "integration", "platform",
	"service", "application", "system", "solution", "framework",
}

var wordPattern = regexp.MustCompile(`\w+`)

// tokenize lower-cases s and splits it into word tokens.
func tokenize(s string) []string {
	return wordPattern.FindAllString(strings.ToLower(s), -1)
}

// tokenSet returns the distinct tokens of s.
func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range tokenize(s) {
		set[w] = struct{}{}
	}
	return set
}

// SearchTerms are the signals derived from a use case before searching.
type SearchTerms struct {
	Keywords      []string
	ResourceTypes []models.ResourceType
	Industry      string
	Cloud         string
}

// ExtractTerms derives search terms from a use case.
//
// A mapping group contributes its base keyword when the base word or any of
// its variations appears in the description. Single words must match a whole
// token; multi-word variations match as a phrase. Variations that matched are
// added after the base so catalog tags such as "azure" are searched directly.
func ExtractTerms(uc *models.UseCase) SearchTerms {
	terms := SearchTerms{
		ResourceTypes: uc.ResourceTypePreference,
		Industry:      strings.TrimSpace(uc.Industry),
		Cloud:         strings.TrimSpace(uc.CloudPreference),
	}

	desc := strings.ToLower(uc.Description)
	descTokens := tokenSet(uc.Description)
	seen := make(map[string]bool)
	add := func(kw string) {
		if !seen[kw] {
			seen[kw] = true
			terms.Keywords = append(terms.Keywords, kw)
		}
	}

	for _, group := range KeywordMapping {
		_, baseHit := descTokens[group.Base]
		var hits []string
		for _, v := range group.Variations {
			if containsTerm(desc, descTokens, v) {
				hits = append(hits, v)
			}
		}
		if !baseHit && len(hits) == 0 {
			continue
		}
		add(group.Base)
		for _, h := range hits {
			add(h)
		}
	}

	for _, w := range tokenize(uc.Title + " " + uc.Description) {
		for _, tk := range TechKeywords {
			if w == tk {
				add(w)
			}
		}
	}

	return terms
}

func containsTerm(text string, tokens map[string]struct{}, term string) bool {
	if strings.Contains(term, " ") {
		return strings.Contains(text, term)
	}
	_, ok := tokens[term]
	return ok
}
