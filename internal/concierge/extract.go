package concierge

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinDescriptionLength is the shortest free-text description accepted.
const MinDescriptionLength = 20

// maxTitleLength bounds a title taken from the first sentence.
const maxTitleLength = 100

var (
	extractIndustries = []string{"finance", "healthcare", "retail", "manufacturing", "education", "government"}

	// extractClouds is checked in order; the first mention wins.
	extractClouds = []struct {
		name     string
		mentions []string
	}{
		{"Azure", []string{"azure"}},
		{"AWS", []string{"aws"}},
		{"GCP", []string{"gcp", "google cloud"}},
	}

	extractTypes = []struct {
		name string
		word string
	}{
		{"Demo", "demo"},
		{"Solution", "solution"},
		{"Component", "component"},
	}

	// extractTimeline flags a timeline; the first keyword found is recorded.
	extractTimeline = []string{"urgent", "asap", "immediate", "month", "week", "quarter", "deadline"}

	wordPattern = regexp.MustCompile(`[a-z0-9]+`)
)

// Extract pulls intake fields out of a free-text description. It never
// fails: a signal that is absent leaves its field unset. The description
// itself is always recorded.
func Extract(description string) map[string]string {
	description = strings.TrimSpace(description)
	lower := strings.ToLower(description)
	words := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(lower, -1) {
		words[w] = true
	}
	mentions := func(term string) bool {
		if strings.Contains(term, " ") {
			return strings.Contains(lower, term)
		}
		return words[term] || words[term+"s"]
	}

	out := map[string]string{
		FieldTitle:       titleFrom(description),
		FieldDescription: description,
	}

	for _, ind := range extractIndustries {
		if mentions(ind) {
			out[FieldIndustry] = strings.ToUpper(ind[:1]) + ind[1:]
			break
		}
	}

cloud:
	for _, c := range extractClouds {
		for _, m := range c.mentions {
			if mentions(m) {
				out[FieldCloudPreference] = c.name
				break cloud
			}
		}
	}

	var types []string
	for _, t := range extractTypes {
		if mentions(t.word) {
			types = append(types, t.name)
		}
	}
	if len(types) > 0 {
		out[FieldResourceTypes] = strings.Join(types, ", ")
	}

	for _, kw := range extractTimeline {
		if strings.Contains(lower, kw) {
			out[FieldTimeline] = "Contains timeline reference: " + kw
			break
		}
	}

	return out
}

// titleFrom returns the first sentence when it is short enough to be a title.
func titleFrom(description string) string {
	first, _, _ := strings.Cut(description, ".")
	first = strings.TrimSpace(first)
	if first == "" || utf8.RuneCountInString(first) >= maxTitleLength {
		return defaultTitle
	}
	return first
}

// mergeExtraction folds a re-extraction into collected. The description is
// replaced; other fields are only filled where still empty, so earlier
// edits survive.
func mergeExtraction(collected, extracted map[string]string) map[string]string {
	out := make(map[string]string, len(collected)+len(extracted))
	for k, v := range collected {
		out[k] = v
	}
	for k, v := range extracted {
		switch {
		case k == FieldDescription:
			out[k] = v
		case k == FieldTitle:
			if out[k] == "" || out[k] == defaultTitle {
				out[k] = v
			}
		case out[k] == "":
			out[k] = v
		}
	}
	return out
}
