package agents

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"resumelens/internal/prompts"
)

// ParseOutcome distinguishes a fully parsed agent result from one that fell
// back to degraded defaults. Parsing never fails outright: an unusable model
// response produces a degraded result with the reason recorded, and only the
// LLM call itself can surface an error to the orchestrator.
type ParseOutcome[T any] struct {
	Result   T
	Degraded bool
	Reason   string
}

const (
	// degradedScore is assigned to every score when parsing falls back.
	degradedScore = 70.0

	// degradedConfidence marks a result built from defaults.
	degradedConfidence = 0.3

	// degradedMarker appears in feedback lists of degraded results.
	degradedMarker = "Analysis incomplete - please retry"
)

// extractScore runs the pattern alternatives for one score key against the
// raw model output. The first pattern whose captured number parses into
// [0,100] wins; otherwise the default applies and matched is false.
func extractScore(raw string, patterns []*regexp.Regexp, defaultScore float64) (score float64, matched bool) {
	for _, pattern := range patterns {
		m := pattern.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil || value < 0 || value > 100 {
			continue
		}
		return value, true
	}
	return defaultScore, false
}

// extractScores extracts every score key and reports how many matched.
func extractScores(raw string, rules prompts.Rules, keys []string) (map[string]float64, int) {
	scores := make(map[string]float64, len(keys))
	matched := 0
	for _, key := range keys {
		value, ok := extractScore(raw, rules.ScorePatterns[key], rules.DefaultScore)
		scores[key] = value
		if ok {
			matched++
		}
	}
	return scores, matched
}

var bulletPrefixes = []string{"- ", "* ", "• "}

var numberedItemRe = regexp.MustCompile(`^\d{1,2}[.)]\s+(.*)`)

// bulletItem reports whether a line is a list item and returns its text.
func bulletItem(line string) (string, bool) {
	for _, prefix := range bulletPrefixes {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.Trim(line[len(prefix):], "*")), true
		}
	}
	if m := numberedItemRe.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(strings.Trim(m[1], "*")), true
	}
	return "", false
}

// matchSectionHeader reports which feedback category a header line opens.
func matchSectionHeader(line string, keywords map[string][]string) (string, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(line))
	cleaned = strings.Trim(cleaned, "#*:= ")
	if cleaned == "" || len(cleaned) > 60 {
		return "", false
	}
	for category, names := range keywords {
		for _, name := range names {
			if strings.HasPrefix(cleaned, name) {
				return category, true
			}
		}
	}
	return "", false
}

// extractSections scans the model output line by line, flipping the current
// category on header lines and collecting bullet or numbered items under it.
// Every category key is present in the returned map, empty when nothing was
// collected.
func extractSections(raw string, keywords map[string][]string) map[string][]string {
	sections := make(map[string][]string, len(keywords))
	for category := range keywords {
		sections[category] = []string{}
	}

	current := ""
	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if item, ok := bulletItem(line); ok {
			if current != "" && item != "" {
				sections[current] = append(sections[current], item)
			}
			continue
		}
		if category, ok := matchSectionHeader(line, keywords); ok {
			current = category
		}
	}
	return sections
}

// wordCount counts whitespace-separated tokens.
func wordCount(text string) int {
	return len(strings.Fields(text))
}

// readingTimeMinutes estimates reading time at 200 words per minute,
// with a floor of one minute.
func readingTimeMinutes(words int) int {
	minutes := words / 200
	if minutes < 1 {
		return 1
	}
	return minutes
}

// resumeSectionNames is the dictionary used to detect named resume sections
// in the input text. Both English and Japanese section labels are covered.
var resumeSectionNames = []string{
	"summary", "objective", "profile",
	"experience", "employment", "work history",
	"education", "skills", "projects",
	"certifications", "licenses", "awards",
	"publications", "languages", "references", "contact",
	"職務経歴", "職歴", "学歴", "スキル", "資格", "自己pr", "志望動機",
}

// detectSections counts distinct resume section names present in the text.
func detectSections(text string) (names []string, count int) {
	lowered := strings.ToLower(text)
	for _, name := range resumeSectionNames {
		if strings.Contains(lowered, name) {
			names = append(names, name)
		}
	}
	return names, len(names)
}

// clampConfidence bounds a confidence blend to [0.3, 1.0]. The floor keeps
// even heavily degraded results from reporting near-zero certainty.
func clampConfidence(v float64) float64 {
	if v < 0.3 {
		return 0.3
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

// scoreValidityRatio is the fraction of scores extracted from the output
// rather than defaulted.
func scoreValidityRatio(matched, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total)
}

// feedbackCompleteness normalizes the total collected feedback items against
// an expectation of eight.
func feedbackCompleteness(totalItems int) float64 {
	v := float64(totalItems) / 8.0
	if v > 1.0 {
		return 1.0
	}
	return v
}

// outputStructureFactor is a coarse shape check on the raw output: half the
// factor for minimum length, half for the share of expected keywords present.
func outputStructureFactor(raw string, expectedKeywords []string) float64 {
	factor := 0.0
	if len(raw) >= 200 {
		factor += 0.5
	}
	if len(expectedKeywords) > 0 {
		lowered := strings.ToLower(raw)
		hits := 0
		for _, keyword := range expectedKeywords {
			if strings.Contains(lowered, strings.ToLower(keyword)) {
				hits++
			}
		}
		factor += 0.5 * float64(hits) / float64(len(expectedKeywords))
	}
	return factor
}

// consistencyFactor sanity-checks the score average against the volume of
// reported problems. High scores with many issues, or low scores with none,
// both reduce trust in the parse.
func consistencyFactor(avgScore float64, issueCount int) float64 {
	switch {
	case avgScore >= 80 && issueCount > 6:
		return 0.4
	case avgScore < 50 && issueCount == 0:
		return 0.4
	case avgScore >= 80 && issueCount > 3:
		return 0.7
	default:
		return 1.0
	}
}

// keywordPresenceFactor is the share of profile keywords found in the raw
// output, used by the appeal confidence blend.
func keywordPresenceFactor(raw string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	lowered := strings.ToLower(raw)
	hits := 0
	for _, keyword := range keywords {
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords))
}

// totalItems sums the collected feedback list lengths.
func totalItems(sections map[string][]string) int {
	total := 0
	for _, items := range sections {
		total += len(items)
	}
	return total
}
