package agents

import (
	"reflect"
	"testing"

	"resumelens/internal/prompts"
)

const sampleStructureOutput = `FORMAT: 85
ORGANIZATION: 78
TONE: 90
COMPLETENESS: 70

STRUCTURE ISSUES
- Dense paragraphs in the experience section
- Inconsistent date formats

MISSING SECTIONS
- No summary section

TONE PROBLEMS

COMPLETENESS GAPS
- Education lacks graduation dates

STRENGTHS
- Clear chronological ordering
- Strong action verbs

RECOMMENDATIONS
- Add a professional summary
- Normalize date formats`

func TestExtractScore(t *testing.T) {
	rules := structureRulesForTest()

	tests := []struct {
		name        string
		key         string
		raw         string
		wantScore   float64
		wantMatched bool
	}{
		{"labeled line", prompts.ScoreFormat, "FORMAT: 85", 85, true},
		{"decimal score", prompts.ScoreTone, "Tone: 72.5", 72.5, true},
		{"no match falls back", prompts.ScoreFormat, "nothing here", 75, false},
		{"out of range falls back", prompts.ScoreFormat, "FORMAT: 250", 75, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, matched := extractScore(tt.raw, rules.ScorePatterns[tt.key], rules.DefaultScore)
			if score != tt.wantScore || matched != tt.wantMatched {
				t.Errorf("extractScore = (%v, %v), want (%v, %v)",
					score, matched, tt.wantScore, tt.wantMatched)
			}
		})
	}
}

func TestExtractSections(t *testing.T) {
	rules := structureRulesForTest()
	sections := extractSections(sampleStructureOutput, rules.SectionKeywords)

	if got := len(sections[prompts.SectionIssues]); got != 2 {
		t.Errorf("expected 2 issues, got %d: %v", got, sections[prompts.SectionIssues])
	}
	if got := len(sections[prompts.SectionMissingSections]); got != 1 {
		t.Errorf("expected 1 missing section, got %d", got)
	}
	if got := len(sections[prompts.SectionToneProblems]); got != 0 {
		t.Errorf("expected empty tone problems, got %v", sections[prompts.SectionToneProblems])
	}
	if got := sections[prompts.SectionStrengths][0]; got != "Clear chronological ordering" {
		t.Errorf("unexpected first strength: %q", got)
	}

	// Every category key is present even when empty
	for _, key := range []string{
		prompts.SectionIssues, prompts.SectionMissingSections,
		prompts.SectionToneProblems, prompts.SectionCompletenessGaps,
		prompts.SectionStrengths, prompts.SectionRecommendations,
	} {
		if _, ok := sections[key]; !ok {
			t.Errorf("missing category key %s", key)
		}
	}
}

func TestExtractSectionsNumberedItems(t *testing.T) {
	raw := `RECOMMENDATIONS
1. Add a summary
2) Shorten bullet points
10. Use consistent tense`

	rules := structureRulesForTest()
	sections := extractSections(raw, rules.SectionKeywords)
	got := sections[prompts.SectionRecommendations]
	want := []string{"Add a summary", "Shorten bullet points", "Use consistent tense"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("numbered items = %v, want %v", got, want)
	}
}

func TestParsingIsDeterministic(t *testing.T) {
	rules := structureRulesForTest()

	first := ParseStructureResponse(sampleStructureOutput, rules)
	second := ParseStructureResponse(sampleStructureOutput, rules)

	if !reflect.DeepEqual(first, second) {
		t.Error("parsing the same raw output twice produced different results")
	}
}

func TestWordCountAndReadingTime(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantWords   int
		wantMinutes int
	}{
		{"empty", "", 0, 1},
		{"few words", "one two three", 3, 1},
		{"exactly 400 words", repeatWords("word", 400), 400, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words := wordCount(tt.text)
			if words != tt.wantWords {
				t.Errorf("wordCount = %d, want %d", words, tt.wantWords)
			}
			if minutes := readingTimeMinutes(words); minutes != tt.wantMinutes {
				t.Errorf("readingTimeMinutes = %d, want %d", minutes, tt.wantMinutes)
			}
		})
	}
}

func TestDetectSections(t *testing.T) {
	text := `PROFESSIONAL SUMMARY
Seasoned engineer.

EXPERIENCE
Acme Corp, 2018-2024

EDUCATION
BSc Computer Science

SKILLS
Go, SQL`

	names, count := detectSections(text)
	if count < 4 {
		t.Errorf("expected at least 4 detected sections, got %d (%v)", count, names)
	}
}

func TestConfidenceHelpers(t *testing.T) {
	if got := clampConfidence(0.1); got != 0.3 {
		t.Errorf("clampConfidence(0.1) = %v, want 0.3", got)
	}
	if got := clampConfidence(1.5); got != 1.0 {
		t.Errorf("clampConfidence(1.5) = %v, want 1.0", got)
	}
	if got := scoreValidityRatio(2, 4); got != 0.5 {
		t.Errorf("scoreValidityRatio(2,4) = %v, want 0.5", got)
	}
	if got := feedbackCompleteness(16); got != 1.0 {
		t.Errorf("feedbackCompleteness(16) = %v, want 1.0", got)
	}
	if got := feedbackCompleteness(4); got != 0.5 {
		t.Errorf("feedbackCompleteness(4) = %v, want 0.5", got)
	}
	if got := consistencyFactor(90, 8); got != 0.4 {
		t.Errorf("consistencyFactor(90, 8) = %v, want 0.4", got)
	}
	if got := consistencyFactor(40, 0); got != 0.4 {
		t.Errorf("consistencyFactor(40, 0) = %v, want 0.4", got)
	}
	if got := consistencyFactor(70, 2); got != 1.0 {
		t.Errorf("consistencyFactor(70, 2) = %v, want 1.0", got)
	}
}

// structureRulesForTest returns the built-in structure parsing rules.
func structureRulesForTest() prompts.Rules {
	registry, err := prompts.NewRegistry("en", "")
	if err != nil {
		panic(err)
	}
	tmpl, err := registry.Get(prompts.AgentStructure, prompts.VersionV11)
	if err != nil {
		panic(err)
	}
	return tmpl.Rules
}

// appealRulesForTest returns the built-in appeal parsing rules.
func appealRulesForTest() prompts.Rules {
	registry, err := prompts.NewRegistry("en", "")
	if err != nil {
		panic(err)
	}
	tmpl, err := registry.Get(prompts.AgentAppeal, prompts.VersionV11)
	if err != nil {
		panic(err)
	}
	return tmpl.Rules
}

func repeatWords(word string, n int) string {
	out := make([]byte, 0, n*(len(word)+1))
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, word...)
	}
	return string(out)
}
