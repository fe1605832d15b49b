package transcription

import (
	"strings"
	"testing"

	"resume-pipeline/internal/resumes"
)

func wordsOfLength(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = "resume"
	}
	// vary words to dodge the consecutive-repeat heuristic
	for i := 1; i < len(words); i += 2 {
		words[i] = "engineer"
	}
	return strings.Join(words, " ")
}

func TestAssessQualityShortTranscriptCapsAtMedium(t *testing.T) {
	q := AssessQuality(wordsOfLength(30))
	if q.Level != resumes.QualityLow {
		// 30 words is below both thresholds
		t.Fatalf("level = %s, want low for 30 words", q.Level)
	}

	q = AssessQuality(wordsOfLength(80))
	if q.Level != resumes.QualityMedium {
		t.Fatalf("level = %s, want medium for 80 words", q.Level)
	}

	q = AssessQuality(wordsOfLength(150))
	if q.Level != resumes.QualityHigh {
		t.Fatalf("level = %s, want high for 150 words", q.Level)
	}
}

func TestAssessQualityRepeatedWordIsLow(t *testing.T) {
	base := wordsOfLength(150)
	text := base + " test test test test test"
	q := AssessQuality(text)
	if q.Level != resumes.QualityLow {
		t.Fatalf("level = %s, want low for repeated word", q.Level)
	}
}

func TestAssessQualityGibberishAverageLength(t *testing.T) {
	long := make([]string, 120)
	for i := range long {
		long[i] = "pneumonoultramicroscopics"
	}
	// break up repeats
	for i := 1; i < len(long); i += 2 {
		long[i] = "antidisestablishmentarian"
	}
	q := AssessQuality(strings.Join(long, " "))
	if q.Level != resumes.QualityLow {
		t.Fatalf("level = %s, want low for implausible word length", q.Level)
	}
}

func TestQualityRecommendations(t *testing.T) {
	text := "My name is Jane. I am an engineer with ten years of experience. " + wordsOfLength(120) + ". Done. Yes. Sure."
	q := AssessQuality(text)
	for _, rec := range q.Recommendations {
		if strings.Contains(rec, "quieter") {
			t.Errorf("unexpected low-quality recommendation for %s transcript", q.Level)
		}
	}

	found := false
	for _, rec := range q.Recommendations {
		if strings.Contains(rec, "email") {
			found = true
		}
	}
	if !found {
		t.Error("expected email recommendation when no address is present")
	}

	withContact := text + " Reach me at jane@example.com or 415-555-0123."
	q = AssessQuality(withContact)
	for _, rec := range q.Recommendations {
		if strings.Contains(rec, "email") || strings.Contains(rec, "phone") {
			t.Errorf("unexpected contact recommendation: %s", rec)
		}
	}
}
