package confidence

import (
	"strings"
	"testing"

	"resume-pipeline/internal/resumes"
)

func score(v float64) *float64 { return &v }

func TestSummarizeAllPerfectComponents(t *testing.T) {
	s := Summarize(resumes.ComponentScores{
		TranscriptionQuality:     score(100),
		NameExtraction:           score(100),
		ContactExtraction:        score(100),
		SkillsCategorization:     score(100),
		ExperienceLevelInference: score(100),
		EntityRecognition:        score(100),
		OverallCompleteness:      score(100),
	})
	if s.OverallScore != 100 {
		t.Errorf("OverallScore = %v, want 100", s.OverallScore)
	}
	if s.Level != LevelHigh {
		t.Errorf("Level = %q, want %q", s.Level, LevelHigh)
	}
	if len(s.Recommendations) != 0 {
		t.Errorf("Recommendations = %v, want none", s.Recommendations)
	}
}

func TestSummarizeOnlyCompletenessZero(t *testing.T) {
	s := Summarize(resumes.ComponentScores{OverallCompleteness: score(0)})
	if s.OverallScore != 0 {
		t.Errorf("OverallScore = %v, want 0", s.OverallScore)
	}
	if s.Level != LevelVeryLow {
		t.Errorf("Level = %q, want %q", s.Level, LevelVeryLow)
	}
}

func TestSummarizeRenormalizesOverApplicableComponents(t *testing.T) {
	// name (0.15) at 80 and skills (0.20) at 50:
	// (0.15*80 + 0.20*50) / 0.35 = 62.857...
	s := Summarize(resumes.ComponentScores{
		NameExtraction:       score(80),
		SkillsCategorization: score(50),
	})
	want := (0.15*80 + 0.20*50) / 0.35
	if diff := s.OverallScore - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("OverallScore = %v, want %v", s.OverallScore, want)
	}
	if s.Level != LevelMedium {
		t.Errorf("Level = %q, want %q", s.Level, LevelMedium)
	}
}

func TestSummarizeRecommendationsWorstFirstCapped(t *testing.T) {
	s := Summarize(resumes.ComponentScores{
		TranscriptionQuality: score(40),
		NameExtraction:       score(20),
		ContactExtraction:    score(30),
		SkillsCategorization: score(50),
		OverallCompleteness:  score(55),
	})
	if len(s.Recommendations) != maxRecommendations {
		t.Fatalf("Recommendations = %v, want %d entries", s.Recommendations, maxRecommendations)
	}
	// worst component is name extraction at 20
	if !strings.Contains(s.Recommendations[0], "full name") {
		t.Errorf("first recommendation should target the weakest component: %q", s.Recommendations[0])
	}
}

func TestComputeCrossChecksNameAgainstEntities(t *testing.T) {
	r := &resumes.Resume{
		Parsed: &resumes.ParsedPayload{
			Name:  "Jane Doe",
			Email: "jane@example.com",
			Phone: "4155550123",
			AIEnhancement: &resumes.EnhancementPayload{
				Entities: resumes.DetectedEntities{
					Persons: []resumes.Entity{{Text: "Jane Doe", Score: 0.98}},
				},
				Completeness: resumes.Completeness{Score: 66.7},
			},
		},
	}
	s := Compute(r)
	if s.Components.NameExtraction == nil || *s.Components.NameExtraction != 95 {
		t.Errorf("NameExtraction = %v, want 95 after entity cross-check", s.Components.NameExtraction)
	}
	if s.Components.TranscriptionQuality != nil {
		t.Error("TranscriptionQuality should not apply to a document record")
	}
	if s.Components.ContactExtraction == nil || *s.Components.ContactExtraction != 100 {
		t.Errorf("ContactExtraction = %v, want 100", s.Components.ContactExtraction)
	}
}

func TestComputeExperienceRescale(t *testing.T) {
	r := &resumes.Resume{
		Parsed: &resumes.ParsedPayload{
			AIEnhancement: &resumes.EnhancementPayload{
				ExperienceLevel: &resumes.ExperienceLevel{Label: "Senior", Confidence: 0.5},
			},
		},
	}
	s := Compute(r)
	if s.Components.ExperienceLevelInference == nil || *s.Components.ExperienceLevelInference != 70 {
		t.Errorf("ExperienceLevelInference = %v, want 70 (40 + 0.6*50)", s.Components.ExperienceLevelInference)
	}
}
