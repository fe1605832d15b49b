// Package confidence turns the per-stage outputs of a pipeline run into a
// single reliability estimate with per-component breakdown, insights, and
// improvement recommendations.
package confidence

import (
	"fmt"
	"sort"

	"resume-pipeline/internal/resumes"
)

// Level names for the aggregate score.
const (
	LevelHigh    = "High Confidence"
	LevelMedium  = "Medium Confidence"
	LevelLow     = "Low Confidence"
	LevelVeryLow = "Very Low Confidence"
)

// weakComponentThreshold marks a component as worth a note and a
// recommendation.
const weakComponentThreshold = 60.0

const maxRecommendations = 3

type component struct {
	name   string
	weight float64
	score  *float64
	note   string
	advice string
}

// Compute derives the component scores from a record and aggregates them.
func Compute(r *resumes.Resume) resumes.ConfidenceSummary {
	components := resumes.ComponentScores{
		TranscriptionQuality:     transcriptionScore(r.Transcription),
		NameExtraction:           nameScore(r.Parsed),
		ContactExtraction:        contactScore(r.Parsed),
		SkillsCategorization:     skillsScore(r.Parsed),
		ExperienceLevelInference: experienceScore(r.Parsed),
		EntityRecognition:        entitiesScore(r.Parsed),
		OverallCompleteness:      completenessScore(r.Parsed),
	}
	return Summarize(components)
}

// Summarize aggregates component scores with fixed weights, renormalized
// over the components that apply.
func Summarize(scores resumes.ComponentScores) resumes.ConfidenceSummary {
	components := []component{
		{"transcription quality", 0.20, scores.TranscriptionQuality,
			"the audio transcript may contain recognition errors",
			"Re-record the audio in a quieter environment and speak clearly."},
		{"name extraction", 0.15, scores.NameExtraction,
			"the candidate name could not be confirmed",
			"State the full name plainly at the top of the resume."},
		{"contact extraction", 0.10, scores.ContactExtraction,
			"contact details are missing or malformed",
			"Include a valid email address and a full phone number."},
		{"skills categorization", 0.20, scores.SkillsCategorization,
			"listed skills were hard to categorize",
			"Use widely recognized names for skills and technologies."},
		{"experience level inference", 0.15, scores.ExperienceLevelInference,
			"seniority could not be inferred with confidence",
			"Describe years of experience and role scope explicitly."},
		{"entity recognition", 0.10, scores.EntityRecognition,
			"few organizations or places were recognized",
			"Name employers and institutions in full."},
		{"completeness", 0.10, scores.OverallCompleteness,
			"required resume sections are missing",
			"Fill in the missing sections so the resume covers name, contact, skills, experience, and education."},
	}

	weightSum := 0.0
	weighted := 0.0
	applicable := components[:0:0]
	for _, c := range components {
		if c.score == nil {
			continue
		}
		weightSum += c.weight
		weighted += c.weight * *c.score
		applicable = append(applicable, c)
	}

	overall := 0.0
	if weightSum > 0 {
		overall = weighted / weightSum
	}

	summary := resumes.ConfidenceSummary{
		OverallScore: overall,
		Level:        levelFor(overall),
		Components:   scores,
	}

	summary.Insights = append(summary.Insights, overallInsight(overall))
	sort.SliceStable(applicable, func(i, j int) bool {
		return *applicable[i].score < *applicable[j].score
	})
	for _, c := range applicable {
		if *c.score >= weakComponentThreshold {
			continue
		}
		summary.Insights = append(summary.Insights, fmt.Sprintf("Weak %s: %s.", c.name, c.note))
		if len(summary.Recommendations) < maxRecommendations {
			summary.Recommendations = append(summary.Recommendations, c.advice)
		}
	}
	return summary
}

func levelFor(score float64) string {
	switch {
	case score >= 80:
		return LevelHigh
	case score >= 60:
		return LevelMedium
	case score >= 40:
		return LevelLow
	default:
		return LevelVeryLow
	}
}

func overallInsight(score float64) string {
	switch {
	case score >= 80:
		return fmt.Sprintf("Extraction looks reliable overall (score %.0f/100).", score)
	case score >= 60:
		return fmt.Sprintf("Extraction is usable but has gaps (score %.0f/100).", score)
	case score >= 40:
		return fmt.Sprintf("Extraction quality is limited; review the parsed fields (score %.0f/100).", score)
	default:
		return fmt.Sprintf("Extraction quality is poor; most fields need manual review (score %.0f/100).", score)
	}
}
