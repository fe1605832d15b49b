// Package comparison scores a parsed resume against a job description.
// Sub-scores are deterministic heuristics; the semantic-similarity
// component uses an external model and degrades to absent when that call
// fails.
package comparison

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"resume-pipeline/internal/ai"
	"resume-pipeline/internal/resumes"
	"resume-pipeline/internal/shared/telemetry"
)

// Match weights; renormalized when the similarity component is absent.
const (
	weightSkills     = 0.40
	weightExperience = 0.25
	weightEducation  = 0.10
	weightSimilarity = 0.25
)

var seniorityKeywords = []string{"senior", "lead", "principal", "staff", "junior", "entry"}

var degreeKeywords = []string{"bachelor", "master", "phd", "degree", "bs", "ms", "ba", "mba"}

// Engine computes match results.
type Engine struct {
	Similarity ai.SimilarityScorer
}

func NewEngine(similarity ai.SimilarityScorer) *Engine {
	return &Engine{Similarity: similarity}
}

// Compare scores parsed resume data against a job description.
func (e *Engine) Compare(ctx context.Context, parsed *resumes.ParsedPayload, jobDescription string) MatchResult {
	jd := strings.ToLower(jobDescription)

	result := MatchResult{}
	result.SkillsScore, result.MatchedSkills, result.MissingSkills = skillsMatch(parsed.Skills, jd)
	result.ExperienceScore = experienceMatch(parsed.Experience, jd)
	result.EducationScore = educationMatch(parsed.Education, jd)
	result.SimilarityScore = e.similarityScore(ctx, parsed, jobDescription)
	result.OverallScore = overall(result)
	result.Insights = insights(result)
	return result
}

func skillsMatch(skills []string, jd string) (float64, []string, []string) {
	if len(skills) == 0 {
		return 0, nil, nil
	}
	var matched, missing []string
	for _, skill := range skills {
		s := strings.TrimSpace(skill)
		if s == "" {
			continue
		}
		if strings.Contains(jd, strings.ToLower(s)) {
			matched = append(matched, s)
		} else {
			missing = append(missing, s)
		}
	}
	sort.Strings(matched)
	sort.Strings(missing)
	total := len(matched) + len(missing)
	if total == 0 {
		return 0, nil, nil
	}
	return 100 * float64(len(matched)) / float64(total), matched, missing
}

func experienceMatch(experience, jd string) float64 {
	experience = strings.TrimSpace(experience)
	if experience == "" {
		return 0
	}
	score := 40.0
	words := len(strings.Fields(experience))
	if words >= 20 {
		score += 20
	}
	if words >= 60 {
		score += 10
	}
	expLower := strings.ToLower(experience)
	for _, kw := range seniorityKeywords {
		if strings.Contains(jd, kw) && strings.Contains(expLower, kw) {
			score += 30
			break
		}
	}
	if score > 100 {
		score = 100
	}
	return score
}

func educationMatch(education, jd string) float64 {
	education = strings.TrimSpace(education)
	if education == "" {
		return 0
	}
	score := 60.0
	eduLower := strings.ToLower(education)
	for _, kw := range degreeKeywords {
		if containsWord(jd, kw) && containsWord(eduLower, kw) {
			score = 100
			break
		}
	}
	return score
}

// containsWord matches kw as a whole word to keep short degree
// abbreviations from matching inside unrelated words.
func containsWord(text, kw string) bool {
	for _, field := range strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if field == kw {
			return true
		}
	}
	return false
}

func (e *Engine) similarityScore(ctx context.Context, parsed *resumes.ParsedPayload, jobDescription string) *float64 {
	if e.Similarity == nil {
		return nil
	}
	summary := resumeSummary(parsed)
	if summary == "" {
		return nil
	}
	scores, err := ai.RetryOnModelLoading(ctx, "comparison.similarity", func(ctx context.Context) ([]float64, error) {
		return e.Similarity.Similarity(ctx, jobDescription, []string{summary})
	})
	if err != nil || len(scores) == 0 {
		if err != nil {
			telemetry.Error("comparison.similarity", map[string]any{"error": err.Error()})
		}
		return nil
	}
	v := scores[0] * 100
	if v > 100 {
		v = 100
	}
	if v < 0 {
		v = 0
	}
	return &v
}

func resumeSummary(parsed *resumes.ParsedPayload) string {
	parts := []string{parsed.CurrentJob, parsed.Experience, strings.Join(parsed.Skills, ", "), parsed.Education}
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ". ")
}

func overall(r MatchResult) float64 {
	weighted := weightSkills*r.SkillsScore + weightExperience*r.ExperienceScore + weightEducation*r.EducationScore
	weightSum := weightSkills + weightExperience + weightEducation
	if r.SimilarityScore != nil {
		weighted += weightSimilarity * *r.SimilarityScore
		weightSum += weightSimilarity
	}
	return weighted / weightSum
}

func insights(r MatchResult) []string {
	var out []string
	switch {
	case r.OverallScore >= 75:
		out = append(out, fmt.Sprintf("Strong match: overall fit %.0f/100.", r.OverallScore))
	case r.OverallScore >= 50:
		out = append(out, fmt.Sprintf("Moderate match: overall fit %.0f/100.", r.OverallScore))
	default:
		out = append(out, fmt.Sprintf("Weak match: overall fit %.0f/100.", r.OverallScore))
	}
	if len(r.MatchedSkills) > 0 {
		out = append(out, fmt.Sprintf("Skills found in the job description: %s.", strings.Join(r.MatchedSkills, ", ")))
	}
	if len(r.MissingSkills) > 0 {
		out = append(out, fmt.Sprintf("Skills not mentioned in the job description: %s.", strings.Join(r.MissingSkills, ", ")))
	}
	if r.SimilarityScore == nil {
		out = append(out, "Semantic similarity was unavailable; the overall score uses the remaining components.")
	}
	if r.ExperienceScore < 50 {
		out = append(out, "The experience section gives little signal for this role.")
	}
	return out
}
