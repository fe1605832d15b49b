// Package enhancement enriches a base parse with zero-shot classification
// and named-entity recognition results. Every capability degrades
// independently: a failed call annotates the payload instead of failing
// the stage.
package enhancement

import (
	"context"
	"strings"
	"time"

	"resume-pipeline/internal/ai"
	"resume-pipeline/internal/resumes"
	"resume-pipeline/internal/shared/telemetry"
)

const (
	// minCategoryScore filters weak zero-shot category assignments.
	minCategoryScore = 0.3
	// maxCategoriesPerSkill keeps only the strongest assignments.
	maxCategoriesPerSkill = 2
	// maxSkillsClassified bounds the external-call fan-out per record.
	maxSkillsClassified = 10
	// experienceExcerptLimit caps the text sent for seniority inference.
	experienceExcerptLimit = 1000

	defaultCallDelay = 350 * time.Millisecond
)

// experienceLabels is the ordinal seniority label set.
var experienceLabels = []string{"Entry Level", "Junior", "Mid-Level", "Senior", "Lead/Principal"}

// Adapter runs the enhancement capabilities against classification
// endpoints.
type Adapter struct {
	Classifier ai.ZeroShotClassifier
	NER        ai.TokenClassifier
	// Delay between external calls. Negative disables the wait (tests).
	Delay time.Duration
}

func NewAdapter(classifier ai.ZeroShotClassifier, ner ai.TokenClassifier) *Adapter {
	return &Adapter{Classifier: classifier, NER: ner, Delay: defaultCallDelay}
}

// Enhance merges AI-derived enrichment into parsed under its namespaced
// sub-object. The base extraction is never modified. On total failure of
// the external capabilities the payload is annotated with the error and
// Enhanced stays false; Enhance itself never returns an error for the
// pipeline to act on.
func (a *Adapter) Enhance(ctx context.Context, parsed *resumes.ParsedPayload, sourceText string) {
	result := &resumes.EnhancementPayload{}
	attempted := 0
	failed := 0
	var lastErr error

	entities, err := a.detectEntities(ctx, sourceText)
	attempted++
	if err != nil {
		failed++
		lastErr = err
		telemetry.Error("enhancement.entities", map[string]any{"error": err.Error()})
	} else {
		result.Entities = entities
	}

	if len(parsed.Skills) > 0 {
		attempted++
		categories, err := a.categorizeSkills(ctx, parsed.Skills)
		if err != nil {
			failed++
			lastErr = err
			telemetry.Error("enhancement.skills", map[string]any{"error": err.Error()})
		} else {
			result.SkillCategories = categories
		}
	}

	if excerpt := experienceExcerpt(parsed, sourceText); excerpt != "" {
		attempted++
		level, err := a.inferExperienceLevel(ctx, excerpt)
		if err != nil {
			failed++
			lastErr = err
			telemetry.Error("enhancement.experience", map[string]any{"error": err.Error()})
		} else {
			result.ExperienceLevel = level
		}
	}

	if attempted > 0 && failed == attempted {
		parsed.Enhanced = false
		parsed.EnhancementError = lastErr.Error()
		return
	}

	result.SuggestedSkills = SuggestSkills(parsed.Skills)
	result.Completeness = ScoreCompleteness(parsed)
	result.Suggestions = Suggest(parsed, result.Completeness)

	parsed.Enhanced = true
	parsed.EnhancementError = ""
	parsed.AIEnhancement = result
}

func (a *Adapter) detectEntities(ctx context.Context, text string) (resumes.DetectedEntities, error) {
	hits, err := ai.RetryOnModelLoading(ctx, "enhancement.entities", func(ctx context.Context) ([]ai.TokenEntity, error) {
		return a.NER.Entities(ctx, text)
	})
	if err != nil {
		return resumes.DetectedEntities{}, err
	}

	var out resumes.DetectedEntities
	for _, hit := range hits {
		entity := resumes.Entity{Text: hit.Word, Score: hit.Score}
		switch hit.Group {
		case "PER":
			out.Persons = append(out.Persons, entity)
		case "ORG":
			out.Organizations = append(out.Organizations, entity)
		case "LOC":
			out.Locations = append(out.Locations, entity)
		default:
			out.Misc = append(out.Misc, entity)
		}
	}
	return out, nil
}

func (a *Adapter) categorizeSkills(ctx context.Context, skills []string) (map[string][]resumes.SkillScore, error) {
	if len(skills) > maxSkillsClassified {
		skills = skills[:maxSkillsClassified]
	}

	out := make(map[string][]resumes.SkillScore, len(skills))
	attempted := 0
	failed := 0
	var lastErr error

	for i, skill := range skills {
		if i > 0 {
			if err := a.wait(ctx); err != nil {
				return nil, err
			}
		}

		attempted++
		classification, err := ai.RetryOnModelLoading(ctx, "enhancement.skill", func(ctx context.Context) (ai.Classification, error) {
			return a.Classifier.Classify(ctx, skill, skillCategoryLabels)
		})
		if err != nil {
			failed++
			lastErr = err
			continue
		}

		var scores []resumes.SkillScore
		for j, label := range classification.Labels {
			if j >= len(classification.Scores) || len(scores) >= maxCategoriesPerSkill {
				break
			}
			if classification.Scores[j] <= minCategoryScore {
				continue
			}
			scores = append(scores, resumes.SkillScore{Category: label, Score: classification.Scores[j]})
		}
		if len(scores) > 0 {
			out[skill] = scores
		}
	}

	if attempted > 0 && failed == attempted {
		return nil, lastErr
	}
	return out, nil
}

func (a *Adapter) inferExperienceLevel(ctx context.Context, excerpt string) (*resumes.ExperienceLevel, error) {
	classification, err := ai.RetryOnModelLoading(ctx, "enhancement.level", func(ctx context.Context) (ai.Classification, error) {
		return a.Classifier.Classify(ctx, excerpt, experienceLabels)
	})
	if err != nil {
		return nil, err
	}

	label, score := classification.Top()
	if label == "" {
		return nil, nil
	}
	distribution := make(map[string]float64, len(classification.Labels))
	for i, l := range classification.Labels {
		if i < len(classification.Scores) {
			distribution[l] = classification.Scores[i]
		}
	}
	return &resumes.ExperienceLevel{Label: label, Confidence: score, Distribution: distribution}, nil
}

func (a *Adapter) wait(ctx context.Context) error {
	delay := a.Delay
	if delay == 0 {
		delay = defaultCallDelay
	}
	if delay < 0 {
		return nil
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// experienceExcerpt picks the text used for seniority inference: the
// experience field when present, otherwise the start of the source text.
func experienceExcerpt(parsed *resumes.ParsedPayload, sourceText string) string {
	text := strings.TrimSpace(parsed.Experience)
	if text == "" {
		text = strings.TrimSpace(sourceText)
	}
	if len(text) > experienceExcerptLimit {
		text = text[:experienceExcerptLimit]
	}
	return text
}
