package confidence

import (
	"strings"

	"resume-pipeline/internal/resumes"
)

// Component scores are 0-100; nil means the component does not apply to
// the record (e.g. transcription quality for a document upload).

func transcriptionScore(t *resumes.TranscriptionPayload) *float64 {
	if t == nil {
		return nil
	}
	switch t.Quality.Level {
	case resumes.QualityHigh:
		return ptr(95)
	case resumes.QualityMedium:
		return ptr(70)
	default:
		return ptr(40)
	}
}

// nameScore rates the extracted name, boosted when entity recognition
// independently found the same person.
func nameScore(parsed *resumes.ParsedPayload) *float64 {
	if parsed == nil {
		return nil
	}
	if parsed.Name == "" {
		return ptr(20)
	}
	score := 70.0
	if parsed.AIEnhancement != nil && nameMatchesPerson(parsed.Name, parsed.AIEnhancement.Entities.Persons) {
		score = 95
	}
	return ptr(score)
}

func nameMatchesPerson(name string, persons []resumes.Entity) bool {
	name = strings.ToLower(name)
	for _, p := range persons {
		ent := strings.ToLower(p.Text)
		if strings.Contains(name, ent) || strings.Contains(ent, name) {
			return true
		}
	}
	return false
}

func contactScore(parsed *resumes.ParsedPayload) *float64 {
	if parsed == nil {
		return nil
	}
	score := 0.0
	if parsed.Email != "" {
		if strings.Contains(parsed.Email, "@") {
			score += 60
		} else {
			score += 20
		}
	}
	if digits := countDigits(parsed.Phone); digits >= 10 {
		score += 40
	} else if digits > 0 {
		score += 15
	}
	if score > 100 {
		score = 100
	}
	return ptr(score)
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func skillsScore(parsed *resumes.ParsedPayload) *float64 {
	if parsed == nil || parsed.AIEnhancement == nil || len(parsed.AIEnhancement.SkillCategories) == 0 {
		return nil
	}
	total := 0.0
	n := 0
	for _, scores := range parsed.AIEnhancement.SkillCategories {
		if len(scores) == 0 {
			continue
		}
		total += scores[0].Score * 100
		n++
	}
	if n == 0 {
		return nil
	}
	return ptr(total / float64(n))
}

// experienceScore rescales the raw model confidence so a plausible but
// uncertain inference is not punished into the floor.
func experienceScore(parsed *resumes.ParsedPayload) *float64 {
	if parsed == nil || parsed.AIEnhancement == nil || parsed.AIEnhancement.ExperienceLevel == nil {
		return nil
	}
	raw := parsed.AIEnhancement.ExperienceLevel.Confidence
	score := 40 + 0.6*raw*100
	if score > 100 {
		score = 100
	}
	return ptr(score)
}

func entitiesScore(parsed *resumes.ParsedPayload) *float64 {
	if parsed == nil || parsed.AIEnhancement == nil {
		return nil
	}
	all := parsed.AIEnhancement.Entities.All()
	if len(all) == 0 {
		return nil
	}
	total := 0.0
	for _, e := range all {
		total += e.Score * 100
	}
	return ptr(total / float64(len(all)))
}

func completenessScore(parsed *resumes.ParsedPayload) *float64 {
	if parsed == nil || parsed.AIEnhancement == nil {
		return nil
	}
	return ptr(parsed.AIEnhancement.Completeness.Score)
}

func ptr(v float64) *float64 { return &v }
