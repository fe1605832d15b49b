package parsing

import (
	"regexp"
	"strings"

	"resume-pipeline/internal/resumes"
)

var (
	honorificPattern = regexp.MustCompile(`(?i)^\s*(mr|mrs|ms|dr|prof)\.?\s+`)
	emailPattern     = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	nonDigitPattern  = regexp.MustCompile(`\D`)
	skillSplitter    = regexp.MustCompile(`[,;]`)
)

// CleanName strips honorific prefixes from an extracted name.
func CleanName(raw string) string {
	return strings.TrimSpace(honorificPattern.ReplaceAllString(raw, ""))
}

// ExtractEmail pulls the first email-shaped token out of a raw answer and
// lowercases it. Returns "" when none is present.
func ExtractEmail(raw string) string {
	match := emailPattern.FindString(raw)
	return strings.ToLower(match)
}

// CleanPhone strips non-digits; when fewer than 10 digits remain it keeps
// the raw answer as a fallback rather than discarding the signal.
func CleanPhone(raw string) string {
	digits := nonDigitPattern.ReplaceAllString(raw, "")
	if len(digits) >= 10 {
		return digits
	}
	return strings.TrimSpace(raw)
}

// SplitSkills breaks a raw answer on commas and semicolons, trimming and
// dropping empties. A raw answer that yields nothing becomes a
// single-element list so the signal survives.
func SplitSkills(raw string) []string {
	parts := skillSplitter.Split(raw, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	}
	return out
}

// extractionConfidence grades the parse by presence of the two strongest
// identity signals.
func extractionConfidence(name, email string) string {
	hasName := strings.TrimSpace(name) != ""
	hasEmail := emailPattern.MatchString(email)
	switch {
	case hasName && hasEmail:
		return resumes.QualityHigh
	case hasName || hasEmail:
		return resumes.QualityMedium
	default:
		return resumes.QualityLow
	}
}
