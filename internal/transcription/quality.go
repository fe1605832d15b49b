package transcription

import (
	"regexp"
	"strings"

	"resume-pipeline/internal/resumes"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s().-]{8,}\d`)
)

// AssessQuality grades a transcript deterministically. The grade starts at
// high and only ever moves down: short transcripts and gibberish signals
// (a word repeated three or more times in a row, implausible average word
// length) drag it to medium or low.
func AssessQuality(text string) resumes.QualityAssessment {
	words := strings.Fields(text)
	level := resumes.QualityHigh

	if len(words) < 100 {
		level = resumes.QualityMedium
	}
	if len(words) < 50 {
		level = resumes.QualityLow
	}
	if hasConsecutiveRepeats(words, 3) {
		level = resumes.QualityLow
	}
	if avg := averageWordLength(words); len(words) > 0 && (avg < 2 || avg > 15) {
		level = resumes.QualityLow
	}

	return resumes.QualityAssessment{
		Level:           level,
		Recommendations: qualityRecommendations(text, level),
	}
}

func qualityRecommendations(text string, level string) []string {
	var recs []string
	if level == resumes.QualityLow {
		recs = append(recs, "Recording quality is low. Try recording again in a quieter environment, speaking slowly and clearly.")
	}
	if !emailPattern.MatchString(text) {
		recs = append(recs, "No email address detected. State your email address explicitly, spelling it out if needed.")
	}
	if !phonePattern.MatchString(text) {
		recs = append(recs, "No phone number detected. State your phone number digit by digit.")
	}
	if countSentenceTerminators(text) < 5 {
		recs = append(recs, "Few complete sentences detected. Speak in full sentences so sections are easier to identify.")
	}
	return recs
}

func hasConsecutiveRepeats(words []string, threshold int) bool {
	run := 1
	for i := 1; i < len(words); i++ {
		if strings.EqualFold(normalizeWord(words[i]), normalizeWord(words[i-1])) && normalizeWord(words[i]) != "" {
			run++
			if run >= threshold {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

func averageWordLength(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	total := 0
	for _, w := range words {
		total += len(normalizeWord(w))
	}
	return float64(total) / float64(len(words))
}

func normalizeWord(w string) string {
	return strings.Trim(strings.ToLower(w), ".,!?;:\"'()")
}

func countSentenceTerminators(text string) int {
	count := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			count++
		}
	}
	return count
}
