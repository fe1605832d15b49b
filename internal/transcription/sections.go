package transcription

import (
	"regexp"
	"strings"
)

// sectionWindow is how many words around the first keyword hit get pulled
// into a section.
const sectionWindow = 25

var introPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bmy name is\s+((?:[A-Z][\w'-]*\s?){1,4})`),
	regexp.MustCompile(`(?i)\bi am\s+((?:[A-Z][\w'-]*\s?){1,4})`),
	regexp.MustCompile(`(?i)\bi'm\s+((?:[A-Z][\w'-]*\s?){1,4})`),
	regexp.MustCompile(`(?i)\bthis is\s+((?:[A-Z][\w'-]*\s?){1,4})`),
}

var (
	experienceKeywords = []string{"experience", "worked", "working", "job", "position", "role", "company", "employer"}
	educationKeywords  = []string{"education", "studied", "degree", "university", "college", "graduated", "school"}
	skillsKeywords     = []string{"skills", "proficient", "technologies", "programming", "familiar with", "know how"}
)

// FormatSections rewrites a raw speech transcript into loosely structured
// text with section headers for the parsing stage. Detection is
// best-effort; undetected sections are simply omitted and the full
// transcript is appended as a tail so nothing is lost.
func FormatSections(transcript string) string {
	text := strings.TrimSpace(transcript)
	if text == "" {
		return ""
	}

	var b strings.Builder

	if intro := findIntroduction(text); intro != "" {
		b.WriteString("INTRODUCTION:\n")
		b.WriteString(intro)
		b.WriteString("\n\n")
	}
	if exp := keywordWindow(text, experienceKeywords); exp != "" {
		b.WriteString("EXPERIENCE:\n")
		b.WriteString(exp)
		b.WriteString("\n\n")
	}
	if edu := keywordWindow(text, educationKeywords); edu != "" {
		b.WriteString("EDUCATION:\n")
		b.WriteString(edu)
		b.WriteString("\n\n")
	}
	if skills := keywordWindow(text, skillsKeywords); skills != "" {
		b.WriteString("SKILLS:\n")
		b.WriteString(skills)
		b.WriteString("\n\n")
	}

	b.WriteString("FULL TRANSCRIPT:\n")
	b.WriteString(text)
	return b.String()
}

func findIntroduction(text string) string {
	for _, p := range introPatterns {
		if m := p.FindString(text); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

// keywordWindow extracts ± sectionWindow words around the first keyword
// hit.
func keywordWindow(text string, keywords []string) string {
	lower := strings.ToLower(text)
	hit := -1
	for _, kw := range keywords {
		if idx := strings.Index(lower, kw); idx >= 0 && (hit < 0 || idx < hit) {
			hit = idx
		}
	}
	if hit < 0 {
		return ""
	}

	words := strings.Fields(text)
	// locate the word index containing the byte offset
	offset := 0
	wordIdx := 0
	for i, w := range words {
		if offset+len(w) >= hit {
			wordIdx = i
			break
		}
		offset += len(w) + 1
	}

	start := wordIdx - sectionWindow
	if start < 0 {
		start = 0
	}
	end := wordIdx + sectionWindow + 1
	if end > len(words) {
		end = len(words)
	}
	return strings.Join(words[start:end], " ")
}
