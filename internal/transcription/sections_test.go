package transcription

import (
	"strings"
	"testing"
)

func TestFormatSectionsDetectsAllSections(t *testing.T) {
	transcript := "Hello my name is John Smith and I have five years of experience working " +
		"as a backend developer at Acme Corporation. I studied computer science at State University " +
		"and graduated in 2018. My skills include Go, Python and PostgreSQL."

	out := FormatSections(transcript)

	for _, header := range []string{"INTRODUCTION:", "EXPERIENCE:", "EDUCATION:", "SKILLS:", "FULL TRANSCRIPT:"} {
		if !strings.Contains(out, header) {
			t.Errorf("missing header %s in output:\n%s", header, out)
		}
	}
	if !strings.Contains(out, "John Smith") {
		t.Errorf("introduction lost the announced name:\n%s", out)
	}
}

func TestFormatSectionsOmitsUndetectedSections(t *testing.T) {
	out := FormatSections("I enjoy long walks and photography.")
	for _, header := range []string{"INTRODUCTION:", "EXPERIENCE:", "EDUCATION:", "SKILLS:"} {
		if strings.Contains(out, header) {
			t.Errorf("header %s should be omitted for unrelated text", header)
		}
	}
	if !strings.Contains(out, "FULL TRANSCRIPT:") {
		t.Error("full transcript tail should always be present")
	}
}

func TestFormatSectionsEmptyInput(t *testing.T) {
	if out := FormatSections("   "); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestKeywordWindowBounds(t *testing.T) {
	words := make([]string, 100)
	for i := range words {
		words[i] = "filler"
	}
	words[0] = "experience"
	text := strings.Join(words, " ")

	window := keywordWindow(text, experienceKeywords)
	if window == "" {
		t.Fatal("expected window around keyword at text start")
	}
	if got := len(strings.Fields(window)); got > sectionWindow+1 {
		t.Fatalf("window at start should clamp, got %d words", got)
	}
}

func TestKeywordWindowSymmetric(t *testing.T) {
	words := make([]string, 101)
	for i := range words {
		words[i] = "filler"
	}
	words[50] = "experience"
	words[50-sectionWindow] = "leftedge"
	words[50+sectionWindow] = "rightedge"
	text := strings.Join(words, " ")

	window := keywordWindow(text, experienceKeywords)
	if got, want := len(strings.Fields(window)), 2*sectionWindow+1; got != want {
		t.Fatalf("window = %d words, want %d", got, want)
	}
	if !strings.Contains(window, "leftedge") {
		t.Error("window should reach sectionWindow words before the keyword")
	}
	if !strings.Contains(window, "rightedge") {
		t.Error("window should reach sectionWindow words after the keyword")
	}
}
