package parsing

import (
	"reflect"
	"strings"
	"testing"

	"resume-pipeline/internal/resumes"
)

func TestCleanNameStripsHonorifics(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Mr. John Smith", "John Smith"},
		{"Mrs Jane Doe", "Jane Doe"},
		{"Dr. Ada Lovelace", "Ada Lovelace"},
		{"Prof. Alan Turing", "Alan Turing"},
		{"Grace Hopper", "Grace Hopper"},
		{"  Ms. Katherine Johnson  ", "Katherine Johnson"},
	}
	for _, tt := range tests {
		if got := CleanName(tt.in); got != tt.want {
			t.Errorf("CleanName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractEmailLowercasesMatch(t *testing.T) {
	got := ExtractEmail("Mr. John Smith can be reached at JOHN.SMITH@EXAMPLE.COM")
	if got != "john.smith@example.com" {
		t.Fatalf("ExtractEmail = %q, want john.smith@example.com", got)
	}
	if got := ExtractEmail("no address here"); got != "" {
		t.Fatalf("ExtractEmail on plain text = %q, want empty", got)
	}
}

func TestCleanPhone(t *testing.T) {
	if got := CleanPhone("(415) 555-0123"); got != "4155550123" {
		t.Errorf("CleanPhone = %q, want 4155550123", got)
	}
	// fewer than 10 digits keeps the raw answer
	if got := CleanPhone("call me at 555"); got != "call me at 555" {
		t.Errorf("CleanPhone short = %q, want raw answer", got)
	}
}

func TestSplitSkills(t *testing.T) {
	got := SplitSkills("Python, Django; Flask")
	want := []string{"Python", "Django", "Flask"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitSkills = %v, want %v", got, want)
	}

	if got := SplitSkills("  ,  ;  "); got != nil {
		t.Errorf("SplitSkills on separators only = %v, want nil", got)
	}
	if got := SplitSkills("distributed systems"); !reflect.DeepEqual(got, []string{"distributed systems"}) {
		t.Errorf("SplitSkills single = %v", got)
	}
}

func TestExtractionConfidence(t *testing.T) {
	if got := extractionConfidence("Jane", "jane@example.com"); got != resumes.QualityHigh {
		t.Errorf("both present = %s, want high", got)
	}
	if got := extractionConfidence("Jane", ""); got != resumes.QualityMedium {
		t.Errorf("name only = %s, want medium", got)
	}
	if got := extractionConfidence("", "jane@example.com"); got != resumes.QualityMedium {
		t.Errorf("email only = %s, want medium", got)
	}
	if got := extractionConfidence("", "not-an-email"); got != resumes.QualityLow {
		t.Errorf("neither = %s, want low", got)
	}
}

func TestFirstSectionTrimsAtBreakKeyword(t *testing.T) {
	text := "John Smith\njohn@example.com\n555-867-5309\n\nEXPERIENCE\nTen years at Initech."
	section := FirstSection(text)
	if len(section) == 0 {
		t.Fatal("empty first section")
	}
	if strings.Contains(section, "Initech") {
		t.Errorf("first section leaked past the break keyword: %q", section)
	}
	if !strings.Contains(section, "john@example.com") {
		t.Errorf("first section lost identity lines: %q", section)
	}
}

func TestFirstSectionCapsLength(t *testing.T) {
	long := make([]byte, 3000)
	for i := range long {
		long[i] = 'a'
	}
	if got := FirstSection(string(long)); len(got) > firstSectionLimit {
		t.Fatalf("first section length = %d, want <= %d", len(got), firstSectionLimit)
	}
}
