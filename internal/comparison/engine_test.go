package comparison

import (
	"context"
	"errors"
	"testing"

	"resume-pipeline/internal/resumes"
)

type fakeSimilarity struct {
	scores []float64
	err    error
}

func (f *fakeSimilarity) Similarity(_ context.Context, _ string, candidates []string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.scores, nil
}

func sampleParse() *resumes.ParsedPayload {
	return &resumes.ParsedPayload{
		Name:       "Jane Doe",
		Skills:     []string{"Go", "PostgreSQL", "Haskell"},
		Experience: "Senior engineer with ten years building distributed systems, leading a team of five and owning production services end to end.",
		Education:  "Bachelor of Science in Computer Science",
		CurrentJob: "Senior Engineer",
	}
}

const sampleJD = `We need a senior backend engineer. Must know Go and PostgreSQL.
A bachelor degree in a technical field is required.`

func TestCompareSkillsOverlap(t *testing.T) {
	e := NewEngine(&fakeSimilarity{scores: []float64{0.8}})
	r := e.Compare(context.Background(), sampleParse(), sampleJD)

	if len(r.MatchedSkills) != 2 {
		t.Errorf("MatchedSkills = %v", r.MatchedSkills)
	}
	if len(r.MissingSkills) != 1 || r.MissingSkills[0] != "Haskell" {
		t.Errorf("MissingSkills = %v", r.MissingSkills)
	}
	wantSkills := 100 * 2.0 / 3.0
	if diff := r.SkillsScore - wantSkills; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("SkillsScore = %v, want %v", r.SkillsScore, wantSkills)
	}
}

func TestCompareSeniorityAndDegreeBoosts(t *testing.T) {
	e := NewEngine(&fakeSimilarity{scores: []float64{0.5}})
	r := e.Compare(context.Background(), sampleParse(), sampleJD)

	// present + >=20 words + seniority keyword match
	if r.ExperienceScore != 90 {
		t.Errorf("ExperienceScore = %v, want 90", r.ExperienceScore)
	}
	if r.EducationScore != 100 {
		t.Errorf("EducationScore = %v, want 100", r.EducationScore)
	}
}

func TestCompareSimilarityDegradesToAbsent(t *testing.T) {
	e := NewEngine(&fakeSimilarity{err: errors.New("model offline")})
	r := e.Compare(context.Background(), sampleParse(), sampleJD)

	if r.SimilarityScore != nil {
		t.Fatalf("SimilarityScore = %v, want nil on failure", *r.SimilarityScore)
	}

	// overall renormalizes over the remaining components
	want := (0.40*r.SkillsScore + 0.25*r.ExperienceScore + 0.10*r.EducationScore) / 0.75
	if diff := r.OverallScore - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("OverallScore = %v, want %v", r.OverallScore, want)
	}

	found := false
	for _, insight := range r.Insights {
		if insight == "Semantic similarity was unavailable; the overall score uses the remaining components." {
			found = true
		}
	}
	if !found {
		t.Errorf("missing degradation insight: %v", r.Insights)
	}
}

func TestCompareEmptyResume(t *testing.T) {
	e := NewEngine(&fakeSimilarity{scores: []float64{0.9}})
	r := e.Compare(context.Background(), &resumes.ParsedPayload{}, sampleJD)

	if r.SkillsScore != 0 || r.ExperienceScore != 0 || r.EducationScore != 0 {
		t.Errorf("empty resume should score zero components: %+v", r)
	}
	if r.SimilarityScore != nil {
		t.Error("similarity should be skipped when there is no resume text")
	}
}
