package comparison

import "time"

// MatchResult is the computed fit between a resume and a job description.
type MatchResult struct {
	SkillsScore     float64  `json:"skillsScore"`
	ExperienceScore float64  `json:"experienceScore"`
	EducationScore  float64  `json:"educationScore"`
	SimilarityScore *float64 `json:"similarityScore,omitempty"`
	OverallScore    float64  `json:"overallScore"`
	MatchedSkills   []string `json:"matchedSkills,omitempty"`
	MissingSkills   []string `json:"missingSkills,omitempty"`
	Insights        []string `json:"insights,omitempty"`
}

// JobComparison links a resume to a job description and the computed
// match. Records are immutable once written and retained as history.
type JobComparison struct {
	ID             string      `json:"id"`
	ResumeID       string      `json:"resumeId"`
	UserID         string      `json:"userId"`
	JobDescription string      `json:"jobDescription"`
	Result         MatchResult `json:"result"`
	CreatedAt      time.Time   `json:"createdAt"`
}
