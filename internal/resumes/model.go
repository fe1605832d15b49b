package resumes

import (
	"time"

	"resume-pipeline/internal/status"
)

// Resume represents one uploaded resume file and the state of its
// processing pipeline. Stage payloads are typed rather than stored as
// loose JSON maps so the record-store boundary can validate them.
type Resume struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	FileName    string          `json:"fileName"`
	StorageRef  string          `json:"storageRef"`
	SizeBytes   int64           `json:"sizeBytes"`
	ContentType string          `json:"contentType"`
	Modality    status.Modality `json:"modality"`

	Status        status.State   `json:"status"`
	StatusHistory []status.Entry `json:"statusHistory,omitempty"`

	UploadedAt          time.Time  `json:"uploadedAt"`
	ProcessingStartedAt *time.Time `json:"processingStartedAt,omitempty"`
	TranscribedAt       *time.Time `json:"transcribedAt,omitempty"`
	ParsedAt            *time.Time `json:"parsedAt,omitempty"`
	CompletedAt         *time.Time `json:"completedAt,omitempty"`
	TotalDurationMs     float64    `json:"totalDurationMs,omitempty"`

	Transcription *TranscriptionPayload `json:"transcription,omitempty"`
	Parsed        *ParsedPayload        `json:"parsed,omitempty"`
	Confidence    *ConfidenceSummary    `json:"confidence,omitempty"`
	LastError     *ErrorPayload         `json:"lastError,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TranscriptionPayload is the output of the transcription stage. Present
// only for voice-modality records.
type TranscriptionPayload struct {
	Text       string            `json:"text"`
	WordCount  int               `json:"wordCount"`
	CharCount  int               `json:"charCount"`
	Quality    QualityAssessment `json:"quality"`
	DurationMs float64           `json:"durationMs"`
}

// QualityAssessment grades a transcript and carries actionable notes.
type QualityAssessment struct {
	Level           string   `json:"level"` // high | medium | low
	Recommendations []string `json:"recommendations,omitempty"`
}

const (
	QualityHigh   = "high"
	QualityMedium = "medium"
	QualityLow    = "low"
)

// ParsedPayload holds the fields extracted from resume text. AI-derived
// enhancement data lives under AIEnhancement and never overwrites the base
// extraction.
type ParsedPayload struct {
	Name       string   `json:"name,omitempty"`
	Email      string   `json:"email,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Skills     []string `json:"skills,omitempty"`
	Experience string   `json:"experience,omitempty"`
	Education  string   `json:"education,omitempty"`
	CurrentJob string   `json:"currentJob,omitempty"`

	ExtractionConfidence string `json:"extractionConfidence,omitempty"` // high | medium | low

	Enhanced         bool                `json:"enhanced"`
	EnhancementError string              `json:"enhancementError,omitempty"`
	AIEnhancement    *EnhancementPayload `json:"aiEnhancement,omitempty"`
}

// EnhancementPayload is the namespaced sub-object produced by the
// enhancement stage.
type EnhancementPayload struct {
	Entities        DetectedEntities        `json:"entities"`
	SkillCategories map[string][]SkillScore `json:"skillCategories,omitempty"`
	ExperienceLevel *ExperienceLevel        `json:"experienceLevel,omitempty"`
	SuggestedSkills []string                `json:"suggestedSkills,omitempty"`
	Completeness    Completeness            `json:"completeness"`
	Suggestions     []string                `json:"suggestions,omitempty"`
}

// Entity is one named entity detected in the resume text.
type Entity struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// DetectedEntities groups entities by kind.
type DetectedEntities struct {
	Persons       []Entity `json:"persons,omitempty"`
	Organizations []Entity `json:"organizations,omitempty"`
	Locations     []Entity `json:"locations,omitempty"`
	Misc          []Entity `json:"misc,omitempty"`
}

// All returns every detected entity across groups.
func (d DetectedEntities) All() []Entity {
	out := make([]Entity, 0, len(d.Persons)+len(d.Organizations)+len(d.Locations)+len(d.Misc))
	out = append(out, d.Persons...)
	out = append(out, d.Organizations...)
	out = append(out, d.Locations...)
	out = append(out, d.Misc...)
	return out
}

// SkillScore is one category assignment for a skill.
type SkillScore struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// ExperienceLevel is the inferred seniority with its score distribution.
type ExperienceLevel struct {
	Label        string             `json:"label"`
	Confidence   float64            `json:"confidence"`
	Distribution map[string]float64 `json:"distribution,omitempty"`
}

// Completeness reports how much of the required-field checklist is filled.
type Completeness struct {
	Score         float64  `json:"score"` // 0-100
	MissingFields []string `json:"missingFields,omitempty"`
}

// ConfidenceSummary is the aggregated reliability estimate for a record.
type ConfidenceSummary struct {
	OverallScore    float64         `json:"overallScore"`
	Level           string          `json:"level"`
	Components      ComponentScores `json:"components"`
	Insights        []string        `json:"insights,omitempty"`
	Recommendations []string        `json:"recommendations,omitempty"`
}

// ComponentScores carries the per-component 0-100 scores; nil means the
// component did not apply to this record.
type ComponentScores struct {
	TranscriptionQuality     *float64 `json:"transcriptionQuality,omitempty"`
	NameExtraction           *float64 `json:"nameExtraction,omitempty"`
	ContactExtraction        *float64 `json:"contactExtraction,omitempty"`
	SkillsCategorization     *float64 `json:"skillsCategorization,omitempty"`
	ExperienceLevelInference *float64 `json:"experienceLevelInference,omitempty"`
	EntityRecognition        *float64 `json:"entityRecognition,omitempty"`
	OverallCompleteness      *float64 `json:"overallCompleteness,omitempty"`
}

// ErrorPayload records the most recent stage failure. It is cleared when a
// retry succeeds.
type ErrorPayload struct {
	Message       string       `json:"message"`
	FailedAtStage status.State `json:"failedAtStage"`
	CanRetry      bool         `json:"canRetry"`
	OccurredAt    time.Time    `json:"occurredAt"`
}
