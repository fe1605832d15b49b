// Package parsing extracts structured resume fields from plain text via an
// external extractive question-answering endpoint.
package parsing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-pipeline/internal/ai"
	"resume-pipeline/internal/resumes"
	"resume-pipeline/internal/shared/telemetry"
)

// ErrParsingFailed indicates every attempted field errored.
var ErrParsingFailed = errors.New("parsing failed for all fields")

const (
	// minAnswerScore is deliberately permissive: short-answer models report
	// low absolute confidences.
	minAnswerScore = 0.01

	firstSectionLimit = 800

	defaultCallDelay = 350 * time.Millisecond
)

// sectionBreakKeywords end the identity block; the earliest hit trims the
// first-section context.
var sectionBreakKeywords = []string{"experience", "education", "skills", "employment", "work history"}

// Adapter runs the extraction plan against a QA endpoint.
type Adapter struct {
	QA    ai.QuestionAnswerer
	Tasks []Task
	// Delay between external calls, respecting provider rate limits.
	// Negative disables the wait (tests).
	Delay time.Duration
}

// NewAdapter constructs an Adapter with the default task plan and
// inter-call delay.
func NewAdapter(qa ai.QuestionAnswerer) *Adapter {
	return &Adapter{QA: qa, Tasks: DefaultTasks(), Delay: defaultCallDelay}
}

// Parse extracts fields from text. Missing fields are absent from the
// result, not errors; ErrParsingFailed is returned only when every task
// fails at the endpoint.
func (a *Adapter) Parse(ctx context.Context, text string) (*resumes.ParsedPayload, error) {
	tasks := a.Tasks
	if len(tasks) == 0 {
		tasks = DefaultTasks()
	}

	firstSection := FirstSection(text)
	payload := &resumes.ParsedPayload{}
	attempted := 0
	failed := 0
	var lastErr error

	for i, task := range tasks {
		if i > 0 {
			if err := a.wait(ctx); err != nil {
				return nil, err
			}
		}

		scope := text
		if task.Scope == ScopeFirstSection {
			scope = firstSection
		}

		attempted++
		answer, err := a.ask(ctx, task, scope)
		if err != nil {
			failed++
			lastErr = err
			telemetry.Error("parsing.field", map[string]any{
				"field": task.Field,
				"error": err.Error(),
			})
			continue
		}
		if answer == "" {
			continue
		}
		applyField(payload, task.Field, answer)
	}

	if attempted > 0 && failed == attempted {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, lastErr)
	}

	payload.ExtractionConfidence = extractionConfidence(payload.Name, payload.Email)
	return payload, nil
}

// ask runs one task, falling back to the alternate question when the first
// answer is unusable.
func (a *Adapter) ask(ctx context.Context, task Task, scope string) (string, error) {
	answer, err := ai.RetryOnModelLoading(ctx, "parsing."+task.Field, func(ctx context.Context) (ai.Answer, error) {
		return a.QA.Answer(ctx, task.Question, scope)
	})
	if err != nil {
		return "", err
	}
	if usable(answer) {
		return strings.TrimSpace(answer.Text), nil
	}
	if task.Fallback == "" {
		return "", nil
	}

	if err := a.wait(ctx); err != nil {
		return "", err
	}
	answer, err = ai.RetryOnModelLoading(ctx, "parsing."+task.Field+".fallback", func(ctx context.Context) (ai.Answer, error) {
		return a.QA.Answer(ctx, task.Fallback, scope)
	})
	if err != nil {
		return "", err
	}
	if usable(answer) {
		return strings.TrimSpace(answer.Text), nil
	}
	return "", nil
}

func usable(answer ai.Answer) bool {
	return answer.Score > minAnswerScore && strings.TrimSpace(answer.Text) != ""
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

func applyField(payload *resumes.ParsedPayload, field, answer string) {
	switch field {
	case FieldName:
		payload.Name = CleanName(answer)
	case FieldEmail:
		payload.Email = ExtractEmail(answer)
	case FieldPhone:
		payload.Phone = CleanPhone(answer)
	case FieldSkills:
		payload.Skills = SplitSkills(answer)
	case FieldExperience:
		payload.Experience = answer
	case FieldEducation:
		payload.Education = answer
	case FieldCurrentJob:
		payload.CurrentJob = answer
	}
}

// FirstSection returns the heuristic identity block: the first
// firstSectionLimit characters, trimmed at the earliest section-break
// keyword.
func FirstSection(text string) string {
	section := text
	if len(section) > firstSectionLimit {
		section = section[:firstSectionLimit]
	}

	lower := strings.ToLower(section)
	cut := len(section)
	for _, kw := range sectionBreakKeywords {
		if idx := strings.Index(lower, kw); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return strings.TrimSpace(section[:cut])
}
