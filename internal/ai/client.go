// Package ai defines the interfaces the pipeline uses to reach external AI
// endpoints, plus the concrete OpenAI and Hugging Face clients. Adapters
// depend only on the interfaces so tests can substitute doubles.
package ai

import (
	"context"
	"io"
)

// Transcriber converts speech audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, prompt string) (string, error)
}

// Answer is one extractive QA response span.
type Answer struct {
	Text  string  `json:"answer"`
	Score float64 `json:"score"`
}

// QuestionAnswerer locates an answer span for a question within a context.
type QuestionAnswerer interface {
	Answer(ctx context.Context, question, contextText string) (Answer, error)
}

// Classification holds zero-shot labels with scores, sorted descending.
type Classification struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Top returns the best label and its score, or ("", 0) when empty.
func (c Classification) Top() (string, float64) {
	if len(c.Labels) == 0 || len(c.Scores) == 0 {
		return "", 0
	}
	return c.Labels[0], c.Scores[0]
}

// ZeroShotClassifier scores text against arbitrary candidate labels.
type ZeroShotClassifier interface {
	Classify(ctx context.Context, text string, labels []string) (Classification, error)
}

// TokenEntity is one grouped token-classification hit.
type TokenEntity struct {
	Word  string  `json:"word"`
	Group string  `json:"entity_group"`
	Score float64 `json:"score"`
}

// TokenClassifier performs named-entity recognition over text.
type TokenClassifier interface {
	Entities(ctx context.Context, text string) ([]TokenEntity, error)
}

// SimilarityScorer rates candidate sentences against a source sentence.
type SimilarityScorer interface {
	Similarity(ctx context.Context, source string, candidates []string) ([]float64, error)
}
