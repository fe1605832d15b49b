// Package huggingface implements the extractive QA, zero-shot
// classification, token classification and sentence similarity interfaces
// over the Hugging Face inference API.
package huggingface

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"resume-pipeline/internal/ai"
)

const (
	defaultBaseURL = "https://api-inference.huggingface.co/models"
	providerName   = "huggingface"

	defaultQAModel         = "deepset/roberta-base-squad2"
	defaultZeroShotModel   = "facebook/bart-large-mnli"
	defaultNERModel        = "dbmdz/bert-large-cased-finetuned-conll03-english"
	defaultSimilarityModel = "sentence-transformers/all-MiniLM-L6-v2"
)

// Models selects which hosted models handle each task. Zero values fall
// back to the defaults above.
type Models struct {
	QA         string
	ZeroShot   string
	NER        string
	Similarity string
}

// Client talks to the Hugging Face inference API and implements
// ai.QuestionAnswerer, ai.ZeroShotClassifier, ai.TokenClassifier and
// ai.SimilarityScorer.
type Client struct {
	http   *resty.Client
	models Models
}

// NewClient constructs a Client authenticated with apiToken.
func NewClient(apiToken string, models Models) (*Client, error) {
	if strings.TrimSpace(apiToken) == "" {
		return nil, fmt.Errorf("HF_API_TOKEN is required")
	}
	if models.QA == "" {
		models.QA = defaultQAModel
	}
	if models.ZeroShot == "" {
		models.ZeroShot = defaultZeroShotModel
	}
	if models.NER == "" {
		models.NER = defaultNERModel
	}
	if models.Similarity == "" {
		models.Similarity = defaultSimilarityModel
	}

	http := resty.New()
	http.SetBaseURL(defaultBaseURL)
	http.SetAuthToken(apiToken)
	http.SetHeader("Content-Type", "application/json")
	http.SetTimeout(60 * time.Second)

	return &Client{http: http, models: models}, nil
}

// SetBaseURL points the client at a different inference host (tests).
func (c *Client) SetBaseURL(url string) {
	c.http.SetBaseURL(url)
}

type qaRequest struct {
	Inputs struct {
		Question string `json:"question"`
		Context  string `json:"context"`
	} `json:"inputs"`
}

type qaResponse struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
}

// Answer runs extractive question answering.
func (c *Client) Answer(ctx context.Context, question, contextText string) (ai.Answer, error) {
	req := qaRequest{}
	req.Inputs.Question = question
	req.Inputs.Context = contextText

	var out qaResponse
	if err := c.post(ctx, c.models.QA, req, &out); err != nil {
		return ai.Answer{}, err
	}
	return ai.Answer{Text: out.Answer, Score: out.Score}, nil
}

type zeroShotRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		CandidateLabels []string `json:"candidate_labels"`
		MultiLabel      bool     `json:"multi_label"`
	} `json:"parameters"`
}

type zeroShotResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Classify runs zero-shot classification; labels come back sorted by
// descending score.
func (c *Client) Classify(ctx context.Context, text string, labels []string) (ai.Classification, error) {
	req := zeroShotRequest{Inputs: text}
	req.Parameters.CandidateLabels = labels
	req.Parameters.MultiLabel = true

	var out zeroShotResponse
	if err := c.post(ctx, c.models.ZeroShot, req, &out); err != nil {
		return ai.Classification{}, err
	}
	return ai.Classification{Labels: out.Labels, Scores: out.Scores}, nil
}

type nerRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		AggregationStrategy string `json:"aggregation_strategy"`
	} `json:"parameters"`
}

// Entities runs grouped token classification.
func (c *Client) Entities(ctx context.Context, text string) ([]ai.TokenEntity, error) {
	req := nerRequest{Inputs: text}
	req.Parameters.AggregationStrategy = "simple"

	var out []ai.TokenEntity
	if err := c.post(ctx, c.models.NER, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type similarityRequest struct {
	Inputs struct {
		SourceSentence string   `json:"source_sentence"`
		Sentences      []string `json:"sentences"`
	} `json:"inputs"`
}

// Similarity scores candidate sentences against source, one score each.
func (c *Client) Similarity(ctx context.Context, source string, candidates []string) ([]float64, error) {
	req := similarityRequest{}
	req.Inputs.SourceSentence = source
	req.Inputs.Sentences = candidates

	var out []float64
	if err := c.post(ctx, c.models.Similarity, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type inferenceError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

func (c *Client) post(ctx context.Context, model string, body, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("/" + model)
	if err != nil {
		return fmt.Errorf("huggingface request model=%s: %w", model, err)
	}

	if resp.IsError() {
		return classifyError(resp.StatusCode(), resp.Body())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("huggingface model=%s: decode response: %w", model, err)
	}
	return nil
}

func classifyError(statusCode int, body []byte) error {
	var parsed inferenceError
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		msg = parsed.Error
	}
	// 503 with a loading message means the model is warming up and the call
	// is worth one automatic retry.
	if statusCode == 503 && strings.Contains(strings.ToLower(msg), "loading") {
		return &ai.ServiceError{
			Provider:  providerName,
			Status:    statusCode,
			Message:   msg,
			Kind:      ai.ErrModelLoading,
			Retryable: true,
		}
	}
	return ai.NewServiceError(providerName, statusCode, msg)
}
