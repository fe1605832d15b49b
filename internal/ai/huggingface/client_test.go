package huggingface

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"resume-pipeline/internal/ai"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient("test-token", Models{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client.SetBaseURL(srv.URL)
	return client
}

func TestAnswerdecodesSpan(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "roberta-base-squad2") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("authorization header = %q", got)
		}
		w.Write([]byte(`{"answer":"John Smith","score":0.73,"start":0,"end":10}`))
	})

	answer, err := client.Answer(context.Background(), "What is the name?", "John Smith is an engineer.")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer.Text != "John Smith" || answer.Score != 0.73 {
		t.Fatalf("answer = %+v", answer)
	}
}

func TestClassifyReturnsSortedLabels(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sequence":"go python","labels":["Backend","Frontend"],"scores":[0.9,0.2]}`))
	})

	result, err := client.Classify(context.Background(), "go python", []string{"Backend", "Frontend"})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	top, score := result.Top()
	if top != "Backend" || score != 0.9 {
		t.Fatalf("top = %q score = %v", top, score)
	}
}

func TestEntitiesDecodesGroups(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"entity_group":"PER","score":0.98,"word":"Jane Doe"},{"entity_group":"ORG","score":0.91,"word":"Acme"}]`))
	})

	entities, err := client.Entities(context.Background(), "Jane Doe works at Acme")
	if err != nil {
		t.Fatalf("Entities: %v", err)
	}
	if len(entities) != 2 || entities[0].Group != "PER" || entities[1].Word != "Acme" {
		t.Fatalf("entities = %+v", entities)
	}
}

func TestModelLoadingMapsToRetryableError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Model deepset/roberta-base-squad2 is currently loading","estimated_time":20.0}`))
	})

	_, err := client.Answer(context.Background(), "q", "c")
	if !errors.Is(err, ai.ErrModelLoading) {
		t.Fatalf("error = %v, want model loading", err)
	}
	if !ai.IsRetryable(err) {
		t.Fatal("model loading should be retryable")
	}
}

func TestAuthFailureMapsToDomainError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Authorization header is invalid"}`))
	})

	_, err := client.Entities(context.Background(), "text")
	if !errors.Is(err, ai.ErrAuthFailed) {
		t.Fatalf("error = %v, want auth failed", err)
	}
}

func TestSimilarityDecodesScores(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[0.81,0.12]`))
	})

	scores, err := client.Similarity(context.Background(), "source", []string{"a", "b"})
	if err != nil {
		t.Fatalf("Similarity: %v", err)
	}
	if len(scores) != 2 || scores[0] != 0.81 {
		t.Fatalf("scores = %v", scores)
	}
}
