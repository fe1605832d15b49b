package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"resume-pipeline/internal/pipeline"
	"resume-pipeline/internal/queue"
)

type fakeSQS struct {
	deleted []string
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	_ = ctx
	_ = params
	_ = optFns
	return &sqs.ReceiveMessageOutput{}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	_ = ctx
	_ = optFns
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

type fakeProcessor struct {
	err     error
	runs    []string
	retries []string
}

func (f *fakeProcessor) Run(ctx context.Context, resumeID string) error {
	_ = ctx
	f.runs = append(f.runs, resumeID)
	return f.err
}

func (f *fakeProcessor) Retry(ctx context.Context, resumeID string) error {
	_ = ctx
	f.retries = append(f.retries, resumeID)
	return f.err
}

func encodedMessage(t *testing.T, resumeID, op, requestID string) string {
	t.Helper()
	body, err := queue.EncodeMessage(queue.Message{ResumeID: resumeID, Operation: op, RequestID: requestID})
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	return string(body)
}

func TestWorkerDeletesMessageOnSuccess(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{}
	msg := sqstypes.Message{
		MessageId:     aws.String("m1"),
		ReceiptHandle: aws.String("r1"),
		Body:          aws.String(encodedMessage(t, "res-1", queue.OpRun, "req-1")),
		Attributes:    map[string]string{"ApproximateReceiveCount": "1"},
	}

	handleMessage(context.Background(), client, "queue", proc, msg)

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
	if len(proc.runs) != 1 || proc.runs[0] != "res-1" {
		t.Fatalf("runs = %v", proc.runs)
	}
}

func TestWorkerDispatchesRetryOperation(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{}
	msg := sqstypes.Message{
		MessageId:     aws.String("m2"),
		ReceiptHandle: aws.String("r2"),
		Body:          aws.String(encodedMessage(t, "res-2", queue.OpRetry, "req-2")),
	}

	handleMessage(context.Background(), client, "queue", proc, msg)

	if len(proc.retries) != 1 || proc.retries[0] != "res-2" {
		t.Fatalf("retries = %v", proc.retries)
	}
	if len(proc.runs) != 0 {
		t.Fatalf("runs = %v", proc.runs)
	}
}

func TestWorkerDeletesOnStateConflict(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{err: fmt.Errorf("resume res-6 is completed, expected uploaded: %w", pipeline.ErrStateConflict)}
	msg := sqstypes.Message{
		MessageId:     aws.String("m6"),
		ReceiptHandle: aws.String("r6"),
		Body:          aws.String(encodedMessage(t, "res-6", queue.OpRun, "req-6")),
	}

	handleMessage(context.Background(), client, "queue", proc, msg)

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete on state conflict, got %d", len(client.deleted))
	}
}

func TestWorkerDoesNotDeleteOnFailure(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{err: errors.New("boom")}
	msg := sqstypes.Message{
		MessageId:     aws.String("m3"),
		ReceiptHandle: aws.String("r3"),
		Body:          aws.String(encodedMessage(t, "res-3", queue.OpRun, "req-3")),
	}

	handleMessage(context.Background(), client, "queue", proc, msg)

	if len(client.deleted) != 0 {
		t.Fatalf("expected no delete, got %d", len(client.deleted))
	}
}

func TestWorkerDeletesOnInvalidJSON(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{}
	msg := sqstypes.Message{
		MessageId:     aws.String("m4"),
		ReceiptHandle: aws.String("r4"),
		Body:          aws.String("{bad-json"),
	}

	handleMessage(context.Background(), client, "queue", proc, msg)

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
	if len(proc.runs) != 0 || len(proc.retries) != 0 {
		t.Fatalf("processor invoked on invalid message")
	}
}

func TestWorkerDeletesOnMissingResumeID(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{}
	msg := sqstypes.Message{
		MessageId:     aws.String("m5"),
		ReceiptHandle: aws.String("r5"),
		Body:          aws.String(encodedMessage(t, "", queue.OpRun, "req-5")),
	}

	handleMessage(context.Background(), client, "queue", proc, msg)

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
}
