// Package transcription wraps the external speech-to-text call with input
// validation, transcript quality scoring and a speech-to-section formatter
// for the parsing stage.
package transcription

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"resume-pipeline/internal/ai"
	"resume-pipeline/internal/fileref"
	"resume-pipeline/internal/resumes"
)

// domainPrompt steers the model toward resume vocabulary.
const domainPrompt = "This is a spoken resume. Preserve personal names, company names, technical terms, email addresses and phone numbers exactly as spoken."

// Adapter validates audio input and produces a scored transcript.
type Adapter struct {
	STT      ai.Transcriber
	Resolver fileref.Resolver
}

// NewAdapter constructs an Adapter.
func NewAdapter(stt ai.Transcriber, resolver fileref.Resolver) *Adapter {
	return &Adapter{STT: stt, Resolver: resolver}
}

// Transcribe validates the referenced audio, calls the external endpoint
// (retrying once on a model-loading condition) and returns the payload the
// pipeline persists.
func (a *Adapter) Transcribe(ctx context.Context, ref string, sizeBytes int64, format string) (*resumes.TranscriptionPayload, error) {
	if err := ValidateAudio(ctx, a.Resolver, ref, sizeBytes, format); err != nil {
		return nil, err
	}

	body, _, err := a.Resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceUnreadable, err)
	}
	// Buffer the audio so a model-loading retry can replay it. Size is
	// capped by ValidateAudio.
	audio, err := io.ReadAll(io.LimitReader(body, MaxAudioBytes+1))
	body.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceUnreadable, err)
	}
	if int64(len(audio)) > MaxAudioBytes {
		return nil, fmt.Errorf("%w: stream exceeds %d bytes", ErrFileTooLarge, MaxAudioBytes)
	}

	filename := "audio." + NormalizeFormat(format)
	started := time.Now()

	text, err := ai.RetryOnModelLoading(ctx, "transcription", func(ctx context.Context) (string, error) {
		return a.STT.Transcribe(ctx, bytes.NewReader(audio), filename, domainPrompt)
	})
	if err != nil {
		return nil, fmt.Errorf("transcribe audio: %w", err)
	}

	text = strings.TrimSpace(text)
	elapsed := float64(time.Since(started).Microseconds()) / 1000.0

	return &resumes.TranscriptionPayload{
		Text:       text,
		WordCount:  len(strings.Fields(text)),
		CharCount:  len(text),
		Quality:    AssessQuality(text),
		DurationMs: elapsed,
	}, nil
}
