package transcription

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"resume-pipeline/internal/fileref"
)

// MaxAudioBytes is the provider's upload cap.
const MaxAudioBytes = 25 * 1024 * 1024

// Validation errors, all raised before any network call. They wrap
// ErrValidation so intake can reject bad uploads without marking the
// record failed.
var (
	ErrValidation         = errors.New("validation error")
	ErrUnsupportedFormat  = fmt.Errorf("%w: unsupported audio format", ErrValidation)
	ErrFileTooLarge       = fmt.Errorf("%w: audio file too large", ErrValidation)
	ErrResourceUnreadable = fmt.Errorf("%w: audio resource unreadable", ErrValidation)
)

var supportedFormats = map[string]bool{
	"mp3":  true,
	"mp4":  true,
	"m4a":  true,
	"wav":  true,
	"webm": true,
	"ogg":  true,
	"flac": true,
}

// NormalizeFormat lowers a format or filename extension to the bare form.
func NormalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	f = strings.TrimPrefix(f, ".")
	if f == "" {
		return ""
	}
	if ext := filepath.Ext(f); ext != "" && supportedFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimPrefix(ext, ".")
	}
	return f
}

// ValidateAudio checks format, size and readability of the referenced
// audio resource.
func ValidateAudio(ctx context.Context, resolver fileref.Resolver, ref string, sizeBytes int64, format string) error {
	normalized := NormalizeFormat(format)
	if !supportedFormats[normalized] {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if sizeBytes > MaxAudioBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, sizeBytes, MaxAudioBytes)
	}

	body, _, err := resolver.Resolve(ctx, ref)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrResourceUnreadable, err)
	}
	body.Close()
	return nil
}
