package resumes

import (
	"fmt"

	"resume-pipeline/internal/status"
)

// Validate checks the cross-field invariants a stored record must satisfy.
// Repos call it after applying an update so inconsistent payload/status
// combinations never reach storage.
func Validate(r Resume) error {
	if !r.Modality.Valid() {
		return fmt.Errorf("%w: unknown modality %q", ErrInvalid, r.Modality)
	}
	if r.Modality == status.ModalityDocument && r.Transcription != nil {
		return fmt.Errorf("%w: document record carries a transcription payload", ErrInvalid)
	}

	switch r.Status {
	case status.StateTranscribed:
		if r.Modality == status.ModalityVoice && r.Transcription == nil {
			return fmt.Errorf("%w: status %s without transcription payload", ErrInvalid, r.Status)
		}
	case status.StateParsing:
		if r.Modality == status.ModalityVoice && r.Transcription == nil {
			return fmt.Errorf("%w: voice record parsing before transcription", ErrInvalid)
		}
	case status.StateParsed, status.StateEnhancing, status.StateEnhanced, status.StateCompleted:
		if r.Parsed == nil {
			return fmt.Errorf("%w: status %s without parsed payload", ErrInvalid, r.Status)
		}
		if r.Modality == status.ModalityVoice && r.Transcription == nil {
			return fmt.Errorf("%w: voice record %s without transcription payload", ErrInvalid, r.Status)
		}
	case status.StateFailed:
		if r.LastError == nil {
			return fmt.Errorf("%w: status failed without error payload", ErrInvalid)
		}
	}
	return nil
}
