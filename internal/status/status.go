package status

// State is a resume's position in the processing pipeline.
type State string

const (
	StateUploaded     State = "uploaded"
	StateTranscribing State = "transcribing"
	StateTranscribed  State = "transcribed"
	StateParsing      State = "parsing"
	StateParsed       State = "parsed"
	StateEnhancing    State = "enhancing"
	StateEnhanced     State = "enhanced"
	StateCompleted    State = "completed"
	StateFailed       State = "failed"
)

// Modality distinguishes voice recordings from text documents.
type Modality string

const (
	ModalityDocument Modality = "document"
	ModalityVoice    Modality = "voice"
)

// Valid reports whether m is a known modality.
func (m Modality) Valid() bool {
	return m == ModalityDocument || m == ModalityVoice
}

var progressByState = map[State]int{
	StateUploaded:     10,
	StateTranscribing: 25,
	StateTranscribed:  40,
	StateParsing:      55,
	StateParsed:       70,
	StateEnhancing:    80,
	StateEnhanced:     90,
	StateCompleted:    100,
	StateFailed:       0,
}

// ProgressPercent maps a state to a display percentage. Unknown states
// report 0, same as failed.
func ProgressPercent(s State) int {
	return progressByState[s]
}
