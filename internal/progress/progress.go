package progress

import "time"

// Stage identifies which step of a request is active.
type Stage string

const (
	StageUpload     Stage = "upload"
	StageProcessing Stage = "processing"
	StageGenerate   Stage = "generate"
	StageAnalyze    Stage = "analyze"
	StageComplete   Stage = "complete"
)

// Event carries progress information from the gate, writer, or extractor to
// a renderer.
type Event struct {
	Stage   Stage
	Message string
	// Attempt and MaxAttempts are set on StageProcessing poll events.
	Attempt     int
	MaxAttempts int
	Elapsed     time.Duration
	Error       error
	// Model and Chars describe the produced text on StageComplete.
	Model string
	Chars int
}

// Callback is the function signature for progress event handlers.
type Callback func(Event)

// NopCallback is a no-op progress callback for tests and silent mode.
func NopCallback(Event) {}

// NewEvent creates an Event with common fields populated.
func NewEvent(stage Stage, msg string, start time.Time) Event {
	return Event{
		Stage:   stage,
		Message: msg,
		Elapsed: time.Since(start),
	}
}

// PollEvent reports one readiness poll against the attempt ceiling.
func PollEvent(attempt, maxAttempts int, start time.Time) Event {
	return Event{
		Stage:       StageProcessing,
		Message:     "Waiting for video processing...",
		Attempt:     attempt,
		MaxAttempts: maxAttempts,
		Elapsed:     time.Since(start),
	}
}
