package logging

const (
	// FieldComponent is the structured logging key for component names.
	FieldComponent = "component"
	// FieldRequestID is the structured logging key for request correlation identifiers.
	FieldRequestID = "request_id"
	// FieldVideoID is the structured logging key for the video being resolved.
	FieldVideoID = "video_id"
	// FieldSessionID identifies a navigation session.
	FieldSessionID = "session_id"
	// FieldStrategy names the extraction strategy an entry refers to.
	FieldStrategy = "strategy"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step to an operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)
