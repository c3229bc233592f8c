package driven

import "time"

// Recorder receives operational counters from the core services.
// Implementations must be safe for concurrent use.
type Recorder interface {
	// QuestionAnswered counts one Ask by outcome: "envelope", "raw",
	// "partial" or "error".
	QuestionAnswered(outcome string)

	// ToolInvoked counts one tool call and whether it produced an error string.
	ToolInvoked(tool string, failed bool)

	// RetrievalCompleted counts one search and whether the metadata
	// filter was discarded in favour of unfiltered results.
	RetrievalCompleted(fellBack bool)

	// BatchIngested counts one ingestion batch of size chunks.
	BatchIngested(size int, failed bool)

	// ObserveChat records the latency of one generation model turn.
	ObserveChat(d time.Duration)
}
