package bankr

// Wire types for the upstream agent API. Only status, response and error are
// consumed; everything else in the payload is ignored.

type submitRequest struct {
	Prompt string `json:"prompt"`
}

type submitResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"jobId"`
	Error   string `json:"error"`
}

// Job statuses reported by the upstream. Anything unrecognized is treated as
// still pending.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// JobResult is the polled state of one job.
type JobResult struct {
	Status   string `json:"status"`
	Response string `json:"response"`
	Error    string `json:"error"`
}
