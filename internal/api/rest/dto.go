package rest

import "time"

// SubmitJobRequest is the wire shape of a job submission.
type SubmitJobRequest struct {
	InputPaths []string          `json:"input_paths"`
	OutputPath string            `json:"output_path"`
	Reducers   int               `json:"reducers"`
	Config     map[string]string `json:"config,omitempty"`
}

type SubmitJobResponse struct {
	JobID       string    `json:"job_id"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
	Links       Links     `json:"links"`
}

type Links struct {
	Self string `json:"self"`
}

// GetJobResponse reports a point-in-time view of a job: Status is a
// coarse-grained phase name, and Error is set only once the job has
// reached COMPLETE with a non-nil FailCause.
type GetJobResponse struct {
	JobID      string   `json:"job_id"`
	Status     string   `json:"status"`
	InputPaths []string `json:"input_paths"`
	OutputPath string   `json:"output_path"`
	Error      *string  `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}
