package entity

// RunState is a step of the report pipeline.
type RunState string

const (
	StateIdle             RunState = "idle"
	StateValidatingConfig RunState = "validating-config"
	StateExtracting       RunState = "extracting"
	StateTransforming     RunState = "transforming"
	StateLoading          RunState = "loading"
	StateDone             RunState = "done"
	StateFailed           RunState = "failed"
)

// LoadStatus is the outcome of one loader.
type LoadStatus string

const (
	LoadNotConfigured LoadStatus = "not-configured"
	LoadFailed        LoadStatus = "failed"
	LoadSucceeded     LoadStatus = "succeeded"
)

// LoadResult is the outcome of one loader together with its success payload,
// e.g. the updated file-id database of the Google Drive loader.
type LoadResult struct {
	Status  LoadStatus `json:"status"`
	Payload any        `json:"payload,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// RunResult is what a pipeline run reports back to its caller.
type RunResult struct {
	State      RunState              `json:"state"`
	Title      string                `json:"title,omitempty"`
	Filesystem string                `json:"filesystem,omitempty"`
	Loaders    map[string]LoadResult `json:"loaders,omitempty"`
	Errors     []string              `json:"errors,omitempty"`
}
