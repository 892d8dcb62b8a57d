// Package types defines the shared data structures exchanged with the
// render-farm web service.
package types

// SubmissionPayload is the body POSTed to the farm's job submission
// endpoint. JobInfo holds the flattened job descriptor map, PluginInfo the
// renderer-specific parameter bag and AuxFiles paths of files transferred
// alongside the job.
type SubmissionPayload struct {
	JobInfo    map[string]interface{} `json:"JobInfo"`
	PluginInfo map[string]interface{} `json:"PluginInfo"`
	AuxFiles   []string               `json:"AuxFiles"`
}

// JobStatus describes one job as reported by the farm on query.
type JobStatus struct {
	ID           string   `json:"_id"`
	Name         string   `json:"Name"`
	BatchName    string   `json:"BatchName,omitempty"`
	Plugin       string   `json:"Plugin,omitempty"`
	Frames       string   `json:"Frames,omitempty"`
	Status       string   `json:"Status,omitempty"`
	Dependencies []string `json:"Dependencies,omitempty"`
}

// ServerInfo aggregates the scheduling-class lists a farm exposes.
type ServerInfo struct {
	Pools       []string
	Groups      []string
	LimitGroups []string
	Workers     []string
}
