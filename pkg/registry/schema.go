// pkg/registry/schema.go
package registry

import "encoding/json"

type ActivityRegistry struct {
	Version    string     `json:"version"`
	Activities []Activity `json:"activities"`
}

// Activity describes one Zeebe task type served by this repository.
type Activity struct {
	ID          string          `json:"id"`
	DisplayName string          `json:"displayName"`
	Description string          `json:"description"`
	TaskType    string          `json:"taskType"`
	InputSchema json.RawMessage `json:"inputSchema"`
	ErrorCodes  []string        `json:"errorCodes"`
	Timeout     string          `json:"timeout"`
	Retries     int             `json:"retries"`
}
