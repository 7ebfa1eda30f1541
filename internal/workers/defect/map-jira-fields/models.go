// internal/workers/defect/map-jira-fields/models.go
package mapjirafields

import "defect-reporter/internal/fieldmap"

// Input holds the job variables. Entries of Defect and GroupMapping may be
// plain values or already wrapped as {"value": ..., "valid": ...}.
type Input struct {
	Defect       map[string]interface{} `json:"defect"`
	GroupMapping map[string]interface{} `json:"groupMapping"`
	Grouped      bool                   `json:"grouped"`
}

type Output struct {
	Record          map[string]interface{} `json:"record"`
	Descriptors     []fieldmap.Descriptor  `json:"descriptors"`
	Valid           bool                   `json:"valid"`
	MissingRequired []string               `json:"missingRequired,omitempty"`
	Mismatches      []fieldmap.Mismatch    `json:"mismatches,omitempty"`
	Notifications   []string               `json:"notifications,omitempty"`
	Project         string                 `json:"project"`
	IssueType       string                 `json:"issueType"`
}
