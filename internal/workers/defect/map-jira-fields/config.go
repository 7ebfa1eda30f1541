// internal/workers/defect/map-jira-fields/config.go
package mapjirafields

import (
	"time"

	"defect-reporter/internal/common/camunda"
	"defect-reporter/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	Retry   camunda.RetryConfig
}

// LoadConfig reads the worker's timeout and retry budget from the shared
// configuration.
func LoadConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	retry := camunda.DefaultRetryConfig
	if wc.MaxRetries > 0 {
		retry.MaxRetries = wc.MaxRetries
	}
	timeout := config.GetDuration(wc.Timeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Config{Timeout: timeout, Retry: retry}
}
