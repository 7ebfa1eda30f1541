// Package defectreporter talks to the defect-reporter service API that holds
// the Jira integration settings and the per-issue-type field mappings.
package defectreporter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"defect-reporter/internal/common/errors"
	apphttp "defect-reporter/internal/common/http"
	"defect-reporter/internal/common/logger"
	"defect-reporter/internal/common/metrics"
	"defect-reporter/internal/fieldmap"
)

// API is what the create-issue composer needs from the service.
type API interface {
	GetJiraIntegrationSettings(ctx context.Context) (*IntegrationSettings, error)
	GetFieldMappings(ctx context.Context, project, issueType string) ([]fieldmap.Descriptor, error)
}

// IntegrationSettings selects the Jira project and issue type new issues go to.
type IntegrationSettings struct {
	Project    string `json:"project"`
	IssueType  string `json:"issuetype"`
	SubmitMode string `json:"submitMode,omitempty"`
}

type settingsResponse struct {
	Result *IntegrationSettings `json:"result"`
}

type mappingsResponse struct {
	Result []fieldmap.Descriptor `json:"result"`
}

type Client struct {
	baseURL string
	http    *apphttp.Client
	logger  logger.Logger
}

func NewClient(baseURL string, httpClient *apphttp.Client, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
		logger:  log,
	}
}

func (c *Client) GetJiraIntegrationSettings(ctx context.Context) (*IntegrationSettings, error) {
	var resp settingsResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/jiraintegration/settings", &resp); err != nil {
		metrics.FetchFailures.WithLabelValues("settings").Inc()
		return nil, errors.NewIntegrationSettingsFetchFailedError(err)
	}
	if resp.Result == nil {
		metrics.FetchFailures.WithLabelValues("settings").Inc()
		return nil, errors.NewIntegrationSettingsFetchFailedError(fmt.Errorf("response has no result"))
	}

	c.logger.Debug("fetched jira integration settings", map[string]interface{}{
		"project":   resp.Result.Project,
		"issueType": resp.Result.IssueType,
	})
	return resp.Result, nil
}

func (c *Client) GetFieldMappings(ctx context.Context, project, issueType string) ([]fieldmap.Descriptor, error) {
	endpoint := fmt.Sprintf("%s/jiraintegration/fieldmappings/%s/%s",
		c.baseURL, url.PathEscape(project), url.PathEscape(issueType))

	var resp mappingsResponse
	if err := c.http.GetJSON(ctx, endpoint, &resp); err != nil {
		metrics.FetchFailures.WithLabelValues("fieldmappings").Inc()
		return nil, errors.NewFieldMappingsFetchFailedError(project, issueType, err)
	}

	c.logger.Debug("fetched field mappings", map[string]interface{}{
		"project":   project,
		"issueType": issueType,
		"count":     len(resp.Result),
	})
	return resp.Result, nil
}
