// Package composer holds the state of one "create Jira issue" session: the
// defect being reported, the field mappings fetched for the configured
// project and issue type, and the simplified record built from both.
package composer

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"defect-reporter/internal/common/errors"
	"defect-reporter/internal/common/logger"
	"defect-reporter/internal/common/metrics"
	"defect-reporter/internal/defectreporter"
	"defect-reporter/internal/events"
	"defect-reporter/internal/fieldmap"
)

const fetchFailedFormat = "Failed to get the field mappings. The received error was '%s'"

type Composer struct {
	api      defectreporter.API
	emitter  events.Emitter
	notifier events.Notifier
	logger   logger.Logger

	loading atomic.Bool

	mu           sync.Mutex
	defectSource fieldmap.Record
	groupSource  fieldmap.Record
	defect       fieldmap.Record
	group        fieldmap.Record
	grouped      bool
	loaded       bool
	project      string
	issueType    string
	pristine     []fieldmap.Descriptor
	descriptors  []fieldmap.Descriptor
	mismatches   []fieldmap.Mismatch
	searchFields []string
}

func New(api defectreporter.API, emitter events.Emitter, notifier events.Notifier, log logger.Logger) *Composer {
	return &Composer{
		api:      api,
		emitter:  emitter,
		notifier: notifier,
		logger:   log,
	}
}

// SetDefectReport replaces the single-defect source record. Once mappings
// are loaded the record is validated again.
func (c *Composer) SetDefectReport(ctx context.Context, record fieldmap.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.defectSource = record.Clone()
	c.defect = c.defectSource.Clone()
	c.searchFields = record.Keys()

	if !c.loaded {
		return nil
	}
	return c.validate(ctx)
}

// SetGroupMapping replaces the defect-group source record. It does not
// trigger validation on its own.
func (c *Composer) SetGroupMapping(record fieldmap.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.groupSource = record.Clone()
	c.group = c.groupSource.Clone()
}

// SetGroupMode selects which source record is mapped and runs an update:
// the first call fetches settings and mappings, later calls re-validate.
func (c *Composer) SetGroupMode(ctx context.Context, grouped bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.grouped = grouped
	return c.update(ctx)
}

// Refresh runs an update without changing the mode.
func (c *Composer) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.update(ctx)
}

func (c *Composer) update(ctx context.Context) error {
	if !c.loaded {
		return c.initialize(ctx)
	}
	return c.validate(ctx)
}

// initialize fetches the integration settings, then the field mappings. A
// failure is reported once and leaves the session unloaded; nothing is retried.
func (c *Composer) initialize(ctx context.Context) error {
	c.loading.Store(true)
	defer c.loading.Store(false)

	settings, err := c.api.GetJiraIntegrationSettings(ctx)
	if err != nil {
		c.reportFetchFailure(ctx, err)
		return err
	}
	c.project = settings.Project
	c.issueType = settings.IssueType

	descriptors, err := c.api.GetFieldMappings(ctx, c.project, c.issueType)
	if err != nil {
		c.reportFetchFailure(ctx, err)
		return err
	}

	c.pristine = descriptors
	c.loaded = true
	c.logger.Info("field mappings loaded", map[string]interface{}{
		"project":   c.project,
		"issueType": c.issueType,
		"count":     len(descriptors),
	})
	c.signal("MappingsUpdated", c.emitter.MappingsUpdated(ctx, descriptors))

	return c.validate(ctx)
}

func (c *Composer) reportFetchFailure(ctx context.Context, err error) {
	reason := err.Error()
	if stdErr, ok := errors.AsStandard(err); ok && stdErr.Details != "" {
		reason = stdErr.Details
	}
	c.logger.Error("failed to load field mappings", map[string]interface{}{"error": err})
	c.notify(ctx, fmt.Sprintf(fetchFailedFormat, reason))
}

// validate maps the active source record with a fresh copy of the fetched
// descriptors and stores the result as the active record.
func (c *Composer) validate(ctx context.Context) error {
	source := c.defectSource
	if c.grouped {
		source = c.groupSource
	}

	res, err := fieldmap.Simplify(source, c.pristine, c.grouped)
	if err != nil {
		c.logger.Error("field mapping failed", map[string]interface{}{"error": err})
		return err
	}

	for _, m := range res.Mismatches {
		metrics.MappingMismatches.WithLabelValues(m.FieldID).Inc()
		c.notify(ctx, errors.NewSchemaMismatchError(m.Mapping, m.FieldName).Message)
		c.signal("ValidationFailed", c.emitter.ValidationFailed(ctx, m))
	}
	if len(res.Mismatches) > 0 {
		metrics.MappingRuns.WithLabelValues("mismatch").Inc()
	} else {
		metrics.MappingRuns.WithLabelValues("ok").Inc()
	}

	c.descriptors = res.Descriptors
	c.mismatches = res.Mismatches
	if c.grouped {
		c.group = res.Record
	} else {
		c.defect = res.Record
	}

	c.signal("DefectChanged", c.emitter.DefectChanged(ctx, res.Record.Clone()))
	return nil
}

func (c *Composer) notify(ctx context.Context, message string) {
	if err := c.notifier.Notify(ctx, message); err != nil {
		c.logger.Warn("notification not delivered", map[string]interface{}{"error": err, "message": message})
	}
}

func (c *Composer) signal(name string, err error) {
	if err != nil {
		c.logger.Warn("signal not delivered", map[string]interface{}{"signal": name, "error": err})
	}
}

// active returns the record the current mode edits.
func (c *Composer) active() fieldmap.Record {
	if c.grouped {
		return c.group
	}
	return c.defect
}

// ValidateFields re-checks required fields on the active record, updating
// each field's Valid flag, and reports whether all of them pass.
func (c *Composer) ValidateFields() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fieldmap.CheckRequired(c.active(), c.descriptors)
}

// MissingRequired lists required fields left empty by the last ValidateFields.
func (c *Composer) MissingRequired() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fieldmap.MissingRequired(c.active(), c.descriptors)
}

func (c *Composer) AddArrayElement(fieldID, elemType string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.active()[fieldID]
	if !ok || f == nil {
		return fmt.Errorf("unknown field %q", fieldID)
	}
	return fieldmap.AppendElement(f, elemType)
}

func (c *Composer) RemoveArrayElement(fieldID string, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.active()[fieldID]
	if !ok || f == nil {
		return fmt.Errorf("unknown field %q", fieldID)
	}
	return fieldmap.RemoveElement(f, index)
}

// SetFieldValue edits one field of the active record.
func (c *Composer) SetFieldValue(fieldID string, v fieldmap.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := c.active()
	if rec == nil {
		rec = fieldmap.Record{}
		if c.grouped {
			c.group = rec
		} else {
			c.defect = rec
		}
	}
	if f, ok := rec[fieldID]; ok && f != nil {
		f.Value = v
		return
	}
	rec[fieldID] = &fieldmap.Field{Value: v, Valid: true}
}

// ReportData returns the active record's plain values, as submitted to Jira.
func (c *Composer) ReportData() map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fieldmap.Unwrap(c.active())
}

// Record returns a copy of the active record.
func (c *Composer) Record() fieldmap.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active().Clone()
}

// Descriptors returns copies of the working descriptors, summary first.
func (c *Composer) Descriptors() []fieldmap.Descriptor {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]fieldmap.Descriptor, len(c.descriptors))
	for i, d := range c.descriptors {
		out[i] = d.Clone()
	}
	return out
}

func (c *Composer) Mismatches() []fieldmap.Mismatch {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]fieldmap.Mismatch(nil), c.mismatches...)
}

// SearchFields lists the field names of the last defect report, sorted.
func (c *Composer) SearchFields() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := append([]string(nil), c.searchFields...)
	sort.Strings(out)
	return out
}

// Target returns the project and issue type from the integration settings.
func (c *Composer) Target() (project, issueType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.project, c.issueType
}

// Loading reports whether a fetch is in flight. It never blocks.
func (c *Composer) Loading() bool {
	return c.loading.Load()
}

func (c *Composer) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}
