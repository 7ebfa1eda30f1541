// internal/workers/defect/map-jira-fields/handler.go
package mapjirafields

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"defect-reporter/internal/common/camunda"
	"defect-reporter/internal/common/errors"
	"defect-reporter/internal/common/logger"
	"defect-reporter/internal/common/metrics"
	"defect-reporter/internal/common/observability"
	"defect-reporter/internal/common/validation"
	"defect-reporter/internal/composer"
	"defect-reporter/internal/defectreporter"
	"defect-reporter/internal/events"
	"defect-reporter/internal/fieldmap"
	"defect-reporter/pkg/registry"
)

const (
	TaskType = "map-jira-fields"
)

type Handler struct {
	config       *Config
	api          defectreporter.API
	emitter      events.Emitter
	notifier     events.Notifier
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	inputSchema  *validation.Schema
	logger       logger.Logger
}

// loadInputSchema compiles the input schema registered for TaskType.
func loadInputSchema() (*validation.Schema, error) {
	reg, err := registry.Default()
	if err != nil {
		return nil, err
	}
	activity, ok := reg.Find(TaskType)
	if !ok {
		return nil, fmt.Errorf("task type %s is not registered", TaskType)
	}
	return validation.Compile(string(activity.InputSchema))
}

// NewHandler wires the worker. emitter and notifier receive every signal
// of each run in addition to the job output; either may be nil.
func NewHandler(
	config *Config,
	api defectreporter.API,
	emitter events.Emitter,
	notifier events.Notifier,
	obs *observability.Observability,
	log logger.Logger,
) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	schema, err := loadInputSchema()
	if err != nil {
		log.Warn("input schema unavailable, job variables are not validated", map[string]interface{}{"error": err})
	}
	return &Handler{
		config:       config,
		api:          api,
		emitter:      emitter,
		notifier:     notifier,
		obs:          obs,
		errorHandler: errors.NewErrorHandler(log),
		inputSchema:  schema,
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	ctx, span := h.obs.StartSpan(ctx, TaskType, attribute.Int64("job.key", job.Key))
	defer span.End()

	input, err := h.ParseVariables(job.Variables)
	if err != nil {
		return h.fail(ctx, client, job, err, start)
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return h.fail(ctx, client, job, err, start)
	}
	span.SetAttributes(attribute.Bool("defect.valid", output.Valid))

	err = camunda.WithRetry(ctx, h.config.Retry, "complete-job", func(ctx context.Context) error {
		cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
		if err != nil {
			return err
		}
		_, err = cmd.Send(ctx)
		return err
	})
	if err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"jobKey": job.Key, "error": err})
		return err
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJobProcessed(ctx, "completed")
	h.obs.RecordJobDuration(ctx, time.Since(start), "completed")
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
		"valid":  output.Valid,
	})
	return nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error, start time.Time) error {
	stdErr := errors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJobProcessed(ctx, "failed")
	h.obs.RecordJobDuration(ctx, time.Since(start), "failed")
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
	return err
}

// ParseVariables checks the job variables against the registered input
// schema and decodes them.
func (h *Handler) ParseVariables(variables string) (*Input, error) {
	if h.inputSchema != nil {
		var doc interface{}
		if err := json.Unmarshal([]byte(variables), &doc); err != nil {
			return nil, errors.NewInvalidDefectError(err)
		}
		res, err := h.inputSchema.Validate(doc)
		if err != nil {
			return nil, errors.NewInvalidDefectError(err)
		}
		if !res.Valid {
			return nil, errors.NewInvalidDefectError(fmt.Errorf("%s", strings.Join(res.GetErrorMessages(), "; ")))
		}
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInvalidDefectError(err)
	}
	return &input, nil
}

// Execute runs one mapping session for input.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	defect, err := fieldmap.RecordFromAny(input.Defect)
	if err != nil {
		return nil, errors.NewInvalidDefectError(err)
	}
	group, err := fieldmap.RecordFromAny(input.GroupMapping)
	if err != nil {
		return nil, errors.NewInvalidDefectError(err)
	}

	recorder := events.NewRecorder()
	emitters := events.Multi{recorder}
	if h.emitter != nil {
		emitters = append(emitters, h.emitter)
	}
	notifiers := events.MultiNotifier{recorder}
	if h.notifier != nil {
		notifiers = append(notifiers, h.notifier)
	}

	c := composer.New(h.api, emitters, notifiers, h.logger)
	if err := c.SetDefectReport(ctx, defect); err != nil {
		return nil, err
	}
	c.SetGroupMapping(group)
	if err := c.SetGroupMode(ctx, input.Grouped); err != nil {
		return nil, err
	}

	valid := c.ValidateFields()
	missing := c.MissingRequired()
	if !valid {
		h.logger.Warn("required fields are empty", map[string]interface{}{"fields": missing})
	}

	record, err := c.Record().ToAny()
	if err != nil {
		return nil, errors.NewInvalidDefectError(err)
	}
	project, issueType := c.Target()

	return &Output{
		Record:          record,
		Descriptors:     c.Descriptors(),
		Valid:           valid,
		MissingRequired: missing,
		Mismatches:      c.Mismatches(),
		Notifications:   recorder.Notifications(),
		Project:         project,
		IssueType:       issueType,
	}, nil
}
