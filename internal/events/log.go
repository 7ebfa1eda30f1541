package events

import (
	"context"

	"defect-reporter/internal/common/logger"
	"defect-reporter/internal/fieldmap"
)

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	logger logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

func (n *LogNotifier) Notify(_ context.Context, message string) error {
	n.logger.Error(message, map[string]interface{}{"channel": "notification"})
	return nil
}

// LogEmitter logs every signal at debug level, validation failures at warn.
type LogEmitter struct {
	logger logger.Logger
}

func NewLogEmitter(log logger.Logger) *LogEmitter {
	return &LogEmitter{logger: log}
}

func (e *LogEmitter) DefectChanged(_ context.Context, record fieldmap.Record) error {
	e.logger.Debug("defect changed", map[string]interface{}{"fields": record.Keys()})
	return nil
}

func (e *LogEmitter) MappingsUpdated(_ context.Context, descriptors []fieldmap.Descriptor) error {
	e.logger.Debug("mappings updated", map[string]interface{}{"count": len(descriptors)})
	return nil
}

func (e *LogEmitter) ValidationFailed(_ context.Context, m fieldmap.Mismatch) error {
	e.logger.Warn("validation failed", map[string]interface{}{
		"mapping":   m.Mapping,
		"fieldId":   m.FieldID,
		"fieldName": m.FieldName,
	})
	return nil
}
