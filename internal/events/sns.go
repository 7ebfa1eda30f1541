package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"defect-reporter/internal/common/errors"
	"defect-reporter/internal/fieldmap"
)

// Publisher is satisfied by *aws.SNSClient.
type Publisher interface {
	PublishJSON(ctx context.Context, topicARN, eventType, subject string, body []byte) (string, error)
}

// Envelope is the message body published for every event.
type Envelope struct {
	ID         string      `json:"id"`
	Type       Type        `json:"type"`
	Source     string      `json:"source"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

// SNSPublisher publishes events and notifications to an SNS topic.
type SNSPublisher struct {
	publisher Publisher
	topicARN  string
	source    string
	newID     func() string
}

func NewSNSPublisher(p Publisher, topicARN, source string) *SNSPublisher {
	return &SNSPublisher{
		publisher: p,
		topicARN:  topicARN,
		source:    source,
		newID:     func() string { return uuid.New().String() },
	}
}

func (s *SNSPublisher) publish(ctx context.Context, t Type, payload interface{}) error {
	env := Envelope{
		ID:         s.newID(),
		Type:       t,
		Source:     s.source,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return errors.NewEventPublishFailedError(string(t), err)
	}
	if _, err := s.publisher.PublishJSON(ctx, s.topicARN, string(t), string(t), body); err != nil {
		return errors.NewEventPublishFailedError(string(t), err)
	}
	return nil
}

func (s *SNSPublisher) DefectChanged(ctx context.Context, record fieldmap.Record) error {
	return s.publish(ctx, TypeDefectChanged, record)
}

func (s *SNSPublisher) MappingsUpdated(ctx context.Context, descriptors []fieldmap.Descriptor) error {
	return s.publish(ctx, TypeMappingsUpdated, descriptors)
}

func (s *SNSPublisher) ValidationFailed(ctx context.Context, m fieldmap.Mismatch) error {
	return s.publish(ctx, TypeValidationFailed, m)
}

func (s *SNSPublisher) Notify(ctx context.Context, message string) error {
	return s.publish(ctx, TypeNotification, map[string]string{"message": message})
}
