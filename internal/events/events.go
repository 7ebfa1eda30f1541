// Package events carries the signals the create-issue session raises:
// record changes, mapping refreshes, validation failures and user
// notifications.
package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"defect-reporter/internal/fieldmap"
)

type Type string

const (
	TypeDefectChanged    Type = "DefectChanged"
	TypeMappingsUpdated  Type = "MappingsUpdated"
	TypeValidationFailed Type = "ValidationFailed"
	TypeNotification     Type = "Notification"
)

// Emitter receives the session's outbound signals.
type Emitter interface {
	DefectChanged(ctx context.Context, record fieldmap.Record) error
	MappingsUpdated(ctx context.Context, descriptors []fieldmap.Descriptor) error
	ValidationFailed(ctx context.Context, mismatch fieldmap.Mismatch) error
}

// Notifier delivers user-visible error messages.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Event is one recorded signal.
type Event struct {
	Type        Type                  `json:"type"`
	Record      fieldmap.Record       `json:"record,omitempty"`
	Descriptors []fieldmap.Descriptor `json:"descriptors,omitempty"`
	Mismatch    *fieldmap.Mismatch    `json:"mismatch,omitempty"`
	Message     string                `json:"message,omitempty"`
	At          time.Time             `json:"at"`
}

// Recorder keeps every event and notification in memory. It is used by the
// Zeebe worker to collect a run's outcome and by tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(e Event) {
	e.At = time.Now().UTC()
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *Recorder) DefectChanged(_ context.Context, record fieldmap.Record) error {
	r.add(Event{Type: TypeDefectChanged, Record: record.Clone()})
	return nil
}

func (r *Recorder) MappingsUpdated(_ context.Context, descriptors []fieldmap.Descriptor) error {
	cp := make([]fieldmap.Descriptor, len(descriptors))
	for i, d := range descriptors {
		cp[i] = d.Clone()
	}
	r.add(Event{Type: TypeMappingsUpdated, Descriptors: cp})
	return nil
}

func (r *Recorder) ValidationFailed(_ context.Context, mismatch fieldmap.Mismatch) error {
	r.add(Event{Type: TypeValidationFailed, Mismatch: &mismatch})
	return nil
}

func (r *Recorder) Notify(_ context.Context, message string) error {
	r.add(Event{Type: TypeNotification, Message: message})
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType filters Events by type.
func (r *Recorder) OfType(t Type) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Notifications returns the recorded notification messages in order.
func (r *Recorder) Notifications() []string {
	var out []string
	for _, e := range r.OfType(TypeNotification) {
		out = append(out, e.Message)
	}
	return out
}

// Multi fans every signal out to all emitters and joins their errors.
type Multi []Emitter

func (m Multi) DefectChanged(ctx context.Context, record fieldmap.Record) error {
	var errs []error
	for _, e := range m {
		errs = append(errs, e.DefectChanged(ctx, record))
	}
	return errors.Join(errs...)
}

func (m Multi) MappingsUpdated(ctx context.Context, descriptors []fieldmap.Descriptor) error {
	var errs []error
	for _, e := range m {
		errs = append(errs, e.MappingsUpdated(ctx, descriptors))
	}
	return errors.Join(errs...)
}

func (m Multi) ValidationFailed(ctx context.Context, mismatch fieldmap.Mismatch) error {
	var errs []error
	for _, e := range m {
		errs = append(errs, e.ValidationFailed(ctx, mismatch))
	}
	return errors.Join(errs...)
}

// MultiNotifier delivers each message to every notifier.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, message string) error {
	var errs []error
	for _, n := range m {
		errs = append(errs, n.Notify(ctx, message))
	}
	return errors.Join(errs...)
}
