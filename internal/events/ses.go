package events

import (
	"context"

	"defect-reporter/internal/common/errors"
)

// Mailer is satisfied by *aws.SESClient.
type Mailer interface {
	SendText(ctx context.Context, from, to, subject, body string) (string, error)
}

// SESNotifier emails notifications to an operator address.
type SESNotifier struct {
	mailer  Mailer
	from    string
	to      string
	subject string
}

func NewSESNotifier(m Mailer, from, to string) *SESNotifier {
	return &SESNotifier{mailer: m, from: from, to: to, subject: "Defect reporter: Jira mapping problem"}
}

func (n *SESNotifier) Notify(ctx context.Context, message string) error {
	if _, err := n.mailer.SendText(ctx, n.from, n.to, n.subject, message); err != nil {
		return errors.NewNotificationSendFailedError("email", err)
	}
	return nil
}
