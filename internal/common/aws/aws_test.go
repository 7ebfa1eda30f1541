package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSNS struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("mail-1")}, nil
}

func TestSNSClient_PublishJSON(t *testing.T) {
	fake := &fakeSNS{}
	c := NewSNSClientWith(fake)

	id, err := c.PublishJSON(context.Background(), "arn:aws:sns:us-east-1:1:defects", "DefectChanged", "subject", []byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
	assert.Equal(t, "arn:aws:sns:us-east-1:1:defects", aws.ToString(fake.input.TopicArn))
	assert.Equal(t, `{"a":1}`, aws.ToString(fake.input.Message))
	assert.Equal(t, "DefectChanged", aws.ToString(fake.input.MessageAttributes["eventType"].StringValue))

	fake.err = errors.New("throttled")
	_, err = c.PublishJSON(context.Background(), "arn", "x", "s", nil)
	assert.EqualError(t, err, "throttled")
}

func TestSESClient_SendText(t *testing.T) {
	fake := &fakeSES{}
	c := NewSESClientWith(fake)

	id, err := c.SendText(context.Background(), "bot@example.com", "qa@example.com", "Jira", "Failed")
	require.NoError(t, err)
	assert.Equal(t, "mail-1", id)
	assert.Equal(t, []string{"qa@example.com"}, fake.input.Destination.ToAddresses)
	assert.Equal(t, "Failed", aws.ToString(fake.input.Message.Body.Text.Data))

	fake.err = errors.New("not verified")
	_, err = c.SendText(context.Background(), "a", "b", "c", "d")
	assert.Error(t, err)
}
