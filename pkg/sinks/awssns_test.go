package sinks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type fakeSNSClient struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-456")}, nil
}

func TestSNSSinkPublishSuccess(t *testing.T) {
	client := &fakeSNSClient{}
	sink := &snsSink{
		id:       "alerts",
		typ:      TypeSNS,
		topicARN: "arn:aws:sns:ap-south-1:123:results",
		client:   client,
		log:      noopLogger{},
	}

	err := sink.Publish(context.Background(), Result{
		RunID:  "run-2",
		Check:  "users_list",
		Passed: false,
	})
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.TopicArn); got != "arn:aws:sns:ap-south-1:123:results" {
		t.Fatalf("TopicArn = %s", got)
	}
	attr, ok := client.input.MessageAttributes["passed"]
	if !ok || attr.StringValue == nil || aws.ToString(attr.StringValue) != "false" {
		t.Fatalf("passed attribute missing or wrong: %#v", attr)
	}
	if client.input.Message == nil || !strings.Contains(aws.ToString(client.input.Message), `"run_id":"run-2"`) {
		t.Fatalf("Message missing run_id: %s", aws.ToString(client.input.Message))
	}
}

func TestSNSSinkPublishError(t *testing.T) {
	client := &fakeSNSClient{err: errors.New("boom")}
	sink := &snsSink{
		id:       "alerts",
		typ:      TypeSNS,
		topicARN: "arn:aws:sns:ap-south-1:123:results",
		client:   client,
		log:      noopLogger{},
	}

	if err := sink.Publish(context.Background(), Result{RunID: "run-2"}); err == nil {
		t.Fatalf("expected error from Publish")
	}
}
