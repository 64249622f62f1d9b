package notify

import (
	"context"

	"storefront/internal/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snsTypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	json "github.com/goccy/go-json"
)

// snsAPI is the part of *sns.Client the notifier uses.
type snsAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNS publishes each notification as a JSON message to one topic.
type SNS struct {
	cli      snsAPI
	topicArn string
}

func NewSNS(c snsAPI, topicArn string) *SNS { return &SNS{cli: c, topicArn: topicArn} }

func (s *SNS) Notify(ctx context.Context, n types.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	_, err = s.cli.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicArn),
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]snsTypes.MessageAttributeValue{
			"content-type": {DataType: aws.String("String"), StringValue: aws.String("application/json")},
			"signal":       {DataType: aws.String("String"), StringValue: aws.String(n.Signal)},
		},
	})
	return err
}
