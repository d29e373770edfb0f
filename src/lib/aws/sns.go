package aws

import (
	"context"
	"fmt"
	"log"
	"vrs/src/lib"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type SNSSubscriber struct {
	Name  string
	inner *sns.Client
}

func NewSNSSubscriber(topic string) *SNSSubscriber {
	return &SNSSubscriber{
		Name:  topic,
		inner: lib.AWSGetSNSClient(),
	}
}

// Subscribe attaches endpoint (a queue ARN for proto "sqs") to the topic.
func (s *SNSSubscriber) Subscribe(proto string, endpoint string) (*string, error) {
	if s.inner == nil {
		return nil, fmt.Errorf("sns client is not available")
	}
	output, err := s.inner.Subscribe(context.TODO(), &sns.SubscribeInput{
		Protocol: aws.String(proto),
		TopicArn: aws.String(lib.GetTopicArn(s.Name)),
		Endpoint: aws.String(endpoint),
		Attributes: map[string]string{
			"RawMessageDelivery": "true",
		},
	})
	if err != nil {
		log.Printf("Error subscribing to topic [%s]: %s\n", s.Name, err.Error())
		return nil, err
	}
	return output.SubscriptionArn, nil
}

// QueueArn builds the SQS queue ARN for a queue name in the configured account.
func QueueArn(queue string) string {
	return fmt.Sprintf("arn:aws:sqs:%s:%s:%s", lib.AWSRegion(), lib.AWSAccountID(), queue)
}
