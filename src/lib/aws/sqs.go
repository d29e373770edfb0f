package aws

import (
	"context"
	"log"
	"strings"
	"time"
	"vrs/src/lib"
	"vrs/src/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type SQSConsumer struct {
	Name    string
	handler types.Handler
}

func NewSQSConsumer(queue string, handler types.Handler) *SQSConsumer {
	return &SQSConsumer{
		Name:    queue,
		handler: handler,
	}
}

// Listen long-polls the queue in the background. A message is deleted once its
// handler returns.
func (s *SQSConsumer) Listen() {
	go func() {
		qname := s.Name
		client := lib.AWSGetSQSClient()
		if client == nil {
			return
		}
		qurl, err := client.GetQueueUrl(context.TODO(), &sqs.GetQueueUrlInput{
			QueueName: aws.String(qname),
		})
		if err != nil {
			log.Printf("Failed to retrieve queue URL for %s: %s\n", qname, err.Error())
			return
		}
		log.Printf("%s: Listening for messages...", qname)
		messagesChan := make(chan sqstypes.Message, 10)
		go func(chn chan<- sqstypes.Message) {
			for {
				output, err := client.ReceiveMessage(context.Background(), &sqs.ReceiveMessageInput{
					QueueUrl:            qurl.QueueUrl,
					WaitTimeSeconds:     20,
					MaxNumberOfMessages: 10,
				})
				if err != nil {
					log.Printf("[SQS] Error receiving messages: %s\n", err.Error())
					time.Sleep(5 * time.Second)
					continue
				}
				for _, m := range output.Messages {
					chn <- m
				}
			}
		}(messagesChan)

		for m := range messagesChan {
			go func(m sqstypes.Message) {
				s.handler(strings.Clone(aws.ToString(m.Body)))
				lib.SQSDeleteMessage(client, qurl.QueueUrl, &m)
			}(m)
		}
	}()
}
