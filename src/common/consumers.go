package common

import (
	"context"
	"log"
	"vrs/src/config"
	"vrs/src/lib"
	awslib "vrs/src/lib/aws"
	"vrs/src/lib/mailer"
)

// RegisterLocalHandlers lets local one-time jobs reach their consumers in-process.
func RegisterLocalHandlers() {
	lib.RegisterTopicHandler(orderExpiryTopic(), HandleOrderExpiryMessage)
}

// SQSConsumers starts the queue consumers used outside the local environment.
func SQSConsumers() {
	awslib.NewSQSConsumer(orderExpiryTopic(), HandleOrderExpiryMessage).Listen()
	awslib.NewSQSConsumer(mailer.Queue(), mailer.HandleEmailMessage).Listen()
	awslib.NewSQSConsumer("DLQ", func(payload string) {
		log.Printf("DLQ: message received: %s\n", payload)
	}).Listen()
}

// SNSSubscribes wires the scheduler topic to its queue.
func SNSSubscribes() {
	topic := orderExpiryTopic()
	if _, err := awslib.NewSNSSubscriber(topic).Subscribe("sqs", awslib.QueueArn(topic)); err != nil {
		log.Printf("Error subscribing %s: %s\n", topic, err.Error())
	}
}

// KafkaConsumers is the local counterpart of SQSConsumers.
func KafkaConsumers(ctx context.Context) {
	if err := lib.KafkaConsumer(ctx, "emails", []string{mailer.Queue()}, mailer.HandleEmailMessage); err != nil {
		log.Printf("Error starting email consumer: %s\n", err.Error())
	}
	if err := lib.KafkaConsumer(ctx, "expiry", []string{orderExpiryTopic()}, HandleOrderExpiryMessage); err != nil {
		log.Printf("Error starting expiry consumer: %s\n", err.Error())
	}
}

// StartConsumers picks the broker for the current environment.
func StartConsumers(ctx context.Context) {
	RegisterLocalHandlers()
	if config.IsLocal() {
		KafkaConsumers(ctx)
		return
	}
	SNSSubscribes()
	SQSConsumers()
}
