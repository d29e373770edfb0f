package lib

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awsched "github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// awsGetSdkClient loads the default config. When AWS_IAM_ROLE_ARN is set the
// role is assumed and its temporary credentials are used instead.
func awsGetSdkClient() (*aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Printf("Error loading default config: %s\n", err.Error())
		return nil, err
	}
	iamRole := os.Getenv("AWS_IAM_ROLE_ARN")
	if iamRole == "" {
		return &cfg, nil
	}
	stsClient := sts.NewFromConfig(cfg)
	output, err := stsClient.AssumeRole(context.TODO(), &sts.AssumeRoleInput{
		RoleArn:         aws.String(iamRole),
		RoleSessionName: aws.String("vrs-api"),
	})
	if err != nil {
		log.Printf("Error configuring STS client: %s\n", err.Error())
		return nil, err
	}
	creds := output.Credentials
	cfg, err = config.LoadDefaultConfig(context.TODO(), config.WithCredentialsProvider(
		credentials.NewStaticCredentialsProvider(*creds.AccessKeyId, *creds.SecretAccessKey, *creds.SessionToken),
	))
	if err != nil {
		log.Printf("Error configuration: %s\n", err.Error())
		return nil, err
	}

	return &cfg, nil
}

// AWSGetConfig exposes the resolved SDK config to the service packages under lib/aws.
func AWSGetConfig() (*aws.Config, error) {
	return awsGetSdkClient()
}

func AWSGetSchedulerClient() *awsched.Client {
	cfg, err := awsGetSdkClient()
	if err != nil {
		log.Printf("Failed to initialize Scheduler client: %s\n", err.Error())
		return nil
	}
	return awsched.NewFromConfig(*cfg)
}

func AWSGetSQSClient() *sqs.Client {
	cfg, err := awsGetSdkClient()
	if err != nil {
		log.Printf("Failed to initialize SQS client: %s\n", err.Error())
		return nil
	}
	return sqs.NewFromConfig(*cfg)
}

func AWSGetSNSClient() *sns.Client {
	cfg, err := awsGetSdkClient()
	if err != nil {
		log.Printf("Failed to initialize SNS client: %s\n", err.Error())
		return nil
	}
	return sns.NewFromConfig(*cfg)
}

// GetTopicArn builds the SNS topic ARN for a topic name in the configured account.
func GetTopicArn(topic string) string {
	return fmt.Sprintf("arn:aws:sns:%s:%s:%s", AWSRegion(), AWSAccountID(), topic)
}

func AWSRegion() string {
	return os.Getenv("AWS_REGION")
}

func AWSAccountID() string {
	return os.Getenv("AWS_ACCOUNT_ID")
}

func SQSProduceMessage(queue string, body string) error {
	client := AWSGetSQSClient()
	if client == nil {
		return fmt.Errorf("sqs client is not available")
	}
	qurl, err := client.GetQueueUrl(context.TODO(), &sqs.GetQueueUrlInput{
		QueueName: aws.String(queue),
	})
	if err != nil {
		log.Printf("Failed to retrieve queue URL for %s: %s\n", queue, err.Error())
		return err
	}
	out, err := client.SendMessage(context.TODO(), &sqs.SendMessageInput{
		QueueUrl:    qurl.QueueUrl,
		MessageBody: aws.String(body),
	})
	if err != nil {
		log.Printf("Error sending message to %s: %s\n", queue, err.Error())
		return err
	}
	log.Printf("Sent message [%s] to %s\n", aws.ToString(out.MessageId), queue)
	return nil
}

func SQSDeleteMessage(c *sqs.Client, qurl *string, msg *sqsTypes.Message) {
	_, err := c.DeleteMessage(context.TODO(), &sqs.DeleteMessageInput{
		QueueUrl:      qurl,
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		log.Printf("Error deleting message from queue: %s\n", err.Error())
		return
	}
	log.Printf("Deleted message from queue: %s\n", aws.ToString(msg.MessageId))
}

func SNSPublish(topic string, body string) error {
	client := AWSGetSNSClient()
	if client == nil {
		return fmt.Errorf("sns client is not available")
	}
	out, err := client.Publish(context.TODO(), &sns.PublishInput{
		TopicArn: aws.String(GetTopicArn(topic)),
		Message:  aws.String(body),
	})
	if err != nil {
		log.Printf("Error publishing to topic [%s]: %s\n", topic, err.Error())
		return err
	}
	log.Printf("Published message [%s] to %s\n", aws.ToString(out.MessageId), topic)
	return nil
}
