package mailer

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"vrs/src/config"
	"vrs/src/lib"
	awslib "vrs/src/lib/aws"
	"vrs/src/utils"
)

const EMAIL_QUEUE = "Emails"

func emailQueue() string {
	q := os.Getenv("EMAIL_QUEUE")
	if q == "" {
		q = EMAIL_QUEUE
	}
	return utils.WithSuffix(q)
}

// Enabled reports whether a mail queue is configured for the current environment.
func Enabled() bool {
	if config.IsLocal() {
		return os.Getenv("KAFKA_BROKER") != ""
	}
	return lib.AWSAccountID() != ""
}

// NewMailerMessage queues input for delivery: Kafka in the local environment, SQS
// elsewhere. Nothing is queued when neither broker is configured.
func NewMailerMessage(input *lib.SendMailInput) error {
	if input.From == "" {
		input.From = config.SMTP_FROM
	}
	if !Enabled() {
		return nil
	}
	if config.IsLocal() {
		if err := lib.KafkaProduceMessage("emails", emailQueue(), input); err != nil {
			return fmt.Errorf("error sending message to queue: %s", err.Error())
		}
		return nil
	}
	body, err := json.Marshal(input)
	if err != nil {
		return err
	}
	if err := lib.SQSProduceMessage(emailQueue(), string(body)); err != nil {
		return fmt.Errorf("error sending message to queue: %s", err.Error())
	}
	return nil
}

// Deliver sends a dequeued mail with the transport named by MAIL_TRANSPORT.
func Deliver(input *lib.SendMailInput) error {
	if os.Getenv("MAIL_TRANSPORT") == "ses" {
		return awslib.SESSendMail(input)
	}
	return lib.SendMail(input)
}

// HandleEmailMessage is the queue consumer for EMAIL_QUEUE.
func HandleEmailMessage(payload string) {
	var input lib.SendMailInput
	if err := json.Unmarshal([]byte(payload), &input); err != nil {
		log.Printf("Invalid email payload: %s\n", err.Error())
		return
	}
	if err := Deliver(&input); err != nil {
		log.Printf("Error sending email to %v: %s\n", input.To, err.Error())
	}
}

func Queue() string {
	return emailQueue()
}
