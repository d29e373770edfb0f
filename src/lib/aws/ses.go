package aws

import (
	"context"
	"fmt"
	"log"
	"vrs/src/lib"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

func GetSESClient() *ses.Client {
	cfg, err := lib.AWSGetConfig()
	if err != nil {
		log.Printf("Could not load default config: %s\n", err.Error())
		return nil
	}
	return ses.NewFromConfig(*cfg)
}

// NewSESEmailInput maps a queued mail onto the SES request shape.
func NewSESEmailInput(input *lib.SendMailInput) *ses.SendEmailInput {
	source := input.From
	if input.FromName != "" {
		source = fmt.Sprintf("%s <%s>", input.FromName, input.From)
	}
	body := &types.Body{}
	content := &types.Content{Data: aws.String(input.Body), Charset: aws.String("UTF-8")}
	if input.Html {
		body.Html = content
	} else {
		body.Text = content
	}
	out := &ses.SendEmailInput{
		Source: aws.String(source),
		Destination: &types.Destination{
			ToAddresses:  input.To,
			CcAddresses:  input.Cc,
			BccAddresses: input.Bcc,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(input.Subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
	}
	if input.ReplyTo != "" {
		out.ReplyToAddresses = []string{input.ReplyTo}
	}
	return out
}

func SESSendMail(input *lib.SendMailInput) error {
	c := GetSESClient()
	if c == nil {
		return fmt.Errorf("ses client is not available")
	}
	out, err := c.SendEmail(context.TODO(), NewSESEmailInput(input))
	if err != nil {
		log.Printf("Error sending email: %s\n", err.Error())
		return err
	}
	log.Printf("Sent email with id: %s\n", aws.ToString(out.MessageId))
	return nil
}
