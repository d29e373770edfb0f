package mailer

import (
	"testing"
	"vrs/src/lib"

	"github.com/stretchr/testify/assert"
)

func TestQueueName(t *testing.T) {
	t.Setenv("EMAIL_QUEUE", "")
	t.Setenv("API_ENV", "production")
	assert.Equal(t, "Emails", Queue())
	t.Setenv("API_ENV", "staging")
	assert.Equal(t, "Emails_staging", Queue())
}

func TestNewMailerMessageWithoutBroker(t *testing.T) {
	t.Setenv("API_ENV", "local")
	t.Setenv("KAFKA_BROKER", "")
	input := &lib.SendMailInput{To: []string{"customer@example.com"}, Subject: "hi"}
	assert.NoError(t, NewMailerMessage(input))
}
