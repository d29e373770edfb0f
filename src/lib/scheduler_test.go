package lib

import (
	"testing"
	"time"
	"vrs/src/types"

	"github.com/go-co-op/gocron/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestNewScheduledJobRunsLocally(t *testing.T) {
	t.Setenv("API_ENV", "local")
	s, err := gocron.NewScheduler()
	require.NoError(t, err)
	NewScheduler(s)
	defer func() {
		_ = s.Shutdown()
		NewScheduler(nil)
	}()
	s.Start()

	received := make(chan string, 1)
	RegisterTopicHandler("RentalOrdersToExpire_test", func(payload string) {
		received <- payload
	})

	id, err := NewScheduledJob(time.Now().Add(50*time.Millisecond), map[string]string{
		"name":  "expire_order_1",
		"topic": "RentalOrdersToExpire_test",
	}, types.JSONB{"id": 1})
	require.NoError(t, err)
	assert.NotNil(t, id)

	select {
	case payload := <-received:
		assert.Equal(t, int64(1), gjson.Get(payload, "id").Int())
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled job did not run")
	}
}

func TestCreateSchedulerPicksLocal(t *testing.T) {
	t.Setenv("API_ENV", "local")
	t.Setenv("SCHEDULER_ROLE_ARN", "arn:aws:iam::000000000000:role/scheduler")
	s, err := CreateScheduler()
	require.NoError(t, err)
	assert.Equal(t, "Local", s.Name())
}
