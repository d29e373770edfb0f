package lib

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"
	"vrs/src/config"
	"vrs/src/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsched "github.com/aws/aws-sdk-go-v2/service/scheduler"
	schedulerTypes "github.com/aws/aws-sdk-go-v2/service/scheduler/types"
	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

type Key string

const (
	varsKey Key = "vars"
)

var (
	scheduler     gocron.Scheduler
	topicHandlers = map[string]types.Handler{}
	topicMu       sync.RWMutex
)

func NewScheduler(s gocron.Scheduler) {
	scheduler = s
}

func GetScheduler() (gocron.Scheduler, error) {
	if scheduler != nil {
		return scheduler, nil
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("Error initializing Scheduler: %s\n", err.Error())
		return nil, err
	}
	scheduler = sched
	return sched, nil
}

func CreateCronJob(name string, handler any, duration time.Duration, args ...any) (*string, error) {
	sched, err := GetScheduler()
	if err != nil {
		return nil, err
	}
	j, err := sched.NewJob(
		gocron.DurationJob(duration),
		gocron.NewTask(handler, args...),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}
	id := j.ID().String()
	log.Printf("Job: %s %s every %s\n", id, j.Name(), duration)
	return &id, nil
}

// RegisterTopicHandler binds an in-process handler to a topic. Local schedules deliver
// their payload to it instead of going through SNS and SQS.
func RegisterTopicHandler(topic string, h types.Handler) {
	topicMu.Lock()
	defer topicMu.Unlock()
	topicHandlers[topic] = h
}

func topicHandler(topic string) (types.Handler, bool) {
	topicMu.RLock()
	defer topicMu.RUnlock()
	h, ok := topicHandlers[topic]
	return h, ok
}

type Scheduler interface {
	Name() string
	CreateScheduleWithStartDate(ctx context.Context, s time.Time, p types.JSONB) (*uuid.UUID, error)
}

type EventBridgeScheduler struct {
	inner *awsched.Client
}

func (e *EventBridgeScheduler) Name() string {
	return "EventBridge"
}

func (e *EventBridgeScheduler) CreateScheduleWithStartDate(ctx context.Context, s time.Time, p types.JSONB) (*uuid.UUID, error) {
	if e.inner == nil {
		return nil, fmt.Errorf("scheduler client is not available")
	}
	vars, _ := ctx.Value(varsKey).(map[string]string)
	name := vars["name"]
	topic := vars["topic"]
	bPayload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	sid := uuid.New()
	roleArn := os.Getenv("SCHEDULER_ROLE_ARN")
	sRunsAt := s.UTC().Format("2006-01-02T15:04:05")
	sched, err := e.inner.CreateSchedule(ctx, &awsched.CreateScheduleInput{
		Name:      aws.String(fmt.Sprintf("schedule_%s", name)),
		StartDate: aws.Time(s),
		Target: &schedulerTypes.Target{
			Arn:     aws.String(GetTopicArn(topic)),
			RoleArn: aws.String(roleArn),
			Input:   aws.String(string(bPayload)),
			RetryPolicy: &schedulerTypes.RetryPolicy{
				MaximumRetryAttempts: aws.Int32(3),
			},
		},
		FlexibleTimeWindow:    &schedulerTypes.FlexibleTimeWindow{Mode: schedulerTypes.FlexibleTimeWindowModeOff},
		ScheduleExpression:    aws.String(fmt.Sprintf("at(%s)", sRunsAt)),
		ActionAfterCompletion: schedulerTypes.ActionAfterCompletionDelete,
	})
	if err != nil {
		log.Printf("Failed to create Schedule: %s\n", err.Error())
		return nil, err
	}
	log.Printf("Created schedule at: %s\n", aws.ToString(sched.ScheduleArn))
	return &sid, nil
}

type LocalScheduler struct {
	inner gocron.Scheduler
}

func (l *LocalScheduler) Name() string {
	return "Local"
}

func (l *LocalScheduler) CreateScheduleWithStartDate(ctx context.Context, s time.Time, p types.JSONB) (*uuid.UUID, error) {
	vars, _ := ctx.Value(varsKey).(map[string]string)
	topic := vars["topic"]
	j, err := l.inner.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(s)),
		gocron.NewTask(func(topic string, p types.JSONB) {
			log.Printf("[%s] Running scheduled task for %s...\n", l.Name(), topic)
			deliverLocal(topic, p)
		}, topic, p),
	)
	if err != nil {
		log.Printf("Error creating job: %s\n", err.Error())
		return nil, err
	}
	log.Printf("[%s] New Job scheduled on: %s %s\n", l.Name(), j.ID().String(), s.Format(config.TIME_PARSE_FORMAT))
	jid := j.ID()
	return &jid, nil
}

func deliverLocal(topic string, p types.JSONB) {
	b, err := json.Marshal(p)
	if err != nil {
		log.Printf("Error encoding payload for %s: %s\n", topic, err.Error())
		return
	}
	if h, ok := topicHandler(topic); ok {
		h(string(b))
		return
	}
	if err := KafkaProduceMessage("scheduler", topic, p); err != nil {
		log.Printf("Error forwarding scheduled payload to %s: %s\n", topic, err.Error())
	}
}

func NewAwsScheduler() *EventBridgeScheduler {
	return &EventBridgeScheduler{inner: AWSGetSchedulerClient()}
}

func NewLocalScheduler() (*LocalScheduler, error) {
	inner, err := GetScheduler()
	if err != nil {
		return nil, err
	}
	return &LocalScheduler{inner: inner}, nil
}

// CreateScheduler returns the EventBridge scheduler when a scheduler role is configured
// outside the local environment, and the in-process gocron scheduler otherwise.
func CreateScheduler() (Scheduler, error) {
	if !config.IsLocal() && os.Getenv("SCHEDULER_ROLE_ARN") != "" {
		return NewAwsScheduler(), nil
	}
	return NewLocalScheduler()
}

// NewScheduledJob schedules payload p for delivery to vars["topic"] at startDate.
func NewScheduledJob(startDate time.Time, vars map[string]string, p types.JSONB) (*uuid.UUID, error) {
	sch, err := CreateScheduler()
	if err != nil {
		return nil, err
	}
	ctx := context.WithValue(context.Background(), varsKey, vars)
	log.Printf("Created scheduler with name: %s\n", sch.Name())
	return sch.CreateScheduleWithStartDate(ctx, startDate, p)
}
