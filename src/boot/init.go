package boot

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"
	"vrs/src/common"
	"vrs/src/config"
	"vrs/src/db"
	"vrs/src/lib"
	awslib "vrs/src/lib/aws"
	"vrs/src/models"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(models.All()...)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitStorage switches file storage to S3 when a bucket is configured.
func InitStorage() {
	bucket := os.Getenv("S3_ASSETS_BUCKET")
	if bucket == "" {
		log.Printf("Storing files under %s\n", config.GetStorageDir())
		return
	}
	s, err := awslib.NewS3Storage(bucket)
	if err != nil {
		log.Printf("Error initializing S3 storage, keeping local storage: %s\n", err.Error())
		return
	}
	lib.NewStorage(s)
	log.Printf("Storing files in s3://%s\n", bucket)
}

func InitBroker(ctx context.Context) {
	go RecoverQueuedJobs()
	go UpdateExpiredJobs()
	common.StartConsumers(ctx)
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	if ttl := config.GetOrderHoldTTL(); ttl > 0 {
		interval := ttl / 4
		if interval < time.Minute {
			interval = time.Minute
		}
		if _, err := lib.CreateCronJob("expire_orders", common.SweepExpiredOrders, interval); err != nil {
			log.Printf("Error scheduling order expiry sweep: %s\n", err.Error())
		}
	}
	log.Println("Jobs in queue:", len(sched.Jobs()))
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while shutting stopping Scheduler. Check logs for info")
		return
	}
}

// RecoverQueuedJobs schedules again the pending expiry jobs a restart dropped from the
// in-process scheduler.
func RecoverQueuedJobs() error {
	if !config.IsLocal() && os.Getenv("SCHEDULER_ROLE_ARN") != "" {
		// EventBridge keeps its own schedules
		return nil
	}
	db := db.GetDb()
	var jobTasks []models.JobTask
	err := db.
		Model(&models.JobTask{}).
		Where(&models.JobTask{Status: "pending", JobType: common.JOB_EXPIRE_RENTAL_ORDER}).
		Where("runs_at > ?", time.Now()).
		Order("runs_at asc").
		Limit(100).
		Find(&jobTasks).
		Error
	if err != nil {
		log.Printf("Error retrieving jobs: %s\n", err.Error())
		return err
	}
	log.Printf("Found %d pending jobs", len(jobTasks))
	for _, jobTask := range jobTasks {
		id, err := lib.NewScheduledJob(jobTask.RunsAt, map[string]string{
			"name":  fmt.Sprintf("%s_%s", jobTask.Name, jobTask.PayloadID),
			"topic": jobTask.Topic,
		}, jobTask.Payload)
		if err != nil {
			log.Printf("Failed to schedule job [%s]. Skipping: %s\n", jobTask.ID.String(), err.Error())
			continue
		}
		log.Printf("Added job to scheduler: name=%s id=%s job=%s\n", jobTask.Name, jobTask.ID.String(), id.String())
	}

	return nil
}

// UpdateExpiredJobs flags jobs whose run time passed while the service was down. The
// orders they were meant to expire are picked up by the sweep.
func UpdateExpiredJobs() {
	db := db.GetDb()
	err := db.
		Model(&models.JobTask{}).
		Where("status = ?", "pending").
		Where("runs_at < ?", time.Now()).
		Update("status", "expired").
		Error
	if err != nil {
		log.Printf("Error while processing expired jobs: %s\n", err.Error())
	}
}
