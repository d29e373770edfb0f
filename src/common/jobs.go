package common

import (
	"context"
	"fmt"
	"log"
	"time"
	"vrs/src/config"
	"vrs/src/db"
	"vrs/src/lib"
	"vrs/src/models"
	"vrs/src/types"
	"vrs/src/utils"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const JOB_EXPIRE_RENTAL_ORDER = "expire_rental_order"

func orderExpiryTopic() string {
	return utils.WithSuffix(lib.TOPIC_RENTAL_ORDERS_TO_EXPIRE)
}

// scheduleOrderExpiry books a one-time job that expires the order once its hold ends.
// Nothing is scheduled while ORDER_HOLD_TTL is zero.
func scheduleOrderExpiry(ctx context.Context, order *models.RentalOrder) {
	ttl := config.GetOrderHoldTTL()
	if ttl <= 0 {
		return
	}
	payloadId := uuid.NewString()
	runsAt := time.Now().Add(ttl)
	topic := orderExpiryTopic()
	payload := types.JSONB{
		"id":        order.ID,
		"payloadId": payloadId,
	}
	job := models.JobTask{
		Name:       fmt.Sprintf("expire_order_%d", order.ID),
		JobType:    JOB_EXPIRE_RENTAL_ORDER,
		RunsAt:     runsAt,
		PayloadID:  payloadId,
		Payload:    payload,
		Source:     "rental_orders",
		SourceType: types.PAYABLE_RENTAL_ORDER,
		SourceID:   order.ID,
		Topic:      topic,
	}
	if err := db.WithContext(ctx).Create(&job).Error; err != nil {
		log.Printf("Error saving expiry job for rental order %d: %s\n", order.ID, err.Error())
		return
	}
	_, err := lib.NewScheduledJob(runsAt, map[string]string{
		"name":  fmt.Sprintf("%s_%s", job.Name, payloadId),
		"topic": topic,
	}, payload)
	if err != nil {
		log.Printf("Error scheduling expiry for rental order %d: %s\n", order.ID, err.Error())
	}
}

// unwrapMessage returns the inner message of an SNS envelope, or body itself when the
// queue uses raw delivery.
func unwrapMessage(body string) (string, bool) {
	if !gjson.Valid(body) {
		return "", false
	}
	if msg := gjson.Get(body, "Message"); msg.Exists() && msg.Type == gjson.String {
		if !gjson.Valid(msg.String()) {
			return "", false
		}
		return msg.String(), true
	}
	return body, true
}

// HandleOrderExpiryMessage consumes RentalOrdersToExpire payloads.
func HandleOrderExpiryMessage(body string) {
	msg, ok := unwrapMessage(body)
	if !ok {
		log.Printf("[%s]: Received invalid json body. Aborting\n", orderExpiryTopic())
		return
	}
	id := uint(gjson.Get(msg, "id").Uint())
	if id == 0 {
		log.Printf("[%s]: Missing rental order id\n", orderExpiryTopic())
		return
	}
	ctx := context.Background()
	if _, err := ExpireOrder(ctx, id); err != nil {
		log.Printf("Error expiring rental order %d: %s\n", id, err.Error())
		return
	}
	if payloadId := gjson.Get(msg, "payloadId").String(); payloadId != "" {
		if err := db.WithContext(ctx).
			Model(&models.JobTask{}).
			Where("payload_id = ?", payloadId).
			Update("status", "done").
			Error; err != nil {
			log.Printf("Error updating job %s: %s\n", payloadId, err.Error())
		}
	}
}
