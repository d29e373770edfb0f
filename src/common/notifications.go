package common

import (
	"context"
	"fmt"
	"log"
	"vrs/src/db"
	"vrs/src/lib"
	"vrs/src/lib/mailer"
	"vrs/src/models"
	"vrs/src/types"
)

const (
	EVENT_ORDER_CREATED     = "rental_order.created"
	EVENT_ORDER_UPDATED     = "rental_order.updated"
	EVENT_ORDER_CANCELLED   = "rental_order.cancelled"
	EVENT_ORDER_EXPIRED     = "rental_order.expired"
	EVENT_PAYMENT_RECORDED  = "payment.recorded"
	EVENT_PAYMENT_UPDATED   = "payment.updated"
	EVENT_PAYMENT_DELETED   = "payment.deleted"
	EVENT_SESSION_STARTED   = "session.started"
	EVENT_SESSION_COMPLETED = "session.completed"
)

func orderEvent(event string, order *models.RentalOrder) {
	lib.RecordTransition("rental_order", string(order.Status))
	lib.PublishEvent(event, types.JSONB{
		"id":         order.ID,
		"ref_number": order.RefNumber,
		"status":     order.Status,
		"vehicle_id": order.VehicleID,
		"user_id":    order.UserID,
	})
}

// notifyUser queues an email for the user. It is skipped when no mail broker is set up.
func notifyUser(ctx context.Context, userID uint, subject string, body string) {
	if !mailer.Enabled() {
		return
	}
	var user models.User
	if err := db.WithContext(ctx).Select("id", "name", "email").First(&user, userID).Error; err != nil {
		log.Printf("Error loading user %d for notification: %s\n", userID, err.Error())
		return
	}
	err := mailer.NewMailerMessage(&lib.SendMailInput{
		To:      []string{user.Email},
		Subject: subject,
		Body:    fmt.Sprintf("Hi %s,\n\n%s\n", user.Name, body),
	})
	if err != nil {
		log.Printf("Error queueing notification for user %d: %s\n", userID, err.Error())
	}
}

func refOf(ref *string) string {
	if ref == nil {
		return ""
	}
	return *ref
}
