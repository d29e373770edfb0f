package lib

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
	"vrs/src/config"
	"vrs/src/types"
	"vrs/src/utils"
)

const (
	TOPIC_RENTAL_EVENTS           = "RentalLifecycleEvents"
	TOPIC_RENTAL_ORDERS_TO_EXPIRE = "RentalOrdersToExpire"
)

var (
	eventObservers []func(topic string, payload types.JSONB)
	eventMu        sync.RWMutex
)

// ObserveEvents registers fn to receive every published event in-process.
func ObserveEvents(fn func(topic string, payload types.JSONB)) {
	eventMu.Lock()
	defer eventMu.Unlock()
	eventObservers = append(eventObservers, fn)
}

func ResetEventObservers() {
	eventMu.Lock()
	defer eventMu.Unlock()
	eventObservers = nil
}

// PublishEvent fans a lifecycle event out to Kafka in the local environment and to
// SNS elsewhere. Brokers that are not configured are skipped. Delivery is best effort
// and never fails the caller.
func PublishEvent(event string, data types.JSONB) {
	topic := utils.WithSuffix(TOPIC_RENTAL_EVENTS)
	payload := types.JSONB{
		"event":       event,
		"data":        data,
		"occurred_at": time.Now().UTC().Format(time.RFC3339),
	}

	eventMu.RLock()
	observers := append([]func(string, types.JSONB){}, eventObservers...)
	eventMu.RUnlock()
	for _, fn := range observers {
		fn(topic, payload)
	}

	if config.IsLocal() {
		if os.Getenv("KAFKA_BROKER") == "" {
			return
		}
		go func() {
			if err := KafkaProduceMessage("events", topic, payload); err != nil {
				log.Printf("Error publishing %s: %s\n", event, err.Error())
			}
		}()
		return
	}
	if os.Getenv("AWS_ACCOUNT_ID") == "" {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error encoding event %s: %s\n", event, err.Error())
		return
	}
	go func() {
		if err := SNSPublish(topic, string(body)); err != nil {
			log.Printf("Error publishing %s: %s\n", event, err.Error())
		}
	}()
}
