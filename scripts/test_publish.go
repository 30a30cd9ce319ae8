// +build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type ItineraryChangedEvent struct {
	TripID uuid.UUID `json:"trip_id"`
	Reason string    `json:"reason,omitempty"`
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	tripID := flag.String("trip", "", "Trip UUID (random if empty)")
	reason := flag.String("reason", "manual_test", "Change reason")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id := uuid.New()
	if *tripID != "" {
		parsed, err := uuid.Parse(*tripID)
		if err != nil {
			log.Fatalf("invalid trip id: %v", err)
		}
		id = parsed
	}

	event := ItineraryChangedEvent{TripID: id, Reason: *reason}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("failed to marshal event: %v", err)
	}

	msgID, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: "stream:itinerary:changed",
		Values: map[string]interface{}{"data": string(payload)},
	}).Result()
	if err != nil {
		log.Fatalf("failed to publish: %v", err)
	}

	fmt.Printf("published %s for trip %s\n", msgID, id)
}
