package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"binroute-backend/internal/models"
)

// messageSender is the part of *messaging.Client the service uses.
type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMService sends route notices to the topic each truck's crew app
// subscribes to ("truck-<id>").
type FCMService struct {
	client messageSender
}

// NewFCMService creates a new FCM service instance from a credentials file
func NewFCMService(ctx context.Context, credentialsFile string) (*FCMService, error) {
	return newFCMService(ctx, option.WithCredentialsFile(credentialsFile))
}

// NewFCMServiceFromBase64 creates a new FCM service instance from base64-encoded credentials.
// Cloud hosts usually can't mount a credentials file.
func NewFCMServiceFromBase64(ctx context.Context, credentialsBase64 string) (*FCMService, error) {
	credentialsJSON, err := base64.StdEncoding.DecodeString(credentialsBase64)
	if err != nil {
		return nil, fmt.Errorf("error decoding base64 credentials: %w", err)
	}
	return newFCMService(ctx, option.WithCredentialsJSON(credentialsJSON))
}

func newFCMService(ctx context.Context, opt option.ClientOption) (*FCMService, error) {
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	return &FCMService{client: client}, nil
}

// TruckTopic is the FCM topic for a truck's crew.
func TruckTopic(truckID int64) string {
	return "truck-" + strconv.FormatInt(truckID, 10)
}

// RouteAssigned tells the crew a new route is locked.
func (s *FCMService) RouteAssigned(ctx context.Context, truck models.Truck, distanceKm float64) error {
	stops := len(truck.AssignedRoute)
	return s.send(ctx, &messaging.Message{
		Topic: TruckTopic(truck.ID),
		Notification: &messaging.Notification{
			Title: "New Route Assigned!",
			Body:  fmt.Sprintf("%s has %d bins to collect (%.2f km).", truck.Name, stops, distanceKm),
		},
		Data: map[string]string{
			"type":        "route_assigned",
			"truck_id":    strconv.FormatInt(truck.ID, 10),
			"total_bins":  strconv.Itoa(stops),
			"distance_km": strconv.FormatFloat(distanceKm, 'f', 2, 64),
		},
	})
}

// RouteCompleted tells the crew the truck is free for its next route.
func (s *FCMService) RouteCompleted(ctx context.Context, truck models.Truck) error {
	return s.send(ctx, &messaging.Message{
		Topic: TruckTopic(truck.ID),
		Notification: &messaging.Notification{
			Title: "Route Completed",
			Body:  fmt.Sprintf("%s finished its route.", truck.Name),
		},
		Data: map[string]string{
			"type":     "route_completed",
			"truck_id": strconv.FormatInt(truck.ID, 10),
		},
	})
}

func (s *FCMService) send(ctx context.Context, message *messaging.Message) error {
	message.Android = &messaging.AndroidConfig{
		Priority: "high",
	}
	message.APNS = &messaging.APNSConfig{
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{
				ContentAvailable: true,
				Sound:            "default",
			},
		},
	}

	response, err := s.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("error sending FCM message: %w", err)
	}

	log.Printf("✅ FCM notification sent successfully: %s", response)
	return nil
}
