package services

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"binroute-backend/internal/models"
)

type fakeSender struct {
	sent []*messaging.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, m *messaging.Message) (string, error) {
	f.sent = append(f.sent, m)
	return "projects/test/messages/1", f.err
}

func TestFCMServiceRouteAssigned(t *testing.T) {
	sender := &fakeSender{}
	svc := &FCMService{client: sender}

	truck := models.Truck{ID: 2, Name: "Truck 2", AssignedRoute: models.RouteStops{{ID: 1}, {ID: 4}}}
	require.NoError(t, svc.RouteAssigned(context.Background(), truck, 3.456))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "truck-2", msg.Topic)
	assert.Equal(t, "route_assigned", msg.Data["type"])
	assert.Equal(t, "2", msg.Data["total_bins"])
	assert.Equal(t, "3.46", msg.Data["distance_km"])
	assert.Equal(t, "high", msg.Android.Priority)
}

func TestFCMServiceRouteCompletedWrapsErrors(t *testing.T) {
	sender := &fakeSender{err: errors.New("quota exceeded")}
	svc := &FCMService{client: sender}

	err := svc.RouteCompleted(context.Background(), models.Truck{ID: 1, Name: "Truck 1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, "route_completed", sender.sent[0].Data["type"])
}

func TestNewFCMServiceFromBase64RejectsGarbage(t *testing.T) {
	_, err := NewFCMServiceFromBase64(context.Background(), "%%%not-base64%%%")
	assert.Error(t, err)
}
