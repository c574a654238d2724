// README: Firebase Cloud Messaging push for ride updates.
package notification

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
)

// Pusher delivers a message to one device.
type Pusher interface {
	Push(ctx context.Context, deviceToken string, msg Message) error
}

type FCMPusher struct {
	client *messaging.Client
}

func NewFCMPusher(client *messaging.Client) *FCMPusher {
	return &FCMPusher{client: client}
}

func (p *FCMPusher) Push(ctx context.Context, deviceToken string, msg Message) error {
	if deviceToken == "" {
		return fmt.Errorf("empty device token for ride %s", string(msg.RideID))
	}
	_, err := p.client.Send(ctx, &messaging.Message{
		Token: deviceToken,
		Data: map[string]string{
			"type":    "ride_update",
			"ride_id": string(msg.RideID),
			"status":  msg.Status,
		},
		Notification: &messaging.Notification{
			Title: "Ride Status Update",
			Body:  msg.Text,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	})
	if err != nil {
		return fmt.Errorf("sending FCM to token %s: %w", deviceToken, err)
	}
	return nil
}
