// README: Requester-facing notification messages.
package notification

import (
	"fmt"
	"time"

	"fleet/internal/types"
)

type Message struct {
	RideID    types.ID  `json:"rideId"`
	UserID    types.ID  `json:"userId"`
	Status    string    `json:"status"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// RideUpdate is what a caller hands over after a successful ride transition.
type RideUpdate struct {
	RideID      types.ID
	RequesterID types.ID
	Status      string
	Reason      string
}

// TextFor renders the requester message for a ride status.
func TextFor(status, reason string) string {
	switch status {
	case "approved":
		return "Your ride has been approved"
	case "rejected":
		if reason != "" {
			return fmt.Sprintf("Your ride request was rejected: %s", reason)
		}
		return "Your ride request was rejected"
	case "pending_admin_after_pm":
		return "Project manager approved your ride; awaiting admin approval"
	case "in_progress":
		return "A driver has been assigned to your ride"
	case "completed":
		return "Your ride has been completed"
	default:
		return fmt.Sprintf("Your ride status changed to %s", status)
	}
}
