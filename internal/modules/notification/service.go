// README: Notification service records ride updates for requesters and pushes them when possible.
package notification

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"fleet/internal/types"
)

var ErrBadRequest = errors.New("bad request")

type Service struct {
	store  *Store
	pusher Pusher
	log    logrus.FieldLogger
	now    func() time.Time
}

// NewService builds the service. pusher may be nil when push delivery is not configured.
func NewService(store *Store, pusher Pusher, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: store, pusher: pusher, log: log.WithField("module", "notification"), now: time.Now}
}

// NotifyRideUpdate stores the update in the requester's inbox. Push delivery is best
// effort: a failed push is logged and does not fail the call.
func (s *Service) NotifyRideUpdate(ctx context.Context, u RideUpdate) error {
	if u.RideID == "" || u.RequesterID == "" || u.Status == "" {
		return ErrBadRequest
	}
	msg := Message{
		RideID:    u.RideID,
		UserID:    u.RequesterID,
		Status:    u.Status,
		Text:      TextFor(u.Status, u.Reason),
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Append(ctx, msg); err != nil {
		return err
	}

	if s.pusher == nil {
		return nil
	}
	token, ok, err := s.store.DeviceToken(ctx, u.RequesterID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", u.RequesterID).Warn("lookup device token")
		return nil
	}
	if !ok {
		return nil
	}
	if err := s.pusher.Push(ctx, token, msg); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"user_id": u.RequesterID, "ride_id": u.RideID}).Warn("push notification")
	}
	return nil
}

func (s *Service) Inbox(ctx context.Context, userID types.ID) ([]Message, error) {
	if userID == "" {
		return nil, ErrBadRequest
	}
	return s.store.Inbox(ctx, userID)
}

func (s *Service) RegisterDevice(ctx context.Context, userID types.ID, token string) error {
	token = strings.TrimSpace(token)
	if userID == "" || token == "" {
		return ErrBadRequest
	}
	return s.store.SetDeviceToken(ctx, userID, token)
}
