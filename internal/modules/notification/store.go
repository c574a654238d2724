// README: Notification store backed by Redis lists (inbox) and keys (device tokens).
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fleet/internal/types"
)

const (
	inboxKeyPrefix  = "notify:inbox:%s"
	deviceKeyPrefix = "notify:device:%s"
	// Inboxes of idle users expire; the list is only a recent-activity feed.
	inboxTTL = 30 * 24 * time.Hour

	DefaultInboxSize = 50
)

type Store struct {
	redis     *redis.Client
	inboxSize int
}

func NewStore(redis *redis.Client, inboxSize int) *Store {
	if inboxSize <= 0 {
		inboxSize = DefaultInboxSize
	}
	return &Store{redis: redis, inboxSize: inboxSize}
}

// Append pushes msg to the front of the user's inbox and trims it to the configured size.
func (s *Store) Append(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	key := inboxKey(msg.UserID)
	pipe := s.redis.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, int64(s.inboxSize-1))
	pipe.Expire(ctx, key, inboxTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// Inbox returns the user's notifications, newest first.
func (s *Store) Inbox(ctx context.Context, userID types.ID) ([]Message, error) {
	raw, err := s.redis.LRange(ctx, inboxKey(userID), 0, int64(s.inboxSize-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(raw))
	for _, item := range raw {
		var m Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *Store) SetDeviceToken(ctx context.Context, userID types.ID, token string) error {
	return s.redis.Set(ctx, deviceKey(userID), token, 0).Err()
}

// DeviceToken reports the registered push token of a user, if any.
func (s *Store) DeviceToken(ctx context.Context, userID types.ID) (string, bool, error) {
	val, err := s.redis.Get(ctx, deviceKey(userID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func inboxKey(userID types.ID) string {
	return fmt.Sprintf(inboxKeyPrefix, string(userID))
}

func deviceKey(userID types.ID) string {
	return fmt.Sprintf(deviceKeyPrefix, string(userID))
}
