package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/Matrix-I/todo-backend/domain"
	"github.com/Matrix-I/todo-backend/repository"
)

const (
	pendingKey   = "reminders:pending"
	payloadKey   = "reminders:payload"
	deliveredKey = "reminders:delivered"
	badgeKey     = "reminders:badge"
)

type notificationStore struct {
	client *redislib.Client
}

// NewNotificationStore creates a Redis-backed reminder store. Pending
// reminders live in a sorted set scored by fire time, payloads in a hash
// keyed by task id, delivered ids in a plain set. Scheduling an id twice
// replaces the earlier entry because every structure is keyed by task id.
func NewNotificationStore(client *redislib.Client) repository.NotificationCenter {
	return &notificationStore{client: client}
}

func (s *notificationStore) Schedule(ctx context.Context, req domain.ReminderRequest) error {
	if req.TaskID == "" {
		return domain.ErrInvalidPayload
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.ZAdd(ctx, pendingKey, redislib.Z{
			Score:  float64(req.FireAt.Unix()),
			Member: req.TaskID,
		})
		pipe.HSet(ctx, payloadKey, req.TaskID, payload)
		pipe.SRem(ctx, deliveredKey, req.TaskID)
		return nil
	})
	return err
}

func (s *notificationStore) Cancel(ctx context.Context, taskID string) error {
	if taskID == "" {
		return nil
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.ZRem(ctx, pendingKey, taskID)
		pipe.SRem(ctx, deliveredKey, taskID)
		pipe.HDel(ctx, payloadKey, taskID)
		return nil
	})
	return err
}

func (s *notificationStore) PendingIDs(ctx context.Context) ([]string, error) {
	return s.client.ZRange(ctx, pendingKey, 0, -1).Result()
}

func (s *notificationStore) DeliveredIDs(ctx context.Context) ([]string, error) {
	return s.client.SMembers(ctx, deliveredKey).Result()
}

func (s *notificationStore) RemoveDelivered(ctx context.Context, taskID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.SRem(ctx, deliveredKey, taskID)
		pipe.HDel(ctx, payloadKey, taskID)
		return nil
	})
	return err
}

func (s *notificationStore) SetBadgeCount(ctx context.Context, count int) error {
	if count < 0 {
		count = 0
	}
	return s.client.Set(ctx, badgeKey, count, 0).Err()
}

// DeliverDue moves every pending reminder whose fire time has passed into
// the delivered set and returns their payloads.
func (s *notificationStore) DeliverDue(ctx context.Context, now time.Time) ([]domain.ReminderRequest, error) {
	due, err := s.client.ZRangeByScore(ctx, pendingKey, &redislib.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(due) == 0 {
		return nil, nil
	}

	var delivered []domain.ReminderRequest
	for _, taskID := range due {
		raw, err := s.client.HGet(ctx, payloadKey, taskID).Result()
		if err != nil && err != redislib.Nil {
			return delivered, err
		}

		_, err = s.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
			pipe.ZRem(ctx, pendingKey, taskID)
			pipe.SAdd(ctx, deliveredKey, taskID)
			return nil
		})
		if err != nil {
			return delivered, err
		}

		var req domain.ReminderRequest
		if raw != "" && json.Unmarshal([]byte(raw), &req) == nil {
			delivered = append(delivered, req)
		}
	}
	return delivered, nil
}
