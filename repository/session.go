package repository

import (
	"context"

	"github.com/Matrix-I/todo-backend/domain"
)

type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.DeviceSession, error)
	Save(ctx context.Context, session *domain.DeviceSession) error
	Delete(ctx context.Context, id string) error
	Extend(ctx context.Context, id string, ttlSeconds int) error
}
