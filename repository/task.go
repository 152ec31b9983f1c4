package repository

import (
	"context"

	"github.com/Matrix-I/todo-backend/domain"
)

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
	// DeleteCompleted removes every completed task and returns the ids it
	// removed so their reminders can be cancelled.
	DeleteCompleted(ctx context.Context) ([]string, error)
}
