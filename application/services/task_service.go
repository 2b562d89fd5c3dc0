package services

import (
	"context"
	"fmt"

	"todo-backend/application/commands"
	"todo-backend/application/ports"
	"todo-backend/domain/core/entities"
	"todo-backend/pkg/observability"
	"todo-backend/pkg/utils"

	"go.uber.org/zap"
)

// TaskService orchestrates todo operations over the repository and the attachment signer.
// It owns the invariants the store does not enforce: identifier generation,
// creation timestamps and the attachment naming convention.
type TaskService struct {
	repo   ports.TaskRepository
	signer ports.AttachmentSigner
	bucket string
	clock  utils.Clock
	tracer *observability.Tracer
	logger *zap.Logger
}

// NewTaskService creates a new todo service
func NewTaskService(
	repo ports.TaskRepository,
	signer ports.AttachmentSigner,
	bucket string,
	clock utils.Clock,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *TaskService {
	if clock == nil {
		clock = utils.SystemClock
	}
	return &TaskService{
		repo:   repo,
		signer: signer,
		bucket: bucket,
		clock:  clock,
		tracer: tracer,
		logger: logger,
	}
}

// ListTasks returns every todo of the owner
func (s *TaskService) ListTasks(ctx context.Context, query commands.ListTasksQuery) ([]*entities.Task, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var tasks []*entities.Task
	err := s.tracer.TraceFunction(ctx, "ListTasks", func(ctx context.Context) error {
		s.tracer.AddAnnotation(ctx, "userId", query.OwnerID)
		var err error
		tasks, err = s.repo.ListByOwner(ctx, query.OwnerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

// CreateTask creates a todo with a fresh identifier, done=false and a planned attachment URL
func (s *TaskService) CreateTask(ctx context.Context, cmd commands.CreateTaskCommand) (*entities.Task, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	task := entities.NewTask(cmd.OwnerID, cmd.Name, cmd.DueDate, s.bucket, s.clock())

	var created *entities.Task
	err := s.tracer.TraceFunction(ctx, "CreateTask", func(ctx context.Context) error {
		s.tracer.AddAnnotation(ctx, "userId", task.OwnerID)
		var err error
		created, err = s.repo.Create(ctx, task)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Todo created",
		zap.String("userId", created.OwnerID),
		zap.String("todoId", created.ItemID),
	)

	return created, nil
}

// UpdateTask overwrites name, dueDate and done of an existing todo.
// Fields missing from the command are taken from the stored record.
func (s *TaskService) UpdateTask(ctx context.Context, cmd commands.UpdateTaskCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return s.tracer.TraceFunction(ctx, "UpdateTask", func(ctx context.Context) error {
		s.tracer.AddAnnotation(ctx, "userId", cmd.OwnerID)
		update := cmd.MergeInto(entities.TaskUpdate{})
		if !cmd.IsComplete() {
			current, err := s.repo.Get(ctx, cmd.OwnerID, cmd.ItemID)
			if err != nil {
				return err
			}
			update = cmd.MergeInto(current.Update())
		}

		if err := s.repo.Update(ctx, cmd.OwnerID, cmd.ItemID, update); err != nil {
			return err
		}

		s.logger.Info("Todo updated",
			zap.String("userId", cmd.OwnerID),
			zap.String("todoId", cmd.ItemID),
		)
		return nil
	})
}

// DeleteTask removes a todo. Deleting a missing todo succeeds.
func (s *TaskService) DeleteTask(ctx context.Context, cmd commands.DeleteTaskCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return s.tracer.TraceFunction(ctx, "DeleteTask", func(ctx context.Context) error {
		s.tracer.AddAnnotation(ctx, "userId", cmd.OwnerID)
		return s.repo.Delete(ctx, cmd.OwnerID, cmd.ItemID)
	})
}

// IssueAttachmentURL returns a presigned upload URL for the todo's attachment.
// The todo must exist in the caller's partition.
func (s *TaskService) IssueAttachmentURL(ctx context.Context, cmd commands.IssueAttachmentURLCommand) (string, error) {
	if err := cmd.Validate(); err != nil {
		return "", err
	}

	var url string
	err := s.tracer.TraceFunction(ctx, "IssueAttachmentURL", func(ctx context.Context) error {
		s.tracer.AddAnnotation(ctx, "userId", cmd.OwnerID)
		if _, err := s.repo.Get(ctx, cmd.OwnerID, cmd.ItemID); err != nil {
			return err
		}

		var err error
		url, err = s.signer.IssueUploadURL(ctx, cmd.ItemID)
		if err != nil {
			return fmt.Errorf("issuing upload url for todo %s: %w", cmd.ItemID, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("Attachment upload url issued",
		zap.String("userId", cmd.OwnerID),
		zap.String("todoId", cmd.ItemID),
	)

	return url, nil
}
