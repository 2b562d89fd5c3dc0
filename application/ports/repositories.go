package ports

import (
	"context"

	"todo-backend/domain/core/entities"
)

// TaskRepository defines the interface for todo persistence.
// Every method addresses records by the (ownerID, itemID) composite key.
type TaskRepository interface {
	// ListByOwner retrieves all todos in the owner's partition
	ListByOwner(ctx context.Context, ownerID string) ([]*entities.Task, error)

	// Get retrieves a single todo; a missing record is a not found error
	Get(ctx context.Context, ownerID, itemID string) (*entities.Task, error)

	// Create writes the todo, replacing any record with the same key
	Create(ctx context.Context, task *entities.Task) (*entities.Task, error)

	// Update overwrites name, dueDate and done of an existing todo
	Update(ctx context.Context, ownerID, itemID string, update entities.TaskUpdate) error

	// Delete removes a todo; deleting a missing record is not an error
	Delete(ctx context.Context, ownerID, itemID string) error
}

// AttachmentSigner issues time-limited upload URLs for todo attachments
type AttachmentSigner interface {
	// IssueUploadURL returns a presigned URL permitting one PUT of the object keyed by itemID
	IssueUploadURL(ctx context.Context, itemID string) (string, error)
}
