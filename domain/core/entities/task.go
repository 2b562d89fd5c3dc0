package entities

import (
	"fmt"
	"time"

	"todo-backend/domain/core/valueobjects"
)

// TimestampLayout is the ISO-8601 layout used for createdAt (UTC, millisecond precision)
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Task is a todo item owned by a single user.
// OwnerID is the partition key and ItemID the sort key of the todos table.
type Task struct {
	OwnerID       string `json:"userId" dynamodbav:"userId"`
	ItemID        string `json:"todoId" dynamodbav:"todoId"`
	Name          string `json:"name" dynamodbav:"name"`
	DueDate       string `json:"dueDate" dynamodbav:"dueDate"`
	CreatedAt     string `json:"createdAt" dynamodbav:"createdAt"`
	Done          bool   `json:"done" dynamodbav:"done"`
	AttachmentURL string `json:"attachmentUrl,omitempty" dynamodbav:"attachmentUrl,omitempty"`
}

// TaskUpdate is the set of fields an update overwrites.
// All three are always written together.
type TaskUpdate struct {
	Name    string `json:"name" dynamodbav:"name"`
	DueDate string `json:"dueDate" dynamodbav:"dueDate"`
	Done    bool   `json:"done" dynamodbav:"done"`
}

// NewTask builds a fresh task for the owner with a generated identifier.
// The attachment URL is the planned location of the upload, not a verified one.
func NewTask(ownerID, name, dueDate, bucket string, now time.Time) *Task {
	id := valueobjects.NewTaskID()

	return &Task{
		OwnerID:       ownerID,
		ItemID:        id.String(),
		Name:          name,
		DueDate:       dueDate,
		CreatedAt:     now.UTC().Format(TimestampLayout),
		Done:          false,
		AttachmentURL: AttachmentURL(bucket, id.String()),
	}
}

// AttachmentURL derives the public object URL of a todo's attachment
func AttachmentURL(bucket, itemID string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, itemID)
}

// Update returns the mutable fields of the task as an update
func (t *Task) Update() TaskUpdate {
	return TaskUpdate{
		Name:    t.Name,
		DueDate: t.DueDate,
		Done:    t.Done,
	}
}
