package commands

import (
	"todo-backend/domain/core/entities"
	"todo-backend/pkg/utils"
)

// ListTasksQuery requests every todo of an owner
type ListTasksQuery struct {
	OwnerID string `json:"userId" validate:"required"`
}

// Validate checks the query carries an owner
func (q ListTasksQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// CreateTaskCommand represents the command to create a new todo
type CreateTaskCommand struct {
	OwnerID string `json:"userId" validate:"required"`
	Name    string `json:"name"`
	DueDate string `json:"dueDate"`
}

// Validate checks the command carries an owner
func (c CreateTaskCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// UpdateTaskCommand represents the command to update a todo.
// Nil fields keep their stored value.
type UpdateTaskCommand struct {
	OwnerID string  `json:"userId" validate:"required"`
	ItemID  string  `json:"todoId" validate:"required"`
	Name    *string `json:"name,omitempty"`
	DueDate *string `json:"dueDate,omitempty"`
	Done    *bool   `json:"done,omitempty"`
}

// Validate checks the command addresses a todo
func (c UpdateTaskCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// IsComplete reports whether every patch field is present,
// in which case no read is needed before writing.
func (c UpdateTaskCommand) IsComplete() bool {
	return c.Name != nil && c.DueDate != nil && c.Done != nil
}

// MergeInto applies the present fields over the current values
func (c UpdateTaskCommand) MergeInto(current entities.TaskUpdate) entities.TaskUpdate {
	if c.Name != nil {
		current.Name = *c.Name
	}
	if c.DueDate != nil {
		current.DueDate = *c.DueDate
	}
	if c.Done != nil {
		current.Done = *c.Done
	}
	return current
}

// DeleteTaskCommand represents the command to delete a todo
type DeleteTaskCommand struct {
	OwnerID string `json:"userId" validate:"required"`
	ItemID  string `json:"todoId" validate:"required"`
}

// Validate checks the command addresses a todo
func (c DeleteTaskCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// IssueAttachmentURLCommand requests an upload URL for a todo's attachment
type IssueAttachmentURLCommand struct {
	OwnerID string `json:"userId" validate:"required"`
	ItemID  string `json:"todoId" validate:"required"`
}

// Validate checks the command addresses a todo
func (c IssueAttachmentURLCommand) Validate() error {
	return utils.ValidateStruct(c)
}
