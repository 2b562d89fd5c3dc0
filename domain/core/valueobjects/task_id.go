package valueobjects

import (
	"github.com/google/uuid"
)

// TaskID is a value object representing a unique todo identifier.
// It is the sort key of a todo inside its owner's partition.
type TaskID struct {
	value string
}

// NewTaskID creates a new random TaskID
func NewTaskID() TaskID {
	return TaskID{value: uuid.New().String()}
}

// String returns the string representation of the TaskID
func (id TaskID) String() string {
	return id.value
}
