package task

import "errors"

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrInvalidStatus       = errors.New("invalid task status")
	ErrInvalidAssignee     = errors.New("tasks can only be assigned to active employees in scope")
	ErrConcurrencyConflict = errors.New("task was modified by another request")
)
