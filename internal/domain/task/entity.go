package task

import "time"

type Status string

const (
	StatusPending      Status = "pending"
	StatusCompleted    Status = "completed"
	StatusNotCompleted Status = "not_completed"
	StatusDelayed      Status = "delayed"
	StatusCancelled    Status = "cancelled"
)

var AllStatuses = []Status{StatusPending, StatusCompleted, StatusNotCompleted, StatusDelayed, StatusCancelled}

func (s Status) IsValid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type WorkTask struct {
	ID             string
	Title          string
	Description    *string
	AssignedToID   string
	CreatedByID    string
	StartDate      time.Time
	DueDate        time.Time
	Status         Status
	StatusReason   *string
	AttachmentPath *string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Join
	AssigneeName      *string
	AssigneeCompanyID *string
}

// Completed is derived from the status; there is no separate flag.
func (t *WorkTask) Completed() bool {
	return t.Status == StatusCompleted
}

// IsLate reports whether the due date has passed on today without completion.
func (t *WorkTask) IsLate(today time.Time) bool {
	y, m, d := today.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	dy, dm, dd := t.DueDate.Date()
	due := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	return due.Before(day) && !t.Completed()
}
