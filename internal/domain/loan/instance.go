package loan

import (
	"time"

	"github.com/google/uuid"
)

// Instance is a physical, trackable copy of a book.
//
// Transitions are unrestricted: staff may set any combination of status,
// reader and due date. A reader is expected only while taken or reserved,
// but nothing here enforces it.
type Instance struct {
	ID       uint
	UUID     string // assigned by NewInstance, never changed afterwards
	BookID   *uint
	DueBack  *time.Time
	Status   Status
	ReaderID *uint
	Version  uint

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewInstance creates a copy with a fresh UUID. An empty status means available.
func NewInstance(bookID *uint, status Status) *Instance {
	if status == "" {
		status = StatusAvailable
	}
	now := time.Now()
	return &Instance{
		UUID:      uuid.NewString(),
		BookID:    bookID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsOverdue reports whether the instance is past its due date on the calendar
// day of today. Without a due date it is never overdue.
func IsOverdue(inst *Instance, today time.Time) bool {
	if inst == nil || inst.DueBack == nil {
		return false
	}
	return dateOf(today).After(dateOf(*inst.DueBack))
}

// IsOverdue is the method form of the package function.
func (i *Instance) IsOverdue(today time.Time) bool {
	return IsOverdue(i, today)
}

// AssignReader lends the copy. Any status is accepted; empty means taken.
func (i *Instance) AssignReader(readerID uint, dueBack time.Time, status Status) {
	if status == "" {
		status = StatusTaken
	}
	due := dateOf(dueBack)
	i.ReaderID = &readerID
	i.DueBack = &due
	i.Status = status
	i.UpdatedAt = time.Now()
}

// Return clears the loan and makes the copy available.
func (i *Instance) Return() {
	i.ReaderID = nil
	i.DueBack = nil
	i.Status = StatusAvailable
	i.UpdatedAt = time.Now()
}

// Apply overwrites the staff-editable fields. UUID is not among them.
func (i *Instance) Apply(bookID *uint, status Status, readerID *uint, dueBack *time.Time) {
	i.BookID = bookID
	i.Status = status
	i.ReaderID = readerID
	if dueBack != nil {
		due := dateOf(*dueBack)
		i.DueBack = &due
	} else {
		i.DueBack = nil
	}
	i.UpdatedAt = time.Now()
}

// IsLent reports whether a reader currently holds or reserved the copy.
func (i *Instance) IsLent() bool {
	return i.ReaderID != nil
}

// dateOf keeps the calendar date of t as seen in its own location, at UTC midnight.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
