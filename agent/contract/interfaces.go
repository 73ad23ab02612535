package contract

import (
	"context"
	"time"
)

// Notes is the note storage of a single user.
type Notes interface {
	Select(ctx context.Context, filter NoteFilter) ([]Note, error)
	Delete(ctx context.Context, filter NoteFilter) (int64, error)
	Insert(ctx context.Context, note NewNote) error
	AttachShortForm(ctx context.Context, title string, date time.Time, text string) error
}

// NoteStore hands out user-scoped Notes. The storage resources behind fn are
// released when fn returns, whatever the outcome.
type NoteStore interface {
	WithUser(ctx context.Context, userID string, fn func(Notes) error) error
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// SummaryQueue delivers jobs detached from the turn that produced them.
// Enqueue must not wait for the job to complete.
type SummaryQueue interface {
	Enqueue(ctx context.Context, job SummaryJob) error
}

type DateParser interface {
	ParseDate(text string, now time.Time) (time.Time, error)
}
