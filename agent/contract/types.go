package contract

import "time"

// Note is one stored diary entry. Title and Date identify a note within a user.
type Note struct {
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	FullText  string    `json:"full_text"`
	ShortText string    `json:"short_text,omitempty"`
}

// HasShortForm reports whether the detached summary already landed.
func (n Note) HasShortForm() bool {
	return n.ShortText != ""
}

// NoteFilter narrows a query. Empty Title or zero Date means "any".
type NoteFilter struct {
	Title string
	Date  time.Time
}

type NewNote struct {
	Title string
	Date  time.Time
	Text  string
}

// SummaryJob asks for the short form of a freshly stored note.
type SummaryJob struct {
	UserID string    `json:"user_id" validate:"required"`
	Title  string    `json:"title" validate:"required"`
	Date   time.Time `json:"date" validate:"required"`
	Text   string    `json:"text" validate:"required"`
}
