package state

import (
	"fmt"

	contractx "github.com/tanpawarit/voice-diary/agent/contract"
)

// Status is the dialog state of a conversation. The set is closed: only the
// constants below are valid.
type Status int

const (
	StatusIdle Status = iota
	StatusNewNote
	StatusNewNoteTitleInput
	StatusNewNoteTextInput
	StatusDelNote
	StatusDelNoteTitleInput
	StatusDelNoteDateInput
	StatusFindNote
	StatusFindNoteTitleInput
	StatusFindNoteDateInput
	StatusFindNoteFormInput
	StatusListAllNotes
	StatusListNext

	statusCount
)

var statusNames = [statusCount]string{
	StatusIdle:               "IDLE",
	StatusNewNote:            "NEW_NOTE",
	StatusNewNoteTitleInput:  "NEW_NOTE_TITLE_INPUT",
	StatusNewNoteTextInput:   "NEW_NOTE_TEXT_INPUT",
	StatusDelNote:            "DEL_NOTE",
	StatusDelNoteTitleInput:  "DEL_NOTE_TITLE_INPUT",
	StatusDelNoteDateInput:   "DEL_NOTE_DATE_INPUT",
	StatusFindNote:           "FIND_NOTE",
	StatusFindNoteTitleInput: "FIND_NOTE_TITLE_INPUT",
	StatusFindNoteDateInput:  "FIND_NOTE_DATE_INPUT",
	StatusFindNoteFormInput:  "FIND_NOTE_FORM_INPUT",
	StatusListAllNotes:       "LIST_ALL_NOTES",
	StatusListNext:           "LIST_NEXT",
}

var statusByName = func() map[string]Status {
	m := make(map[string]Status, statusCount)
	for i, name := range statusNames {
		m[name] = Status(i)
	}
	return m
}()

// AllStatuses returns every member of the set in declaration order.
func AllStatuses() []Status {
	out := make([]Status, 0, statusCount)
	for s := StatusIdle; s < statusCount; s++ {
		out = append(out, s)
	}
	return out
}

func (s Status) Valid() bool {
	return s >= StatusIdle && s < statusCount
}

func (s Status) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

func ParseStatus(name string) (Status, error) {
	s, ok := statusByName[name]
	if !ok {
		return StatusIdle, fmt.Errorf("%w: %q", contractx.ErrInvalidState, name)
	}
	return s, nil
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", contractx.ErrInvalidState, int(s))
	}
	return []byte(statusNames[s]), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
