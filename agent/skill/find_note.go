package skill

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/voice-diary/agent/contract"
	"github.com/tanpawarit/voice-diary/agent/dateparse"
	dialogx "github.com/tanpawarit/voice-diary/agent/dialog"
	statex "github.com/tanpawarit/voice-diary/agent/state"
)

// Intents answering the "short form?" question.
const (
	intentConfirm       = "confirm"
	intentReject        = "reject"
	intentYandexConfirm = "YANDEX.CONFIRM"
	intentYandexReject  = "YANDEX.REJECT"
)

func (s *Skill) findNote(ctx context.Context, req *dialogx.Request, resp *dialogx.Response) error {
	title, dateSlot := intentSlots(req, dialogx.IntentFindNote)

	switch {
	case title != "" && dateSlot != nil:
		date, err := s.slotDate(ctx, req, dateSlot)
		if errors.Is(err, contractx.ErrUserInput) {
			return resp.AppendMessage(msgBadDate)
		}
		if err != nil {
			return err
		}
		notes, err := s.selectNotes(ctx, req, contractx.NoteFilter{Title: title, Date: date})
		if err != nil {
			return err
		}
		if len(notes) == 0 {
			return resp.AppendMessage(msgFindNotOnDate)
		}
		return askForm(resp, title, selectionTitleAndDate, date)
	case title != "":
		return s.findByTitle(ctx, req, resp, title)
	default:
		if err := resp.SetNextStatus(statex.StatusFindNoteTitleInput); err != nil {
			return err
		}
		return resp.AppendMessage(msgAskFindTitle)
	}
}

func (s *Skill) findNoteTitleInput(ctx context.Context, req *dialogx.Request, resp *dialogx.Response) error {
	title := spokenText(req)
	if title == "" {
		if err := resp.SetNextStatus(statex.StatusFindNoteTitleInput); err != nil {
			return err
		}
		return resp.AppendMessage(msgAskFindTitle)
	}
	return s.findByTitle(ctx, req, resp, title)
}

func (s *Skill) findNoteDateInput(ctx context.Context, req *dialogx.Request, resp *dialogx.Response) error {
	title, err := req.RequireString(keyTitle)
	if err != nil {
		return err
	}

	retry := func(msg string) error {
		if err := resp.SetNextStatus(statex.StatusFindNoteDateInput); err != nil {
			return err
		}
		return resp.AppendMessage(msg)
	}

	date, err := s.utteranceDate(ctx, req)
	if errors.Is(err, contractx.ErrUserInput) {
		return retry(msgBadDate)
	}
	if err != nil {
		return err
	}

	notes, err := s.selectNotes(ctx, req, contractx.NoteFilter{Title: title, Date: date})
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		return retry(msgFindDateNotFound)
	}
	return askForm(resp, title, selectionTitleAndDate, date)
}

func (s *Skill) findNoteFormInput(ctx context.Context, req *dialogx.Request, resp *dialogx.Response) error {
	title, err := req.RequireString(keyTitle)
	if err != nil {
		return err
	}
	selection, err := req.RequireString(keySelection)
	if err != nil {
		return err
	}

	filter := contractx.NoteFilter{Title: title}
	if selection == selectionTitleAndDate {
		date, ok, err := carriedDate(req, keyDate)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %q in %v", contractx.ErrMissingCarriedData, keyDate, req.Status)
		}
		filter.Date = date
	}

	short, full := formChoice(req)
	if !short && !full {
		if !filter.Date.IsZero() {
			resp.PersistData(map[string]any{keyDate: filter.Date.Format(dateparse.ISOLayout)}, false)
		}
		if err := resp.SetNextStatus(statex.StatusFindNoteFormInput); err != nil {
			return err
		}
		return resp.AppendMessage(msgAskFormAgain)
	}

	if err := dropCarried(resp, keyTitle, keySelection); err != nil {
		return err
	}

	notes, err := s.selectNotes(ctx, req, filter)
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		return resp.AppendMessage(msgNoteGone)
	}

	note := notes[0]
	switch {
	case full:
		return resp.AppendMessage(note.FullText)
	case note.HasShortForm():
		return resp.AppendMessage(note.ShortText)
	default:
		return say(resp, msgShortNotReady, note.FullText)
	}
}

// findByTitle goes straight to the form question for a unique title and asks
// for the day when several notes share it.
func (s *Skill) findByTitle(ctx context.Context, req *dialogx.Request, resp *dialogx.Response, title string) error {
	notes, err := s.selectNotes(ctx, req, contractx.NoteFilter{Title: title})
	if err != nil {
		return err
	}

	switch len(notes) {
	case 0:
		return resp.AppendMessage(msgFindNoTitle)
	case 1:
		return askForm(resp, title, selectionTitleOnly, time.Time{})
	default:
		resp.PersistData(map[string]any{keyTitle: title, keySelection: selectionTitleOnly}, true)
		if err := resp.SetNextStatus(statex.StatusFindNoteDateInput); err != nil {
			return err
		}
		return resp.AppendMessage(dateChoice(notes, s.today(ctx, req)))
	}
}

func (s *Skill) selectNotes(ctx context.Context, req *dialogx.Request, filter contractx.NoteFilter) ([]contractx.Note, error) {
	var notes []contractx.Note
	err := s.notes.WithUser(ctx, req.UserID, func(n contractx.Notes) error {
		var err error
		notes, err = n.Select(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("select notes: %w", err)
	}
	return notes, nil
}

// askForm remembers the chosen note and asks in which form to read it. A zero
// date means the title alone identifies the note.
func askForm(resp *dialogx.Response, title, selection string, date time.Time) error {
	resp.PersistData(map[string]any{keyTitle: title, keySelection: selection}, true)
	if !date.IsZero() {
		resp.PersistData(map[string]any{keyDate: date.Format(dateparse.ISOLayout)}, false)
	}
	if err := resp.SetNextStatus(statex.StatusFindNoteFormInput); err != nil {
		return err
	}
	return resp.AppendMessage(msgAskForm)
}

// formChoice reads the answer to the form question: agreeing means the short
// form, refusing means the full one.
func formChoice(req *dialogx.Request) (short, full bool) {
	switch {
	case req.HasIntent(intentYandexConfirm), req.HasIntent(intentConfirm):
		return true, false
	case req.HasIntent(intentYandexReject), req.HasIntent(intentReject):
		return false, true
	}

	text := strings.ToLower(spokenText(req))
	switch {
	case strings.Contains(text, "кратк"):
		return true, false
	case strings.Contains(text, "полн"):
		return false, true
	}
	return false, false
}

// dropCarried drops the flow keys that are still carried.
func dropCarried(resp *dialogx.Response, keys ...string) error {
	payload := resp.Payload()
	present := make([]string, 0, len(keys))
	for _, k := range keys {
		if payload.IsPersistent(k) {
			present = append(present, k)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return resp.DropPersistentData(present...)
}
