package skill

import (
	"context"
	"errors"
	"fmt"
	"time"

	contractx "github.com/tanpawarit/voice-diary/agent/contract"
	dialogx "github.com/tanpawarit/voice-diary/agent/dialog"
	statex "github.com/tanpawarit/voice-diary/agent/state"
)

func (s *Skill) delNote(ctx context.Context, req *dialogx.Request, resp *dialogx.Response) error {
	title, dateSlot := intentSlots(req, dialogx.IntentDelNote)

	switch {
	case title != "" && dateSlot != nil:
		date, err := s.slotDate(ctx, req, dateSlot)
		if errors.Is(err, contractx.ErrUserInput) {
			return resp.AppendMessage(msgBadDate)
		}
		if err != nil {
			return err
		}
		n, err := s.deleteNotes(ctx, req, contractx.NoteFilter{Title: title, Date: date})
		if err != nil {
			return err
		}
		if n == 0 {
			return resp.AppendMessage(msgDeleteNotFound)
		}
		return resp.AppendMessage(msgNoteDeleted)
	case title != "":
		return s.deleteByTitle(ctx, req, resp, title)
	default:
		if err := resp.SetNextStatus(statex.StatusDelNoteTitleInput); err != nil {
			return err
		}
		return resp.AppendMessage(msgAskDeleteTitle)
	}
}

func (s *Skill) delNoteTitleInput(ctx context.Context, req *dialogx.Request, resp *dialogx.Response) error {
	title := spokenText(req)
	if title == "" {
		if err := resp.SetNextStatus(statex.StatusDelNoteTitleInput); err != nil {
			return err
		}
		return resp.AppendMessage(msgAskDeleteTitle)
	}
	return s.deleteByTitle(ctx, req, resp, title)
}

func (s *Skill) delNoteDateInput(ctx context.Context, req *dialogx.Request, resp *dialogx.Response) error {
	title, err := req.RequireString(keyTitle)
	if err != nil {
		return err
	}

	retry := func(msg string) error {
		resp.PersistData(map[string]any{keyTitle: title}, false)
		if err := resp.SetNextStatus(statex.StatusDelNoteDateInput); err != nil {
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

	n, err := s.deleteNotes(ctx, req, contractx.NoteFilter{Title: title, Date: date})
	if err != nil {
		return err
	}
	if n == 0 {
		return retry(msgNoNoteOnDate)
	}
	return resp.AppendMessage(msgNoteDeleted)
}

// deleteByTitle deletes a note with a unique title, or asks which day is
// meant when several share it.
func (s *Skill) deleteByTitle(ctx context.Context, req *dialogx.Request, resp *dialogx.Response, title string) error {
	var (
		notes   []contractx.Note
		deleted int64
	)
	err := s.notes.WithUser(ctx, req.UserID, func(n contractx.Notes) error {
		var err error
		notes, err = n.Select(ctx, contractx.NoteFilter{Title: title})
		if err != nil || len(notes) != 1 {
			return err
		}
		deleted, err = n.Delete(ctx, contractx.NoteFilter{Title: title})
		return err
	})
	if err != nil {
		return fmt.Errorf("delete by title: %w", err)
	}

	switch {
	case len(notes) == 0:
		return resp.AppendMessage(msgNoSuchTitle)
	case len(notes) == 1:
		if deleted == 0 {
			return resp.AppendMessage(msgDeleteNotFound)
		}
		return resp.AppendMessage(msgNoteDeleted)
	default:
		resp.PersistData(map[string]any{keyTitle: title}, false)
		if err := resp.SetNextStatus(statex.StatusDelNoteDateInput); err != nil {
			return err
		}
		return resp.AppendMessage(dateChoice(notes, s.today(ctx, req)))
	}
}

func (s *Skill) deleteNotes(ctx context.Context, req *dialogx.Request, filter contractx.NoteFilter) (int64, error) {
	var deleted int64
	err := s.notes.WithUser(ctx, req.UserID, func(n contractx.Notes) error {
		var err error
		deleted, err = n.Delete(ctx, filter)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("delete notes: %w", err)
	}
	return deleted, nil
}

// dateChoice lists the days notes were written on and asks to pick one.
func dateChoice(notes []contractx.Note, today time.Time) string {
	dates := make([]string, 0, len(notes))
	for _, n := range notes {
		dates = append(dates, spokenDate(n.Date, today))
	}
	return fmt.Sprintf("Запись с таким названием была сделана %s. %s", joinSpoken(dates), msgChooseDateSuffix)
}
