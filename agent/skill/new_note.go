package skill

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/voice-diary/agent/contract"
	dialogx "github.com/tanpawarit/voice-diary/agent/dialog"
	statex "github.com/tanpawarit/voice-diary/agent/state"
)

func (s *Skill) newNote(ctx context.Context, req *dialogx.Request, resp *dialogx.Response) error {
	title, _ := intentSlots(req, dialogx.IntentNewNote)
	if title == "" {
		if err := resp.SetNextStatus(statex.StatusNewNoteTitleInput); err != nil {
			return err
		}
		return resp.AppendMessage(msgAskNewTitle)
	}
	return s.startNote(ctx, req, resp, title)
}

func (s *Skill) newNoteTitleInput(ctx context.Context, req *dialogx.Request, resp *dialogx.Response) error {
	title := spokenText(req)
	if title == "" {
		if err := resp.SetNextStatus(statex.StatusNewNoteTitleInput); err != nil {
			return err
		}
		return resp.AppendMessage(msgAskNewTitle)
	}
	return s.startNote(ctx, req, resp, title)
}

// startNote accepts a title unless a note with it was already written today.
func (s *Skill) startNote(ctx context.Context, req *dialogx.Request, resp *dialogx.Response, title string) error {
	today := s.today(ctx, req)

	var existing []contractx.Note
	err := s.notes.WithUser(ctx, req.UserID, func(n contractx.Notes) error {
		var err error
		existing, err = n.Select(ctx, contractx.NoteFilter{Title: title, Date: today})
		return err
	})
	if err != nil {
		return fmt.Errorf("check duplicate title: %w", err)
	}

	if len(existing) > 0 {
		if err := resp.SetNextStatus(statex.StatusNewNoteTitleInput); err != nil {
			return err
		}
		return resp.AppendMessage(msgDuplicateTitle)
	}

	resp.PersistData(map[string]any{keyTitle: title}, false)
	if err := resp.SetNextStatus(statex.StatusNewNoteTextInput); err != nil {
		return err
	}
	return resp.AppendMessage(msgTitleSaved)
}

func (s *Skill) newNoteTextInput(ctx context.Context, req *dialogx.Request, resp *dialogx.Response) error {
	title, err := req.RequireString(keyTitle)
	if err != nil {
		return err
	}

	text := spokenText(req)
	if text == "" {
		resp.PersistData(map[string]any{keyTitle: title}, false)
		if err := resp.SetNextStatus(statex.StatusNewNoteTextInput); err != nil {
			return err
		}
		return resp.AppendMessage(msgAskText)
	}

	today := s.today(ctx, req)
	err = s.notes.WithUser(ctx, req.UserID, func(n contractx.Notes) error {
		return n.Insert(ctx, contractx.NewNote{Title: title, Date: today, Text: text})
	})
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}

	// The note is stored either way; a lost summary only means the full text
	// is read instead.
	job := contractx.SummaryJob{UserID: req.UserID, Title: title, Date: today, Text: text}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("title", title).Msg("enqueue summary job")
	}

	return resp.AppendMessage(msgNoteAdded)
}
