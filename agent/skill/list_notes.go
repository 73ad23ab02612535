package skill

import (
	"context"
	"fmt"
	"time"

	contractx "github.com/tanpawarit/voice-diary/agent/contract"
	dialogx "github.com/tanpawarit/voice-diary/agent/dialog"
)

func (s *Skill) listAllNotes(ctx context.Context, req *dialogx.Request, resp *dialogx.Response) error {
	return s.listPage(ctx, req, resp, 0)
}

// listNext continues a listing. The page cursor only survives the turn right
// after the previous page.
func (s *Skill) listNext(ctx context.Context, req *dialogx.Request, resp *dialogx.Response) error {
	if _, ok := req.Value(keyPage); !ok {
		return resp.AppendMessage(msgNextWithoutList)
	}
	var page int
	if err := req.Decode(keyPage, &page); err != nil {
		return err
	}
	if page < 0 {
		return fmt.Errorf("%w: page %d", contractx.ErrMalformedPayload, page)
	}
	return s.listPage(ctx, req, resp, page)
}

func (s *Skill) listPage(ctx context.Context, req *dialogx.Request, resp *dialogx.Response, page int) error {
	notes, err := s.selectNotes(ctx, req, contractx.NoteFilter{})
	if err != nil {
		return err
	}
	today := s.today(ctx, req)

	if len(notes) == 0 {
		return resp.AppendMessage(msgNoNotes)
	}
	if len(notes) <= s.pageSize {
		if err := resp.AppendMessage(msgAllNotes); err != nil {
			return err
		}
		return sayNotes(resp, notes, today)
	}

	start := page * s.pageSize
	if start >= len(notes) {
		return resp.AppendMessage(msgNoMoreNotes)
	}
	end := min(start+s.pageSize, len(notes))

	if page == 0 {
		if err := resp.AppendMessage(msgRecentNotes); err != nil {
			return err
		}
	}
	if err := sayNotes(resp, notes[start:end], today); err != nil {
		return err
	}
	if end < len(notes) {
		resp.PersistData(map[string]any{keyPage: page + 1}, false)
		return resp.AppendMessage(msgSayNext)
	}
	return nil
}

func sayNotes(resp *dialogx.Response, notes []contractx.Note, today time.Time) error {
	for _, n := range notes {
		if err := resp.AppendMessage(noteLine(n.Title, n.Date, today)); err != nil {
			return err
		}
	}
	return nil
}
