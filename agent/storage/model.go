package storage

import (
	"time"

	contractx "github.com/tanpawarit/voice-diary/agent/contract"
	"github.com/uptrace/bun"
)

type noteModel struct {
	bun.BaseModel `bun:"table:notes,alias:n"`

	ID        int64     `bun:"id,pk,autoincrement"`
	UserID    string    `bun:"user_id,notnull"`
	Title     string    `bun:"title,notnull"`
	Date      time.Time `bun:"date,type:date,notnull"`
	FullNote  string    `bun:"full_note,notnull"`
	ShortNote string    `bun:"short_note,nullzero"`
}

func (m *noteModel) toEntity() contractx.Note {
	y, mo, d := m.Date.Date()
	return contractx.Note{
		Title:     m.Title,
		Date:      time.Date(y, mo, d, 0, 0, 0, 0, time.UTC),
		FullText:  m.FullNote,
		ShortText: m.ShortNote,
	}
}

func toEntities(models []noteModel) []contractx.Note {
	out := make([]contractx.Note, 0, len(models))
	for i := range models {
		out = append(out, models[i].toEntity())
	}
	return out
}
