package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/voice-diary/agent/contract"
	metricsx "github.com/tanpawarit/voice-diary/agent/metrics"
)

var validate = validator.New()

// Processor handles one summary job to completion.
type Processor interface {
	Process(ctx context.Context, job contractx.SummaryJob) error
}

// Worker summarizes a note and stores the short form next to it. The note
// may be gone by then; attaching to nothing is not an error.
type Worker struct {
	notes      contractx.NoteStore
	summarizer contractx.Summarizer
	metrics    *metricsx.Metrics
}

func NewWorker(notes contractx.NoteStore, summarizer contractx.Summarizer, m *metricsx.Metrics) *Worker {
	return &Worker{notes: notes, summarizer: summarizer, metrics: m}
}

func (w *Worker) Process(ctx context.Context, job contractx.SummaryJob) (err error) {
	defer func() { w.metrics.ObserveSummary(err) }()

	if err := validateJob(job); err != nil {
		return err
	}

	short, err := w.summarizer.Summarize(ctx, job.Text)
	if err != nil {
		return err
	}

	err = w.notes.WithUser(ctx, job.UserID, func(n contractx.Notes) error {
		return n.AttachShortForm(ctx, job.Title, job.Date, short)
	})
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().
		Str("user_id", job.UserID).
		Str("title", job.Title).
		Int("short_len", len([]rune(short))).
		Msg("short form attached")
	return nil
}

func validateJob(job contractx.SummaryJob) error {
	if err := validate.Struct(job); err != nil {
		return fmt.Errorf("%w: summary job: %v", contractx.ErrMalformedPayload, err)
	}
	if job.Date.IsZero() || strings.TrimSpace(job.Text) == "" {
		return fmt.Errorf("%w: summary job has no date or text", contractx.ErrMalformedPayload)
	}
	return nil
}
