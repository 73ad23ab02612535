package summarize

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	contractx "github.com/tanpawarit/voice-diary/agent/contract"
)

type attached struct {
	userID, title, text string
	date                time.Time
}

type fakeNotes struct {
	userID string
	store  *fakeStore
}

func (f *fakeNotes) Select(context.Context, contractx.NoteFilter) ([]contractx.Note, error) {
	return nil, nil
}

func (f *fakeNotes) Delete(context.Context, contractx.NoteFilter) (int64, error) { return 0, nil }

func (f *fakeNotes) Insert(context.Context, contractx.NewNote) error { return nil }

func (f *fakeNotes) AttachShortForm(_ context.Context, title string, date time.Time, text string) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.attached = append(f.store.attached, attached{userID: f.userID, title: title, date: date, text: text})
	return nil
}

type fakeStore struct {
	mu       sync.Mutex
	attached []attached
}

func (f *fakeStore) WithUser(_ context.Context, userID string, fn func(contractx.Notes) error) error {
	return fn(&fakeNotes{userID: userID, store: f})
}

func (f *fakeStore) snapshot() []attached {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]attached(nil), f.attached...)
}

type stubSummarizer struct {
	out string
	err error
}

func (s stubSummarizer) Summarize(context.Context, string) (string, error) {
	return s.out, s.err
}

func testJob() contractx.SummaryJob {
	return contractx.SummaryJob{
		UserID: "u-1",
		Title:  "поход",
		Date:   time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		Text:   "длинный рассказ о походе",
	}
}

func TestWorkerAttachesShortForm(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	w := NewWorker(store, stubSummarizer{out: "кратко"}, nil)
	if err := w.Process(context.Background(), testJob()); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	got := store.snapshot()
	if len(got) != 1 {
		t.Fatalf("attached = %+v", got)
	}
	if got[0].userID != "u-1" || got[0].title != "поход" || got[0].text != "кратко" || !got[0].date.Equal(testJob().Date) {
		t.Fatalf("attached = %+v", got[0])
	}
}

func TestWorkerStopsOnSummarizerError(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	boom := errors.New("model down")
	w := NewWorker(store, stubSummarizer{err: boom}, nil)
	if err := w.Process(context.Background(), testJob()); !errors.Is(err, boom) {
		t.Fatalf("Process() error = %v, want %v", err, boom)
	}
	if len(store.snapshot()) != 0 {
		t.Fatal("nothing may be attached after a failed summary")
	}
}

func TestWorkerRejectsIncompleteJob(t *testing.T) {
	t.Parallel()

	job := testJob()
	job.UserID = ""
	w := NewWorker(&fakeStore{}, stubSummarizer{out: "x"}, nil)
	if err := w.Process(context.Background(), job); !errors.Is(err, contractx.ErrMalformedPayload) {
		t.Fatalf("Process() error = %v, want ErrMalformedPayload", err)
	}
}

func TestJobCodecRoundTrip(t *testing.T) {
	t.Parallel()

	body, err := EncodeJob(testJob())
	if err != nil {
		t.Fatalf("EncodeJob() error = %v", err)
	}
	got, err := DecodeJob(body)
	if err != nil {
		t.Fatalf("DecodeJob() error = %v", err)
	}
	if got.UserID != "u-1" || !got.Date.Equal(testJob().Date) {
		t.Fatalf("DecodeJob() = %+v", got)
	}

	if _, err := DecodeJob([]byte(`{"user_id": "u"}`)); !errors.Is(err, contractx.ErrMalformedPayload) {
		t.Fatalf("DecodeJob(incomplete) error = %v", err)
	}
}
