package summarize

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	contractx "github.com/tanpawarit/voice-diary/agent/contract"
)

type blockingProcessor struct {
	release chan struct{}
	done    atomic.Int32
	ctxErr  atomic.Value
}

func (p *blockingProcessor) Process(ctx context.Context, job contractx.SummaryJob) error {
	<-p.release
	if err := ctx.Err(); err != nil {
		p.ctxErr.Store(err)
	}
	p.done.Add(1)
	return nil
}

func TestLocalQueueOutlivesRequestContext(t *testing.T) {
	t.Parallel()

	p := &blockingProcessor{release: make(chan struct{})}
	q := NewLocalQueue(p, time.Minute)

	reqCtx, cancel := context.WithCancel(context.Background())
	if err := q.Enqueue(reqCtx, testJob()); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	cancel()
	close(p.release)

	ctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := q.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if p.done.Load() != 1 {
		t.Fatalf("processed = %d, want 1", p.done.Load())
	}
	if v := p.ctxErr.Load(); v != nil {
		t.Fatalf("job context was cancelled with the request: %v", v)
	}
}

func TestLocalQueueRejectsAfterClose(t *testing.T) {
	t.Parallel()

	q := NewLocalQueue(&blockingProcessor{release: make(chan struct{})}, time.Second)
	if err := q.Close(context.Background()); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := q.Enqueue(context.Background(), testJob()); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("Enqueue() error = %v, want ErrQueueClosed", err)
	}
}

func TestLocalQueueCloseHonoursDeadline(t *testing.T) {
	t.Parallel()

	p := &blockingProcessor{release: make(chan struct{})}
	defer close(p.release)
	q := NewLocalQueue(p, time.Minute)
	if err := q.Enqueue(context.Background(), testJob()); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := q.Close(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Close() error = %v, want deadline exceeded", err)
	}
}

type fakePublisher struct {
	bodies [][]byte
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, body []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.bodies = append(f.bodies, body)
	return "msg_1", nil
}

func TestQStashQueuePublishesEncodedJob(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	if err := NewQStashQueue(pub).Enqueue(context.Background(), testJob()); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if len(pub.bodies) != 1 {
		t.Fatalf("published %d bodies", len(pub.bodies))
	}
	job, err := DecodeJob(pub.bodies[0])
	if err != nil {
		t.Fatalf("DecodeJob() error = %v", err)
	}
	if job.Title != "поход" {
		t.Fatalf("job = %+v", job)
	}

	pub.err = errors.New("qstash down")
	if err := NewQStashQueue(pub).Enqueue(context.Background(), testJob()); err == nil {
		t.Fatal("Enqueue() error = nil, want publish failure")
	}
}
