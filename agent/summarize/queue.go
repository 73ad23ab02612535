package summarize

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/voice-diary/agent/contract"
	qstashx "github.com/tanpawarit/voice-diary/pkg/qstash"
)

// Queue kinds.
const (
	QueueLocal  = "local"
	QueueQStash = "qstash"
)

var ErrQueueClosed = errors.New("summary queue is closed")

type Config struct {
	Queue      string        `envconfig:"QUEUE" split_words:"true" default:"local"`
	JobTimeout time.Duration `envconfig:"JOB_TIMEOUT" split_words:"true" default:"60s"`
}

// LocalQueue runs jobs on goroutines of this process. A job outlives the
// request that enqueued it but not the process; Close waits for running jobs.
type LocalQueue struct {
	processor Processor
	timeout   time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

var _ contractx.SummaryQueue = (*LocalQueue)(nil)

func NewLocalQueue(p Processor, timeout time.Duration) *LocalQueue {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &LocalQueue{processor: p, timeout: timeout}
}

func (q *LocalQueue) Enqueue(ctx context.Context, job contractx.SummaryJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()

		jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.timeout)
		defer cancel()

		if err := q.processor.Process(jobCtx, job); err != nil {
			zerolog.Ctx(jobCtx).Error().Err(err).
				Str("user_id", job.UserID).
				Str("title", job.Title).
				Msg("summary job failed")
		}
	}()
	return nil
}

// Close stops accepting jobs and waits for running ones until ctx is done.
func (q *LocalQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain summary queue: %w", ctx.Err())
	}
}

// Publisher is the part of the QStash client the queue needs.
type Publisher interface {
	Publish(ctx context.Context, body []byte) (string, error)
}

// QStashQueue hands jobs to QStash, which delivers them back to this
// service's job endpoint. Jobs survive restarts and are retried by QStash.
type QStashQueue struct {
	publisher Publisher
}

var _ contractx.SummaryQueue = (*QStashQueue)(nil)

func NewQStashQueue(p Publisher) *QStashQueue {
	return &QStashQueue{publisher: p}
}

func (q *QStashQueue) Enqueue(ctx context.Context, job contractx.SummaryJob) error {
	body, err := EncodeJob(job)
	if err != nil {
		return err
	}
	id, err := q.publisher.Publish(ctx, body)
	if err != nil {
		return fmt.Errorf("publish summary job: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("qstash_message_id", id).Msg("summary job published")
	return nil
}

var _ Publisher = (*qstashx.Client)(nil)

func EncodeJob(job contractx.SummaryJob) ([]byte, error) {
	body, err := sonic.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("encode summary job: %w", err)
	}
	return body, nil
}

func DecodeJob(body []byte) (contractx.SummaryJob, error) {
	var job contractx.SummaryJob
	if err := sonic.Unmarshal(body, &job); err != nil {
		return contractx.SummaryJob{}, fmt.Errorf("%w: decode summary job: %v", contractx.ErrMalformedPayload, err)
	}
	if err := validateJob(job); err != nil {
		return contractx.SummaryJob{}, err
	}
	return job, nil
}
