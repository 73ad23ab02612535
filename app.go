package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/voice-diary/agent/agents/orchestrator"
	contractx "github.com/tanpawarit/voice-diary/agent/contract"
	"github.com/tanpawarit/voice-diary/agent/dateparse"
	dialogx "github.com/tanpawarit/voice-diary/agent/dialog"
	llmx "github.com/tanpawarit/voice-diary/agent/llm"
	metricsx "github.com/tanpawarit/voice-diary/agent/metrics"
	"github.com/tanpawarit/voice-diary/agent/prompt"
	replayx "github.com/tanpawarit/voice-diary/agent/replay"
	"github.com/tanpawarit/voice-diary/agent/skill"
	"github.com/tanpawarit/voice-diary/agent/storage"
	summarizex "github.com/tanpawarit/voice-diary/agent/summarize"
	webhookx "github.com/tanpawarit/voice-diary/agent/webhook"
	configx "github.com/tanpawarit/voice-diary/pkg/config"
	qstashx "github.com/tanpawarit/voice-diary/pkg/qstash"
)

// app is the wired server. Closers run in reverse order of acquisition.
type app struct {
	handler   http.Handler
	serverCfg webhookx.Config
	closers   []func(context.Context) error
}

func (a *app) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func buildApp(ctx context.Context) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			_ = a.close(context.WithoutCancel(ctx))
		}
	}()

	serverCfg, err := configx.New[webhookx.Config]("SERVER")
	if err != nil {
		return nil, err
	}
	a.serverCfg = *serverCfg

	dbCfg, err := configx.New[storage.Config]("DATABASE")
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(ctx, *dbCfg)
	if err != nil {
		return nil, err
	}
	a.onClose(func(context.Context) error { return store.Close() })

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := metricsx.New(reg)
	if err != nil {
		return nil, err
	}

	llmCfg, err := configx.New[llmx.Config]("LLM")
	if err != nil {
		return nil, err
	}
	summarizer, err := summarizex.New(ctx, *llmCfg, prompt.LoadPromptSet().Summarize)
	if err != nil {
		return nil, err
	}
	worker := summarizex.NewWorker(store, summarizer, metrics)

	handlerOpts := []webhookx.Option{
		webhookx.WithGatherer(reg),
		webhookx.WithHealthCheck(store.Ping),
		webhookx.WithMaxBodyBytes(serverCfg.MaxBodyBytes),
		webhookx.WithLogger(log.Logger),
	}

	queue, jobOpt, err := openQueue(a, worker)
	if err != nil {
		return nil, err
	}
	if jobOpt != nil {
		handlerOpts = append(handlerOpts, jobOpt)
	}

	skillCfg, err := configx.New[skill.Config]("SKILL")
	if err != nil {
		return nil, err
	}
	sk, err := skill.New(*skillCfg, store, queue, dateparse.New())
	if err != nil {
		return nil, err
	}
	registry := dialogx.NewRegistry()
	if err := sk.Register(registry); err != nil {
		return nil, err
	}

	replay, err := openReplay(a)
	if err != nil {
		return nil, err
	}

	engine, err := orchestrator.New(registry, dialogx.DefaultPolicy(),
		orchestrator.WithReplay(replay),
		orchestrator.WithMetrics(metrics),
	)
	if err != nil {
		return nil, err
	}

	a.handler = webhookx.NewHandler(engine, handlerOpts...)
	return a, nil
}

// openQueue picks how summary jobs leave the turn. With QStash the callback
// route is returned as a handler option.
func openQueue(a *app, worker *summarizex.Worker) (contractx.SummaryQueue, webhookx.Option, error) {
	cfg, err := configx.New[summarizex.Config]("SUMMARY")
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Queue {
	case summarizex.QueueLocal:
		q := summarizex.NewLocalQueue(worker, cfg.JobTimeout)
		a.onClose(q.Close)
		return q, nil, nil
	case summarizex.QueueQStash:
		qcfg, err := configx.New[qstashx.Config]("QSTASH")
		if err != nil {
			return nil, nil, err
		}
		client, err := qstashx.NewClient(*qcfg)
		if err != nil {
			return nil, nil, err
		}
		return summarizex.NewQStashQueue(client), webhookx.WithJobs(worker, client), nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown summary queue %q", contractx.ErrConfiguration, cfg.Queue)
	}
}

func openReplay(a *app) (replayx.Store, error) {
	cfg, err := configx.New[replayx.Config]("REPLAY")
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case replayx.BackendMemory:
		return replayx.NewMemoryStore(cfg.TTL), nil
	case replayx.BackendRedis:
		rcfg, err := configx.New[replayx.RedisConfig]("REDIS")
		if err != nil {
			return nil, err
		}
		s := replayx.NewRedisStore(*rcfg, replayx.WithRedisPrefix(cfg.KeyPrefix), replayx.WithRedisTTL(cfg.TTL))
		a.onClose(func(context.Context) error { return s.Close() })
		return s, nil
	case replayx.BackendUpstash:
		ucfg, err := configx.New[replayx.UpstashConfig]("UPSTASH")
		if err != nil {
			return nil, err
		}
		return replayx.NewUpstashStore(*ucfg, replayx.WithKeyPrefix(cfg.KeyPrefix), replayx.WithTTL(cfg.TTL))
	default:
		return nil, nil
	}
}
