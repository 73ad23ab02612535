package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/voice-diary/agent/contract"
	dialogx "github.com/tanpawarit/voice-diary/agent/dialog"
	metricsx "github.com/tanpawarit/voice-diary/agent/metrics"
	nodex "github.com/tanpawarit/voice-diary/agent/nodes"
	replayx "github.com/tanpawarit/voice-diary/agent/replay"
	statex "github.com/tanpawarit/voice-diary/agent/state"
)

const DefaultFallbackText = "Извините, не поняла вас. Попробуйте ещё раз."

type Option func(*Orchestrator)

// WithReplay answers platform retries of the same message from store.
func WithReplay(store replayx.Store) Option {
	return func(o *Orchestrator) {
		o.replay = store
	}
}

func WithMetrics(m *metricsx.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func WithFallbackText(text string) Option {
	return func(o *Orchestrator) {
		if text != "" {
			o.fallbackText = text
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// Orchestrator runs one webhook turn: resolve the state, dispatch its
// handler, answer. It holds no per-conversation state and is safe for
// concurrent use.
type Orchestrator struct {
	registry *dialogx.Registry
	policy   *dialogx.Policy
	replay   replayx.Store
	metrics  *metricsx.Metrics

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	fallbackText string
	now          func() time.Time
}

// New fails when a dialog state has no handler.
func New(registry *dialogx.Registry, policy *dialogx.Policy, opts ...Option) (*Orchestrator, error) {
	if registry == nil {
		return nil, fmt.Errorf("%w: handler registry is required", contractx.ErrConfiguration)
	}
	if policy == nil {
		policy = dialogx.DefaultPolicy()
	}
	if err := registry.Validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		registry:     registry,
		policy:       policy,
		fallbackText: DefaultFallbackText,
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	graphRunner, err := o.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleTurn answers one raw webhook payload. An error is returned only when
// the payload cannot be understood at all; any later failure is answered
// with the fallback text and the prior state echoed back.
func (o *Orchestrator) HandleTurn(ctx context.Context, body []byte) ([]byte, error) {
	start := o.now()

	env, err := dialogx.DecodeEnvelope(body)
	if err != nil {
		o.metrics.ObserveTurn("", metricsx.OutcomeRejected, o.now().Sub(start))
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().
		Str("user_id", env.Session.User.UserID).
		Str("session_id", env.Session.SessionID).
		Int64("message_id", env.Session.MessageID).
		Logger()
	ctx = logger.WithContext(ctx)

	key, keyErr := replayx.Key(env.Session.SessionID, env.Session.MessageID)
	if cached, ok := o.loadReplay(ctx, key, keyErr); ok {
		o.metrics.ObserveTurn("", metricsx.OutcomeReplayed, o.now().Sub(start))
		return cached, nil
	}

	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{Envelope: env})
	if err != nil {
		logger.Error().Err(err).Msg("turn failed, answering with fallback")
		return o.fallback(env, start)
	}

	encoded, err := dialogx.EncodeResponse(out.Response)
	if err != nil {
		logger.Error().Err(err).Msg("encode response failed, answering with fallback")
		return o.fallback(env, start)
	}

	if keyErr == nil && o.replay != nil {
		if err := o.replay.Save(ctx, key, encoded); err != nil {
			logger.Warn().Err(err).Msg("save replay entry failed")
		}
	}

	logger.Info().
		Stringer("status", out.Status).
		Stringer("next_status", out.NextStatus).
		Bool("overridden", out.Overridden).
		Msg("turn handled")

	o.metrics.ObserveTransition(out.Status.String(), out.NextStatus.String())
	o.metrics.ObserveTurn(out.Status.String(), metricsx.OutcomeOK, o.now().Sub(start))
	return encoded, nil
}

func (o *Orchestrator) loadReplay(ctx context.Context, key string, keyErr error) ([]byte, bool) {
	if o.replay == nil || keyErr != nil {
		return nil, false
	}
	cached, err := o.replay.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, replayx.ErrNotFound) {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("load replay entry failed")
		}
		return nil, false
	}
	zerolog.Ctx(ctx).Info().Msg("answering retried message from replay cache")
	return cached, true
}

// fallback echoes the prior payload when it is readable, so the user can
// retry the step that failed.
func (o *Orchestrator) fallback(env *dialogx.Envelope, start time.Time) ([]byte, error) {
	var prior *statex.Payload
	if !env.Session.New {
		if p, err := dialogx.DecodePayload(env.State.Session); err == nil {
			prior = p
		}
	}

	resp := dialogx.Fallback(env, prior, o.fallbackText)
	o.metrics.ObserveTurn(resp.SessionState.Status.String(), metricsx.OutcomeFallback, o.now().Sub(start))
	return dialogx.EncodeResponse(resp)
}

// Policy exposes the state resolution rules the orchestrator was built with.
func (o *Orchestrator) Policy() *dialogx.Policy {
	return o.policy
}
