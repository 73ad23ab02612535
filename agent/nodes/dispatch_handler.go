package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	dialogx "github.com/tanpawarit/voice-diary/agent/dialog"
)

func DispatchHandler(ctx context.Context, in *GraphState, registry *dialogx.Registry) (*GraphState, error) {
	if in == nil || in.Request == nil || in.Response == nil {
		return nil, ErrNilGraphState
	}

	handler, err := registry.Dispatch(in.Request.Status)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Stringer("status", in.Request.Status).
		Bool("overridden", in.Request.Overridden).
		Strs("intents", in.Request.NLU.IntentNames()).
		Msg("dispatching turn")

	if err := handler(ctx, in.Request, in.Response); err != nil {
		return nil, fmt.Errorf("handle %v: %w", in.Request.Status, err)
	}
	return in, nil
}
