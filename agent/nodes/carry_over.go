package orchestratornode

import dialogx "github.com/tanpawarit/voice-diary/agent/dialog"

// CarryOver seeds the response with the persistent data of the previous turn.
func CarryOver(in *GraphState) (*GraphState, error) {
	if in == nil || in.Request == nil {
		return nil, ErrNilGraphState
	}

	resp := dialogx.NewResponse(in.Request)
	resp.CarryOver(in.Request)
	in.Response = resp
	return in, nil
}
