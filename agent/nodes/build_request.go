package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/voice-diary/agent/contract"
	dialogx "github.com/tanpawarit/voice-diary/agent/dialog"
)

func BuildRequest(in GraphInput, policy *dialogx.Policy) (*GraphState, error) {
	if in.Envelope == nil {
		return nil, fmt.Errorf("%w: envelope is nil", contractx.ErrMalformedPayload)
	}

	req, err := dialogx.NewRequest(in.Envelope, policy)
	if err != nil {
		return nil, err
	}

	return &GraphState{
		Envelope: in.Envelope,
		Request:  req,
	}, nil
}
