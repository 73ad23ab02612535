package orchestratornode

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil || in.Envelope == nil || in.Request == nil || in.Response == nil {
		return GraphOutput{}, ErrNilGraphState
	}

	resp, err := in.Response.Finalize(in.Envelope.RawSession)
	if err != nil {
		return GraphOutput{}, err
	}
	return GraphOutput{
		Response:   resp,
		Status:     in.Request.Status,
		NextStatus: resp.SessionState.Status,
		Overridden: in.Request.Overridden,
	}, nil
}
