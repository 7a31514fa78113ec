package bot

import (
	"github.com/domino14/mancala/solver"
)

// SolveResponse is the JSON reply to a solver.Request. Exactly one of Result
// and Error is set.
type SolveResponse struct {
	RequestID string         `json:"request_id,omitempty"`
	Result    *solver.Result `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// LambdaEvent asks for a solve whose response is published on ReplyChannel.
type LambdaEvent struct {
	RequestID    string         `json:"request_id"`
	Request      solver.Request `json:"request"`
	ReplyChannel string         `json:"reply_channel"`
}
