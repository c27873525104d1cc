package exchange

// State is a step of the exchange, shared by both roles.
type State int

const (
	Connected State = iota
	ReceivingHistory
	AwaitingContinueDecision
	SendingNewPost
	Closed
)

var stateNames = [...]string{
	Connected:                "Connected",
	ReceivingHistory:         "ReceivingHistory",
	AwaitingContinueDecision: "AwaitingContinueDecision",
	SendingNewPost:           "SendingNewPost",
	Closed:                   "Closed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}
