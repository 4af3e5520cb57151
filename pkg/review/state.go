package review

// State is a step of the review protocol for a single turn.
type State int

const (
	StateInitialResponse State = iota
	StateFirstReview
	StateRevising
	StateReviewing
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateInitialResponse:
		return "initial-response"
	case StateFirstReview:
		return "first-review"
	case StateRevising:
		return "revising"
	case StateReviewing:
		return "reviewing"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}
