package review

// MaxRevisions bounds the revise/review loop of a single turn.
const MaxRevisions = 3

// Schedule holds the sampling temperatures of the protocol steps. Editor and reviewer
// temperatures decrease by Step per revision round and never go below Floor.
type Schedule struct {
	Initial       float64
	FirstReview   float64
	EditorStart   float64
	ReviewerStart float64
	Step          float64
	Floor         float64
}

func DefaultSchedule() Schedule {
	return Schedule{
		Initial:       0.1,
		FirstReview:   0.5,
		EditorStart:   0.6,
		ReviewerStart: 0.6,
		Step:          0.15,
		Floor:         0.1,
	}
}

func (s Schedule) Editor(round int) float64 {
	return s.clamp(s.EditorStart - float64(round)*s.Step)
}

func (s Schedule) Reviewer(round int) float64 {
	return s.clamp(s.ReviewerStart - float64(round)*s.Step)
}

func (s Schedule) clamp(t float64) float64 {
	if t < s.Floor {
		return s.Floor
	}
	return t
}
