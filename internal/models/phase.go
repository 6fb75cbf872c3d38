package models

// Phase is a step of the room pairing lifecycle.
type Phase int

const (
	// Idle shows the owned room code and accepts a peer code.
	Idle Phase = iota
	// Joining is the code-entry display state of Idle. The state machine never transitions to it directly.
	Joining
	// Comparing waits for the comparison request to finish.
	Comparing
	// Results carries a finished comparison.
	Results
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Joining:
		return "joining"
	case Comparing:
		return "comparing"
	case Results:
		return "results"
	default:
		return ""
	}
}
