package env

import "fmt"

// Reason indicates how an agent left the episode.
type Reason int

const (
	ReasonNone        Reason = iota
	ReasonCollided           // touched an enemy
	ReasonStalled            // still in the start zone at a culling tick
	ReasonTimeout            // alive when the tick budget ran out
	ReasonInterrupted        // alive when the episode was cancelled
)

// Reasons lists every terminal reason in reporting order.
var Reasons = []Reason{ReasonCollided, ReasonStalled, ReasonTimeout, ReasonInterrupted}

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonCollided:
		return "collided"
	case ReasonStalled:
		return "stalled"
	case ReasonTimeout:
		return "timeout"
	case ReasonInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// MarshalText encodes the reason by name.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a reason name.
func (r *Reason) UnmarshalText(text []byte) error {
	for _, c := range append([]Reason{ReasonNone}, Reasons...) {
		if c.String() == string(text) {
			*r = c
			return nil
		}
	}
	return fmt.Errorf("unknown reason %q", text)
}

// Outcome captures how a single agent's episode ended.
type Outcome struct {
	AgentID  int     `json:"agent_id"`
	Reason   Reason  `json:"reason"`
	Tick     int     `json:"tick"` // tick on which the agent left
	Steps    int     `json:"steps"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Fitness  float64 `json:"fitness"` // final synced fitness, penalty included
	Finished bool    `json:"finished"`
}

// CountReasons tallies outcomes by reason.
func CountReasons(outcomes []Outcome) map[Reason]int {
	counts := make(map[Reason]int, len(Reasons))
	for _, o := range outcomes {
		counts[o.Reason]++
	}
	return counts
}

// CountFinished returns how many agents crossed the finish line.
func CountFinished(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Finished {
			n++
		}
	}
	return n
}
