package bidding

// Bid adjustment actions.
const (
	ActionRaise   = "raise"
	ActionLower   = "lower"
	ActionExplore = "explore"
	ActionHold    = "hold"
)

// Policy holds the tuning knobs for the bang-bang bid controller.
type Policy struct {
	TargetRank float64 `yaml:"target_rank" json:"targetRank"`
	BidStep    int     `yaml:"bid_step" json:"bidStep"`
	ProbeLimit int     `yaml:"probe_limit" json:"probeLimit"`
	MinBid     int     `yaml:"min_bid" json:"minBid"`
	MaxBid     int     `yaml:"max_bid" json:"maxBid"`
}

// DefaultPolicy returns the standard controller settings.
func DefaultPolicy() Policy {
	return Policy{
		TargetRank: 3.0,
		BidStep:    300,
		ProbeLimit: 3000,
		MinBid:     70,
		MaxBid:     10000,
	}
}

// Normalize fills zero-valued fields from the defaults so partial
// configs behave sensibly.
func (p Policy) Normalize() Policy {
	d := DefaultPolicy()
	if p.TargetRank <= 0 {
		p.TargetRank = d.TargetRank
	}
	if p.BidStep <= 0 {
		p.BidStep = d.BidStep
	}
	if p.ProbeLimit <= 0 {
		p.ProbeLimit = d.ProbeLimit
	}
	if p.MinBid <= 0 {
		p.MinBid = d.MinBid
	}
	if p.MaxBid <= 0 {
		p.MaxBid = d.MaxBid
	}
	return p
}

// Decision is the outcome of evaluating one keyword.
type Decision struct {
	NewBid int    `json:"newBid"`
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// Changed reports whether the decision moves the bid.
func (d Decision) Changed() bool {
	return d.Action != ActionHold
}

// Decide applies the bang-bang policy to one keyword. A rank of 0.0
// means no impression data was available for any window; bids below
// ProbeLimit are then stepped upward to induce impressions. The limit
// gates entry into probing, it does not cap the step itself.
func Decide(currentBid int, currentRank float64, p Policy) Decision {
	if currentRank == 0.0 {
		if currentBid >= p.ProbeLimit {
			return Decision{NewBid: currentBid, Action: ActionHold, Reason: "no rank data, probe limit reached"}
		}
		next := clamp(currentBid+p.BidStep, p.MinBid, p.MaxBid)
		if next == currentBid {
			return Decision{NewBid: currentBid, Action: ActionHold, Reason: "at ceiling"}
		}
		return Decision{NewBid: next, Action: ActionExplore, Reason: "no impressions, probing"}
	}

	if currentRank > p.TargetRank {
		next := clamp(currentBid+p.BidStep, p.MinBid, p.MaxBid)
		if next == currentBid {
			return Decision{NewBid: currentBid, Action: ActionHold, Reason: "at ceiling"}
		}
		return Decision{NewBid: next, Action: ActionRaise, Reason: "rank behind target"}
	}

	if currentRank < p.TargetRank {
		next := clamp(currentBid-p.BidStep, p.MinBid, p.MaxBid)
		if next == currentBid {
			return Decision{NewBid: currentBid, Action: ActionHold, Reason: "at floor"}
		}
		return Decision{NewBid: next, Action: ActionLower, Reason: "rank ahead of target"}
	}

	return Decision{NewBid: currentBid, Action: ActionHold, Reason: "at target"}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
