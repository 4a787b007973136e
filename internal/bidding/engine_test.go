package bidding

import "testing"

func TestDecide(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name       string
		bid        int
		rank       float64
		wantBid    int
		wantAction string
	}{
		{"behind target raises", 500, 5.0, 800, ActionRaise},
		{"ahead of target lowers", 1000, 1.0, 700, ActionLower},
		{"at target holds", 500, 3.0, 500, ActionHold},
		{"no data probes upward", 500, 0.0, 800, ActionExplore},
		{"probe stops at limit", 3000, 0.0, 3000, ActionHold},
		{"probe above limit holds", 5000, 0.0, 5000, ActionHold},
		{"probe steps past the limit gate", 2900, 0.0, 3200, ActionExplore},
		{"lower clamps to floor", 100, 1.0, 70, ActionLower},
		{"already at floor holds", 70, 1.0, 70, ActionHold},
		{"raise clamps to ceiling", 9900, 5.0, 10000, ActionRaise},
		{"already at ceiling holds", 10000, 5.0, 10000, ActionHold},
		{"slightly behind target raises", 500, 3.1, 800, ActionRaise},
		{"slightly ahead of target lowers", 500, 2.9, 200, ActionLower},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.bid, tt.rank, p)
			if got.NewBid != tt.wantBid {
				t.Errorf("NewBid = %d, want %d", got.NewBid, tt.wantBid)
			}
			if got.Action != tt.wantAction {
				t.Errorf("Action = %q, want %q", got.Action, tt.wantAction)
			}
			if got.Changed() != (tt.wantAction != ActionHold) {
				t.Errorf("Changed() = %v for action %q", got.Changed(), got.Action)
			}
		})
	}
}

func TestDecideProbeRespectsMaxBid(t *testing.T) {
	p := DefaultPolicy()
	p.MaxBid = 2000
	p.ProbeLimit = 3000

	got := Decide(1900, 0.0, p)
	if got.NewBid != 2000 {
		t.Errorf("NewBid = %d, want 2000", got.NewBid)
	}
	if got.Action != ActionExplore {
		t.Errorf("Action = %q, want %q", got.Action, ActionExplore)
	}

	// Already at the ceiling: nothing left to probe with.
	got = Decide(2000, 0.0, p)
	if got.NewBid != 2000 || got.Action != ActionHold {
		t.Errorf("Decide(2000) = %+v, want hold at 2000", got)
	}
}

func TestPolicyNormalize(t *testing.T) {
	got := (Policy{BidStep: 100}).Normalize()
	want := DefaultPolicy()
	want.BidStep = 100

	if got != want {
		t.Errorf("Normalize() = %+v, want %+v", got, want)
	}
}
